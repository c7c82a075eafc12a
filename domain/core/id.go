// Package core holds tiny cross-cutting value types shared across layers,
// kept deliberately small: just the identifier construction every layer
// needs, independent of any one domain's id subtypes.
package core

import (
	"github.com/google/uuid"
)

// ID is a domain identifier, time-ordered when generated via NewID.
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered
// generation, falling back to v4 if v7 generation fails.
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation.
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty.
func (id ID) IsEmpty() bool {
	return id == ""
}
