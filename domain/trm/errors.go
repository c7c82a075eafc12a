package trm

import "errors"

// Sentinel errors for the taxonomy described in the TRM error handling
// design. Callers should use errors.Is against these, not string matching.
var (
	ErrInvalidInput         = errors.New("trm: invalid input")
	ErrEmptyText            = errors.New("trm: empty text")
	ErrUnknownPack          = errors.New("trm: unknown povm pack")
	ErrUnknownAxis          = errors.New("trm: unknown axis")
	ErrDimensionMismatch    = errors.New("trm: embedding dimension mismatch")
	ErrNumericalFailure     = errors.New("trm: numerical failure")
	ErrPOVMConstruction     = errors.New("trm: povm construction error")
	ErrProviderUnavailable  = errors.New("trm: provider unavailable")
	ErrGenerationRetryable  = errors.New("trm: generation retryable")
	ErrConfig               = errors.New("trm: configuration error")
)
