package ports

import "context"

// EmbeddingPort maps non-empty text to a fixed-dimension, unit-norm
// embedding. Implementations declare their dimension and whether they
// require network access so callers can choose an offline path.
type EmbeddingPort interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Dimension() int
	RequiresNetwork() bool
}
