package ports

import "context"

// GenerationPort is the TRM strategy layer's view of an external text
// generator: a pure function of (prompt, temperature) -> text.
type GenerationPort interface {
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
	CostPerMillionTokens() float64
	RequiresNetwork() bool
}
