package rules

import (
	"context"

	"trmcore/domain/trm"
)

// Generator adapts Engine to ports.CandidateGenerator, lowering its
// confidence floor on each retry round instead of varying N or temperature
// the way an LLM generator would.
type Generator struct {
	engine  *Engine
	floors  []trm.ConfidenceTier
}

// NewGenerator builds a rule-based candidate generator. floors lists the
// confidence floor to use per round (floors[i] for round i, the last entry
// for any later round); it defaults to high, then medium, then low.
func NewGenerator(ruleSet trm.RuleSet, floors ...trm.ConfidenceTier) *Generator {
	if len(floors) == 0 {
		floors = []trm.ConfidenceTier{trm.ConfidenceHigh, trm.ConfidenceMedium, trm.ConfidenceLow}
	}
	return &Generator{engine: NewEngine(ruleSet), floors: floors}
}

// Generate implements ports.CandidateGenerator.
func (g *Generator) Generate(_ context.Context, tctx trm.TransformationContext, round int) ([]trm.TransformationCandidate, error) {
	floor := g.floors[len(g.floors)-1]
	if round < len(g.floors) {
		floor = g.floors[round]
	}
	return g.engine.Apply(tctx.Text, tctx.Pack, tctx.Axis, floor, tctx.MaxChangeRatio)
}
