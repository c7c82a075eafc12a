package ports

import (
	"context"

	"trmcore/domain/trm"
)

// CandidateGenerator produces untested candidate rewrites for one round of
// a generate-filter-select search. round is 0-based and lets a generator
// escalate (lower its confidence floor, raise temperature, widen N) on
// retry without the caller knowing its internal strategy.
type CandidateGenerator interface {
	Generate(ctx context.Context, tctx trm.TransformationContext, round int) ([]trm.TransformationCandidate, error)
}
