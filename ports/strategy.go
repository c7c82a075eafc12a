package ports

import (
	"context"

	"trmcore/domain/trm"
)

// TransformStrategy is the shared contract for every candidate-search
// strategy (rule-based, LLM-guided, hybrid). The orchestrator owns the
// variant; strategies are interchangeable and stateless given their
// configuration.
type TransformStrategy interface {
	Transform(ctx context.Context, tctx trm.TransformationContext) (trm.TransformationResult, error)
}
