package app

import (
	"context"
	"fmt"
	"time"

	"trmcore/domain/trm"
	"trmcore/ports"
)

// HybridStrategy runs the rule-based strategy first and falls back to the
// LLM-guided strategy only if the rules didn't reach the target. The
// winning sub-strategy is recorded on the result; cost/latency both
// accumulate across whichever attempts actually ran.
type HybridStrategy struct {
	Rules ports.TransformStrategy
	LLM   ports.TransformStrategy
}

// NewHybridStrategy composes a rules-first, LLM-fallback orchestrator.
func NewHybridStrategy(rules, llm ports.TransformStrategy) *HybridStrategy {
	return &HybridStrategy{Rules: rules, LLM: llm}
}

// Transform implements ports.TransformStrategy.
func (h *HybridStrategy) Transform(ctx context.Context, tctx trm.TransformationContext) (trm.TransformationResult, error) {
	start := time.Now()

	ruleResult, err := h.Rules.Transform(ctx, tctx)
	if err != nil {
		return trm.TransformationResult{}, fmt.Errorf("rule strategy: %w", err)
	}
	if ruleResult.Success {
		ruleResult.Strategy = "hybrid:rule"
		ruleResult.ElapsedTime = time.Since(start)
		return ruleResult, nil
	}

	if h.LLM == nil {
		ruleResult.Strategy = "hybrid:rule"
		ruleResult.ElapsedTime = time.Since(start)
		return ruleResult, nil
	}

	llmResult, err := h.LLM.Transform(ctx, tctx)
	if err != nil {
		return trm.TransformationResult{}, fmt.Errorf("llm strategy: %w", err)
	}
	llmResult.ElapsedTime = time.Since(start)
	llmResult.EstimatedCost += ruleResult.EstimatedCost
	if llmResult.Trajectory == nil {
		llmResult.Trajectory = ruleResult.Trajectory
	} else {
		llmResult.Trajectory = append(ruleResult.Trajectory, llmResult.Trajectory...)
	}

	winner := &llmResult
	winner.Strategy = "hybrid:llm"
	if ruleResult.TargetImprovement > llmResult.TargetImprovement {
		winner = &ruleResult
		winner.Strategy = "hybrid:rule"
		winner.ElapsedTime = llmResult.ElapsedTime
		winner.EstimatedCost = llmResult.EstimatedCost
		winner.Trajectory = llmResult.Trajectory
	}
	return *winner, nil
}
