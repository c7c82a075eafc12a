package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trmcore/domain/trm"
)

type fakeStrategy struct {
	result trm.TransformationResult
	err    error
	calls  int
}

func (f *fakeStrategy) Transform(_ context.Context, _ trm.TransformationContext) (trm.TransformationResult, error) {
	f.calls++
	return f.result, f.err
}

func TestHybridStrategyReturnsRuleResultWhenSuccessful(t *testing.T) {
	rule := &fakeStrategy{result: trm.TransformationResult{Success: true, TransformedText: "rule wins"}}
	llm := &fakeStrategy{result: trm.TransformationResult{Success: true, TransformedText: "llm wins"}}
	h := NewHybridStrategy(rule, llm)

	result, err := h.Transform(context.Background(), trm.TransformationContext{})
	require.NoError(t, err)
	assert.Equal(t, "rule wins", result.TransformedText)
	assert.Equal(t, "hybrid:rule", result.Strategy)
	assert.Equal(t, 0, llm.calls)
}

func TestHybridStrategyFallsBackToLLMOnRuleFailure(t *testing.T) {
	rule := &fakeStrategy{result: trm.TransformationResult{Success: false, EstimatedCost: 0}}
	llm := &fakeStrategy{result: trm.TransformationResult{Success: true, TransformedText: "llm wins", EstimatedCost: 0.01}}
	h := NewHybridStrategy(rule, llm)

	result, err := h.Transform(context.Background(), trm.TransformationContext{})
	require.NoError(t, err)
	assert.Equal(t, "llm wins", result.TransformedText)
	assert.Equal(t, "hybrid:llm", result.Strategy)
	assert.Equal(t, 1, llm.calls)
}

func TestHybridStrategyWithoutLLMReturnsRuleFailure(t *testing.T) {
	rule := &fakeStrategy{result: trm.TransformationResult{Success: false}}
	h := NewHybridStrategy(rule, nil)

	result, err := h.Transform(context.Background(), trm.TransformationContext{})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "hybrid:rule", result.Strategy)
}

func TestHybridStrategyPrefersLargerTargetImprovementOnFallback(t *testing.T) {
	rule := &fakeStrategy{result: trm.TransformationResult{
		Success: false, TransformedText: "rule almost there", TargetImprovement: 0.2,
	}}
	llm := &fakeStrategy{result: trm.TransformationResult{
		Success: true, TransformedText: "llm wins", TargetImprovement: 0.05,
	}}
	h := NewHybridStrategy(rule, llm)

	result, err := h.Transform(context.Background(), trm.TransformationContext{})
	require.NoError(t, err)
	assert.Equal(t, "rule almost there", result.TransformedText)
	assert.Equal(t, "hybrid:rule", result.Strategy)
	assert.Equal(t, 1, llm.calls)
}

func TestHybridStrategyPropagatesRuleError(t *testing.T) {
	rule := &fakeStrategy{err: assert.AnError}
	llm := &fakeStrategy{}
	h := NewHybridStrategy(rule, llm)

	_, err := h.Transform(context.Background(), trm.TransformationContext{})
	assert.Error(t, err)
	assert.Equal(t, 0, llm.calls)
}
