package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trmcore/adapters/embedding"
	"trmcore/adapters/rules"
	"trmcore/domain/trm"
)

func testPack(t *testing.T) *trm.Pack {
	t.Helper()
	pack, err := trm.NewRandomPack("tone", "tone pack", []string{"assertive", "hedging"}, 4, 3)
	require.NoError(t, err)
	return pack
}

func testRuleSetForTone() trm.RuleSet {
	return trm.RuleSet{
		trm.RuleKey("tone", "assertive"): {
			{Name: "drop-maybe", Kind: trm.RuleRemoval, Word: "maybe", Pack: "tone", Axis: "assertive", Confidence: trm.ConfidenceHigh},
			{Name: "drop-i-think", Kind: trm.RuleSubstitution, From: "I think", To: "", Pack: "tone", Axis: "assertive", Confidence: trm.ConfidenceHigh},
		},
	}
}

func TestTransformServiceReturnsPopulatedResult(t *testing.T) {
	pack := testPack(t)
	embedder := embedding.NewHashAdapter(32)
	generator := rules.NewGenerator(testRuleSetForTone())
	svc := NewTransformService(generator, embedder, pack, "rule")

	tctx := trm.TransformationContext{
		Text: "maybe I think this plan works", Pack: "tone", Axis: "assertive",
		ImprovementThreshold: -1, MaxChangeRatio: 0.9,
	}
	result, err := svc.Transform(context.Background(), tctx)
	require.NoError(t, err)
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, "rule", result.Strategy)
	assert.NotEmpty(t, result.ReadingsBefore.Axes)
}

func TestTransformServiceNoCandidatesLeavesTextUnchanged(t *testing.T) {
	pack := testPack(t)
	embedder := embedding.NewHashAdapter(32)
	generator := rules.NewGenerator(trm.RuleSet{})
	svc := NewTransformService(generator, embedder, pack, "rule")

	tctx := trm.TransformationContext{
		Text: "a sentence no rule in this set will touch", Pack: "tone", Axis: "assertive",
		ImprovementThreshold: 0.05, MaxChangeRatio: 0.9,
	}
	result, err := svc.Transform(context.Background(), tctx)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, tctx.Text, result.TransformedText)
	assert.NotEmpty(t, result.ErrorReason)
}

func TestTransformServicePropagatesCurrentReadingsToGenerator(t *testing.T) {
	pack := testPack(t)
	embedder := embedding.NewHashAdapter(32)
	capture := &capturingGenerator{}
	svc := NewTransformService(capture, embedder, pack, "rule")

	tctx := trm.TransformationContext{
		Text: "maybe this works", Pack: "tone", Axis: "assertive",
		ImprovementThreshold: 0.05, MaxChangeRatio: 0.9,
	}
	_, err := svc.Transform(context.Background(), tctx)
	require.NoError(t, err)
	assert.NotEmpty(t, capture.seenReadings.Axes, "generator should observe non-zero current readings")
}

type capturingGenerator struct {
	seenReadings trm.Readings
}

func (c *capturingGenerator) Generate(_ context.Context, tctx trm.TransformationContext, _ int) ([]trm.TransformationCandidate, error) {
	c.seenReadings = tctx.CurrentReadings
	return nil, nil
}
