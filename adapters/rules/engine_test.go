package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trmcore/domain/trm"
)

func testRuleSet() trm.RuleSet {
	return trm.RuleSet{
		trm.RuleKey("tone", "assertive"): {
			{
				Name: "drop-maybe", Kind: trm.RuleRemoval, Word: "maybe",
				Pack: "tone", Axis: "assertive", Confidence: trm.ConfidenceHigh,
			},
			{
				Name: "drop-i-think", Kind: trm.RuleSubstitution, From: "I think", To: "",
				Pack: "tone", Axis: "assertive", Confidence: trm.ConfidenceMedium,
			},
			{
				Name: "add-certainly", Kind: trm.RuleInsertion, Word: "certainly",
				Anchors: []string{"will"}, Pack: "tone", Axis: "assertive", Confidence: trm.ConfidenceLow,
			},
		},
	}
}

func TestApplyRejectsEmptyText(t *testing.T) {
	e := NewEngine(testRuleSet())
	_, err := e.Apply("   ", "tone", "assertive", trm.ConfidenceLow, 0.5)
	assert.ErrorIs(t, err, trm.ErrEmptyText)
}

func TestApplyFiltersBelowConfidenceFloor(t *testing.T) {
	e := NewEngine(testRuleSet())
	candidates, err := e.Apply("maybe I think this works", "tone", "assertive", trm.ConfidenceHigh, 0.9)
	require.NoError(t, err)
	for _, c := range candidates {
		assert.NotEqual(t, "drop-i-think", c.RuleName)
		assert.NotEqual(t, "add-certainly", c.RuleName)
	}
}

func TestApplyFiltersByMaxChangeRatio(t *testing.T) {
	e := NewEngine(testRuleSet())
	candidates, err := e.Apply("maybe I think this works", "tone", "assertive", trm.ConfidenceLow, 0.01)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestApplyDeduplicatesIdenticalRewrites(t *testing.T) {
	e := NewEngine(testRuleSet())
	candidates, err := e.Apply("maybe this works", "tone", "assertive", trm.ConfidenceLow, 0.9)
	require.NoError(t, err)
	seen := make(map[string]bool)
	for _, c := range candidates {
		assert.False(t, seen[c.Text], "duplicate candidate text: %s", c.Text)
		seen[c.Text] = true
	}
}

func TestApplyOrdersByDescendingConfidence(t *testing.T) {
	e := NewEngine(testRuleSet())
	candidates, err := e.Apply("maybe I think this will work", "tone", "assertive", trm.ConfidenceLow, 0.9)
	require.NoError(t, err)
	require.NotEmpty(t, candidates)
	for i := 1; i < len(candidates); i++ {
		assert.LessOrEqual(t, candidates[i].Confidence, candidates[i-1].Confidence)
	}
}

func TestApplyNoMatchingRulesReturnsEmpty(t *testing.T) {
	e := NewEngine(testRuleSet())
	candidates, err := e.Apply("a totally unrelated sentence", "tone", "assertive", trm.ConfidenceLow, 0.9)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}
