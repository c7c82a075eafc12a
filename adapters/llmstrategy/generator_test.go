package llmstrategy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trmcore/domain/trm"
)

type fakeClient struct {
	responses map[float64]string
	errs      map[float64]error
	calls     []float64
}

func (f *fakeClient) Generate(_ context.Context, _ string, temperature float64) (string, error) {
	f.calls = append(f.calls, temperature)
	if err, ok := f.errs[temperature]; ok {
		return "", err
	}
	return f.responses[temperature], nil
}

func (f *fakeClient) CostPerMillionTokens() float64 { return 0 }
func (f *fakeClient) RequiresNetwork() bool         { return true }

func TestGenerateProducesOneCandidatePerTemperature(t *testing.T) {
	client := &fakeClient{responses: map[float64]string{
		0.3: "Rewrite one.", 0.6: "Rewrite two.", 0.9: "Rewrite three.",
	}}
	g := NewGenerator(client, "test-model", nil, []float64{0.3, 0.6, 0.9})
	candidates, err := g.Generate(context.Background(), trm.TransformationContext{Text: "original", Axis: "assertive", Pack: "tone"}, 0)
	require.NoError(t, err)
	assert.Len(t, candidates, 3)
	for _, c := range candidates {
		assert.Equal(t, trm.SourceLLM, c.Source)
	}
}

func TestGenerateSkipsRetryableFailuresAtOneTemperature(t *testing.T) {
	client := &fakeClient{
		responses: map[float64]string{0.3: "ok text"},
		errs:      map[float64]error{0.6: errors.New("rate limit exceeded, please retry")},
	}
	g := NewGenerator(client, "test-model", nil, []float64{0.3, 0.6})
	candidates, err := g.Generate(context.Background(), trm.TransformationContext{Text: "original", Axis: "a", Pack: "p"}, 0)
	require.NoError(t, err)
	assert.Len(t, candidates, 1)
}

func TestGenerateReturnsNonRetryableErrorImmediately(t *testing.T) {
	client := &fakeClient{errs: map[float64]error{0.3: errors.New("invalid api key")}}
	g := NewGenerator(client, "test-model", nil, []float64{0.3})
	_, err := g.Generate(context.Background(), trm.TransformationContext{Text: "original", Axis: "a", Pack: "p"}, 0)
	assert.Error(t, err)
}

func TestGenerateWidensTemperatureScheduleOnLaterRounds(t *testing.T) {
	client := &fakeClient{responses: map[float64]string{0.3: "a", 0.4: "b"}}
	g := NewGenerator(client, "test-model", nil, []float64{0.3})
	_, err := g.Generate(context.Background(), trm.TransformationContext{Text: "original", Axis: "a", Pack: "p"}, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.3, 0.4}, client.calls)
}

func TestBuildPromptIncludesDominantAxisFromCurrentReadings(t *testing.T) {
	g := NewGenerator(&fakeClient{}, "test-model", nil, nil)
	tctx := trm.TransformationContext{
		Text: "text", Axis: "assertive", Pack: "tone",
		CurrentReadings: trm.Readings{Axes: []string{"assertive", "hedging"}, Probs: map[string]float64{"assertive": 0.2, "hedging": 0.8}},
	}
	prompt := g.buildPrompt(tctx)
	assert.Contains(t, prompt, `"hedging"`)
}

func TestParseResponseStripsPreambleAndQuotes(t *testing.T) {
	out := parseResponse(`Here's the rewritten passage: "This is the text."`)
	assert.Equal(t, "This is the text.", out)
}

func TestParseResponseDropsTrailingCommentaryParagraph(t *testing.T) {
	out := parseResponse("The rewritten text.\n\nI made it more assertive by removing hedges.")
	assert.Equal(t, "The rewritten text.", out)
}
