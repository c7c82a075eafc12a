package corpus

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trmcore/domain/trm"
)

// axisLeaningEmbed deterministically embeds text so that exemplars
// containing an axis's name lean toward that axis's coordinate, letting the
// validation math see a genuine (if synthetic) discrimination signal.
func axisLeaningEmbed(dim int, axisIndex map[string]int) trm.EmbedFunc {
	return func(text string) ([]float64, error) {
		v := make([]float64, dim)
		for i := range v {
			v[i] = 0.1
		}
		for axis, idx := range axisIndex {
			if containsWord(text, axis) {
				v[idx%dim] += 3.0
			}
		}
		return v, nil
	}
}

func containsWord(text, word string) bool {
	for i := 0; i+len(word) <= len(text); i++ {
		if text[i:i+len(word)] == word {
			return true
		}
	}
	return false
}

func TestValidateReportsEveryOperator(t *testing.T) {
	axes := []string{"assertive", "hedging"}
	pack, err := trm.NewRandomPack("tone", "", axes, 4, 1)
	require.NoError(t, err)

	axisIndex := map[string]int{"assertive": 0, "hedging": 1}
	embed := axisLeaningEmbed(8, axisIndex)
	proj := trm.NewRandomProjection(8, 4, 1)

	heldOut := map[string][]string{
		"assertive": {"assertive assertive text one", "assertive statement two", "assertive claim three"},
		"hedging":   {"hedging hedging text one", "hedging statement two", "hedging claim three"},
	}
	var background []string
	for _, texts := range heldOut {
		background = append(background, texts...)
	}

	report, err := Validate(pack, proj, 4, 0.01, heldOut, background, embed)
	require.NoError(t, err)
	assert.Equal(t, "tone", report.PackName)
	assert.Len(t, report.Operators, 2)
}

func TestValidateRejectsMissingHeldOutAxis(t *testing.T) {
	axes := []string{"assertive", "hedging"}
	pack, err := trm.NewRandomPack("tone", "", axes, 4, 1)
	require.NoError(t, err)
	proj := trm.NewRandomProjection(8, 4, 1)
	embed := axisLeaningEmbed(8, map[string]int{"assertive": 0, "hedging": 1})

	heldOut := map[string][]string{"assertive": {"assertive text"}}
	_, err = Validate(pack, proj, 4, 0.01, heldOut, heldOut["assertive"], embed)
	assert.ErrorIs(t, err, trm.ErrInvalidInput)
}

func TestValidatePropagatesEmbedErrors(t *testing.T) {
	axes := []string{"assertive"}
	pack, err := trm.NewRandomPack("tone", "", axes, 4, 1)
	require.NoError(t, err)
	proj := trm.NewRandomProjection(8, 4, 1)

	boom := fmt.Errorf("embedding service unavailable")
	failingEmbed := func(string) ([]float64, error) { return nil, boom }

	heldOut := map[string][]string{"assertive": {"text one", "text two"}}
	_, err = Validate(pack, proj, 4, 0.01, heldOut, heldOut["assertive"], failingEmbed)
	assert.ErrorIs(t, err, boom)
}
