package trm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedEmbed(vectors map[string][]float64) EmbedFunc {
	return func(text string) ([]float64, error) {
		return vectors[text], nil
	}
}

func TestLearnPackProducesPSDOperatorsSummingToIdentity(t *testing.T) {
	proj := NewRandomProjection(8, 3, 1)
	vectors := map[string][]float64{
		"a1": sampleEmbedding(8, 1), "a2": sampleEmbedding(8, 1.2),
		"b1": sampleEmbedding(8, 9), "b2": sampleEmbedding(8, 9.3),
	}
	exemplars := map[string][]string{
		"assertive": {"a1", "a2"},
		"hedging":   {"b1", "b2"},
	}
	learned, err := LearnPack("tone", "", exemplars, fixedEmbed(vectors), proj)
	require.NoError(t, err)
	assert.LessOrEqual(t, learned.Pack.residualFrobenius(), povmSumTolerance)
	assert.Len(t, learned.Stats, 2)
	assert.Equal(t, 2, learned.Stats["assertive"].CorpusSize)
}

func TestLearnPackRejectsEmptyAxisMap(t *testing.T) {
	proj := NewRandomProjection(8, 3, 1)
	_, err := LearnPack("tone", "", nil, fixedEmbed(nil), proj)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLearnPackRejectsAxisWithNoExemplars(t *testing.T) {
	proj := NewRandomProjection(8, 3, 1)
	exemplars := map[string][]string{"assertive": {}}
	_, err := LearnPack("tone", "", exemplars, fixedEmbed(nil), proj)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
