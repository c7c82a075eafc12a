package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trmcore/domain/trm"
)

func TestHashAdapterIsDeterministic(t *testing.T) {
	h := NewHashAdapter(32)
	a, err := h.Embed(context.Background(), "the quick brown fox")
	require.NoError(t, err)
	b, err := h.Embed(context.Background(), "the quick brown fox")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestHashAdapterProducesUnitNormVector(t *testing.T) {
	h := NewHashAdapter(16)
	v, err := h.Embed(context.Background(), "a short sentence about nothing in particular")
	require.NoError(t, err)
	norm := 0.0
	for _, x := range v {
		norm += x * x
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
	assert.Len(t, v, 16)
}

func TestHashAdapterDistinguishesDifferentText(t *testing.T) {
	h := NewHashAdapter(32)
	a, err := h.Embed(context.Background(), "completely different content here")
	require.NoError(t, err)
	b, err := h.Embed(context.Background(), "some other unrelated words entirely")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashAdapterRejectsEmptyText(t *testing.T) {
	h := NewHashAdapter(16)
	_, err := h.Embed(context.Background(), "   ")
	assert.ErrorIs(t, err, trm.ErrEmptyText)
}

func TestHashAdapterRequiresNoNetwork(t *testing.T) {
	h := NewHashAdapter(16)
	assert.False(t, h.RequiresNetwork())
	assert.Equal(t, 16, h.Dimension())
}
