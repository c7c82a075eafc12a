package trm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEmbedding(n int, seed float64) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = seed + float64(i%5)
	}
	return v
}

func TestBuildProducesUnitTracePSD(t *testing.T) {
	emb := sampleEmbedding(16, 1)
	proj := NewRandomProjection(len(emb), 4, 7)
	dm, returnedProj, err := Build(emb, BuildOptions{Rank: 4, Shrinkage: 0.01, Projection: proj})
	require.NoError(t, err)
	assert.Same(t, proj, returnedProj)
	assert.InDelta(t, 1.0, dm.Rho.Trace(), 1e-9)
	for _, lam := range dm.Eigenvalues {
		assert.GreaterOrEqual(t, lam, -1e-9)
	}
	assert.GreaterOrEqual(t, dm.Purity, 1.0/float64(dm.Rank)-1e-9)
}

func TestBuildRejectsEmptyEmbedding(t *testing.T) {
	_, _, err := Build(nil, BuildOptions{Rank: 4})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBuildRejectsNonPositiveRank(t *testing.T) {
	_, _, err := Build(sampleEmbedding(8, 1), BuildOptions{Rank: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBuildRejectsProjectionDimensionMismatch(t *testing.T) {
	proj := NewRandomProjection(8, 4, 1)
	_, _, err := Build(sampleEmbedding(16, 1), BuildOptions{Rank: 4, Projection: proj})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestBuildIsDeterministicGivenSameProjection(t *testing.T) {
	emb := sampleEmbedding(12, 2)
	proj := NewRandomProjection(len(emb), 3, 42)
	dm1, _, err := Build(emb, BuildOptions{Rank: 3, Shrinkage: 0.01, Projection: proj})
	require.NoError(t, err)
	dm2, _, err := Build(emb, BuildOptions{Rank: 3, Shrinkage: 0.01, Projection: proj})
	require.NoError(t, err)
	assert.Equal(t, dm1.Eigenvalues, dm2.Eigenvalues)
}

func TestTraceDistanceIsZeroForIdenticalStates(t *testing.T) {
	emb := sampleEmbedding(12, 3)
	proj := NewRandomProjection(len(emb), 3, 5)
	dm, _, err := Build(emb, BuildOptions{Rank: 3, Shrinkage: 0.01, Projection: proj})
	require.NoError(t, err)
	d, err := TraceDistance(dm, dm)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, d, 1e-9)
}

func TestTraceDistanceRejectsRankMismatch(t *testing.T) {
	dm1, _, err := Build(sampleEmbedding(12, 1), BuildOptions{Rank: 3, Projection: NewRandomProjection(12, 3, 1)})
	require.NoError(t, err)
	dm2, _, err := Build(sampleEmbedding(12, 1), BuildOptions{Rank: 4, Projection: NewRandomProjection(12, 4, 1)})
	require.NoError(t, err)
	_, err = TraceDistance(dm1, dm2)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestTraceDistanceIsBounded(t *testing.T) {
	embA := sampleEmbedding(12, 1)
	embB := sampleEmbedding(12, 9)
	proj := NewRandomProjection(12, 3, 11)
	dmA, _, err := Build(embA, BuildOptions{Rank: 3, Shrinkage: 0.01, Projection: proj})
	require.NoError(t, err)
	dmB, _, err := Build(embB, BuildOptions{Rank: 3, Shrinkage: 0.01, Projection: proj})
	require.NoError(t, err)
	d, err := TraceDistance(dmA, dmB)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, d, 0.0)
	assert.LessOrEqual(t, d, 1.0)
}
