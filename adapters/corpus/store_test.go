package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trmcore/domain/trm"
)

func TestSaveAndLoadPackRoundTrips(t *testing.T) {
	root := t.TempDir()
	pack, err := trm.NewRandomPack("tone", "tone pack", []string{"assertive", "hedging"}, 4, 1)
	require.NoError(t, err)

	require.NoError(t, SavePack(root, pack, 42, "tone-v1"))

	loaded, err := LoadPack(root, "tone", "tone pack", 4, []string{"assertive", "hedging"})
	require.NoError(t, err)
	require.Len(t, loaded.Operators, 2)

	for i, op := range pack.Operators {
		assert.Equal(t, op.Name, loaded.Operators[i].Name)
		r, c := op.B.Dims()
		lr, lc := loaded.Operators[i].B.Dims()
		assert.Equal(t, r, lr)
		assert.Equal(t, c, lc)
		for row := 0; row < r; row++ {
			for col := 0; col < c; col++ {
				assert.InDelta(t, op.B.At(row, col), loaded.Operators[i].B.At(row, col), 1e-12)
			}
		}
	}
}

func TestSavePackPersistsProvenance(t *testing.T) {
	root := t.TempDir()
	pack, err := trm.NewRandomPack("tone", "", []string{"assertive"}, 4, 1)
	require.NoError(t, err)
	require.NoError(t, SavePack(root, pack, 30, "tone-v1"))

	_, payload, err := loadOperator(filepath.Join(root, "tone"), "assertive", 4)
	require.NoError(t, err)
	assert.Equal(t, "assertive", payload.Axis)
	assert.Equal(t, 4, payload.Rank)
	assert.Equal(t, 30, payload.CorpusSize)
	assert.Equal(t, "tone-v1", payload.ArchiveTag)
	assert.False(t, payload.LearnedAt.IsZero())
}

func TestLoadPackMissingFileFails(t *testing.T) {
	root := t.TempDir()
	_, err := LoadPack(root, "nope", "", 4, []string{"assertive"})
	assert.Error(t, err)
}

func TestLoadPackDimensionMismatch(t *testing.T) {
	root := t.TempDir()
	pack, err := trm.NewRandomPack("tone", "", []string{"assertive"}, 4, 1)
	require.NoError(t, err)
	require.NoError(t, SavePack(root, pack, 0, ""))

	_, err = LoadPack(root, "tone", "", 5, []string{"assertive"})
	assert.ErrorIs(t, err, trm.ErrDimensionMismatch)
}

func TestLoadPackRenormalizesDriftedOperators(t *testing.T) {
	root := t.TempDir()
	pack, err := trm.NewRandomPack("tone", "", []string{"assertive", "hedging"}, 4, 1)
	require.NoError(t, err)

	// Simulate truncation drift by perturbing one factor before persisting.
	op := pack.Operators[0]
	r, c := op.B.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			op.B.Set(i, j, op.B.At(i, j)*1.5)
		}
	}
	require.NoError(t, SavePack(root, pack, 0, ""))

	_, err = LoadPack(root, "tone", "", 4, []string{"assertive", "hedging"})
	require.NoError(t, err)
}

func TestLoadCorpusSetReadsAllAxisFiles(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "tone")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assertive.json"),
		[]byte(`{"examples":[{"text":"this is certain"},{"text":"this will happen"}]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hedging.json"),
		[]byte(`{"examples":[{"text":"this might happen","tag":"soft"}]}`), 0o644))

	out, err := LoadCorpusSet(root, "tone", []string{"assertive", "hedging"})
	require.NoError(t, err)
	assert.Len(t, out["assertive"], 2)
	assert.Len(t, out["hedging"], 1)
	assert.Equal(t, "this might happen", out["hedging"][0])
}

func TestLoadCorpusRejectsEmptyExemplarList(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "tone")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assertive.json"), []byte(`{"examples":[]}`), 0o644))

	_, err := LoadCorpus(root, "tone", "assertive")
	assert.ErrorIs(t, err, trm.ErrInvalidInput)
}
