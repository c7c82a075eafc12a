package corpus

import (
	"context"
	"fmt"

	"trmcore/domain/trm"
	"trmcore/ports"
)

// Learner trains POVM packs from on-disk exemplar corpora via an
// EmbeddingPort, validates them, and persists the result.
type Learner struct {
	Embedder  ports.EmbeddingPort
	Root      string
	Rank      int
	Shrinkage float64
}

// NewLearner wires an embedding adapter to the corpus root directory that
// holds both exemplar corpora and learned operator files.
func NewLearner(embedder ports.EmbeddingPort, root string, rank int, shrinkage float64) *Learner {
	return &Learner{Embedder: embedder, Root: root, Rank: rank, Shrinkage: shrinkage}
}

// embedFunc adapts the context-aware EmbeddingPort to trm.EmbedFunc, which
// learning and validation both expect.
func (l *Learner) embedFunc(ctx context.Context) trm.EmbedFunc {
	return func(text string) ([]float64, error) {
		return l.Embedder.Embed(ctx, text)
	}
}

// Learn builds a pack from axisExemplars against a fresh projection of the
// given input dimension, then persists the operators to l.Root.
func (l *Learner) Learn(ctx context.Context, name, description string, axisExemplars map[string][]string, embeddingDim int, seed int64) (*trm.LearnedPack, *trm.Projection, error) {
	proj := trm.NewRandomProjection(embeddingDim, l.Rank, seed)
	learned, err := trm.LearnPack(name, description, axisExemplars, l.embedFunc(ctx), proj)
	if err != nil {
		return nil, nil, fmt.Errorf("learning pack %q: %w", name, err)
	}
	if err := SavePack(l.Root, learned.Pack, totalCorpusSize(learned.Stats), name); err != nil {
		return nil, nil, fmt.Errorf("persisting pack %q: %w", name, err)
	}
	return learned, proj, nil
}

// totalCorpusSize sums the exemplar counts recorded per axis, used as the
// pack-level corpus size recorded alongside each persisted operator.
func totalCorpusSize(stats map[string]trm.AxisCorpusStats) int {
	total := 0
	for _, s := range stats {
		total += s.CorpusSize
	}
	return total
}

// LearnFromDisk reads exemplar corpora for every axis in axisNames from
// l.Root, learns the pack, and persists it.
func (l *Learner) LearnFromDisk(ctx context.Context, name, description string, axisNames []string, embeddingDim int, seed int64) (*trm.LearnedPack, *trm.Projection, error) {
	exemplars, err := LoadCorpusSet(l.Root, name, axisNames)
	if err != nil {
		return nil, nil, fmt.Errorf("loading corpus for pack %q: %w", name, err)
	}
	return l.Learn(ctx, name, description, exemplars, embeddingDim, seed)
}

// ValidateFromDisk holds out heldOutCount exemplars per axis, trains on the
// remainder, and validates discrimination against a background corpus that
// pools every axis's held-out exemplars.
func (l *Learner) ValidateFromDisk(ctx context.Context, name, description string, axisNames []string, embeddingDim int, seed int64, heldOutCount int) (*trm.LearnedPack, *ValidationReport, error) {
	raw, err := LoadCorpusSet(l.Root, name, axisNames)
	if err != nil {
		return nil, nil, fmt.Errorf("loading corpus for pack %q: %w", name, err)
	}

	train := make(map[string][]string, len(raw))
	heldOut := make(map[string][]string, len(raw))

	for axis, texts := range raw {
		if len(texts) <= heldOutCount {
			return nil, nil, fmt.Errorf("%w: axis %q has %d exemplars, needs more than %d held out",
				trm.ErrInvalidInput, axis, len(texts), heldOutCount)
		}
		split := len(texts) - heldOutCount
		train[axis] = texts[:split]
		heldOut[axis] = texts[split:]
	}

	// Background pools every axis's held-out exemplars; a genuinely
	// discriminating operator should still separate its own axis from this
	// mixed pool even though a slice of the pool is technically in-axis.
	var background []string
	for _, texts := range heldOut {
		background = append(background, texts...)
	}

	proj := trm.NewRandomProjection(embeddingDim, l.Rank, seed)
	learned, err := trm.LearnPack(name, description, train, l.embedFunc(ctx), proj)
	if err != nil {
		return nil, nil, fmt.Errorf("learning pack %q: %w", name, err)
	}

	report, err := Validate(learned.Pack, proj, l.Rank, l.Shrinkage, heldOut, background, l.embedFunc(ctx))
	if err != nil {
		return nil, nil, fmt.Errorf("validating pack %q: %w", name, err)
	}

	if report.Recommendation == RecommendKeep {
		if err := SavePack(l.Root, learned.Pack, totalCorpusSize(learned.Stats), name); err != nil {
			return nil, nil, fmt.Errorf("persisting pack %q: %w", name, err)
		}
	}
	return learned, report, nil
}
