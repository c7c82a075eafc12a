package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"trmcore/domain/core"
	"trmcore/domain/trm"
	"trmcore/ports"
)

// maxConcurrentEvaluations bounds how many candidates a single round
// embeds and verifies at once, so a round with many candidates doesn't
// open unbounded concurrent requests against a networked embedding port.
const maxConcurrentEvaluations = 4

// TransformService runs the generate-filter-select loop for a single
// candidate source (rule-based or LLM-guided). It is itself a
// ports.TransformStrategy: the hybrid orchestrator composes two of these.
type TransformService struct {
	Generator   ports.CandidateGenerator
	Embedder    ports.EmbeddingPort
	Pack        *trm.Pack
	Rank        int
	Shrinkage   float64
	MaxRounds   int
	StrategyTag string  // "rule" or "llm", recorded on the result
	Seed        int64   // projection seed; fixed for reproducibility
	CostPerMillionTokens float64 // 0 for adapters with no per-token cost (rules, hash embeddings)
}

// NewTransformService builds a service with fixed GFS defaults: rank from
// the pack, shrinkage 0.01, three rounds and projection seed 1. Fields
// changed afterwards are used as set; zero values are not replaced.
func NewTransformService(generator ports.CandidateGenerator, embedder ports.EmbeddingPort, pack *trm.Pack, strategyTag string) *TransformService {
	return &TransformService{
		Generator:   generator,
		Embedder:    embedder,
		Pack:        pack,
		Rank:        pack.Rank,
		Shrinkage:   0.01,
		MaxRounds:   3,
		StrategyTag: strategyTag,
		Seed:        1,
	}
}

// Transform implements ports.TransformStrategy.
func (s *TransformService) Transform(ctx context.Context, tctx trm.TransformationContext) (trm.TransformationResult, error) {
	start := time.Now()

	embeddingBefore, err := s.Embedder.Embed(ctx, tctx.Text)
	if err != nil {
		return trm.TransformationResult{}, fmt.Errorf("embedding original text: %w", err)
	}
	projection := trm.NewRandomProjection(len(embeddingBefore), s.Rank, s.Seed)

	buildOpts := trm.BuildOptions{Rank: s.Rank, Shrinkage: s.Shrinkage, Projection: projection}
	rhoBefore, _, err := trm.Build(embeddingBefore, buildOpts)
	if err != nil {
		return trm.TransformationResult{}, fmt.Errorf("building original density matrix: %w", err)
	}
	readingsBefore, err := s.Pack.Measure(rhoBefore)
	if err != nil {
		return trm.TransformationResult{}, err
	}
	tctx.CurrentReadings = readingsBefore

	result := trm.TransformationResult{
		ID:             core.NewID().String(),
		OriginalText:   tctx.Text,
		ReadingsBefore: readingsBefore,
		Strategy:       s.StrategyTag,
	}

	seen := map[string]bool{tctx.Text: true}
	var best *scoredCandidate

	for round := 0; round < s.MaxRounds; round++ {
		candidates, err := s.Generator.Generate(ctx, tctx, round)
		if err != nil {
			return trm.TransformationResult{}, fmt.Errorf("generating candidates (round %d): %w", round, err)
		}

		fresh := make([]trm.TransformationCandidate, 0, len(candidates))
		for _, cand := range candidates {
			if seen[cand.Text] {
				continue
			}
			seen[cand.Text] = true
			fresh = append(fresh, cand)
		}

		scored := s.evaluateConcurrently(ctx, tctx, embeddingBefore, projection, fresh)
		for i, sc := range scored {
			if sc == nil {
				continue // evaluation failed or was filtered; drop this candidate
			}
			cand := fresh[i]
			result.RulesOrPromptsUsed = append(result.RulesOrPromptsUsed, candidateLabel(cand))
			result.EstimatedCost += s.estimatedCost(cand)
			result.Trajectory = append(result.Trajectory, trm.TrajectoryPoint{
				Iteration:   round,
				Text:        cand.Text,
				Readings:    sc.verification.ReadingsAfter,
				RhoDistance: sc.verification.RhoDistance,
			})

			if best == nil || sc.beats(best) {
				best = sc
			}
		}

		if best != nil && best.verification.TargetAchieved {
			break
		}
	}

	if best == nil {
		result.Success = false
		result.ErrorReason = "no candidate improved target above threshold"
		result.TransformedText = tctx.Text
		result.ReadingsAfter = readingsBefore
		result.ElapsedTime = time.Since(start)
		return result, nil
	}

	result.TransformedText = best.candidate.Text
	result.ReadingsAfter = best.verification.ReadingsAfter
	result.Delta = best.verification.Delta
	result.TargetImprovement = best.verification.Delta[tctx.Axis]
	result.RhoDistanceMoved = best.verification.RhoDistance
	result.TextChangeRatio = best.changeRatio
	result.CoherenceScore = trm.Coherence(best.verification.RhoDistance)
	result.Success = best.verification.Success
	result.ElapsedTime = time.Since(start)
	if !result.Success {
		result.ErrorReason = "no candidate improved target above threshold"
	}
	return result, nil
}

type scoredCandidate struct {
	candidate    trm.TransformationCandidate
	verification *trm.VerificationResult
	changeRatio  float64
}

// beats implements the GFS tie-break: largest target improvement, then
// higher coherence, then smaller text change.
func (sc *scoredCandidate) beats(other *scoredCandidate) bool {
	target := sc.verification.TargetAxis
	a := sc.verification.Delta[target]
	b := other.verification.Delta[target]
	if a != b {
		return a > b
	}
	coherenceA := trm.Coherence(sc.verification.RhoDistance)
	coherenceB := trm.Coherence(other.verification.RhoDistance)
	if coherenceA != coherenceB {
		return coherenceA > coherenceB
	}
	return sc.changeRatio < other.changeRatio
}

// evaluateConcurrently embeds and verifies every candidate in one round at
// once, bounded by a weighted semaphore so a round with many candidates
// never opens more than maxConcurrentEvaluations requests against a
// networked embedding port. Result order matches candidates' order;
// entries are nil where evaluate rejected or failed on that candidate.
func (s *TransformService) evaluateConcurrently(ctx context.Context, tctx trm.TransformationContext, embeddingBefore []float64, projection *trm.Projection, candidates []trm.TransformationCandidate) []*scoredCandidate {
	results := make([]*scoredCandidate, len(candidates))
	sem := semaphore.NewWeighted(maxConcurrentEvaluations)
	var wg sync.WaitGroup

	for i, cand := range candidates {
		if err := sem.Acquire(ctx, 1); err != nil {
			break // context cancelled; leave remaining entries nil
		}
		wg.Add(1)
		go func(i int, cand trm.TransformationCandidate) {
			defer wg.Done()
			defer sem.Release(1)
			sc, ok, err := s.evaluate(ctx, tctx, embeddingBefore, projection, cand)
			if err != nil || !ok {
				return
			}
			results[i] = sc
		}(i, cand)
	}
	wg.Wait()
	return results
}

func (s *TransformService) evaluate(ctx context.Context, tctx trm.TransformationContext, embeddingBefore []float64, projection *trm.Projection, cand trm.TransformationCandidate) (*scoredCandidate, bool, error) {
	changeRatio := trm.TextChangeRatio(tctx.Text, cand.Text)
	if changeRatio > tctx.MaxChangeRatio {
		return nil, false, nil
	}

	embeddingAfter, err := s.Embedder.Embed(ctx, cand.Text)
	if err != nil {
		return nil, false, err
	}

	verification, err := trm.Verify(embeddingBefore, embeddingAfter, s.Pack, tctx.Axis, tctx.ImprovementThreshold,
		trm.VerifyOptions{Rank: s.Rank, Shrinkage: s.Shrinkage, Projection: projection})
	if err != nil {
		return nil, false, err
	}

	coherence := trm.Coherence(verification.RhoDistance)
	if coherence < 0.5 {
		return nil, false, nil
	}

	return &scoredCandidate{candidate: cand, verification: verification, changeRatio: changeRatio}, true, nil
}

// estimatedCost approximates token cost for LLM-sourced candidates using a
// 4-chars-per-token rule of thumb; rule-based candidates cost nothing.
func (s *TransformService) estimatedCost(c trm.TransformationCandidate) float64 {
	if c.Source != trm.SourceLLM || s.CostPerMillionTokens <= 0 {
		return 0
	}
	tokens := float64(len(c.Text)) / 4.0
	return tokens * s.CostPerMillionTokens / 1_000_000
}

func candidateLabel(c trm.TransformationCandidate) string {
	if c.Source == trm.SourceRule {
		return c.RuleName
	}
	return fmt.Sprintf("llm@T=%.2f", c.Temperature)
}
