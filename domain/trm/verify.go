package trm

import (
	"fmt"
	"math"
)

// VerificationResult is the outcome of comparing readings before and after
// a candidate rewrite, using a single shared projection for both.
type VerificationResult struct {
	ReadingsBefore Readings
	ReadingsAfter  Readings
	Delta          map[string]float64
	TargetAxis     string
	TargetAchieved bool
	Magnitude      float64
	Alignment      float64
	RhoDistance    float64
	Success        bool
}

// VerifyOptions bundles the shared construction parameters a verification
// pair must use so rho_before and rho_after are directly comparable.
type VerifyOptions struct {
	Rank       int
	Shrinkage  float64
	Projection *Projection // must be shared across the pair; never regenerated here
}

// Verify constructs rho for both embeddings using the same projection,
// measures them with pack, and reports whether movement toward targetAxis
// met threshold and was the dominant direction of change.
func Verify(embeddingBefore, embeddingAfter []float64, pack *Pack, targetAxis string, threshold float64, opts VerifyOptions) (*VerificationResult, error) {
	if opts.Projection == nil {
		return nil, fmt.Errorf("%w: verify requires a shared projection", ErrInvalidInput)
	}
	found := false
	for _, op := range pack.Operators {
		if op.Name == targetAxis {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %q not in pack %q", ErrUnknownAxis, targetAxis, pack.Name)
	}

	buildOpts := BuildOptions{Rank: opts.Rank, Shrinkage: opts.Shrinkage, Projection: opts.Projection}
	rhoBefore, _, err := Build(embeddingBefore, buildOpts)
	if err != nil {
		return nil, fmt.Errorf("building rho_before: %w", err)
	}
	rhoAfter, _, err := Build(embeddingAfter, buildOpts)
	if err != nil {
		return nil, fmt.Errorf("building rho_after: %w", err)
	}

	readingsBefore, err := pack.Measure(rhoBefore)
	if err != nil {
		return nil, err
	}
	readingsAfter, err := pack.Measure(rhoAfter)
	if err != nil {
		return nil, err
	}

	delta := make(map[string]float64, len(readingsBefore.Probs))
	for axis, before := range readingsBefore.Probs {
		delta[axis] = readingsAfter.Probs[axis] - before
	}

	targetImprovement := delta[targetAxis]
	targetAchieved := targetImprovement >= threshold

	magnitude := 0.0
	for i := range embeddingBefore {
		d := embeddingAfter[i] - embeddingBefore[i]
		magnitude += d * d
	}
	magnitude = math.Sqrt(magnitude)

	alignment := computeAlignment(delta, targetAxis, magnitude)

	rhoDist, err := TraceDistance(rhoBefore, rhoAfter)
	if err != nil {
		return nil, err
	}

	result := &VerificationResult{
		ReadingsBefore: readingsBefore,
		ReadingsAfter:  readingsAfter,
		Delta:          delta,
		TargetAxis:     targetAxis,
		TargetAchieved: targetAchieved,
		Magnitude:      magnitude,
		Alignment:      alignment,
		RhoDistance:    rhoDist,
		Success:        targetAchieved && alignment > 0,
	}
	return result, nil
}

// computeAlignment scores how well the movement favored targetAxis:
// +1 if it has the largest positive delta, +0.5 if any positive delta,
// 0 if no movement, -1 if it decreased.
func computeAlignment(delta map[string]float64, targetAxis string, magnitude float64) float64 {
	if magnitude < 1e-6 {
		return 0.0
	}
	targetDelta := delta[targetAxis]
	if targetDelta < 0 {
		return -1.0
	}

	maxDelta := math.Inf(-1)
	for _, v := range delta {
		if v > maxDelta {
			maxDelta = v
		}
	}
	if targetDelta > 0 && targetDelta >= maxDelta {
		return 1.0
	}
	if targetDelta > 0 {
		return 0.5
	}
	return 0.0
}

// Coherence is the normative 1 - rho_distance proxy for "meaning
// preserved" between two states; per the spec's open question this is
// the only coherence formulation implemented (no embedding-cosine variant).
func Coherence(rhoDistance float64) float64 {
	c := 1 - rhoDistance
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// Diagnosis is the verifier's failure-mode classification with a
// single-line remediation hint.
type Diagnosis struct {
	Issue      string
	Suggestion string
}

// Diagnose classifies why a verification failed. Callers should only call
// this on a failing result; it returns a quality note instead for a
// passing one.
func Diagnose(result *VerificationResult) Diagnosis {
	if result.Success {
		switch {
		case result.Alignment >= 1.0:
			return Diagnosis{Issue: "", Suggestion: "excellent alignment: target axis dominated the movement"}
		default:
			return Diagnosis{Issue: "", Suggestion: "good alignment: target improved but was not the single largest delta"}
		}
	}

	switch {
	case result.Magnitude < 1e-4:
		return Diagnosis{
			Issue:      "no-movement",
			Suggestion: "the candidate did not change the embedding meaningfully; check the transformation logic produced a real rewrite",
		}
	case result.Alignment < 0:
		return Diagnosis{
			Issue:      "wrong-direction",
			Suggestion: fmt.Sprintf("target axis %q decreased; reverse the transformation or reconsider the target", result.TargetAxis),
		}
	case !result.TargetAchieved:
		best := result.TargetAxis
		bestDelta := math.Inf(-1)
		for axis, d := range result.Delta {
			if d > bestDelta {
				bestDelta = d
				best = axis
			}
		}
		return Diagnosis{
			Issue:      "insufficient-improvement",
			Suggestion: fmt.Sprintf("try a more aggressive rewrite, or consider %q which moved the most (%.4f)", best, bestDelta),
		}
	default:
		return Diagnosis{Issue: "unknown", Suggestion: "check verification inputs or pack calibration"}
	}
}
