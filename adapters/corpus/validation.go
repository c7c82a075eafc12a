// Package corpus learns POVM operators from per-axis exemplar corpora,
// validates their discrimination, and persists them to disk.
package corpus

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"trmcore/domain/trm"
)

// Recommendation is the learner's verdict on whether a learned pack is fit
// for use.
type Recommendation string

const (
	RecommendKeep         Recommendation = "keep"
	RecommendRetrainWeak  Recommendation = "retrain_weak"
	RecommendRetrainAll   Recommendation = "retrain_all"
)

// OperatorValidation is the discrimination report for one axis's operator.
type OperatorValidation struct {
	Axis       string
	CohensD    float64
	Coverage   float64 // fraction of background readings outside the in-axis normal range
	Variance   float64 // variance of in-axis readings under the fixed projection
	Acceptable bool    // d >= 0.5 && coverage >= 0.7
}

// ValidationReport is the learner's full discrimination pass across every
// axis in a pack, plus the overall recommendation.
type ValidationReport struct {
	PackName       string
	Operators      []OperatorValidation
	Recommendation Recommendation
}

// Validate measures heldOut (in-axis) and background (out-of-axis)
// exemplars against every operator in pack, via embed, and computes Cohen's
// d, coverage, and variance per axis per spec.md's corpus-learning gate.
func Validate(pack *trm.Pack, proj *trm.Projection, rank int, shrinkage float64,
	heldOut map[string][]string, background []string, embed trm.EmbedFunc) (*ValidationReport, error) {

	backgroundReadings, err := measureTexts(pack, proj, rank, shrinkage, embed, background)
	if err != nil {
		return nil, fmt.Errorf("measuring background corpus: %w", err)
	}

	report := &ValidationReport{PackName: pack.Name}
	weakCount := 0

	for _, op := range pack.Operators {
		axis := op.Name
		texts, ok := heldOut[axis]
		if !ok || len(texts) == 0 {
			return nil, fmt.Errorf("%w: no held-out exemplars for axis %q", trm.ErrInvalidInput, axis)
		}
		inAxisReadings, err := measureTexts(pack, proj, rank, shrinkage, embed, texts)
		if err != nil {
			return nil, fmt.Errorf("measuring held-out exemplars for axis %q: %w", axis, err)
		}

		inAxis := axisProbabilities(inAxisReadings, axis)
		outAxis := axisProbabilities(backgroundReadings, axis)

		d, err := cohensD(inAxis, outAxis)
		if err != nil {
			return nil, fmt.Errorf("computing Cohen's d for axis %q: %w", axis, err)
		}

		variance, err := stats.Variance(inAxis)
		if err != nil {
			variance = 0
		}

		coverage := coverageFraction(outAxis, inAxis)

		acceptable := d >= 0.5 && coverage >= 0.7
		if !acceptable {
			weakCount++
		}

		report.Operators = append(report.Operators, OperatorValidation{
			Axis:       axis,
			CohensD:    d,
			Coverage:   coverage,
			Variance:   variance,
			Acceptable: acceptable,
		})
	}

	switch {
	case weakCount == 0:
		report.Recommendation = RecommendKeep
	case weakCount < len(pack.Operators):
		report.Recommendation = RecommendRetrainWeak
	default:
		report.Recommendation = RecommendRetrainAll
	}
	return report, nil
}

func measureTexts(pack *trm.Pack, proj *trm.Projection, rank int, shrinkage float64, embed trm.EmbedFunc, texts []string) ([]trm.Readings, error) {
	out := make([]trm.Readings, 0, len(texts))
	for _, text := range texts {
		emb, err := embed(text)
		if err != nil {
			return nil, err
		}
		rho, _, err := trm.Build(emb, trm.BuildOptions{Rank: rank, Shrinkage: shrinkage, Projection: proj})
		if err != nil {
			return nil, err
		}
		readings, err := pack.Measure(rho)
		if err != nil {
			return nil, err
		}
		out = append(out, readings)
	}
	return out, nil
}

func axisProbabilities(readings []trm.Readings, axis string) []float64 {
	out := make([]float64, len(readings))
	for i, r := range readings {
		p, _ := r.Get(axis)
		out[i] = p
	}
	return out
}

// cohensD is (mean(a) - mean(b)) / pooled standard deviation.
func cohensD(a, b []float64) (float64, error) {
	meanA, err := stats.Mean(a)
	if err != nil {
		return 0, err
	}
	meanB, err := stats.Mean(b)
	if err != nil {
		return 0, err
	}
	varA, err := stats.Variance(a)
	if err != nil {
		return 0, err
	}
	varB, err := stats.Variance(b)
	if err != nil {
		return 0, err
	}
	nA, nB := float64(len(a)), float64(len(b))
	pooledVar := ((nA-1)*varA + (nB-1)*varB) / (nA + nB - 2)
	if pooledVar <= 0 {
		return 0, fmt.Errorf("%w: pooled variance collapsed to zero", trm.ErrNumericalFailure)
	}
	return (meanA - meanB) / math.Sqrt(pooledVar), nil
}

// coverageFraction is the share of background readings that fall outside
// one in-axis standard deviation of the in-axis mean, i.e. the share of the
// background that a discriminating operator keeps out of its normal range.
func coverageFraction(background, inAxis []float64) float64 {
	mean, err := stats.Mean(inAxis)
	if err != nil {
		return 0
	}
	sd, err := stats.StandardDeviation(inAxis)
	if err != nil || sd == 0 {
		return 0
	}
	within := 0
	for _, v := range background {
		if v >= mean-sd && v <= mean+sd {
			within++
		}
	}
	if len(background) == 0 {
		return 0
	}
	return 1 - float64(within)/float64(len(background))
}
