package trm

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// EmbedFunc turns text into a raw embedding; supplied by the caller so this
// package stays free of network or model dependencies.
type EmbedFunc func(text string) ([]float64, error)

// AxisCorpusStats records provenance for a learned operator: how many
// exemplars trained it and the mean/variance of their projected vectors,
// used later by the corpus-learning validation pass.
type AxisCorpusStats struct {
	CorpusSize int
	Mean       []float64
	Variance   []float64
}

// LearnedPack bundles a corpus-learned Pack with per-axis provenance.
type LearnedPack struct {
	Pack  *Pack
	Stats map[string]AxisCorpusStats
}

// LearnPack builds one operator per axis from its mean projected exemplar
// vector: the first column of B is proportional to that mean, the
// remaining columns span its null space so the overall column-sum-of-
// squares approaches 1/n before the pack-wide Frobenius rescale.
func LearnPack(name, description string, axisExemplars map[string][]string, embed EmbedFunc, proj *Projection) (*LearnedPack, error) {
	if len(axisExemplars) == 0 {
		return nil, fmt.Errorf("%w: pack %q has no axes", ErrInvalidInput, name)
	}
	rank := proj.R
	n := len(axisExemplars)

	axes := make([]string, 0, n)
	for axis := range axisExemplars {
		axes = append(axes, axis)
	}
	sort.Strings(axes)

	ops := make([]*Operator, 0, n)
	stats := make(map[string]AxisCorpusStats, n)

	for _, axis := range axes {
		texts := axisExemplars[axis]
		if len(texts) == 0 {
			return nil, fmt.Errorf("%w: axis %q has no exemplars", ErrInvalidInput, axis)
		}
		projected := make([][]float64, 0, len(texts))
		for _, text := range texts {
			emb, err := embed(text)
			if err != nil {
				return nil, fmt.Errorf("embedding exemplar for axis %q: %w", axis, err)
			}
			v, err := projectVector(emb, proj)
			if err != nil {
				return nil, err
			}
			projected = append(projected, v)
		}

		mean := make([]float64, rank)
		for _, v := range projected {
			for i := range mean {
				mean[i] += v[i]
			}
		}
		for i := range mean {
			mean[i] /= float64(len(projected))
		}

		variance := make([]float64, rank)
		for _, v := range projected {
			for i := range variance {
				d := v[i] - mean[i]
				variance[i] += d * d
			}
		}
		for i := range variance {
			variance[i] /= float64(len(projected))
		}

		b, err := buildAxisFactor(mean, rank, n)
		if err != nil {
			return nil, err
		}
		ops = append(ops, &Operator{Name: axis, B: b})
		stats[axis] = AxisCorpusStats{CorpusSize: len(texts), Mean: mean, Variance: variance}
	}

	pack := &Pack{Name: name, Description: description, Rank: rank, Operators: ops}
	pack.rescaleFrobenius()
	if pack.residualFrobenius() > povmSumTolerance {
		pack.rescaleTrace()
		if pack.residualFrobenius() > povmSumTolerance {
			return nil, fmt.Errorf("%w: learned pack %q residual %.4f exceeds tolerance after rescale",
				ErrPOVMConstruction, name, pack.residualFrobenius())
		}
	}
	return &LearnedPack{Pack: pack, Stats: stats}, nil
}

// projectVector projects a raw embedding into the rank-r space via the
// shared projection and renormalizes, mirroring the density builder's
// projection step so learned operators live in the same space as rho.
func projectVector(embedding []float64, proj *Projection) ([]float64, error) {
	unit, norm := normalizeVector(embedding)
	if norm < 1e-12 {
		return nil, fmt.Errorf("%w: exemplar embedding has zero norm", ErrInvalidInput)
	}
	if len(unit) != proj.D {
		return nil, fmt.Errorf("%w: embedding dim %d, projection expects %d", ErrDimensionMismatch, len(unit), proj.D)
	}
	embVec := mat.NewVecDense(len(unit), unit)
	var vVec mat.VecDense
	vVec.MulVec(proj.Basis.T(), embVec)
	v, vNorm := normalizeVector(vVec.RawVector().Data)
	if vNorm < 1e-12 {
		return nil, fmt.Errorf("%w: exemplar collapsed to the kernel of the projection", ErrNumericalFailure)
	}
	return v, nil
}

// buildAxisFactor constructs B with its first column proportional to the
// axis mean direction and the remaining rank-1 columns an orthonormal
// basis for that direction's null space, scaled so the column-sum-of-
// squares approaches 1/n (n = number of axes in the pack being learned).
func buildAxisFactor(mean []float64, rank, numAxes int) (*mat.Dense, error) {
	dir, norm := normalizeVector(mean)
	if norm < 1e-12 {
		return nil, fmt.Errorf("%w: axis mean direction collapsed to zero", ErrNumericalFailure)
	}

	b := mat.NewDense(rank, rank, nil)
	targetColNorm := 1.0 / math.Sqrt(float64(numAxes))

	for i := 0; i < rank; i++ {
		b.Set(i, 0, dir[i]*targetColNorm)
	}

	// Gram-Schmidt the standard basis against dir to span its null space.
	col := 1
	for e := 0; e < rank && col < rank; e++ {
		cand := make([]float64, rank)
		cand[e] = 1
		proj := 0.0
		for i := range cand {
			proj += cand[i] * dir[i]
		}
		for i := range cand {
			cand[i] -= proj * dir[i]
		}
		for prev := 1; prev < col; prev++ {
			dot := 0.0
			for i := 0; i < rank; i++ {
				dot += cand[i] * b.At(i, prev)
			}
			prevNorm := 0.0
			for i := 0; i < rank; i++ {
				prevNorm += b.At(i, prev) * b.At(i, prev)
			}
			if prevNorm > 1e-12 {
				for i := 0; i < rank; i++ {
					cand[i] -= (dot / prevNorm) * b.At(i, prev)
				}
			}
		}
		candNorm := 0.0
		for _, x := range cand {
			candNorm += x * x
		}
		candNorm = math.Sqrt(candNorm)
		if candNorm < 1e-9 {
			continue
		}
		for i := 0; i < rank; i++ {
			b.Set(i, col, (cand[i]/candNorm)*targetColNorm)
		}
		col++
	}
	return b, nil
}
