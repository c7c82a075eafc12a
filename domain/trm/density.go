package trm

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// DensityMatrix is a symmetric rank x rank PSD matrix with unit trace,
// carrying its own eigendecomposition. Immutable after Build returns it.
type DensityMatrix struct {
	Rank         int
	Rho          *mat.SymDense
	Eigenvalues  []float64 // descending, all >= 0
	Eigenvectors *mat.Dense
	Purity       float64
	Entropy      float64
}

// Projection is the d x r basis used to map an embedding into the rank-r
// space a DensityMatrix lives in. Opaque to the builder: a production
// system may supply a learned PCA basis instead of a random one.
type Projection struct {
	Basis *mat.Dense
	D, R  int
}

// NewRandomProjection synthesizes a projection with unit-norm Gaussian
// columns, deterministic given seed.
func NewRandomProjection(d, r int, seed int64) *Projection {
	rng := rand.New(rand.NewSource(seed))
	return &Projection{Basis: randomProjection(d, r, rng), D: d, R: r}
}

// BuildOptions configures density matrix construction.
type BuildOptions struct {
	Rank       int
	Shrinkage  float64 // ridge regularization, typical 0.01
	Projection *Projection
	Seed       int64 // used only when Projection is nil
}

// Build constructs rho from an embedding per the algorithm in the TRM
// density-matrix builder contract: normalize, project, outer product,
// ridge shrinkage, eigendecompose, clamp, renormalize by trace.
func Build(embedding []float64, opts BuildOptions) (*DensityMatrix, *Projection, error) {
	if len(embedding) == 0 {
		return nil, nil, fmt.Errorf("%w: empty embedding", ErrInvalidInput)
	}
	rank := opts.Rank
	if rank <= 0 {
		return nil, nil, fmt.Errorf("%w: rank must be positive", ErrInvalidInput)
	}
	shrinkage := opts.Shrinkage
	if shrinkage < 0 {
		shrinkage = 0
	}

	unit, norm := normalizeVector(embedding)
	if norm < 1e-12 {
		return nil, nil, fmt.Errorf("%w: embedding has zero norm", ErrInvalidInput)
	}

	proj := opts.Projection
	if proj == nil {
		proj = NewRandomProjection(len(embedding), rank, opts.Seed)
	}
	if proj.D != len(embedding) || proj.R != rank {
		return nil, nil, fmt.Errorf("%w: projection is %dx%d, want %dx%d",
			ErrDimensionMismatch, proj.D, proj.R, len(embedding), rank)
	}

	embVec := mat.NewVecDense(len(unit), unit)
	var vVec mat.VecDense
	vVec.MulVec(proj.Basis.T(), embVec)
	v, vNorm := normalizeVector(vVec.RawVector().Data)
	if vNorm < 1e-10 {
		return nil, nil, fmt.Errorf("%w: embedding collapsed to the kernel of the projection", ErrNumericalFailure)
	}

	s := outerProduct(v)
	addScaledIdentity(s, shrinkage)

	values, vectors, ok := eigSymDescending(s)
	if !ok {
		return nil, nil, fmt.Errorf("%w: eigendecomposition did not converge", ErrNumericalFailure)
	}

	trace := 0.0
	for _, lam := range values {
		trace += lam
	}
	if trace < 1e-10 {
		return nil, nil, fmt.Errorf("%w: trace collapsed to zero before normalization", ErrNumericalFailure)
	}
	for i := range values {
		values[i] /= trace
	}

	rho := reconstructSym(values, vectors)
	rhoTrace := rho.Trace()
	if rhoTrace > 1e-12 {
		for i := 0; i < rank; i++ {
			for j := i; j < rank; j++ {
				rho.SetSym(i, j, rho.At(i, j)/rhoTrace)
			}
		}
	}

	dm := &DensityMatrix{
		Rank:         rank,
		Rho:          rho,
		Eigenvalues:  values,
		Eigenvectors: vectors,
	}
	dm.Purity = computePurity(dm.Rho)
	dm.Entropy = computeEntropy(dm.Eigenvalues)
	return dm, proj, nil
}

func computePurity(rho *mat.SymDense) float64 {
	var sq mat.Dense
	sq.Mul(rho, rho)
	return traceOf(&sq)
}

func computeEntropy(eigenvalues []float64) float64 {
	s := 0.0
	for _, lam := range eigenvalues {
		if lam > 1e-10 {
			s -= lam * math.Log(lam)
		}
	}
	return s
}

// TraceDistance computes D(rho1, rho2) = 0.5 * sum |lambda_i(rho1-rho2)|,
// a value in [0,1] measuring how distinguishable two states are.
func TraceDistance(a, b *DensityMatrix) (float64, error) {
	if a.Rank != b.Rank {
		return 0, fmt.Errorf("%w: rank %d vs %d", ErrDimensionMismatch, a.Rank, b.Rank)
	}
	diff := mat.NewSymDense(a.Rank, nil)
	for i := 0; i < a.Rank; i++ {
		for j := i; j < a.Rank; j++ {
			diff.SetSym(i, j, a.Rho.At(i, j)-b.Rho.At(i, j))
		}
	}
	var es mat.EigSym
	if !es.Factorize(diff, false) {
		return 0, fmt.Errorf("%w: eigendecomposition of difference did not converge", ErrNumericalFailure)
	}
	sum := 0.0
	for _, lam := range es.Values(nil) {
		sum += math.Abs(lam)
	}
	return 0.5 * sum, nil
}

// PrincipalDirection is one eigenpair of rho2-rho1, ranked by |eigenvalue|.
type PrincipalDirection struct {
	Magnitude        float64
	Direction        []float64
	ExplainedVariance float64
}

// PrincipalDirections returns the top-k directions of change between two
// density matrices of equal rank, each annotated with the fraction of
// total |eigenvalue| mass it explains.
func PrincipalDirections(before, after *DensityMatrix, k int) ([]PrincipalDirection, error) {
	if before.Rank != after.Rank {
		return nil, fmt.Errorf("%w: rank %d vs %d", ErrDimensionMismatch, before.Rank, after.Rank)
	}
	n := before.Rank
	delta := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			delta.SetSym(i, j, after.Rho.At(i, j)-before.Rho.At(i, j))
		}
	}

	var es mat.EigSym
	if !es.Factorize(delta, true) {
		return nil, fmt.Errorf("%w: eigendecomposition of delta did not converge", ErrNumericalFailure)
	}
	vals := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	type pair struct {
		val float64
		idx int
	}
	pairs := make([]pair, n)
	total := 0.0
	for i, v := range vals {
		pairs[i] = pair{val: v, idx: i}
		total += math.Abs(v)
	}
	// descending by |value|
	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0 && math.Abs(pairs[j].val) > math.Abs(pairs[j-1].val); j-- {
			pairs[j], pairs[j-1] = pairs[j-1], pairs[j]
		}
	}
	if k > len(pairs) {
		k = len(pairs)
	}
	out := make([]PrincipalDirection, k)
	for i := 0; i < k; i++ {
		p := pairs[i]
		dir := make([]float64, n)
		for row := 0; row < n; row++ {
			dir[row] = vecs.At(row, p.idx)
		}
		ev := 0.0
		if total > 1e-10 {
			ev = math.Abs(p.val) / total
		}
		out[i] = PrincipalDirection{Magnitude: p.val, Direction: dir, ExplainedVariance: ev}
	}
	return out, nil
}
