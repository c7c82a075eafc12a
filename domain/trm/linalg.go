// Package trm implements the Transformation-via-Recursive-Measurement core:
// embedding -> density matrix -> POVM measurement -> verification.
package trm

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// frobeniusNorm computes ||m||_F without relying on gonum's norm-order
// dispatch, so the behavior is obvious at the call site.
func frobeniusNorm(m mat.Matrix) float64 {
	r, c := m.Dims()
	sum := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			sum += v * v
		}
	}
	return math.Sqrt(sum)
}

// traceOf sums the diagonal of a (possibly non-square) matrix.
func traceOf(m mat.Matrix) float64 {
	r, c := m.Dims()
	n := r
	if c < n {
		n = c
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += m.At(i, i)
	}
	return sum
}

// outerProduct returns v*v^T as a symmetric rank-one matrix.
func outerProduct(v []float64) *mat.SymDense {
	n := len(v)
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s.SetSym(i, j, v[i]*v[j])
		}
	}
	return s
}

// addScaledIdentity adds alpha*I to s in place.
func addScaledIdentity(s *mat.SymDense, alpha float64) {
	n := s.SymmetricDim()
	for i := 0; i < n; i++ {
		s.SetSym(i, i, s.At(i, i)+alpha)
	}
}

// symmetrize returns 0.5*(m + m^T) as a SymDense, used to remove floating
// point asymmetry from a product that is symmetric in exact arithmetic.
func symmetrize(m *mat.Dense) *mat.SymDense {
	r, _ := m.Dims()
	s := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			s.SetSym(i, j, 0.5*(m.At(i, j)+m.At(j, i)))
		}
	}
	return s
}

// eigSymDescending factorizes a symmetric matrix and returns eigenvalues in
// descending order with matching eigenvector columns. Every negative
// eigenvalue is clamped to 0, whatever its size; large negative values are
// not reported.
func eigSymDescending(s mat.Symmetric) (values []float64, vectors *mat.Dense, ok bool) {
	var es mat.EigSym
	if !es.Factorize(s, true) {
		return nil, nil, false
	}
	asc := es.Values(nil)
	var vecsAsc mat.Dense
	es.VectorsTo(&vecsAsc)

	n := len(asc)
	values = make([]float64, n)
	vectors = mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		src := n - 1 - i
		v := asc[src]
		if v < 0 {
			v = 0
		}
		values[i] = v
		for row := 0; row < n; row++ {
			vectors.Set(row, i, vecsAsc.At(row, src))
		}
	}
	return values, vectors, true
}

// randomProjection draws a d x r Gaussian matrix with unit-norm columns.
// Deterministic given rng, as required by the reproducibility invariant.
func randomProjection(d, r int, rng *rand.Rand) *mat.Dense {
	p := mat.NewDense(d, r, nil)
	for j := 0; j < r; j++ {
		col := make([]float64, d)
		norm := 0.0
		for i := 0; i < d; i++ {
			col[i] = rng.NormFloat64()
			norm += col[i] * col[i]
		}
		norm = math.Sqrt(norm)
		if norm < 1e-12 {
			norm = 1
		}
		for i := 0; i < d; i++ {
			p.Set(i, j, col[i]/norm)
		}
	}
	return p
}

// normalizeVector returns a unit-norm copy of v, and the norm it divided by.
func normalizeVector(v []float64) ([]float64, float64) {
	norm := 0.0
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	out := make([]float64, len(v))
	if norm < 1e-12 {
		return out, norm
	}
	for i, x := range v {
		out[i] = x / norm
	}
	return out, norm
}

// reconstructSym builds Q * diag(values) * Q^T from a descending eigensystem.
func reconstructSym(values []float64, vectors *mat.Dense) *mat.SymDense {
	n := len(values)
	diag := mat.NewDiagDense(n, values)
	var qd mat.Dense
	qd.Mul(vectors, diag)
	var full mat.Dense
	full.Mul(&qd, vectors.T())
	return symmetrize(&full)
}
