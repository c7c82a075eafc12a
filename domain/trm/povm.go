package trm

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Operator is a named POVM operator E = B*B^T, PSD by construction.
type Operator struct {
	Name string
	B    *mat.Dense // rank x rank factor
}

// E computes B*B^T.
func (op *Operator) E() *mat.SymDense {
	var e mat.Dense
	e.Mul(op.B, op.B.T())
	return symmetrize(&e)
}

// Measure applies Born's rule p = Tr(rho*E), clipped to [0,1].
func (op *Operator) Measure(rho *DensityMatrix) float64 {
	e := op.E()
	var prod mat.Dense
	prod.Mul(rho.Rho, e)
	p := traceOf(&prod)
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p
}

// Readings is the ordered, normalized probability distribution produced by
// measuring a density matrix against a Pack.
type Readings struct {
	Axes  []string
	Probs map[string]float64
}

// Get returns the probability assigned to an axis.
func (r Readings) Get(axis string) (float64, bool) {
	p, ok := r.Probs[axis]
	return p, ok
}

// Pack is an ordered collection of operators sharing a rank, with
// Sum(E_i) = I within tolerance. Immutable after construction.
type Pack struct {
	Name        string
	Description string
	Rank        int
	Operators   []*Operator
}

const povmSumTolerance = 0.01

// Measure implements Born's rule across every operator in the pack, then
// renormalizes the resulting distribution to correct numerical drift.
func (p *Pack) Measure(rho *DensityMatrix) (Readings, error) {
	if rho.Rank != p.Rank {
		return Readings{}, fmt.Errorf("%w: pack rank %d, rho rank %d", ErrDimensionMismatch, p.Rank, rho.Rank)
	}
	probs := make(map[string]float64, len(p.Operators))
	axes := make([]string, len(p.Operators))
	total := 0.0
	for i, op := range p.Operators {
		v := op.Measure(rho)
		probs[op.Name] = v
		axes[i] = op.Name
		total += v
	}
	if total > 1e-12 {
		for k := range probs {
			probs[k] /= total
		}
	}
	return Readings{Axes: axes, Probs: probs}, nil
}

// residualFrobenius returns ||sum(E_i) - I||_F for the pack's current
// operators.
func (p *Pack) residualFrobenius() float64 {
	total := mat.NewSymDense(p.Rank, nil)
	for _, op := range p.Operators {
		e := op.E()
		for i := 0; i < p.Rank; i++ {
			for j := i; j < p.Rank; j++ {
				total.SetSym(i, j, total.At(i, j)+e.At(i, j))
			}
		}
	}
	for i := 0; i < p.Rank; i++ {
		total.SetSym(i, i, total.At(i, i)-1)
	}
	return frobeniusNorm(total)
}

// rescaleFrobenius scales every operator's factor by a single scalar so that
// Sum(E_i) approaches I, using the Frobenius-norm ratio of the identity to
// the current total.
func (p *Pack) rescaleFrobenius() {
	total := mat.NewSymDense(p.Rank, nil)
	for _, op := range p.Operators {
		e := op.E()
		for i := 0; i < p.Rank; i++ {
			for j := i; j < p.Rank; j++ {
				total.SetSym(i, j, total.At(i, j)+e.At(i, j))
			}
		}
	}
	identityNorm := math.Sqrt(float64(p.Rank))
	totalNorm := frobeniusNorm(total)
	if totalNorm < 1e-12 {
		return
	}
	scale := math.Sqrt(identityNorm / totalNorm)
	for _, op := range p.Operators {
		r, c := op.B.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				op.B.Set(i, j, op.B.At(i, j)*scale)
			}
		}
	}
}

// rescaleTrace is the fallback correction: scale so that Tr(sum E_i)
// matches Tr(I) = rank, used only when a Frobenius rescale alone failed to
// bring the pack within tolerance.
func (p *Pack) rescaleTrace() {
	totalTrace := 0.0
	for _, op := range p.Operators {
		totalTrace += traceOf(op.E())
	}
	if totalTrace < 1e-12 {
		return
	}
	scale := math.Sqrt(float64(p.Rank) / totalTrace)
	for _, op := range p.Operators {
		r, c := op.B.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				op.B.Set(i, j, op.B.At(i, j)*scale)
			}
		}
	}
}

// Renormalize re-verifies Sum(E_i) = I within tolerance, rescaling in place
// if truncation (e.g. during persistence) has introduced drift. Returns
// ErrPOVMConstruction if the pack cannot be brought within tolerance.
func (p *Pack) Renormalize() error {
	if p.residualFrobenius() <= povmSumTolerance {
		return nil
	}
	p.rescaleFrobenius()
	if p.residualFrobenius() > povmSumTolerance {
		p.rescaleTrace()
		if p.residualFrobenius() > povmSumTolerance {
			return fmt.Errorf("%w: pack %q residual %.4f exceeds tolerance after rescale",
				ErrPOVMConstruction, p.Name, p.residualFrobenius())
		}
	}
	return nil
}

// NewRandomPack draws a PSD operator per axis from N(0, 1/sqrt(rank*n)),
// then rescales so Sum(E_i) = I within tolerance. Deterministic given seed.
func NewRandomPack(name, description string, axes []string, rank int, seed int64) (*Pack, error) {
	if len(axes) == 0 {
		return nil, fmt.Errorf("%w: pack %q has no axes", ErrInvalidInput, name)
	}
	rng := rand.New(rand.NewSource(seed))
	n := len(axes)
	sigma := 1.0 / math.Sqrt(float64(rank)*float64(n))

	ops := make([]*Operator, n)
	for i, axis := range axes {
		b := mat.NewDense(rank, rank, nil)
		for r := 0; r < rank; r++ {
			for c := 0; c < rank; c++ {
				b.Set(r, c, rng.NormFloat64()*sigma)
			}
		}
		ops[i] = &Operator{Name: axis, B: b}
	}
	pack := &Pack{Name: name, Description: description, Rank: rank, Operators: ops}

	pack.rescaleFrobenius()
	if pack.residualFrobenius() > povmSumTolerance {
		pack.rescaleTrace()
		if pack.residualFrobenius() > povmSumTolerance {
			return nil, fmt.Errorf("%w: pack %q residual %.4f exceeds tolerance after rescale",
				ErrPOVMConstruction, name, pack.residualFrobenius())
		}
	}
	return pack, nil
}
