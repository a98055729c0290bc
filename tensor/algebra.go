// Package tensor: the blockwise algebra layer — Add, Scale, Compose, Dot,
// Norm, Trace and (approximate) equality.
//
// Every operation validates spaces first (fail-fast, sentinel errors), then
// works block by block. Equal spaces imply identical canonical layouts
// (invariant I2), which is what licenses the arena-wide fast paths.
package tensor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/symtensor/sector"
)

// Add computes y ← α·y + β·x in place.
//
// Requires exact codomain/domain equality (structural, not dimensional);
// ErrSpaceMismatch otherwise. When x is a plain TensorMap the update is one
// fused arena loop; an adjoint view goes blockwise through transposed
// reads. A self-adjoint x aliasing y is materialized first — transposing in
// place through a view would read half-updated data.
//
// No partial commit: every failure mode is detected before y is touched.
//
// Complexity: O(nnz) over the stored blocks.
func Add(y *TensorMap, alpha float64, x Morphism, beta float64) error {
	if y == nil || x == nil {
		return fmt.Errorf("Add: %w", ErrNilTensor)
	}
	if !y.cod.Equal(x.Codomain()) || !y.dom.Equal(x.Domain()) {
		return fmt.Errorf("Add: %w", ErrSpaceMismatch)
	}

	// Fast path: same concrete layout ⇒ one fused arena loop.
	if xt, ok := x.(*TensorMap); ok {
		for i, v := range xt.store.data {
			y.store.data[i] = alpha*y.store.data[i] + beta*v
		}

		return nil
	}

	xv := x
	if adj, ok := x.(*AdjointMap); ok && adj.src == y {
		m, err := adj.Materialize()
		if err != nil {
			return fmt.Errorf("Add: %w", err)
		}
		xv = m
	}

	return y.EachBlock(func(c sector.Sector, blk *mat.Dense) error {
		src, ok := xv.blockView(c)
		if !ok {
			// Equal spaces attain equal sectors; unreachable by construction.
			return fmt.Errorf("Add: sector %s: %w", c, ErrNoSuchSector)
		}
		r, k := blk.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < k; j++ {
				blk.Set(i, j, alpha*blk.At(i, j)+beta*src.At(i, j))
			}
		}

		return nil
	})
}

// Scale computes y ← α·x. y and x may be one tensor map (in-place scaling);
// otherwise the spaces must match exactly (ErrSpaceMismatch).
func Scale(y *TensorMap, x Morphism, alpha float64) error {
	if y == nil || x == nil {
		return fmt.Errorf("Scale: %w", ErrNilTensor)
	}
	if xt, ok := x.(*TensorMap); ok && xt == y {
		floats.Scale(alpha, y.store.data)

		return nil
	}

	return Add(y, 0, x, alpha)
}

// Compose returns the composition a∘b: Domain(b) → Codomain(a).
//
// Invariant I3: Domain(a) must STRUCTURALLY equal Codomain(b) — equal
// gradings, dual flags and styles, not merely matching dimensions;
// ErrSpaceMismatch otherwise. Per coupled sector c shared by both operands
// the result block is the ordinary dense product block(a,c)·block(b,c)
// (identical row/column ordering on the shared space is invariant I2).
// Result sectors carried by only one operand stay zero.
//
// Per-sector work runs on the worker pool (WithWorkers / WithSequential);
// target blocks are disjoint arena ranges, so the fan-out is race-free.
//
// Complexity: Σ_c O(m_c·k_c·n_c) dense multiplies.
func Compose(a, b Morphism, opts ...Option) (*TensorMap, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("Compose: %w", ErrNilTensor)
	}
	if !a.Domain().Equal(b.Codomain()) {
		return nil, fmt.Errorf("Compose: inner spaces differ: %w", ErrSpaceMismatch)
	}

	out, err := New(a.Codomain(), b.Domain())
	if err != nil {
		return nil, fmt.Errorf("Compose: %w", err)
	}

	o := gatherOptions(opts...)
	err = o.eachSector(out.store.sectors, func(c sector.Sector) error {
		av, aok := a.blockView(c)
		bv, bok := b.blockView(c)
		if !aok || !bok {
			return nil // sector absent from an operand contributes zero
		}
		dst, _ := out.store.view(c)
		dst.Mul(av, bv)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Dot returns the Euclidean inner product ⟨a, b⟩ = Σ_c qdim(c)·⟨A_c, B_c⟩_F.
// Requires equal spaces and an inner product on every leg.
func Dot(a, b Morphism) (float64, error) {
	if a == nil || b == nil {
		return 0, fmt.Errorf("Dot: %w", ErrNilTensor)
	}
	if !a.Codomain().Equal(b.Codomain()) || !a.Domain().Equal(b.Domain()) {
		return 0, fmt.Errorf("Dot: %w", ErrSpaceMismatch)
	}
	if !euclideanProduct(a.Codomain()) || !euclideanProduct(a.Domain()) {
		return 0, fmt.Errorf("Dot: %w", ErrNotInnerProduct)
	}

	var sum float64
	for _, c := range a.Sectors() {
		av, _ := a.blockView(c)
		bv, ok := b.blockView(c)
		if !ok {
			continue
		}
		r, k := av.Dims()
		var s float64
		for i := 0; i < r; i++ {
			for j := 0; j < k; j++ {
				s += av.At(i, j) * bv.At(i, j)
			}
		}
		sum += c.QDim() * s
	}

	return sum, nil
}

// Norm returns the Euclidean norm: ‖t‖² = Σ_c qdim(c)·‖block(c)‖²_F — the
// quantum dimension accounts for the implicit identity factor per coupled
// sector. ErrNotInnerProduct when any leg is Generic.
//
// Because the blocks are exhaustive (I1), this equals the norm of the full
// dense tensor the map represents: no off-block content can leak.
func Norm(m Morphism) (float64, error) {
	if m == nil {
		return 0, fmt.Errorf("Norm: %w", ErrNilTensor)
	}
	if !euclideanProduct(m.Codomain()) || !euclideanProduct(m.Domain()) {
		return 0, fmt.Errorf("Norm: %w", ErrNotInnerProduct)
	}

	var sum float64
	for _, c := range m.Sectors() {
		v, _ := m.blockView(c)
		f := mat.Norm(v, 2)
		sum += c.QDim() * f * f
	}

	return math.Sqrt(sum), nil
}

// Trace returns Σ_c qdim(c)·tr(block(c)). Endomorphisms only:
// ErrSpaceMismatch unless codomain equals domain structurally.
func Trace(m Morphism) (float64, error) {
	if m == nil {
		return 0, fmt.Errorf("Trace: %w", ErrNilTensor)
	}
	if !m.Codomain().Equal(m.Domain()) {
		return 0, fmt.Errorf("Trace: not an endomorphism: %w", ErrSpaceMismatch)
	}

	var sum float64
	for _, c := range m.Sectors() {
		v, _ := m.blockView(c)
		n, _ := v.Dims()
		var tr float64
		for i := 0; i < n; i++ {
			tr += v.At(i, i)
		}
		sum += c.QDim() * tr
	}

	return sum, nil
}

// Equal reports exact equality: structural spaces and bit-identical blocks.
func Equal(a, b Morphism) bool { return equalWithin(a, b, 0) }

// EqualApprox reports approximate equality: structural spaces and blocks
// agreeing entrywise within tol (absolute).
func EqualApprox(a, b Morphism, tol float64) bool { return equalWithin(a, b, tol) }

func equalWithin(a, b Morphism, tol float64) bool {
	if a == nil || b == nil {
		return false
	}
	if !a.Codomain().Equal(b.Codomain()) || !a.Domain().Equal(b.Domain()) {
		return false
	}
	for _, c := range a.Sectors() {
		av, _ := a.blockView(c)
		bv, ok := b.blockView(c)
		if !ok {
			return false
		}
		r, k := av.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < k; j++ {
				if d := math.Abs(av.At(i, j) - bv.At(i, j)); d > tol {
					return false
				}
			}
		}
	}

	return true
}
