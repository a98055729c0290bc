// Package tensor: the Morphism read surface and the lazy adjoint view.
//
// Adjoint is modeled as a borrowing view: a back-reference to the source
// plus the implicit transpose, never an eager copy. The view must not
// outlive mutations of its source — it has no copy to fall back on — and
// all mutating operations accept *TensorMap only, so mutation never happens
// through the view. Materialize produces an owned transposed TensorMap.
package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/symtensor/sector"
	"github.com/katalvlaran/symtensor/space"
)

// Morphism is the read-only surface shared by *TensorMap and *AdjointMap.
// The unexported block hook keeps the set of implementations closed: every
// Morphism is backed by a canonical arena layout, which is what lets the
// algebra trust invariant I2 without re-deriving it.
type Morphism interface {
	// Codomain returns the codomain product.
	Codomain() space.Product
	// Domain returns the domain product.
	Domain() space.Product
	// Sectors returns the attainable coupled sectors in canonical order.
	Sectors() []sector.Sector

	// blockView returns the read-only block of c, false when absent.
	blockView(c sector.Sector) (mat.Matrix, bool)
}

// AdjointMap is the lazy conjugate-transpose view of a TensorMap. Over the
// real scalar field the conjugate is the identity, so each block view is a
// plain gonum transpose aliasing the source arena.
type AdjointMap struct {
	src *TensorMap
}

// Adjoint returns the lazy adjoint view of t. The adjoint is only defined
// on spaces with an inner product; ErrNotInnerProduct when any leg is
// Generic.
func Adjoint(t *TensorMap) (*AdjointMap, error) {
	if t == nil {
		return nil, fmt.Errorf("Adjoint: %w", ErrNilTensor)
	}
	if !euclideanProduct(t.cod) || !euclideanProduct(t.dom) {
		return nil, fmt.Errorf("Adjoint: %w", ErrNotInnerProduct)
	}

	return &AdjointMap{src: t}, nil
}

// Codomain of the adjoint is the source's domain.
func (a *AdjointMap) Codomain() space.Product { return a.src.dom }

// Domain of the adjoint is the source's codomain.
func (a *AdjointMap) Domain() space.Product { return a.src.cod }

// Sectors returns the source's attainable coupled sectors; transposition
// preserves them.
func (a *AdjointMap) Sectors() []sector.Sector { return a.src.Sectors() }

// Adjoint of the view hands back the original — no nesting, no copies.
func (a *AdjointMap) Adjoint() *TensorMap { return a.src }

// Materialize produces an owned TensorMap holding the transposed blocks.
// This is the only point where the view's data is copied.
func (a *AdjointMap) Materialize() (*TensorMap, error) {
	out, err := New(a.src.dom, a.src.cod)
	if err != nil {
		return nil, err
	}
	for _, c := range a.src.store.sectors {
		src, _ := a.src.store.view(c)
		dst, _ := out.store.view(c)
		dst.Copy(src.T())
	}

	return out, nil
}

// blockView implements Morphism: the transpose view of the source block.
func (a *AdjointMap) blockView(c sector.Sector) (mat.Matrix, bool) {
	blk, ok := a.src.store.view(c)
	if !ok {
		return nil, false
	}

	return blk.T(), true
}

// euclideanProduct reports whether every leg of p is Euclidean.
func euclideanProduct(p space.Product) bool {
	for i := 0; i < p.Len(); i++ {
		if p.At(i).Style() != space.Euclidean {
			return false
		}
	}

	return true
}
