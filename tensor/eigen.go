// Package tensor: eigendecomposition of endomorphisms. EigH is the
// symmetric solver (real spectrum, orthogonal eigenvectors, tensor-valued
// result); Eig is the general real solver whose spectrum may be complex
// and therefore leaves the float64 block algebra; Eigen dispatches between
// them after probing each block for symmetry.
package tensor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/symtensor/sector"
)

// ComplexEigen holds the per-sector outcome of a general eigendecomposition:
// eigenvalues in []complex128 and right eigenvectors in a column matrix.
// Complex output cannot ride the float64 block store, so the result is a
// lookup structure rather than a pair of tensor maps.
type ComplexEigen struct {
	// Hermitian reports that every block passed the symmetry probe, so the
	// spectrum is real (zero imaginary parts) and EigH would agree.
	Hermitian bool

	sectors []sector.Sector
	values  map[sector.Sector][]complex128
	vectors map[sector.Sector]*mat.CDense
}

// Sectors returns the coupled sectors carrying a block, in canonical order.
// The returned slice is shared; treat it as read-only.
func (e *ComplexEigen) Sectors() []sector.Sector { return e.sectors }

// Values returns the eigenvalues of sector c.
func (e *ComplexEigen) Values(c sector.Sector) ([]complex128, error) {
	vals, ok := e.values[c]
	if !ok {
		return nil, sectorErrorf("Eigen.Values", c, ErrNoSuchSector)
	}

	return vals, nil
}

// Vectors returns the right eigenvectors of sector c, one per column,
// ordered like Values.
func (e *ComplexEigen) Vectors(c sector.Sector) (*mat.CDense, error) {
	vecs, ok := e.vectors[c]
	if !ok {
		return nil, sectorErrorf("Eigen.Vectors", c, ErrNoSuchSector)
	}

	return vecs, nil
}

// EigH computes the eigendecomposition of a symmetric endomorphism:
// t = V·D·Vᵀ with D diagonal and V orthogonal per sector. Eigenvalues are
// ascending within each block. The input's symmetry is trusted, not
// checked — use Eigen for the checked front door.
//
// Errors: ErrSpaceMismatch unless domain and codomain coincide;
// ErrNotInnerProduct on Generic legs; ErrNumericalFailure (sector-tagged)
// when a block fails to converge.
func EigH(t *TensorMap, opts ...Option) (d, v *TensorMap, err error) {
	if t == nil {
		return nil, nil, fmt.Errorf("EigH: %w", ErrNilTensor)
	}
	if !t.cod.Equal(t.dom) {
		return nil, nil, fmt.Errorf("EigH: not an endomorphism: %w", ErrSpaceMismatch)
	}
	if !euclideanProduct(t.dom) {
		return nil, nil, fmt.Errorf("EigH: %w", ErrNotInnerProduct)
	}
	o := gatherOptions(opts...)

	if d, err = New(t.dom, t.dom); err != nil {
		return nil, nil, fmt.Errorf("EigH: %w", err)
	}
	if v, err = New(t.dom, t.dom); err != nil {
		return nil, nil, fmt.Errorf("EigH: %w", err)
	}

	sectors := t.store.sectors
	err = o.eachIndex(len(sectors), func(i int) error {
		c := sectors[i]
		blk, _ := t.store.view(c)
		n, _ := blk.Dims()

		sym := mat.NewSymDense(n, nil)
		for row := 0; row < n; row++ {
			for col := row; col < n; col++ {
				sym.SetSym(row, col, blk.At(row, col))
			}
		}
		var es mat.EigenSym
		if ok := es.Factorize(sym, true); !ok {
			return sectorErrorf("EigH", c, ErrNumericalFailure)
		}

		dblk, _ := d.store.view(c)
		for j, val := range es.Values(nil) {
			dblk.Set(j, j, val)
		}
		vblk, _ := v.store.view(c)
		es.VectorsTo(vblk)

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return d, v, nil
}

// Eig computes the general (non-symmetric) eigendecomposition of an
// endomorphism. Spectra of real blocks may be complex, so the result is a
// ComplexEigen lookup rather than tensor maps; eigenvalue order is the
// solver's.
func Eig(t *TensorMap, opts ...Option) (*ComplexEigen, error) {
	if t == nil {
		return nil, fmt.Errorf("Eig: %w", ErrNilTensor)
	}
	if !t.cod.Equal(t.dom) {
		return nil, fmt.Errorf("Eig: not an endomorphism: %w", ErrSpaceMismatch)
	}
	o := gatherOptions(opts...)

	sectors := t.store.sectors
	vals := make([][]complex128, len(sectors))
	vecs := make([]*mat.CDense, len(sectors))
	err := o.eachIndex(len(sectors), func(i int) error {
		blk, _ := t.store.view(sectors[i])
		var eg mat.Eigen
		if ok := eg.Factorize(blk, mat.EigenRight); !ok {
			return sectorErrorf("Eig", sectors[i], ErrNumericalFailure)
		}
		vals[i] = eg.Values(nil)
		vecs[i] = &mat.CDense{}
		eg.VectorsTo(vecs[i])

		return nil
	})
	if err != nil {
		return nil, err
	}

	out := &ComplexEigen{
		sectors: sectors,
		values:  make(map[sector.Sector][]complex128, len(sectors)),
		vectors: make(map[sector.Sector]*mat.CDense, len(sectors)),
	}
	for i, c := range sectors {
		out.values[c] = vals[i]
		out.vectors[c] = vecs[i]
	}

	return out, nil
}

// Eigen is the checked front door: it probes every block for symmetry
// within WithHermitianTol and dispatches to EigH (reporting Hermitian:
// true, real ascending spectra, orthogonal vectors) or to the general Eig.
func Eigen(t *TensorMap, opts ...Option) (*ComplexEigen, error) {
	if t == nil {
		return nil, fmt.Errorf("Eigen: %w", ErrNilTensor)
	}
	if !t.cod.Equal(t.dom) {
		return nil, fmt.Errorf("Eigen: not an endomorphism: %w", ErrSpaceMismatch)
	}
	o := gatherOptions(opts...)

	if !euclideanProduct(t.dom) || !symmetricWithin(t, o.hermTol) {
		return Eig(t, opts...)
	}

	d, v, err := EigH(t, opts...)
	if err != nil {
		return nil, err
	}
	out := &ComplexEigen{
		Hermitian: true,
		sectors:   d.store.sectors,
		values:    make(map[sector.Sector][]complex128, len(d.store.sectors)),
		vectors:   make(map[sector.Sector]*mat.CDense, len(d.store.sectors)),
	}
	for _, c := range out.sectors {
		dblk, _ := d.store.view(c)
		vblk, _ := v.store.view(c)
		n, _ := dblk.Dims()

		cv := make([]complex128, n)
		for j := 0; j < n; j++ {
			cv[j] = complex(dblk.At(j, j), 0)
		}
		out.values[c] = cv

		cm := mat.NewCDense(n, n, nil)
		for row := 0; row < n; row++ {
			for col := 0; col < n; col++ {
				cm.Set(row, col, complex(vblk.At(row, col), 0))
			}
		}
		out.vectors[c] = cm
	}

	return out, nil
}

// symmetricWithin reports whether every block of t is symmetric to within
// tol, entrywise.
func symmetricWithin(t *TensorMap, tol float64) bool {
	for _, c := range t.store.sectors {
		blk, _ := t.store.view(c)
		n, m := blk.Dims()
		if n != m {
			return false
		}
		for row := 0; row < n; row++ {
			for col := row + 1; col < n; col++ {
				if math.Abs(blk.At(row, col)-blk.At(col, row)) > tol {
					return false
				}
			}
		}
	}

	return true
}
