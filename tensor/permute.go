// Package tensor: the index-permutation engine.
//
// Permute re-expresses a tensor map's content after every leg has been
// reassigned to a new codomain/domain split. Combined-leg numbering (shared
// with fusion.PermutePair): legs 0…N1−1 are the codomain legs, legs
// N1…N1+N2−1 are the domain legs, which cross the boundary dualized.
//
// Per old coupled sector, each (row tree, column tree) subblock expands
// into weighted target subblocks (a single coefficient-1 target for abelian
// symmetries) and is moved by one odometer-driven strided accumulation —
// no per-element division or modulo anywhere.
package tensor

import (
	"fmt"

	"github.com/katalvlaran/symtensor/fusion"
	"github.com/katalvlaran/symtensor/sector"
	"github.com/katalvlaran/symtensor/space"
)

// Permute returns the tensor map re-expressed with combined legs p1 as the
// new codomain and p2 as the new domain, in the canonical layout of the
// resulting spaces.
//
// Preconditions: p1 ∪ p2 must be an exact permutation of 0…N1+N2−1,
// partitioned into the two sides; ErrInvalidPermutation otherwise. Either
// side may be empty. Non-abelian symmetries additionally need a
// fusion.Recoupler (ErrNoRecoupler surfaces wrapped).
//
// Postconditions: the result represents the same linear map under the
// canonical space-reordering identification; on Euclidean spaces the norm
// is preserved to floating tolerance, and permutation commutes with
// composition.
//
// Fast paths: the identity split is a plain arena copy; the trivial
// symmetry is one multidimensional strided transpose with no fusion-tree
// bookkeeping. Abelian sectors fan out across the worker pool — every old
// sector writes a disjoint set of target ranges, because tuple relabeling
// is injective. General styles run sequentially (targets may overlap).
//
// Complexity: O(nnz) moved elements plus the recoupling expansions.
func Permute(t *TensorMap, p1, p2 []int, opts ...Option) (*TensorMap, error) {
	// Stage 1: validate the partition.
	if t == nil {
		return nil, fmt.Errorf("Permute: %w", ErrNilTensor)
	}
	n1 := t.cod.Len()
	total := n1 + t.dom.Len()
	if len(p1)+len(p2) != total {
		return nil, fmt.Errorf("Permute: %d legs split %d+%d: %w",
			total, len(p1), len(p2), ErrInvalidPermutation)
	}
	seen := make([]bool, total)
	for _, p := range [][]int{p1, p2} {
		for _, leg := range p {
			if leg < 0 || leg >= total || seen[leg] {
				return nil, fmt.Errorf("Permute: leg %d: %w", leg, ErrInvalidPermutation)
			}
			seen[leg] = true
		}
	}

	// Stage 2: target spaces. A domain leg crossing into the codomain is
	// dualized; a leg landing back in the domain is dualized twice (a no-op).
	legSpace := func(i int) space.Space {
		if i < n1 {
			return t.cod.At(i)
		}

		return t.dom.At(i - n1).Dual()
	}
	codSpaces := make([]space.Space, len(p1))
	for j, leg := range p1 {
		codSpaces[j] = legSpace(leg)
	}
	domSpaces := make([]space.Space, len(p2))
	for j, leg := range p2 {
		domSpaces[j] = legSpace(leg).Dual()
	}
	newCod, err := space.Prod(codSpaces...)
	if err != nil {
		return nil, fmt.Errorf("Permute: %w", err)
	}
	newDom, err := space.Prod(domSpaces...)
	if err != nil {
		return nil, fmt.Errorf("Permute: %w", err)
	}

	out, err := New(newCod, newDom)
	if err != nil {
		return nil, fmt.Errorf("Permute: %w", err)
	}

	// Stage 3: identity split — pure copy, layouts are equal by I2.
	if isIdentitySplit(p1, p2, n1) {
		copy(out.store.data, t.store.data)

		return out, nil
	}

	perm := make([]int, 0, total)
	perm = append(perm, p1...)
	perm = append(perm, p2...)

	// Stage 4: trivial symmetry — one whole-block strided transpose.
	if t.trivial() {
		t.transposeTrivial(out, perm, len(p1))

		return out, nil
	}

	// Stage 5: general per-sector accumulation.
	moveSector := func(c sector.Sector) error {
		src, _ := t.store.slice(c)
		_, srcCols, _ := t.store.shape(c)

		for _, rr := range t.rows[c].ranges {
			for _, cr := range t.cols[c].ranges {
				pairs, perr := fusion.PermutePair(rr.tree, cr.tree, p1, p2)
				if perr != nil {
					return fmt.Errorf("Permute: sector %s: %w", c, perr)
				}
				for _, pair := range pairs {
					if aerr := out.accumulatePair(src, srcCols, rr, cr, pair, perm, len(p1)); aerr != nil {
						return fmt.Errorf("Permute: sector %s: %w", c, aerr)
					}
				}
			}
		}

		return nil
	}

	o := gatherOptions(opts...)
	sectors := t.store.sectors
	if len(sectors) > 0 && sectors[0].FusionStyle() != sector.Abelian {
		// Recoupled targets may overlap across old sectors; serialize.
		o.workers = 1
	}
	if err = o.eachSector(sectors, moveSector); err != nil {
		return nil, err
	}

	return out, nil
}

// Repartition moves the codomain/domain boundary to after the first n
// combined legs without reordering them: shorthand for Permute with
// p1 = 0…n−1 and p2 = n…N1+N2−1. ErrInvalidPermutation for n out of range.
func Repartition(t *TensorMap, n int, opts ...Option) (*TensorMap, error) {
	if t == nil {
		return nil, fmt.Errorf("Repartition: %w", ErrNilTensor)
	}
	total := t.cod.Len() + t.dom.Len()
	if n < 0 || n > total {
		return nil, fmt.Errorf("Repartition: boundary %d of %d: %w", n, total, ErrInvalidPermutation)
	}

	p1 := make([]int, n)
	for i := range p1 {
		p1[i] = i
	}
	p2 := make([]int, total-n)
	for i := range p2 {
		p2[i] = n + i
	}

	return Permute(t, p1, p2, opts...)
}

// InversePermutation returns the split (q1, q2) undoing (p1, p2) on a map
// with n1 original codomain legs: Permute(Permute(t, p1, p2), q1, q2)
// restores t. ErrInvalidPermutation when (p1, p2) is not a partition.
func InversePermutation(p1, p2 []int, n1 int) (q1, q2 []int, err error) {
	total := len(p1) + len(p2)
	if n1 < 0 || n1 > total {
		return nil, nil, fmt.Errorf("InversePermutation: n1 %d of %d: %w", n1, total, ErrInvalidPermutation)
	}

	// pos[old leg] = its position in the permuted combined order.
	pos := make([]int, total)
	for i := range pos {
		pos[i] = -1
	}
	for j, leg := range p1 {
		if leg < 0 || leg >= total || pos[leg] != -1 {
			return nil, nil, fmt.Errorf("InversePermutation: leg %d: %w", leg, ErrInvalidPermutation)
		}
		pos[leg] = j
	}
	for j, leg := range p2 {
		if leg < 0 || leg >= total || pos[leg] != -1 {
			return nil, nil, fmt.Errorf("InversePermutation: leg %d: %w", leg, ErrInvalidPermutation)
		}
		pos[leg] = len(p1) + j
	}

	q1 = pos[:n1:n1]
	q2 = pos[n1:]

	return q1, q2, nil
}

// isIdentitySplit reports whether (p1, p2) keeps every leg in place.
func isIdentitySplit(p1, p2 []int, n1 int) bool {
	if len(p1) != n1 {
		return false
	}
	for i, leg := range p1 {
		if leg != i {
			return false
		}
	}
	for i, leg := range p2 {
		if leg != n1+i {
			return false
		}
	}

	return true
}

// transposeTrivial moves the single trivial-sector block of t into out as
// one plain multidimensional transpose.
func (t *TensorMap) transposeTrivial(out *TensorMap, perm []int, newN1 int) {
	c := sector.Sector(sector.Trivial{})
	src, _ := t.store.slice(c)
	_, srcCols, _ := t.store.shape(c)

	rr := t.rows[c].ranges[0]
	cr := t.cols[c].ranges[0]
	pair := fusion.WeightedPair{
		Row:   out.rows[c].ranges[0].tree,
		Col:   out.cols[c].ranges[0].tree,
		Coeff: 1,
	}
	// Target ranges cover the whole block; offsets are zero by layout.
	_ = out.accumulatePair(src, srcCols, rr, cr, pair, perm, newN1)
}

// accumulatePair adds pair.Coeff times the (rr, cr) subblock — read as a
// multidimensional array over the combined old legs — into the
// (pair.Row, pair.Col) subblock of out, with axes reordered by perm.
func (out *TensorMap) accumulatePair(src []float64, srcCols int, rr, cr treeRange,
	pair fusion.WeightedPair, perm []int, newN1 int) error {
	cNew := pair.Row.Coupled
	dst, ok := out.store.slice(cNew)
	if !ok {
		return fmt.Errorf("target sector %s: %w", cNew, ErrNoSuchSector)
	}
	_, dstCols, _ := out.store.shape(cNew)
	drr, ok := out.rows[cNew].rangeFor(pair.Row)
	if !ok {
		return fmt.Errorf("target row tree %s: %w", pair.Row, ErrNoSuchTree)
	}
	dcr, ok := out.cols[cNew].rangeFor(pair.Col)
	if !ok {
		return fmt.Errorf("target column tree %s: %w", pair.Col, ErrNoSuchTree)
	}

	// Combined old dims and their element strides inside the old block.
	nOldRows := len(rr.dims)
	nAxes := nOldRows + len(cr.dims)
	oldDims := make([]int, nAxes)
	oldStride := make([]int, nAxes)
	copy(oldDims, rr.dims)
	copy(oldDims[nOldRows:], cr.dims)
	stride := 1
	for k := nOldRows - 1; k >= 0; k-- {
		oldStride[k] = stride * srcCols
		stride *= oldDims[k]
	}
	stride = 1
	for k := nAxes - 1; k >= nOldRows; k-- {
		oldStride[k] = stride
		stride *= oldDims[k]
	}

	// Target dims/strides in the new combined order (row axes then column
	// axes of the destination subblock).
	dims := make([]int, nAxes)
	srcStride := make([]int, nAxes)
	dstStride := make([]int, nAxes)
	for m, k := range perm {
		dims[m] = oldDims[k]
		srcStride[m] = oldStride[k]
	}
	stride = 1
	for m := newN1 - 1; m >= 0; m-- {
		dstStride[m] = stride * dstCols
		stride *= dims[m]
	}
	stride = 1
	for m := nAxes - 1; m >= newN1; m-- {
		dstStride[m] = stride
		stride *= dims[m]
	}

	srcOff := rr.offset*srcCols + cr.offset
	dstOff := drr.offset*dstCols + dcr.offset
	accumulateStrided(dst, src, dstOff, srcOff, dims, dstStride, srcStride, pair.Coeff)

	return nil
}

// accumulateStrided performs dst[…] += coeff·src[…] over a multidimensional
// odometer: dims in destination order, per-axis strides for both sides.
// The last axis runs fastest; offsets advance incrementally.
func accumulateStrided(dst, src []float64, dstOff, srcOff int, dims, dstStride, srcStride []int, coeff float64) {
	n := len(dims)
	if n == 0 {
		dst[dstOff] += coeff * src[srcOff]

		return
	}

	idx := make([]int, n)
	for {
		dst[dstOff] += coeff * src[srcOff]

		ax := n - 1
		for ax >= 0 {
			idx[ax]++
			dstOff += dstStride[ax]
			srcOff += srcStride[ax]
			if idx[ax] < dims[ax] {
				break
			}
			idx[ax] = 0
			dstOff -= dstStride[ax] * dims[ax]
			srcOff -= srcStride[ax] * dims[ax]
			ax--
		}
		if ax < 0 {
			return
		}
	}
}
