// Package fusion: tree-pair permutation — the recoupling seam between the
// symmetry layer and the tensor engine's index-permutation loop.
package fusion

import (
	"errors"

	"github.com/katalvlaran/symtensor/sector"
)

// ErrBadPermutation is returned when (p1, p2) is not an exact partition of
// the combined legs of the tree pair.
var ErrBadPermutation = errors.New("fusion: permutation is not a partition of the combined legs")

// WeightedPair is one term of the expansion of an old (row, column) tree
// pair in the new basis: Coeff · |Row⟩⟨Col|.
type WeightedPair struct {
	// Row is the new codomain (row) tree.
	Row Tree
	// Col is the new domain (column) tree.
	Col Tree
	// Coeff is the recoupling coefficient of the term.
	Coeff float64
}

// Recoupler supplies recoupling/braiding coefficients for a non-abelian
// symmetry. A non-abelian sector type implements this on its own values to
// unlock index permutation; abelian symmetries never need it (the engine
// computes their single target pair directly).
type Recoupler interface {
	// PermutePair expands the pair (f1, f2) after the legs are repartitioned
	// by (p1, p2), returning the weighted new-basis pairs. The combined-leg
	// convention matches fusion.PermutePair below.
	PermutePair(f1, f2 Tree, p1, p2 []int) ([]WeightedPair, error)
}

// PermutePair re-expresses the tree pair (f1, f2) after moving legs across
// the domain/codomain boundary.
//
// Combined-leg convention (shared with the tensor engine):
//   - legs 0…N1−1 are f1.Uncoupled (codomain side, sectors as stored);
//   - legs N1…N1+N2−1 are f2.Uncoupled dualized (a domain leg viewed from
//     the codomain side carries the dual sector);
//   - p1 lists the combined legs forming the new codomain, in order;
//   - p2 lists the combined legs forming the new domain, in order; their
//     sectors are dualized back when the new column tree is built.
//
// Abelian symmetries admit exactly one target pair with coefficient 1
// (shipped sectors are bosonic, so no braiding phases arise); the pair is
// built here without consulting the symmetry. Non-abelian symmetries
// delegate to the coupled sector's Recoupler; absence is ErrNoRecoupler.
//
// Errors: ErrBadTree when f1, f2 do not share a coupled sector or are
// empty on both sides; ErrBadPermutation on a malformed partition.
// Complexity (abelian): O(n) with n = N1+N2.
func PermutePair(f1, f2 Tree, p1, p2 []int) ([]WeightedPair, error) {
	// Stage 1: validate the pair.
	n1, n2 := f1.Arity(), f2.Arity()
	if n1+n2 == 0 {
		return nil, ErrBadTree
	}
	if f1.Coupled.Compare(f2.Coupled) != 0 {
		return nil, ErrBadTree
	}

	// Stage 2: validate the partition: every combined leg exactly once.
	total := n1 + n2
	if len(p1)+len(p2) != total {
		return nil, ErrBadPermutation
	}
	seen := make([]bool, total)
	for _, p := range [][]int{p1, p2} {
		for _, leg := range p {
			if leg < 0 || leg >= total || seen[leg] {
				return nil, ErrBadPermutation
			}
			seen[leg] = true
		}
	}

	// Stage 3: dispatch on fusion style.
	if f1.Coupled.FusionStyle() != sector.Abelian {
		rec, ok := f1.Coupled.(Recoupler)
		if !ok {
			return nil, ErrNoRecoupler
		}

		return rec.PermutePair(f1, f2, p1, p2)
	}

	// Abelian fast path: the moved sector tuple determines the single target
	// pair; the coefficient is 1.
	combined := make([]sector.Sector, 0, total)
	combined = append(combined, f1.Uncoupled...)
	for _, s := range f2.Uncoupled {
		combined = append(combined, s.Dual())
	}

	rowUnc := make([]sector.Sector, len(p1))
	for i, leg := range p1 {
		rowUnc[i] = combined[leg]
	}
	colUnc := make([]sector.Sector, len(p2))
	for i, leg := range p2 {
		colUnc[i] = combined[leg].Dual()
	}

	unit := combined[0].One()
	row := abelianTree(rowUnc, unit)
	col := abelianTree(colUnc, unit)
	if row.Coupled.Compare(col.Coupled) != 0 {
		// Cannot happen for a charge-conserving map; guard against foreign
		// Recoupler implementations feeding inconsistent trees back in.
		return nil, ErrBadTree
	}

	return []WeightedPair{{Row: row, Col: col, Coeff: 1}}, nil
}

// abelianTree builds the unique left-canonical tree of an abelian tuple.
// The unit witness covers the empty tuple.
func abelianTree(uncoupled []sector.Sector, unit sector.Sector) Tree {
	n := len(uncoupled)
	if n == 0 {
		return Tree{Coupled: unit}
	}

	cur := uncoupled[0]
	var inner []sector.Sector
	if n > 2 {
		inner = make([]sector.Sector, 0, n-2)
	}
	var i int
	for i = 1; i < n; i++ {
		cur = cur.Fuse(uncoupled[i])[0]
		if i < n-1 {
			inner = append(inner, cur)
		}
	}

	return Tree{Uncoupled: cloneTuple(uncoupled), Inner: inner, Coupled: cur}
}
