// Package space: the Product value type — an ordered tuple of graded spaces
// forming the codomain or domain of a tensor map — and the Fuse collapse.
package space

import (
	"strings"

	"github.com/katalvlaran/symtensor/fusion"
	"github.com/katalvlaran/symtensor/sector"
)

// Product is an ordered tuple of symmetry-uniform spaces. The empty product
// is legal (one side of a full repartition): its dimension is 1 and its only
// attainable coupled sector is the symmetry's unit — which it cannot name
// itself, so Unit reports absence and the peer side supplies it.
type Product struct {
	spaces []Space
}

// Prod builds a product from the given spaces, validating that all of them
// grade by one symmetry. Spaces are copied; the input slice is not retained.
func Prod(spaces ...Space) (Product, error) {
	if len(spaces) > 1 {
		tag := spaces[0].Symmetry()
		for _, v := range spaces[1:] {
			if v.Symmetry() != tag {
				return Product{}, ErrMixedSymmetry
			}
		}
	}

	vs := make([]Space, len(spaces))
	copy(vs, spaces)

	return Product{spaces: vs}, nil
}

// Len returns the number of legs.
func (p Product) Len() int { return len(p.spaces) }

// At returns the i-th space. Panics on out-of-range i (programmer error).
func (p Product) At(i int) Space { return p.spaces[i] }

// Dim returns the total dimension: the product of the legs' dimensions.
// The empty product has dimension 1.
func (p Product) Dim() int {
	d := 1
	for _, v := range p.spaces {
		d *= v.Dim()
	}

	return d
}

// Unit returns the unit sector of the product's symmetry. The second result
// is false for the empty product, which carries no symmetry witness.
func (p Product) Unit() (sector.Sector, bool) {
	if len(p.spaces) == 0 {
		return nil, false
	}

	return p.spaces[0].Sectors()[0].One(), true
}

// Equal reports structural equality: same arity, legwise Space.Equal.
func (p Product) Equal(q Product) bool {
	if len(p.spaces) != len(q.spaces) {
		return false
	}
	for i, v := range p.spaces {
		if !v.Equal(q.spaces[i]) {
			return false
		}
	}

	return true
}

// EachSectorTuple walks every sector tuple of the product in lexicographic
// canonical order (leftmost leg slowest) and calls fn on each. The tuple
// slice is reused between calls; fn must copy it to retain it. A non-nil
// error from fn aborts the walk and is returned verbatim.
//
// The empty product yields exactly one empty tuple.
//
// Complexity: O(Π #sectors(leg)) calls; O(N) scratch.
func (p Product) EachSectorTuple(fn func(tuple []sector.Sector) error) error {
	n := len(p.spaces)
	if n == 0 {
		return fn(nil)
	}

	// Stage 1: fix the per-leg canonical sector lists once.
	choices := make([][]sector.Sector, n)
	for i, v := range p.spaces {
		choices[i] = v.Sectors()
	}

	// Stage 2: odometer walk, last leg fastest.
	idx := make([]int, n)
	tuple := make([]sector.Sector, n)
	for {
		for i := 0; i < n; i++ {
			tuple[i] = choices[i][idx[i]]
		}
		if err := fn(tuple); err != nil {
			return err
		}

		leg := n - 1
		for leg >= 0 {
			idx[leg]++
			if idx[leg] < len(choices[leg]) {
				break
			}
			idx[leg] = 0
			leg--
		}
		if leg < 0 {
			return nil
		}
	}
}

// BlockSectors returns the attainable coupled sectors of the product in
// canonical order. The empty product returns nil (see Unit).
//
// Complexity: O(#legs · #frontier · #sectors) fusion-rule lookups.
func (p Product) BlockSectors() []sector.Sector {
	if len(p.spaces) == 0 {
		return nil
	}

	// Iterative frontier fold: after k legs the frontier holds every
	// attainable partial coupling, deduplicated and sorted.
	frontier := p.spaces[0].Sectors()
	for _, v := range p.spaces[1:] {
		legSectors := v.Sectors()
		var next []sector.Sector
		for _, cur := range frontier {
			for _, s := range legSectors {
				next = append(next, cur.Fuse(s)...)
			}
		}
		sector.Sort(next)
		frontier = sector.Dedup(next)
	}

	return frontier
}

// BlockDim returns the total block dimension of coupled sector c: the sum
// over all sector tuples of (#fusion trees into c) × (product of the legs'
// multiplicities). This is exactly the row (or column) count of the dense
// block a tensor map stores for c.
//
// The empty product contributes dimension 1 to the unit sector, 0 elsewhere.
func (p Product) BlockDim(c sector.Sector) int {
	if len(p.spaces) == 0 {
		if c.Compare(c.One()) == 0 {
			return 1
		}

		return 0
	}

	var total int
	_ = p.EachSectorTuple(func(tuple []sector.Sector) error {
		// CountTrees errors only on mixed symmetries, which Prod rules out.
		nt, err := fusion.CountTrees(tuple, c)
		if err != nil || nt == 0 {
			return nil
		}
		mult := 1
		for i, s := range tuple {
			mult *= p.spaces[i].SectorDim(s)
		}
		total += nt * mult

		return nil
	})

	return total
}

// Fuse collapses the product into the single equivalent space: one grade
// (c, BlockDim(c)) per attainable coupled sector. The result is Euclidean
// iff every leg is; it is never a dual space. ErrEmptySpace for the empty
// product (no symmetry witness).
func Fuse(p Product) (Space, error) {
	if p.Len() == 0 {
		return Space{}, ErrEmptySpace
	}

	style := Euclidean
	for _, v := range p.spaces {
		if v.Style() == Generic {
			style = Generic
		}
	}

	var grades []Grade
	for _, c := range p.BlockSectors() {
		grades = append(grades, Grade{Sector: c, Dim: p.BlockDim(c)})
	}

	return build(grades, style)
}

// String renders the product as "(V1 ⊗ V2 ⊗ …)"; "()" for the empty product.
func (p Product) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, v := range p.spaces {
		if i > 0 {
			sb.WriteString(" ⊗ ")
		}
		sb.WriteString(v.String())
	}
	sb.WriteByte(')')

	return sb.String()
}
