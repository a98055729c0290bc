// Package tensor: canonical block layouts — the realization of invariant I2.
// A sideLayout fixes, per coupled sector, the contiguous row (or column)
// range of every fusion tree of one product. It is a pure function of the
// product value, so any two tensors over equal products agree on every
// offset — the fact composition and addition silently rely on.
package tensor

import (
	"github.com/katalvlaran/symtensor/fusion"
	"github.com/katalvlaran/symtensor/sector"
	"github.com/katalvlaran/symtensor/space"
)

// treeRange is one contiguous run of rows (or columns) inside a block:
// all states of one fusion tree, ordered row-major over the per-leg
// multiplicities of its uncoupled tuple.
type treeRange struct {
	tree   fusion.Tree
	offset int   // first row (column) of the range within the block
	dims   []int // per-leg multiplicities of the tree's uncoupled tuple
	span   int   // product of dims; the range length
}

// sideLayout is the full canonical row (or column) layout of one product
// for one coupled sector: tuples in lexicographic canonical order, trees
// within a tuple in canonical tree order.
type sideLayout struct {
	ranges []treeRange
	index  map[string]int // tree.Key() → position in ranges
	total  int            // Σ span == Product.BlockDim(c)
}

// buildSideLayout enumerates the layout of p for coupled sector c.
// An empty product contributes the single empty tree with span 1; the
// caller guarantees c is then the unit sector.
//
// Complexity: O(#tuples · #trees · N) — run once per (product, sector) at
// construction and cached on the TensorMap.
func buildSideLayout(p space.Product, c sector.Sector) *sideLayout {
	lay := &sideLayout{index: make(map[string]int)}

	if p.Len() == 0 {
		lay.ranges = []treeRange{{tree: fusion.Tree{Coupled: c}, span: 1}}
		lay.index[lay.ranges[0].tree.Key()] = 0
		lay.total = 1

		return lay
	}

	_ = p.EachSectorTuple(func(tuple []sector.Sector) error {
		// Trees errors only on mixed symmetries, which Prod rules out.
		trees, err := fusion.Trees(tuple, c)
		if err != nil || len(trees) == 0 {
			return nil
		}

		dims := make([]int, len(tuple))
		span := 1
		for i, s := range tuple {
			dims[i] = p.At(i).SectorDim(s)
			span *= dims[i]
		}

		for _, tr := range trees {
			lay.index[tr.Key()] = len(lay.ranges)
			lay.ranges = append(lay.ranges, treeRange{
				tree:   tr,
				offset: lay.total,
				dims:   dims,
				span:   span,
			})
			lay.total += span
		}

		return nil
	})

	return lay
}

// rangeFor returns the layout range of tree t, or false when the tree is
// not part of this block's layout.
func (l *sideLayout) rangeFor(t fusion.Tree) (treeRange, bool) {
	i, ok := l.index[t.Key()]
	if !ok {
		return treeRange{}, false
	}

	return l.ranges[i], true
}

// intersectSorted intersects two canonically sorted sector slices.
// Both inputs must share one symmetry; the result keeps canonical order.
func intersectSorted(a, b []sector.Sector) []sector.Sector {
	var out []sector.Sector
	var i, j int
	for i < len(a) && j < len(b) {
		switch c := a[i].Compare(b[j]); {
		case c < 0:
			i++
		case c > 0:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}

	return out
}
