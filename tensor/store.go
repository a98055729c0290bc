// Package tensor: the block store — one float64 arena per tensor map,
// partitioned into per-sector dense blocks (invariant I1). Views returned
// from the store alias the arena; no method ever copies implicitly.
package tensor

import (
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/symtensor/sector"
)

// blockInfo locates one sector's dense block inside the arena.
type blockInfo struct {
	offset int // first arena element of the block
	rows   int
	cols   int
}

// blockStore owns the arena and the sector → block mapping. The sector
// slice fixes the canonical iteration order; insertion order is irrelevant
// and map iteration is never exposed.
type blockStore struct {
	data    []float64
	sectors []sector.Sector
	index   map[sector.Sector]blockInfo
}

// newBlockStore allocates a zero-filled arena for the given sectors with
// the given per-sector shapes. Sectors must arrive in canonical order with
// strictly positive shapes (guaranteed by the attainability intersection).
func newBlockStore(sectors []sector.Sector, rows, cols func(c sector.Sector) int) blockStore {
	s := blockStore{
		sectors: sectors,
		index:   make(map[sector.Sector]blockInfo, len(sectors)),
	}

	var total int
	for _, c := range sectors {
		r, k := rows(c), cols(c)
		s.index[c] = blockInfo{offset: total, rows: r, cols: k}
		total += r * k
	}
	s.data = make([]float64, total)

	return s
}

// view returns the dense block of sector c as a mutable gonum matrix
// aliasing the arena, or false when c has no block.
func (s *blockStore) view(c sector.Sector) (*mat.Dense, bool) {
	bi, ok := s.index[c]
	if !ok {
		return nil, false
	}

	return mat.NewDense(bi.rows, bi.cols, s.data[bi.offset:bi.offset+bi.rows*bi.cols]), true
}

// slice returns the raw arena range of sector c's block (row-major),
// or false when c has no block.
func (s *blockStore) slice(c sector.Sector) ([]float64, bool) {
	bi, ok := s.index[c]
	if !ok {
		return nil, false
	}

	return s.data[bi.offset : bi.offset+bi.rows*bi.cols], true
}

// shape returns the block shape of sector c, or false when c has no block.
func (s *blockStore) shape(c sector.Sector) (rows, cols int, ok bool) {
	bi, ok := s.index[c]

	return bi.rows, bi.cols, ok
}

// clone deep-copies the store: fresh arena, shared immutable sector slice.
func (s *blockStore) clone() blockStore {
	out := blockStore{
		data:    make([]float64, len(s.data)),
		sectors: s.sectors,
		index:   s.index,
	}
	copy(out.data, s.data)

	return out
}
