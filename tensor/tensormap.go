// Package tensor: the TensorMap entity — construction, validation and the
// aliasing block/subblock accessors.
//
// Lifecycle contract: a TensorMap is validated once at construction (shapes
// against block dims, payload finiteness), mutated in place thereafter, and
// never resized. All accessors return views into the owning arena.
package tensor

import (
	"fmt"
	"math/rand"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/symtensor/fusion"
	"github.com/katalvlaran/symtensor/sector"
	"github.com/katalvlaran/symtensor/space"
)

// TensorMap is a linear map domain → codomain storing one dense block per
// attainable coupled sector (invariant I1) under the canonical layout
// (invariant I2). The zero value is not usable; build via the constructors.
type TensorMap struct {
	cod space.Product
	dom space.Product

	rows map[sector.Sector]*sideLayout // codomain layout per coupled sector
	cols map[sector.Sector]*sideLayout // domain layout per coupled sector

	store blockStore
}

// New builds a zero tensor map with the given codomain and domain.
//
// Validation (fail-fast, in order):
//   - at least one leg overall (N1+N2 >= 1);
//   - both sides grade by one symmetry (an empty side adopts the peer's);
//   - every Euclidean/Generic mix is allowed here — style is checked by the
//     operations that need an inner product, not at construction.
//
// Blocks exist exactly for the coupled sectors attainable from BOTH sides
// and are allocated zero-filled in one arena, in canonical sector order.
//
// Complexity: O(#sectors · #tuples · #trees) layout enumeration.
func New(codomain, domain space.Product) (*TensorMap, error) {
	// Stage 1: structural validation.
	if codomain.Len()+domain.Len() == 0 {
		return nil, fmt.Errorf("New: no legs on either side: %w", ErrSpaceMismatch)
	}
	rowUnit, rowOK := codomain.Unit()
	colUnit, colOK := domain.Unit()
	if rowOK && colOK && rowUnit.Symmetry() != colUnit.Symmetry() {
		return nil, fmt.Errorf("New: codomain %s vs domain %s: %w",
			rowUnit.Symmetry(), colUnit.Symmetry(), ErrSpaceMismatch)
	}

	// Stage 2: attainable coupled sectors — the I1 intersection. An empty
	// side reaches exactly the peer symmetry's unit sector.
	rowSecs := codomain.BlockSectors()
	if !rowOK {
		rowSecs = []sector.Sector{colUnit}
	}
	colSecs := domain.BlockSectors()
	if !colOK {
		colSecs = []sector.Sector{rowUnit}
	}
	shared := intersectSorted(rowSecs, colSecs)

	// Stage 3: canonical layouts and the arena.
	t := &TensorMap{
		cod:  codomain,
		dom:  domain,
		rows: make(map[sector.Sector]*sideLayout, len(shared)),
		cols: make(map[sector.Sector]*sideLayout, len(shared)),
	}
	for _, c := range shared {
		t.rows[c] = buildSideLayout(codomain, c)
		t.cols[c] = buildSideLayout(domain, c)
	}
	t.store = newBlockStore(shared,
		func(c sector.Sector) int { return t.rows[c].total },
		func(c sector.Sector) int { return t.cols[c].total },
	)

	return t, nil
}

// FromBlocks builds a tensor map from a per-sector dictionary. Sectors
// absent from the dictionary stay zero; foreign sectors are rejected.
//
// Errors: ErrNoSuchSector (unattainable key), ErrShape (block shape vs
// block dims), ErrNonFinite (NaN/Inf payload). Block data is copied.
func FromBlocks(codomain, domain space.Product, blocks map[sector.Sector]*mat.Dense) (*TensorMap, error) {
	t, err := New(codomain, domain)
	if err != nil {
		return nil, err
	}

	// Deterministic validation order: canonical sectors first, then any
	// foreign key (map iteration only to detect leftovers).
	consumed := 0
	for _, c := range t.store.sectors {
		blk, ok := blocks[c]
		if !ok {
			continue
		}
		consumed++

		rows, cols, _ := t.store.shape(c)
		br, bc := blk.Dims()
		if br != rows || bc != cols {
			return nil, fmt.Errorf("FromBlocks: sector %s wants %dx%d, got %dx%d: %w",
				c, rows, cols, br, bc, ErrShape)
		}

		dst, _ := t.store.view(c)
		dst.Copy(blk)
	}
	if consumed != len(blocks) {
		for c := range blocks {
			if _, ok := t.store.index[c]; !ok {
				return nil, fmt.Errorf("FromBlocks: sector %s: %w", c, ErrNoSuchSector)
			}
		}
	}

	if !allFinite(t.store.data) {
		return nil, fmt.Errorf("FromBlocks: %w", ErrNonFinite)
	}

	return t, nil
}

// FromRaw builds a tensor map over trivially graded spaces from a dense
// row-major payload of shape dim(codomain) × dim(domain); a payload holding
// a higher-rank tensor lists its codomain axes first, row-major — exactly
// the reshape Raw returns.
//
// Errors: ErrNotTrivial (structured symmetry), ErrShape (payload length),
// ErrNonFinite. The payload is copied.
func FromRaw(codomain, domain space.Product, data []float64) (*TensorMap, error) {
	t, err := New(codomain, domain)
	if err != nil {
		return nil, err
	}
	if !t.trivial() {
		return nil, fmt.Errorf("FromRaw: %w", ErrNotTrivial)
	}
	if len(data) != len(t.store.data) {
		return nil, fmt.Errorf("FromRaw: payload %d, layout %d: %w",
			len(data), len(t.store.data), ErrShape)
	}
	if !allFinite(data) {
		return nil, fmt.Errorf("FromRaw: %w", ErrNonFinite)
	}
	copy(t.store.data, data)

	return t, nil
}

// Generate builds a tensor map by calling fn once per attainable coupled
// sector, in canonical order, with a mutable zero-filled block view.
// A non-nil error from fn aborts construction and is returned verbatim.
func Generate(codomain, domain space.Product, fn func(c sector.Sector, block *mat.Dense) error) (*TensorMap, error) {
	t, err := New(codomain, domain)
	if err != nil {
		return nil, err
	}
	for _, c := range t.store.sectors {
		blk, _ := t.store.view(c)
		if err = fn(c, blk); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// Random builds a tensor map with standard-normal entries. A nil rng means
// the deterministic default stream (fixed seed): same spaces, same tensor,
// every run.
func Random(codomain, domain space.Product, rng *rand.Rand) (*TensorMap, error) {
	t, err := New(codomain, domain)
	if err != nil {
		return nil, err
	}
	r := defaultRNG(rng)
	for i := range t.store.data {
		t.store.data[i] = r.NormFloat64()
	}

	return t, nil
}

// Identity builds the identity endomorphism of the product p.
func Identity(p space.Product) (*TensorMap, error) {
	t, err := New(p, p)
	if err != nil {
		return nil, err
	}
	for _, c := range t.store.sectors {
		blk, _ := t.store.view(c)
		n, _ := blk.Dims()
		for i := 0; i < n; i++ {
			blk.Set(i, i, 1)
		}
	}

	return t, nil
}

// Clone deep-copies the tensor map: fresh arena, shared immutable layout.
func (t *TensorMap) Clone() *TensorMap {
	return &TensorMap{
		cod:   t.cod,
		dom:   t.dom,
		rows:  t.rows,
		cols:  t.cols,
		store: t.store.clone(),
	}
}

// Codomain returns the codomain product.
func (t *TensorMap) Codomain() space.Product { return t.cod }

// Domain returns the domain product.
func (t *TensorMap) Domain() space.Product { return t.dom }

// Sectors returns the attainable coupled sectors in canonical order.
// The slice is fresh; callers may keep it.
func (t *TensorMap) Sectors() []sector.Sector {
	out := make([]sector.Sector, len(t.store.sectors))
	copy(out, t.store.sectors)

	return out
}

// HasSector reports whether c owns a block.
func (t *TensorMap) HasSector(c sector.Sector) bool {
	_, ok := t.store.index[c]

	return ok
}

// Block returns the mutable dense block of coupled sector c, aliasing the
// arena. ErrNoSuchSector when c is unattainable.
func (t *TensorMap) Block(c sector.Sector) (*mat.Dense, error) {
	blk, ok := t.store.view(c)
	if !ok {
		return nil, fmt.Errorf("Block: sector %s: %w", c, ErrNoSuchSector)
	}

	return blk, nil
}

// EachBlock calls fn for every (sector, block) pair in canonical sector
// order. The walk is restartable — call it as often as needed — and the
// block views alias the arena. A non-nil error from fn aborts the walk.
func (t *TensorMap) EachBlock(fn func(c sector.Sector, block *mat.Dense) error) error {
	for _, c := range t.store.sectors {
		blk, _ := t.store.view(c)
		if err := fn(c, blk); err != nil {
			return err
		}
	}

	return nil
}

// Subblock returns the view of the (f1, f2) fusion-tree pair inside
// block(f1.Coupled): the rows of f1's range and the columns of f2's range.
//
// Errors: ErrMismatchedCoupledSector when f1.Coupled != f2.Coupled,
// ErrNoSuchSector when the pair's sector owns no block, ErrNoSuchTree when
// either tree is absent from the canonical layout.
func (t *TensorMap) Subblock(f1, f2 fusion.Tree) (*mat.Dense, error) {
	if f1.Coupled.Symmetry() != f2.Coupled.Symmetry() || f1.Coupled.Compare(f2.Coupled) != 0 {
		return nil, fmt.Errorf("Subblock: %s vs %s: %w",
			f1.Coupled, f2.Coupled, ErrMismatchedCoupledSector)
	}
	c := f1.Coupled

	blk, ok := t.store.view(c)
	if !ok {
		return nil, fmt.Errorf("Subblock: sector %s: %w", c, ErrNoSuchSector)
	}
	rr, ok := t.rows[c].rangeFor(f1)
	if !ok {
		return nil, fmt.Errorf("Subblock: row tree %s: %w", f1, ErrNoSuchTree)
	}
	cr, ok := t.cols[c].rangeFor(f2)
	if !ok {
		return nil, fmt.Errorf("Subblock: column tree %s: %w", f2, ErrNoSuchTree)
	}

	return blk.Slice(rr.offset, rr.offset+rr.span, cr.offset, cr.offset+cr.span).(*mat.Dense), nil
}

// SubblockFor addresses a subblock by its uncoupled sector tuples instead
// of explicit trees — the natural accessor for multiplicity-free abelian
// symmetries, where a tuple pins exactly one tree. Tuples admitting zero or
// several trees yield ErrNoSuchTree.
func (t *TensorMap) SubblockFor(rowTuple, colTuple []sector.Sector) (*mat.Dense, error) {
	f1, err := t.uniqueTree(rowTuple, colTuple)
	if err != nil {
		return nil, err
	}
	f2, err := t.uniqueTree(colTuple, rowTuple)
	if err != nil {
		return nil, err
	}

	return t.Subblock(f1, f2)
}

// uniqueTree resolves the single fusion tree of tuple; peer supplies the
// coupled sector when tuple is empty (the empty side couples to the unit).
func (t *TensorMap) uniqueTree(tuple, peer []sector.Sector) (fusion.Tree, error) {
	witness := tuple
	if len(witness) == 0 {
		witness = peer
	}
	if len(witness) == 0 {
		return fusion.Tree{}, fmt.Errorf("SubblockFor: both tuples empty: %w", ErrNoSuchTree)
	}

	var coupled sector.Sector
	if len(tuple) == 0 {
		coupled = witness[0].One()
	} else {
		cps, err := fusion.Couplings(tuple)
		if err != nil {
			return fusion.Tree{}, fmt.Errorf("SubblockFor: %w", ErrNoSuchTree)
		}
		if len(cps) != 1 {
			return fusion.Tree{}, fmt.Errorf("SubblockFor: tuple admits %d couplings: %w",
				len(cps), ErrNoSuchTree)
		}
		coupled = cps[0]
	}

	trees, err := fusion.Trees(tuple, coupled)
	if err != nil || len(trees) != 1 {
		return fusion.Tree{}, fmt.Errorf("SubblockFor: tuple admits %d trees: %w",
			len(trees), ErrNoSuchTree)
	}

	return trees[0], nil
}

// Raw returns the whole payload as a single dense view of shape
// dim(codomain) × dim(domain). Valid only over trivially graded spaces,
// where the one block IS the reshaped dense tensor; ErrNotTrivial otherwise.
func (t *TensorMap) Raw() (*mat.Dense, error) {
	if !t.trivial() {
		return nil, fmt.Errorf("Raw: %w", ErrNotTrivial)
	}
	blk, ok := t.store.view(sector.Trivial{})
	if !ok {
		// Unreachable: trivial legs always attain the trivial sector.
		return nil, fmt.Errorf("Raw: %w", ErrNoSuchSector)
	}

	return blk, nil
}

// trivial reports whether every leg is trivially graded.
func (t *TensorMap) trivial() bool {
	for i := 0; i < t.cod.Len(); i++ {
		if !t.cod.At(i).IsTrivial() {
			return false
		}
	}
	for i := 0; i < t.dom.Len(); i++ {
		if !t.dom.At(i).IsTrivial() {
			return false
		}
	}

	return true
}

// blockView implements Morphism: the read-only block hook.
func (t *TensorMap) blockView(c sector.Sector) (mat.Matrix, bool) {
	blk, ok := t.store.view(c)
	if !ok {
		return nil, false
	}

	return blk, true
}

// String renders the map's type and sector census, not its payload.
func (t *TensorMap) String() string {
	var sb strings.Builder
	sb.WriteString("TensorMap(")
	sb.WriteString(t.cod.String())
	sb.WriteString(" ← ")
	sb.WriteString(t.dom.String())
	sb.WriteString("; sectors:")
	for _, c := range t.store.sectors {
		sb.WriteByte(' ')
		sb.WriteString(c.String())
	}
	sb.WriteByte(')')

	return sb.String()
}

// allFinite reports whether every element of data is finite.
func allFinite(data []float64) bool {
	for _, v := range data {
		if !finite(v) {
			return false
		}
	}

	return true
}
