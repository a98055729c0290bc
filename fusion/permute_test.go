package fusion_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/symtensor/fusion"
	"github.com/katalvlaran/symtensor/sector"
)

// u1Pair builds the unique (row, col) tree pair of a charge-conserving map
// with the given codomain and domain charges.
func u1Pair(t *testing.T, rowCharges, colCharges []int) (fusion.Tree, fusion.Tree) {
	t.Helper()

	row := make([]sector.Sector, len(rowCharges))
	for i, c := range rowCharges {
		row[i] = sector.U1{Charge: c}
	}
	col := make([]sector.Sector, len(colCharges))
	for i, c := range colCharges {
		col[i] = sector.U1{Charge: c}
	}

	coupled := foldU1(rowCharges)
	require.Equal(t, coupled, foldU1(colCharges), "pair must share a coupled sector")

	rows, err := fusion.Trees(row, coupled)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	cols, err := fusion.Trees(col, coupled)
	require.NoError(t, err)
	require.Len(t, cols, 1)

	return rows[0], cols[0]
}

// TestPermutePair_AbelianSingleton: an abelian pair expands into exactly one
// target pair with coefficient 1, and the target trees are self-consistent.
func TestPermutePair_AbelianSingleton(t *testing.T) {
	// Map with codomain charges (1, -1) and domain charges (2, -2);
	// combined legs: [+1, -1, -2, +2] (domain legs enter dualized).
	f1, f2 := u1Pair(t, []int{1, -1}, []int{2, -2})

	// Move domain leg 0 (combined leg 2) into the codomain, codomain leg 1
	// (combined leg 1) into the domain.
	pairs, err := fusion.PermutePair(f1, f2, []int{0, 2}, []int{1, 3})
	require.NoError(t, err)
	require.Len(t, pairs, 1, "abelian expansion is a singleton")

	p := pairs[0]
	assert.Equal(t, 1.0, p.Coeff, "bosonic abelian coefficient is 1")
	assert.Equal(t, []sector.Sector{sector.U1{Charge: 1}, sector.U1{Charge: -2}},
		p.Row.Uncoupled, "new codomain sectors follow p1 over the combined legs")
	assert.Equal(t, []sector.Sector{sector.U1{Charge: 1}, sector.U1{Charge: -2}},
		p.Col.Uncoupled, "new domain sectors are re-dualized")
	assert.Equal(t, 0, p.Row.Coupled.Compare(p.Col.Coupled), "pair shares a coupled sector")
	assert.Equal(t, sector.Sector(sector.U1{Charge: -1}), p.Row.Coupled, "1 + (-2) = -1")
	require.NoError(t, p.Row.Validate())
	require.NoError(t, p.Col.Validate())
}

// TestPermutePair_FullTranspose moves every leg across the boundary: the new
// codomain is the dualized old domain and vice versa.
func TestPermutePair_FullTranspose(t *testing.T) {
	f1, f2 := u1Pair(t, []int{1}, []int{1})

	pairs, err := fusion.PermutePair(f1, f2, []int{1}, []int{0})
	require.NoError(t, err)
	require.Len(t, pairs, 1)

	assert.Equal(t, []sector.Sector{sector.U1{Charge: -1}}, pairs[0].Row.Uncoupled,
		"old domain leg arrives dualized")
	assert.Equal(t, []sector.Sector{sector.U1{Charge: -1}}, pairs[0].Col.Uncoupled,
		"old codomain leg leaves dualized")
}

// TestPermutePair_EmptySide allows an empty target side; the coupled sector
// of the other side then carries the whole fold.
func TestPermutePair_EmptySide(t *testing.T) {
	f1, f2 := u1Pair(t, []int{1, -1}, []int{0})

	pairs, err := fusion.PermutePair(f1, f2, []int{0, 1, 2}, nil)
	require.NoError(t, err)
	require.Len(t, pairs, 1)

	assert.Equal(t, 3, pairs[0].Row.Arity(), "all legs land in the codomain")
	assert.Equal(t, 0, pairs[0].Col.Arity(), "domain side is empty")
	assert.Equal(t, sector.Sector(sector.U1{}), pairs[0].Col.Coupled,
		"empty side couples to the unit")
}

// TestPermutePair_Errors covers the failure taxonomy.
func TestPermutePair_Errors(t *testing.T) {
	f1, f2 := u1Pair(t, []int{1}, []int{1})

	_, err := fusion.PermutePair(f1, f2, []int{0}, []int{0})
	assert.ErrorIs(t, err, fusion.ErrBadPermutation, "duplicate leg")

	_, err = fusion.PermutePair(f1, f2, []int{0}, nil)
	assert.ErrorIs(t, err, fusion.ErrBadPermutation, "missing leg")

	_, err = fusion.PermutePair(f1, f2, []int{0, 2}, []int{1}[:0])
	assert.ErrorIs(t, err, fusion.ErrBadPermutation, "out-of-range leg")

	// Trees with differing coupled sectors are not a pair.
	g1, _ := u1Pair(t, []int{2}, []int{2})
	_, err = fusion.PermutePair(g1, f2, []int{0}, []int{1})
	assert.ErrorIs(t, err, fusion.ErrBadTree, "coupled sectors must agree")
}
