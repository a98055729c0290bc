package fusion_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/symtensor/fusion"
	"github.com/katalvlaran/symtensor/sector"
)

// TestTrees_Degenerate covers the zero- and one-leg rules.
func TestTrees_Degenerate(t *testing.T) {
	vac, charged := sector.U1{}, sector.U1{Charge: 1}

	// Empty tuple: one empty tree into the unit, none elsewhere.
	ts, err := fusion.Trees(nil, vac)
	require.NoError(t, err)
	require.Len(t, ts, 1, "empty tuple fuses to the vacuum exactly one way")
	assert.Equal(t, 0, ts[0].Arity(), "empty tree has no legs")

	ts, err = fusion.Trees(nil, charged)
	require.NoError(t, err)
	assert.Empty(t, ts, "empty tuple cannot fuse to a charged sector")

	// One leg: a leaf tree iff the leg equals the coupling.
	ts, err = fusion.Trees([]sector.Sector{charged}, charged)
	require.NoError(t, err)
	require.Len(t, ts, 1, "singleton tuple matches its own sector")
	assert.Empty(t, ts[0].Inner, "leaf tree carries no inner lines")

	ts, err = fusion.Trees([]sector.Sector{charged}, vac)
	require.NoError(t, err)
	assert.Empty(t, ts, "singleton tuple cannot change its sector")
}

// TestTrees_AbelianUniqueness: an abelian tuple admits exactly one tree
// into its fold and zero into anything else.
func TestTrees_AbelianUniqueness(t *testing.T) {
	tuple := []sector.Sector{
		sector.U1{Charge: 1}, sector.U1{Charge: -2}, sector.U1{Charge: 2},
	}

	ts, err := fusion.Trees(tuple, sector.U1{Charge: 1})
	require.NoError(t, err)
	require.Len(t, ts, 1, "abelian tuple has a unique fusion tree")

	// Left fold inner line: 1 + (-2) = -1.
	want := []sector.Sector{sector.U1{Charge: -1}}
	if diff := cmp.Diff(want, ts[0].Inner); diff != "" {
		t.Fatalf("inner lines mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, ts[0].Validate(), "enumerated trees must validate")

	ts, err = fusion.Trees(tuple, sector.U1{Charge: 0})
	require.NoError(t, err)
	assert.Empty(t, ts, "fold of the tuple is +1, not 0")
}

// TestTrees_Z2Pair: both Z2 tuples fusing to even, with explicit trees.
func TestTrees_Z2Pair(t *testing.T) {
	odd := sector.Z2(true)

	ts, err := fusion.Trees([]sector.Sector{odd, odd}, sector.Z2(false))
	require.NoError(t, err)
	require.Len(t, ts, 1, "1x1=0 in Z2")
	assert.Empty(t, ts[0].Inner, "two-leg trees have no inner line")

	ts, err = fusion.Trees([]sector.Sector{odd, odd}, odd)
	require.NoError(t, err)
	assert.Empty(t, ts, "1x1 never fuses to 1 in Z2")
}

// TestTrees_MixedSymmetry rejects tuples that mix symmetry groups.
func TestTrees_MixedSymmetry(t *testing.T) {
	_, err := fusion.Trees([]sector.Sector{sector.U1{}, sector.Z2(false)}, sector.U1{})
	assert.ErrorIs(t, err, fusion.ErrMixedSymmetry, "mixed tuple must be rejected")
}

// TestCouplings verifies attainable folds in canonical order, deduplicated.
func TestCouplings(t *testing.T) {
	cs, err := fusion.Couplings([]sector.Sector{
		sector.U1{Charge: 1}, sector.U1{Charge: -1},
	})
	require.NoError(t, err)
	assert.Equal(t, []sector.Sector{sector.U1{}}, cs, "1 + (-1) = 0, single coupling")

	// Empty tuple: no symmetry witness, callers supply the unit themselves.
	cs, err = fusion.Couplings(nil)
	require.NoError(t, err)
	assert.Nil(t, cs, "empty tuple yields no couplings")
}

// TestTree_CompareAndKey pins the canonical tree order and key stability.
func TestTree_CompareAndKey(t *testing.T) {
	mk := func(charges ...int) fusion.Tree {
		tuple := make([]sector.Sector, len(charges))
		for i, c := range charges {
			tuple[i] = sector.U1{Charge: c}
		}
		ts, err := fusion.Trees(tuple, foldU1(charges))
		require.NoError(t, err)
		require.Len(t, ts, 1)

		return ts[0]
	}

	a, b := mk(0, 1), mk(1, 0)
	assert.Equal(t, 0, a.Compare(a), "tree equals itself")
	assert.Equal(t, -1, a.Compare(b), "tuples order lexicographically")
	assert.Equal(t, 1, b.Compare(a), "order is antisymmetric")
	assert.NotEqual(t, a.Key(), b.Key(), "distinct trees have distinct keys")
	assert.Equal(t, a.Key(), mk(0, 1).Key(), "keys are stable")
}

// TestTree_Validate rejects structurally broken trees.
func TestTree_Validate(t *testing.T) {
	// Wrong inner length.
	bad := fusion.Tree{
		Uncoupled: []sector.Sector{sector.U1{Charge: 1}, sector.U1{Charge: 1}},
		Inner:     []sector.Sector{sector.U1{}},
		Coupled:   sector.U1{Charge: 2},
	}
	assert.ErrorIs(t, bad.Validate(), fusion.ErrBadTree, "spurious inner line")

	// Fold mismatch.
	bad = fusion.Tree{
		Uncoupled: []sector.Sector{sector.U1{Charge: 1}, sector.U1{Charge: 1}},
		Coupled:   sector.U1{Charge: 0},
	}
	assert.ErrorIs(t, bad.Validate(), fusion.ErrBadTree, "1+1 never folds to 0")

	// Empty tree into a charged sector.
	bad = fusion.Tree{Coupled: sector.U1{Charge: 3}}
	assert.ErrorIs(t, bad.Validate(), fusion.ErrBadTree, "empty fold must hit the unit")
}

// foldU1 folds integer charges additively into the coupled U1 sector.
func foldU1(charges []int) sector.U1 {
	sum := 0
	for _, c := range charges {
		sum += c
	}

	return sector.U1{Charge: sum}
}
