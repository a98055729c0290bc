package space_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/symtensor/sector"
	"github.com/katalvlaran/symtensor/space"
)

// z2Space builds the ℤ₂-graded Euclidean space with the given even/odd dims.
func z2Space(t *testing.T, even, odd int) space.Space {
	t.Helper()
	v, err := space.New(
		space.Grade{Sector: sector.Z2(false), Dim: even},
		space.Grade{Sector: sector.Z2(true), Dim: odd},
	)
	require.NoError(t, err)

	return v
}

// TestNew_Validation exercises the fail-fast constructor checks in order.
func TestNew_Validation(t *testing.T) {
	_, err := space.New()
	assert.ErrorIs(t, err, space.ErrEmptySpace, "no grades")

	_, err = space.New(space.Grade{Sector: sector.U1{}, Dim: 0})
	assert.ErrorIs(t, err, space.ErrBadDimension, "zero multiplicity")

	_, err = space.New(
		space.Grade{Sector: sector.U1{}, Dim: 1},
		space.Grade{Sector: sector.Z2(true), Dim: 1},
	)
	assert.ErrorIs(t, err, space.ErrMixedSymmetry, "mixed symmetries")

	_, err = space.New(
		space.Grade{Sector: sector.U1{Charge: 1}, Dim: 1},
		space.Grade{Sector: sector.U1{Charge: 1}, Dim: 2},
	)
	assert.ErrorIs(t, err, space.ErrDuplicateSector, "duplicate sector")
}

// TestSpace_Dims verifies total and per-sector dimensions, including absent
// sectors.
func TestSpace_Dims(t *testing.T) {
	v := z2Space(t, 2, 1)

	assert.Equal(t, 3, v.Dim(), "2 even + 1 odd")
	assert.Equal(t, 2, v.SectorDim(sector.Z2(false)), "even multiplicity")
	assert.Equal(t, 1, v.SectorDim(sector.Z2(true)), "odd multiplicity")

	u, err := space.New(space.Grade{Sector: sector.U1{Charge: 5}, Dim: 4})
	require.NoError(t, err)
	assert.Equal(t, 0, u.SectorDim(sector.U1{Charge: 1}), "absent sector has dim 0")
}

// TestSpace_Dual checks the dual translation of sectors and dims, the
// involution property, and order restoration after dual-mapping.
func TestSpace_Dual(t *testing.T) {
	v, err := space.New(
		space.Grade{Sector: sector.U1{Charge: -1}, Dim: 1},
		space.Grade{Sector: sector.U1{Charge: 2}, Dim: 3},
	)
	require.NoError(t, err)

	d := v.Dual()
	assert.True(t, d.IsDual(), "dual flag set")
	assert.Equal(t, 3, d.SectorDim(sector.U1{Charge: -2}), "dual carries -2 where v carries 2")
	assert.Equal(t, 1, d.SectorDim(sector.U1{Charge: 1}), "dual carries 1 where v carries -1")

	// Dual-mapping negates U1 charges; Sectors must still come out ascending.
	assert.Equal(t, []sector.Sector{sector.U1{Charge: -2}, sector.U1{Charge: 1}},
		d.Sectors(), "dual sectors in canonical order")

	assert.True(t, d.Dual().Equal(v), "dual is an involution")
	assert.False(t, d.Equal(v), "a space never equals its dual")
}

// TestSpace_Equal pins structural equality: grading, dual flag and style all
// participate; mere dimension agreement does not suffice.
func TestSpace_Equal(t *testing.T) {
	v := z2Space(t, 2, 1)
	assert.True(t, v.Equal(z2Space(t, 2, 1)), "identical grading")
	assert.False(t, v.Equal(z2Space(t, 1, 2)), "same total dim, different grading")

	g, err := space.NewGeneric(
		space.Grade{Sector: sector.Z2(false), Dim: 2},
		space.Grade{Sector: sector.Z2(true), Dim: 1},
	)
	require.NoError(t, err)
	assert.False(t, v.Equal(g), "style participates in equality")
	assert.Equal(t, space.Generic, g.Style(), "NewGeneric tags the style")
}

// TestNewTrivial covers the ungraded convenience constructor.
func TestNewTrivial(t *testing.T) {
	v, err := space.NewTrivial(6)
	require.NoError(t, err)
	assert.Equal(t, 6, v.Dim(), "plain dimension")
	assert.True(t, v.IsTrivial(), "trivially graded")
	assert.Equal(t, space.Euclidean, v.Style(), "trivial spaces are Euclidean")

	_, err = space.NewTrivial(0)
	assert.ErrorIs(t, err, space.ErrBadDimension, "dimension must be positive")
}

// TestSpace_CanonicalOrder: constructor input order never leaks out.
func TestSpace_CanonicalOrder(t *testing.T) {
	v, err := space.New(
		space.Grade{Sector: sector.U1{Charge: 3}, Dim: 1},
		space.Grade{Sector: sector.U1{Charge: -1}, Dim: 2},
		space.Grade{Sector: sector.U1{Charge: 0}, Dim: 1},
	)
	require.NoError(t, err)

	assert.Equal(t, []sector.Sector{
		sector.U1{Charge: -1}, sector.U1{Charge: 0}, sector.U1{Charge: 3},
	}, v.Sectors(), "sectors list ascending regardless of input order")

	w, err := space.New(
		space.Grade{Sector: sector.U1{Charge: 0}, Dim: 1},
		space.Grade{Sector: sector.U1{Charge: 3}, Dim: 1},
		space.Grade{Sector: sector.U1{Charge: -1}, Dim: 2},
	)
	require.NoError(t, err)
	assert.True(t, v.Equal(w), "equality is order-insensitive")
}
