package tensor_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/symtensor/fusion"
	"github.com/katalvlaran/symtensor/sector"
	"github.com/katalvlaran/symtensor/space"
	"github.com/katalvlaran/symtensor/tensor"
)

// z2V builds the ℤ₂-graded Euclidean space with the given parity dims.
func z2V(t *testing.T, even, odd int) space.Space {
	t.Helper()
	v, err := space.New(
		space.Grade{Sector: sector.Z2(false), Dim: even},
		space.Grade{Sector: sector.Z2(true), Dim: odd},
	)
	require.NoError(t, err)

	return v
}

// prod wraps space.Prod with the test's error handling.
func prod(t *testing.T, vs ...space.Space) space.Product {
	t.Helper()
	p, err := space.Prod(vs...)
	require.NoError(t, err)

	return p
}

// trivialProd builds a product of ungraded legs with the given dims.
func trivialProd(t *testing.T, dims ...int) space.Product {
	t.Helper()
	vs := make([]space.Space, len(dims))
	for i, d := range dims {
		v, err := space.NewTrivial(d)
		require.NoError(t, err)
		vs[i] = v
	}

	return prod(t, vs...)
}

// seq returns 0, 1, 2, … as float64 — recognizable payloads.
func seq(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}

	return out
}

// TestNew_BlockCensus: blocks exist exactly for sectors both sides attain.
func TestNew_BlockCensus(t *testing.T) {
	v := z2V(t, 2, 1)

	// ℤ₂ endomorphism of one leg: both parities attainable.
	tm, err := tensor.New(prod(t, v), prod(t, v))
	require.NoError(t, err)
	assert.Equal(t, []sector.Sector{sector.Z2(false), sector.Z2(true)},
		tm.Sectors(), "canonical sector order")

	even, err := tm.Block(sector.Z2(false))
	require.NoError(t, err)
	r, c := even.Dims()
	assert.Equal(t, [2]int{2, 2}, [2]int{r, c}, "even block is the 2-dim parity")
	odd, err := tm.Block(sector.Z2(true))
	require.NoError(t, err)
	r, c = odd.Dims()
	assert.Equal(t, [2]int{1, 1}, [2]int{r, c}, "odd block is the 1-dim parity")

	// Odd-only domain against an even-only codomain: no shared sector at
	// all is still a valid (empty) tensor map.
	evenOnly, err := space.New(space.Grade{Sector: sector.Z2(false), Dim: 2})
	require.NoError(t, err)
	oddOnly, err := space.New(space.Grade{Sector: sector.Z2(true), Dim: 1})
	require.NoError(t, err)
	zero, err := tensor.New(prod(t, evenOnly), prod(t, oddOnly))
	require.NoError(t, err)
	assert.Empty(t, zero.Sectors(), "no attainable shared sector")
	assert.False(t, zero.HasSector(sector.Z2(false)), "codomain-only sector owns no block")
}

// TestNew_Validation covers the fail-fast construction checks.
func TestNew_Validation(t *testing.T) {
	_, err := tensor.New(space.Product{}, space.Product{})
	assert.ErrorIs(t, err, tensor.ErrSpaceMismatch, "no legs anywhere")

	u1, err := space.New(space.Grade{Sector: sector.U1{Charge: 1}, Dim: 1})
	require.NoError(t, err)
	_, err = tensor.New(prod(t, z2V(t, 1, 1)), prod(t, u1))
	assert.ErrorIs(t, err, tensor.ErrSpaceMismatch, "ℤ₂ codomain vs U1 domain")
}

// TestNew_EmptySide: a stateless side couples to the peer's unit sector.
func TestNew_EmptySide(t *testing.T) {
	v := z2V(t, 2, 1)
	vec, err := tensor.New(prod(t, v), prod(t))
	require.NoError(t, err)

	require.Equal(t, []sector.Sector{sector.Z2(false)}, vec.Sectors(),
		"a ket only reaches the unit sector")
	blk, err := vec.Block(sector.Z2(false))
	require.NoError(t, err)
	r, c := blk.Dims()
	assert.Equal(t, [2]int{2, 1}, [2]int{r, c}, "column vector over the even parity")
}

// TestFromRaw_Scenario1: an ungraded 2×3 codomain and a 2-dim domain built
// from a shape-(2,3,2) row-major payload; the raw view is its (6,2) reshape.
func TestFromRaw_Scenario1(t *testing.T) {
	cod := trivialProd(t, 2, 3)
	dom := trivialProd(t, 2)

	payload := seq(2 * 3 * 2)
	tm, err := tensor.FromRaw(cod, dom, payload)
	require.NoError(t, err)

	raw, err := tm.Raw()
	require.NoError(t, err)
	want := mat.NewDense(6, 2, seq(12))
	assert.True(t, mat.Equal(want, raw), "raw view is the (6,2) reshape of the payload")

	// The trivial block and the raw view are the same thing.
	blk, err := tm.Block(sector.Trivial{})
	require.NoError(t, err)
	assert.True(t, mat.Equal(raw, blk), "block(trivial) equals the raw view")
}

// TestFromRaw_Errors: payload shape, finiteness and structured symmetries.
func TestFromRaw_Errors(t *testing.T) {
	cod := trivialProd(t, 2)
	dom := trivialProd(t, 2)

	_, err := tensor.FromRaw(cod, dom, seq(3))
	assert.ErrorIs(t, err, tensor.ErrShape, "length 3 is not 2×2")

	_, err = tensor.FromRaw(cod, dom, []float64{1, 2, 3, math.NaN()})
	assert.ErrorIs(t, err, tensor.ErrNonFinite, "NaN payload")

	v := z2V(t, 1, 1)
	_, err = tensor.FromRaw(prod(t, v), prod(t, v), seq(2))
	assert.ErrorIs(t, err, tensor.ErrNotTrivial, "graded legs have no raw form")
}

// TestFromBlocks: dictionary construction with validation.
func TestFromBlocks(t *testing.T) {
	v := z2V(t, 2, 1)
	p := prod(t, v)

	tm, err := tensor.FromBlocks(p, p, map[sector.Sector]*mat.Dense{
		sector.Z2(false): mat.NewDense(2, 2, []float64{1, 2, 3, 4}),
		// Odd sector omitted on purpose: stays zero.
	})
	require.NoError(t, err)
	even, err := tm.Block(sector.Z2(false))
	require.NoError(t, err)
	assert.Equal(t, 3.0, even.At(1, 0), "copied payload")
	odd, err := tm.Block(sector.Z2(true))
	require.NoError(t, err)
	assert.Equal(t, 0.0, odd.At(0, 0), "omitted sector is zero")

	_, err = tensor.FromBlocks(p, p, map[sector.Sector]*mat.Dense{
		sector.Z2(false): mat.NewDense(1, 2, []float64{1, 2}),
	})
	assert.ErrorIs(t, err, tensor.ErrShape, "even block wants 2×2")

	_, err = tensor.FromBlocks(p, p, map[sector.Sector]*mat.Dense{
		sector.U1{Charge: 3}: mat.NewDense(1, 1, []float64{1}),
	})
	assert.ErrorIs(t, err, tensor.ErrNoSuchSector, "foreign sector key")
}

// TestGenerate fills blocks sector by sector and propagates fn errors.
func TestGenerate(t *testing.T) {
	v := z2V(t, 2, 1)
	p := prod(t, v)

	tm, err := tensor.Generate(p, p, func(c sector.Sector, blk *mat.Dense) error {
		n, _ := blk.Dims()
		for i := 0; i < n; i++ {
			blk.Set(i, i, float64(n))
		}

		return nil
	})
	require.NoError(t, err)
	even, err := tm.Block(sector.Z2(false))
	require.NoError(t, err)
	assert.Equal(t, 2.0, even.At(0, 0), "even diagonal carries its dim")

	boom := errors.New("boom")
	_, err = tensor.Generate(p, p, func(sector.Sector, *mat.Dense) error { return boom })
	assert.ErrorIs(t, err, boom, "fn errors abort construction")
}

// TestRandom_Determinism: a nil rng means the fixed default stream.
func TestRandom_Determinism(t *testing.T) {
	v := z2V(t, 2, 2)
	p := prod(t, v, v)

	a, err := tensor.Random(p, p, nil)
	require.NoError(t, err)
	b, err := tensor.Random(p, p, nil)
	require.NoError(t, err)
	assert.True(t, tensor.Equal(a, b), "same spaces, same tensor")

	c, err := tensor.Random(p, p, rand.New(rand.NewSource(99)))
	require.NoError(t, err)
	assert.False(t, tensor.Equal(a, c), "a seeded stream diverges")
}

// TestClone: deep payload copy, shared immutable type.
func TestClone(t *testing.T) {
	v := z2V(t, 2, 1)
	tm, err := tensor.Random(prod(t, v), prod(t, v), nil)
	require.NoError(t, err)

	cp := tm.Clone()
	require.True(t, tensor.Equal(tm, cp), "clone starts identical")

	blk, err := cp.Block(sector.Z2(false))
	require.NoError(t, err)
	blk.Set(0, 0, 42)
	assert.False(t, tensor.Equal(tm, cp), "mutating the clone leaves the original alone")
}

// TestSubblock addresses fusion-tree sub-ranges inside a coupled block.
func TestSubblock(t *testing.T) {
	v := z2V(t, 2, 1)
	p := prod(t, v, v)
	tm, err := tensor.Random(p, p, nil)
	require.NoError(t, err)

	e, o := sector.Sector(sector.Z2(false)), sector.Sector(sector.Z2(true))

	// The even coupled block tiles as (e,e) ⊕ (o,o) on both sides:
	// row/column ranges 0..4 and 4..5.
	ee, err := fusion.Trees([]sector.Sector{e, e}, e)
	require.NoError(t, err)
	require.Len(t, ee, 1)
	oo, err := fusion.Trees([]sector.Sector{o, o}, e)
	require.NoError(t, err)
	require.Len(t, oo, 1)

	sub, err := tm.Subblock(ee[0], oo[0])
	require.NoError(t, err)
	r, c := sub.Dims()
	assert.Equal(t, [2]int{4, 1}, [2]int{r, c}, "(e,e) rows against (o,o) columns")

	full, err := tm.Block(e)
	require.NoError(t, err)
	assert.Equal(t, full.At(0, 4), sub.At(0, 0), "subblock aliases the block")

	// Tuple addressing pins the same range for abelian symmetries.
	sub2, err := tm.SubblockFor([]sector.Sector{e, e}, []sector.Sector{o, o})
	require.NoError(t, err)
	assert.True(t, mat.Equal(sub, sub2), "tree and tuple addressing agree")

	// Mismatched coupled sectors are rejected before any lookup.
	eo, err := fusion.Trees([]sector.Sector{e, o}, o)
	require.NoError(t, err)
	_, err = tm.Subblock(ee[0], eo[0])
	assert.ErrorIs(t, err, tensor.ErrMismatchedCoupledSector, "even vs odd coupling")
}

// TestIdentity builds per-sector identity blocks.
func TestIdentity(t *testing.T) {
	v := z2V(t, 2, 1)
	id, err := tensor.Identity(prod(t, v))
	require.NoError(t, err)

	require.NoError(t, id.EachBlock(func(c sector.Sector, blk *mat.Dense) error {
		n, _ := blk.Dims()
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				want := 0.0
				if i == j {
					want = 1.0
				}
				assert.Equal(t, want, blk.At(i, j), "identity entries in %s", c)
			}
		}

		return nil
	}))
}

// TestEachBlock_Order pins the canonical, restartable walk.
func TestEachBlock_Order(t *testing.T) {
	v := z2V(t, 1, 1)
	tm, err := tensor.New(prod(t, v), prod(t, v))
	require.NoError(t, err)

	collect := func() []sector.Sector {
		var got []sector.Sector
		require.NoError(t, tm.EachBlock(func(c sector.Sector, _ *mat.Dense) error {
			got = append(got, c)

			return nil
		}))

		return got
	}

	want := []sector.Sector{sector.Z2(false), sector.Z2(true)}
	if diff := cmp.Diff(want, collect()); diff != "" {
		t.Fatalf("walk order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, collect()); diff != "" {
		t.Fatalf("second walk differs (-want +got):\n%s", diff)
	}
}
