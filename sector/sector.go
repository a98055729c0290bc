// Package sector: the Sector interface, the FusionStyle capability tag and
// the three shipped symmetries (Trivial, ZN, U1).
//
// Contract highlights (enforced by the engine, relied upon everywhere):
//   - Implementations MUST be comparable value types (usable as map keys).
//   - Fuse MUST return its outputs in canonical order (ascending Compare).
//   - Compare MUST be a total order, consistent with equality, within one
//     symmetry; comparing sectors of different symmetries is a programmer
//     error and panics.
//   - Dual and One MUST stay inside the same symmetry.
package sector

import "strconv"

// FusionStyle classifies how a symmetry's sectors fuse.
// It is a capability tag consumed by dispatch branches in the engine;
// there is deliberately no type hierarchy behind it.
type FusionStyle int

const (
	// Abelian means every pair of sectors fuses to exactly one sector and
	// every fusion tree is multiplicity-free and unique per uncoupled tuple.
	Abelian FusionStyle = iota

	// NonAbelian means a pair of sectors may fuse to several sectors; index
	// permutation then requires recoupling coefficients (fusion.Recoupler).
	NonAbelian
)

// String returns a stable human-readable tag for the style.
func (f FusionStyle) String() string {
	if f == Abelian {
		return "abelian"
	}

	return "non-abelian"
}

// Sector is one irreducible-representation label of a symmetry.
//
// Implementations must be small comparable value types; the engine keys
// block storage by Sector and compares sectors with == on hot paths.
type Sector interface {
	// Symmetry returns the group identity tag, e.g. "trivial", "Z2", "U1".
	// Spaces and products must be symmetry-uniform; the engine checks tags.
	Symmetry() string

	// Dual returns the conjugate sector (the label of the dual irrep).
	Dual() Sector

	// One returns the unit (vacuum) sector of this symmetry.
	One() Sector

	// Fuse returns the sectors the pair (s, other) may fuse to, in canonical
	// order. Abelian styles return exactly one sector.
	Fuse(other Sector) []Sector

	// QDim returns the quantum dimension of the sector (1 for every shipped
	// symmetry; non-integer for anyonic styles).
	QDim() float64

	// Compare returns -1, 0 or +1 ordering s against other under the
	// canonical total order of this symmetry.
	Compare(other Sector) int

	// FusionStyle returns the capability tag of the whole symmetry.
	FusionStyle() FusionStyle

	// String renders the sector label for error messages and debugging.
	String() string
}

// panic messages for cross-symmetry misuse (programmer error, fail loud).
const (
	panicMixedSymmetry = "sector: operands belong to different symmetries"
	panicBadModulus    = "sector: ZN modulus must be >= 2"
)

// ---------------------------------------------------------------------------
// Trivial
// ---------------------------------------------------------------------------

// Trivial is the unique sector of the "no symmetry" group. A space graded
// only by Trivial behaves as an ordinary ungraded vector space, and every
// tensor map over it owns exactly one dense block.
type Trivial struct{}

// Symmetry returns the group tag "trivial".
func (Trivial) Symmetry() string { return "trivial" }

// Dual of the trivial sector is itself.
func (Trivial) Dual() Sector { return Trivial{} }

// One returns the trivial sector (it is its own unit).
func (Trivial) One() Sector { return Trivial{} }

// Fuse of trivial with trivial is trivial.
func (Trivial) Fuse(other Sector) []Sector {
	mustSameSymmetry(Trivial{}, other)

	return []Sector{Trivial{}}
}

// QDim of the trivial sector is 1.
func (Trivial) QDim() float64 { return 1 }

// Compare: there is only one trivial sector, so every comparison is 0.
func (Trivial) Compare(other Sector) int {
	mustSameSymmetry(Trivial{}, other)

	return 0
}

// FusionStyle of the trivial symmetry is Abelian.
func (Trivial) FusionStyle() FusionStyle { return Abelian }

// String renders the trivial sector.
func (Trivial) String() string { return "I" }

// ---------------------------------------------------------------------------
// ZN
// ---------------------------------------------------------------------------

// ZN is a charge of the cyclic group ℤₙ: K ∈ {0,…,N−1} with addition mod N.
// Construct with NewZN (or Z2 for the common N=2 case); the zero value is
// not a valid sector.
type ZN struct {
	// N is the modulus (group order), N >= 2.
	N int
	// K is the charge, normalized to 0 <= K < N.
	K int
}

// NewZN builds a ℤₙ charge, normalizing k into 0..n-1 (negative k allowed).
// Panics when n < 2 (programmer error; there is no ℤ₀ or ℤ₁ worth grading by —
// use Trivial for the latter).
func NewZN(n, k int) ZN {
	if n < 2 {
		panic(panicBadModulus)
	}

	return ZN{N: n, K: ((k % n) + n) % n}
}

// Z2 builds a ℤ₂ parity sector: Z2(false) is even, Z2(true) is odd.
func Z2(odd bool) ZN {
	if odd {
		return ZN{N: 2, K: 1}
	}

	return ZN{N: 2, K: 0}
}

// Symmetry returns "Z<N>", e.g. "Z2".
func (z ZN) Symmetry() string { return "Z" + strconv.Itoa(z.N) }

// Dual returns the inverse charge (N−K) mod N.
func (z ZN) Dual() Sector { return ZN{N: z.N, K: (z.N - z.K) % z.N} }

// One returns the zero charge of the same modulus.
func (z ZN) One() Sector { return ZN{N: z.N, K: 0} }

// Fuse adds charges mod N; exactly one output (abelian).
func (z ZN) Fuse(other Sector) []Sector {
	w := mustZN(z, other)

	return []Sector{ZN{N: z.N, K: (z.K + w.K) % z.N}}
}

// QDim of any ℤₙ charge is 1.
func (ZN) QDim() float64 { return 1 }

// Compare orders charges by K ascending.
func (z ZN) Compare(other Sector) int {
	w := mustZN(z, other)
	switch {
	case z.K < w.K:
		return -1
	case z.K > w.K:
		return 1
	default:
		return 0
	}
}

// FusionStyle of ℤₙ is Abelian.
func (ZN) FusionStyle() FusionStyle { return Abelian }

// String renders the charge as "K(modN)", e.g. "1(mod2)".
func (z ZN) String() string { return strconv.Itoa(z.K) + "(mod" + strconv.Itoa(z.N) + ")" }

// mustZN asserts other is a ZN charge with the same modulus as z.
func mustZN(z ZN, other Sector) ZN {
	w, ok := other.(ZN)
	if !ok || w.N != z.N {
		panic(panicMixedSymmetry)
	}

	return w
}

// ---------------------------------------------------------------------------
// U1
// ---------------------------------------------------------------------------

// U1 is an integer U(1) charge with additive fusion. The zero value is the
// vacuum sector.
type U1 struct {
	// Charge is the (possibly negative) integer charge.
	Charge int
}

// Symmetry returns "U1".
func (U1) Symmetry() string { return "U1" }

// Dual negates the charge.
func (u U1) Dual() Sector { return U1{Charge: -u.Charge} }

// One returns the vacuum (charge 0).
func (U1) One() Sector { return U1{} }

// Fuse adds charges; exactly one output (abelian).
func (u U1) Fuse(other Sector) []Sector {
	v := mustU1(other)

	return []Sector{U1{Charge: u.Charge + v.Charge}}
}

// QDim of any U(1) charge is 1.
func (U1) QDim() float64 { return 1 }

// Compare orders charges ascending.
func (u U1) Compare(other Sector) int {
	v := mustU1(other)
	switch {
	case u.Charge < v.Charge:
		return -1
	case u.Charge > v.Charge:
		return 1
	default:
		return 0
	}
}

// FusionStyle of U(1) is Abelian.
func (U1) FusionStyle() FusionStyle { return Abelian }

// String renders the charge with an explicit sign, e.g. "+1", "0", "-2".
func (u U1) String() string {
	if u.Charge > 0 {
		return "+" + strconv.Itoa(u.Charge)
	}

	return strconv.Itoa(u.Charge)
}

// mustU1 asserts other is a U1 charge.
func mustU1(other Sector) U1 {
	v, ok := other.(U1)
	if !ok {
		panic(panicMixedSymmetry)
	}

	return v
}

// mustSameSymmetry asserts both sectors carry the same symmetry tag.
func mustSameSymmetry(a, b Sector) {
	if a.Symmetry() != b.Symmetry() {
		panic(panicMixedSymmetry)
	}
}

// ---------------------------------------------------------------------------
// Order helpers shared by the higher layers
// ---------------------------------------------------------------------------

// Sort orders a slice of sectors in place under the canonical order.
// All elements must belong to one symmetry. Insertion sort: sector lists in
// this engine are short (a handful of charges), stability keeps ties intact.
//
// Complexity: O(n²) worst case, O(n) on nearly-sorted input.
func Sort(s []Sector) {
	var i, j int
	for i = 1; i < len(s); i++ {
		for j = i; j > 0 && s[j].Compare(s[j-1]) < 0; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

// Dedup removes consecutive duplicates from a canonically sorted slice,
// returning the shortened slice (shares the input's backing array).
func Dedup(s []Sector) []Sector {
	if len(s) < 2 {
		return s
	}

	out := s[:1]
	var i int
	for i = 1; i < len(s); i++ {
		if s[i].Compare(out[len(out)-1]) != 0 {
			out = append(out, s[i])
		}
	}

	return out
}

// CompareTuples orders two equal-length sector tuples lexicographically
// under the canonical per-sector order.
func CompareTuples(a, b []Sector) int {
	var i, c int
	for i = 0; i < len(a) && i < len(b); i++ {
		if c = a[i].Compare(b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
