// Package space: the Space value type — one graded elementary vector space.
package space

import (
	"strconv"
	"strings"

	"github.com/katalvlaran/symtensor/sector"
)

// Style tags the inner-product capability of a space. It is consumed by
// dispatch branches (adjoint, norms); there is no type hierarchy behind it.
type Style int

const (
	// Euclidean spaces carry the standard inner product: adjoints, norms
	// and isometric factorizations are all meaningful.
	Euclidean Style = iota

	// Generic spaces carry no distinguished inner product; norm-sensitive
	// operations refuse them downstream.
	Generic
)

// String returns a stable human-readable tag for the style.
func (s Style) String() string {
	if s == Euclidean {
		return "euclidean"
	}

	return "generic"
}

// Grade is one (sector, multiplicity) entry of a grading.
type Grade struct {
	// Sector is the symmetry label of the subspace.
	Sector sector.Sector
	// Dim is the multiplicity (dimension) of that subspace; > 0.
	Dim int
}

// Space is an immutable graded vector space: a canonical grading, a dual
// flag and a style tag. Compare spaces with Equal (structural equality).
//
// Grades are stored under the base (undualized) labels; Sectors and
// SectorDim translate through the dual flag, so V.Dual() costs nothing and
// V.Dual().Dual() is identical to V.
type Space struct {
	grades []Grade
	dual   bool
	style  Style
}

// New builds a Euclidean space from the given grades.
//
// Validation (fail-fast, in order): at least one grade; all multiplicities
// positive; one symmetry throughout; no duplicate sectors. Grades are copied
// and sorted canonically — the input slice is never retained.
//
// Complexity: O(g²) for the g grades (insertion sort; gradings are short).
func New(grades ...Grade) (Space, error) {
	return build(grades, Euclidean)
}

// NewGeneric builds a space without a distinguished inner product; adjoint,
// Norm and isometric factorizations will refuse it. Same validation as New.
func NewGeneric(grades ...Grade) (Space, error) {
	return build(grades, Generic)
}

// NewTrivial builds the ungraded d-dimensional Euclidean space: a single
// Trivial sector with multiplicity d. Returns ErrBadDimension when d <= 0.
func NewTrivial(d int) (Space, error) {
	return New(Grade{Sector: sector.Trivial{}, Dim: d})
}

// build validates, copies and canonically sorts a grading.
func build(grades []Grade, style Style) (Space, error) {
	// Stage 1: shape and value validation.
	if len(grades) == 0 {
		return Space{}, ErrEmptySpace
	}
	tag := grades[0].Sector.Symmetry()
	for _, g := range grades {
		if g.Dim <= 0 {
			return Space{}, ErrBadDimension
		}
		if g.Sector.Symmetry() != tag {
			return Space{}, ErrMixedSymmetry
		}
	}

	// Stage 2: copy and sort canonically (insertion sort, short gradings).
	gs := make([]Grade, len(grades))
	copy(gs, grades)
	var i, j int
	for i = 1; i < len(gs); i++ {
		for j = i; j > 0 && gs[j].Sector.Compare(gs[j-1].Sector) < 0; j-- {
			gs[j], gs[j-1] = gs[j-1], gs[j]
		}
	}

	// Stage 3: duplicates are programmer confusion, not mergeable input.
	for i = 1; i < len(gs); i++ {
		if gs[i].Sector.Compare(gs[i-1].Sector) == 0 {
			return Space{}, ErrDuplicateSector
		}
	}

	return Space{grades: gs, style: style}, nil
}

// Dim returns the total dimension: the sum of all multiplicities.
func (v Space) Dim() int {
	var d int
	for _, g := range v.grades {
		d += g.Dim
	}

	return d
}

// SectorDim returns the multiplicity of sector s in v, 0 when s is absent.
// The dual flag is translated through: a dual space carries s exactly when
// the base space carries s.Dual().
func (v Space) SectorDim(s sector.Sector) int {
	key := s
	if v.dual {
		key = s.Dual()
	}
	for _, g := range v.grades {
		if g.Sector.Symmetry() == key.Symmetry() && g.Sector.Compare(key) == 0 {
			return g.Dim
		}
	}

	return 0
}

// Sectors returns the carried sectors in canonical order, dual-mapped when
// the space is dual. The returned slice is fresh; callers may keep it.
func (v Space) Sectors() []sector.Sector {
	out := make([]sector.Sector, len(v.grades))
	for i, g := range v.grades {
		if v.dual {
			out[i] = g.Sector.Dual()
		} else {
			out[i] = g.Sector
		}
	}
	if v.dual {
		// Dual-mapping may reverse the order (e.g. U1 negation); restore it.
		sector.Sort(out)
	}

	return out
}

// Dual returns the dual space: same grading, flipped flag. O(1); the
// grading is shared (it is never mutated).
func (v Space) Dual() Space {
	return Space{grades: v.grades, dual: !v.dual, style: v.style}
}

// IsDual reports whether v is a dual space.
func (v Space) IsDual() bool { return v.dual }

// Style returns the inner-product capability tag.
func (v Space) Style() Style { return v.style }

// Symmetry returns the symmetry tag of the grading.
func (v Space) Symmetry() string { return v.grades[0].Sector.Symmetry() }

// IsTrivial reports whether v is graded solely by the trivial sector.
func (v Space) IsTrivial() bool {
	if len(v.grades) != 1 {
		return false
	}
	_, ok := v.grades[0].Sector.(sector.Trivial)

	return ok
}

// Equal reports structural equality: same grading, same dual flag, same
// style. This — not dimension agreement — is the compatibility notion every
// engine operation checks.
func (v Space) Equal(w Space) bool {
	if v.dual != w.dual || v.style != w.style || len(v.grades) != len(w.grades) {
		return false
	}
	for i, g := range v.grades {
		if g != w.grades[i] {
			return false
		}
	}

	return true
}

// String renders the space as "V[s1:d1, s2:d2]" with a trailing '*' on duals.
func (v Space) String() string {
	var sb strings.Builder
	sb.WriteString("V[")
	for i, g := range v.grades {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(g.Sector.String())
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(g.Dim))
	}
	sb.WriteByte(']')
	if v.dual {
		sb.WriteByte('*')
	}

	return sb.String()
}
