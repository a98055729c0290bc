// Package fusion: the Tree value type, exhaustive enumeration and the
// canonical total order every deterministic layout in the engine builds on.
package fusion

import (
	"errors"
	"strings"

	"github.com/katalvlaran/symtensor/sector"
)

// Sentinel errors of the fusion package. Tests match them via errors.Is.
var (
	// ErrMixedSymmetry is returned when a tuple mixes sectors of different
	// symmetries (different Symmetry() tags or incompatible concrete types).
	ErrMixedSymmetry = errors.New("fusion: sectors of different symmetries in one tuple")

	// ErrBadTree is returned when a Tree value is structurally inconsistent
	// (wrong Inner length, fold mismatch, or an empty tree with a non-unit
	// coupled sector).
	ErrBadTree = errors.New("fusion: inconsistent fusion tree")

	// ErrNoRecoupler is returned when a non-abelian permutation is requested
	// but the coupled sector's symmetry does not implement Recoupler.
	ErrNoRecoupler = errors.New("fusion: symmetry provides no recoupling coefficients")
)

// Tree is one left-canonical fusion of Uncoupled to Coupled.
//
// Invariants (checked by Validate, assumed elsewhere):
//   - len(Inner) == max(0, len(Uncoupled)-2)
//   - each fold step is allowed by the symmetry's fusion rules
//   - an empty Uncoupled tuple fuses only to the unit sector
//
// Tree is a value type; callers must not mutate the slices of a Tree
// obtained from Trees.
type Tree struct {
	// Uncoupled is the ordered tuple of leaf sectors.
	Uncoupled []sector.Sector

	// Inner holds the internal lines x₁…xₙ₋₂ of the left-canonical fold.
	Inner []sector.Sector

	// Coupled is the overall fusion output.
	Coupled sector.Sector
}

// Arity returns the number of uncoupled legs.
func (t Tree) Arity() int { return len(t.Uncoupled) }

// String renders the tree as "(a,b,c;x)->c" for error messages and keys.
func (t Tree) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, s := range t.Uncoupled {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(s.String())
	}
	if len(t.Inner) > 0 {
		sb.WriteByte(';')
		for i, s := range t.Inner {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(s.String())
		}
	}
	sb.WriteString(")->")
	sb.WriteString(t.Coupled.String())

	return sb.String()
}

// Key returns a stable map key identifying the tree. Two trees over the
// same symmetry have equal keys iff they are the same tree.
func (t Tree) Key() string { return t.String() }

// Compare orders trees canonically: by coupled sector, then by uncoupled
// tuple (lexicographic), then by inner lines (lexicographic). This order is
// THE tree order referenced by the block-layout invariants.
func (t Tree) Compare(u Tree) int {
	if c := t.Coupled.Compare(u.Coupled); c != 0 {
		return c
	}
	if c := sector.CompareTuples(t.Uncoupled, u.Uncoupled); c != 0 {
		return c
	}

	return sector.CompareTuples(t.Inner, u.Inner)
}

// Validate checks the structural invariants of the tree.
//
// Returns ErrBadTree (wrapped with the failing stage) on violation, nil
// otherwise. Complexity: O(n) fusion-rule lookups.
func (t Tree) Validate() error {
	n := len(t.Uncoupled)

	// Stage 1: shape.
	if len(t.Inner) != maxInt(0, n-2) {
		return ErrBadTree
	}

	// Stage 2: degenerate arities.
	switch n {
	case 0:
		// Empty fold: coupled must be the unit of its own symmetry.
		if t.Coupled.Compare(t.Coupled.One()) != 0 {
			return ErrBadTree
		}

		return nil
	case 1:
		if t.Uncoupled[0].Compare(t.Coupled) != 0 {
			return ErrBadTree
		}

		return nil
	}

	// Stage 3: replay the left fold and check every internal line.
	cur := t.Uncoupled[0]
	var i int
	for i = 1; i < n; i++ {
		var next sector.Sector
		if i < n-1 {
			next = t.Inner[i-1]
		} else {
			next = t.Coupled
		}
		if !fuseAllows(cur, t.Uncoupled[i], next) {
			return ErrBadTree
		}
		cur = next
	}

	return nil
}

// fuseAllows reports whether a×b may fuse to want.
func fuseAllows(a, b, want sector.Sector) bool {
	for _, s := range a.Fuse(b) {
		if s.Compare(want) == 0 {
			return true
		}
	}

	return false
}

// Trees enumerates every left-canonical fusion tree of uncoupled with the
// given coupled output, in canonical order (ascending Tree.Compare).
//
// Rules:
//   - empty tuple  ⇒ the single empty tree iff coupled is the unit
//   - one leg      ⇒ the single leaf tree iff the leg equals coupled
//   - n legs       ⇒ depth-first fold over the symmetry's fusion outputs;
//     abelian symmetries yield zero or one tree per tuple
//
// Returns ErrMixedSymmetry when the tuple mixes symmetries.
// Complexity: O(#trees · n) plus the fusion-rule lookups.
func Trees(uncoupled []sector.Sector, coupled sector.Sector) ([]Tree, error) {
	if err := checkUniform(uncoupled, coupled); err != nil {
		return nil, err
	}

	n := len(uncoupled)
	switch n {
	case 0:
		if coupled.Compare(coupled.One()) != 0 {
			return nil, nil
		}

		return []Tree{{Coupled: coupled}}, nil
	case 1:
		if uncoupled[0].Compare(coupled) != 0 {
			return nil, nil
		}

		return []Tree{{Uncoupled: cloneTuple(uncoupled), Coupled: coupled}}, nil
	}

	// Depth-first left fold. Fuse returns outputs in canonical order, so the
	// recursion emits trees in canonical Inner order without sorting.
	var out []Tree
	inner := make([]sector.Sector, 0, n-2)

	var walk func(cur sector.Sector, next int)
	walk = func(cur sector.Sector, next int) {
		if next == n {
			if cur.Compare(coupled) == 0 {
				out = append(out, Tree{
					Uncoupled: cloneTuple(uncoupled),
					Inner:     cloneTuple(inner),
					Coupled:   coupled,
				})
			}

			return
		}
		for _, step := range cur.Fuse(uncoupled[next]) {
			if next < n-1 {
				inner = append(inner, step)
				walk(step, next+1)
				inner = inner[:len(inner)-1]
			} else {
				walk(step, next+1)
			}
		}
	}
	walk(uncoupled[0], 1)

	return out, nil
}

// Couplings returns the attainable coupled sectors of the tuple, canonical
// order, deduplicated. An empty tuple returns nil: its unit sector is not
// derivable without a symmetry witness, so the caller supplies it.
//
// Returns ErrMixedSymmetry when the tuple mixes symmetries.
func Couplings(uncoupled []sector.Sector) ([]sector.Sector, error) {
	if len(uncoupled) == 0 {
		return nil, nil
	}
	if err := checkUniform(uncoupled, uncoupled[0]); err != nil {
		return nil, err
	}

	// Iterative fold: the frontier after k legs holds every attainable
	// partial coupling; dedup keeps the frontier small for abelian styles.
	frontier := []sector.Sector{uncoupled[0]}
	var i int
	for i = 1; i < len(uncoupled); i++ {
		var next []sector.Sector
		for _, cur := range frontier {
			next = append(next, cur.Fuse(uncoupled[i])...)
		}
		sector.Sort(next)
		frontier = sector.Dedup(next)
	}

	return frontier, nil
}

// CountTrees returns the number of fusion trees of uncoupled into coupled.
// Equivalent to len(Trees(...)) without materializing the trees.
func CountTrees(uncoupled []sector.Sector, coupled sector.Sector) (int, error) {
	ts, err := Trees(uncoupled, coupled)
	if err != nil {
		return 0, err
	}

	return len(ts), nil
}

// checkUniform verifies every sector of the tuple (and the witness) shares
// one symmetry tag.
func checkUniform(tuple []sector.Sector, witness sector.Sector) error {
	tag := witness.Symmetry()
	for _, s := range tuple {
		if s.Symmetry() != tag {
			return ErrMixedSymmetry
		}
	}

	return nil
}

// cloneTuple copies a sector tuple so enumerated trees never alias caller
// or scratch storage.
func cloneTuple(s []sector.Sector) []sector.Sector {
	if len(s) == 0 {
		return nil
	}
	out := make([]sector.Sector, len(s))
	copy(out, s)

	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}

	return b
}
