// Package tensor: truncation schemes — value-object strategies consumed by
// TSVD's global (cross-sector) truncation step.
//
// Aggregation convention (documented decision): the truncation error ε is
// the p-norm over the union of all discarded singular values across
// sectors, each sector's contribution weighted by its quantum dimension:
// ε^p = Σ_c qdim(c)·Σ_{discarded σ} σ^p. The exponent p comes from the
// scheme (TruncError) and defaults to 2 elsewhere, which makes
// ‖t − U·S·Vʰ‖ = ε exact for the Euclidean norm.
package tensor

import (
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/symtensor/sector"
	"github.com/katalvlaran/symtensor/space"
)

// truncKind discriminates the scheme variants.
type truncKind int

const (
	truncNone truncKind = iota
	truncError
	truncDim
	truncSpace
	truncBelow
)

// Internal panic messages for scheme constructors (programmer errors).
const (
	panicTruncEtaInvalid = "tensor: truncation threshold must be finite, non-negative"
	panicTruncPInvalid   = "tensor: truncation norm exponent must be >= 1"
	panicTruncChiInvalid = "tensor: truncation dimension must be >= 1"
)

// TruncationScheme is an immutable truncation strategy. Build one with the
// constructors below and install it via WithTruncation; the zero value
// behaves as TruncNone.
type TruncationScheme struct {
	kind   truncKind
	eta    float64
	p      float64
	chi    int
	target space.Space
}

// TruncNone keeps every singular value; the reported ε is exactly 0.
func TruncNone() TruncationScheme { return TruncationScheme{kind: truncNone} }

// TruncError discards the smallest singular values while the aggregated
// p-norm of the discarded set stays within η. Panics when η is negative or
// non-finite, or p < 1.
func TruncError(eta, p float64) TruncationScheme {
	if !finite(eta) || eta < 0 {
		panic(panicTruncEtaInvalid)
	}
	if !finite(p) || p < 1 {
		panic(panicTruncPInvalid)
	}

	return TruncationScheme{kind: truncError, eta: eta, p: p}
}

// TruncDim keeps at most χ singular values in total, greedily largest-first
// across all sectors (deterministic tie-break: canonical sector order, then
// descending position). Panics when χ < 1.
func TruncDim(chi int) TruncationScheme {
	if chi < 1 {
		panic(panicTruncChiInvalid)
	}

	return TruncationScheme{kind: truncDim, chi: chi}
}

// TruncSpace caps the kept rank per sector by the grading of w: at most
// w.SectorDim(c) values survive in sector c. A target space foreign to the
// tensor's symmetry fails the plan with ErrSpaceMismatch.
func TruncSpace(w space.Space) TruncationScheme {
	return TruncationScheme{kind: truncSpace, target: w}
}

// TruncBelow discards every singular value strictly below η. Panics when η
// is negative or non-finite.
func TruncBelow(eta float64) TruncationScheme {
	if !finite(eta) || eta < 0 {
		panic(panicTruncEtaInvalid)
	}

	return TruncationScheme{kind: truncBelow, eta: eta}
}

// normP returns the exponent of the scheme's error norm (2 unless the
// scheme is TruncError with an explicit p).
func (ts TruncationScheme) normP() float64 {
	if ts.kind == truncError {
		return ts.p
	}

	return 2
}

// plan decides, per sector, how many leading singular values survive.
//
// Inputs: sectors in canonical order; vals[i] are sector i's singular
// values, descending (the solver's order). Output: keep[i] counts surviving
// values; eps is the aggregated error of everything discarded.
//
// Complexity: O(V log V) with V the total number of singular values.
func (ts TruncationScheme) plan(sectors []sector.Sector, vals [][]float64) (keep []int, eps float64, err error) {
	keep = make([]int, len(vals))
	for i, v := range vals {
		keep[i] = len(v)
	}

	switch ts.kind {
	case truncNone:
		// Everything survives.

	case truncBelow:
		for i, v := range vals {
			k := len(v)
			for k > 0 && v[k-1] < ts.eta {
				k--
			}
			keep[i] = k
		}

	case truncSpace:
		for i, c := range sectors {
			if ts.target.Symmetry() != c.Symmetry() {
				return nil, 0, fmt.Errorf("truncation target %s vs symmetry %s: %w",
					ts.target, c.Symmetry(), ErrSpaceMismatch)
			}
			if lim := ts.target.SectorDim(c); lim < keep[i] {
				keep[i] = lim
			}
		}

	case truncDim:
		type entry struct {
			sec, pos int
			v        float64
		}
		var all []entry
		for i, v := range vals {
			for j, s := range v {
				all = append(all, entry{sec: i, pos: j, v: s})
			}
		}
		if len(all) > ts.chi {
			sort.SliceStable(all, func(a, b int) bool {
				if all[a].v != all[b].v {
					return all[a].v > all[b].v
				}
				if all[a].sec != all[b].sec {
					return all[a].sec < all[b].sec
				}

				return all[a].pos < all[b].pos
			})
			for i := range keep {
				keep[i] = 0
			}
			for _, e := range all[:ts.chi] {
				// Values are descending per sector, so counting kept entries
				// per sector keeps exactly the leading ones.
				keep[e.sec]++
			}
		}

	case truncError:
		// Discard ascending while the weighted p-norm budget holds.
		type entry struct {
			sec int
			v   float64
		}
		var all []entry
		for i, v := range vals {
			for _, s := range v {
				all = append(all, entry{sec: i, v: s})
			}
		}
		sort.SliceStable(all, func(a, b int) bool { return all[a].v < all[b].v })

		budget := math.Pow(ts.eta, ts.p)
		var spent float64
		for _, e := range all {
			cost := sectors[e.sec].QDim() * math.Pow(e.v, ts.p)
			if spent+cost > budget {
				break
			}
			spent += cost
			keep[e.sec]--
		}
	}

	return keep, ts.discardedNorm(sectors, vals, keep), nil
}

// discardedNorm aggregates the scheme's error norm over every value the
// plan discards; see the convention at the top of the file.
func (ts TruncationScheme) discardedNorm(sectors []sector.Sector, vals [][]float64, keep []int) float64 {
	p := ts.normP()
	var sum float64
	for i, v := range vals {
		q := sectors[i].QDim()
		for _, s := range v[keep[i]:] {
			sum += q * math.Pow(s, p)
		}
	}
	if sum == 0 {
		return 0
	}

	return math.Pow(sum, 1/p)
}
