// SPDX-License-Identifier: MIT

// Package tensor: functional configuration for the engine's operations.
// This file defines:
//   - Option / Options (functional options with internal state),
//   - documented defaults (constants, single source of truth),
//   - WithX constructors with strong validation (panic on nonsensical values),
//   - gatherOptions helper (internal) that enforces derived invariants.
//
// Design goals:
//   - Deterministic behavior: no global state, no implicit randomness.
//   - No dead switches: each knob impacts behavior and is covered by tests.
//   - Safe by construction: panic only on invalid parameters (programmer error).
//   - Reusability: Options fields are unexported; public APIs consume ...Option.
package tensor

import (
	"math"
	"math/rand"
	"runtime"
)

// OrthAlg selects the orthogonalization algorithm for LeftOrth/RightOrth
// and the null-space routines.
type OrthAlg int

const (
	// OrthQRPos is the default: per-sector QR/LQ with the diagonal forced
	// non-negative for uniqueness. Requires full rank per sector; a deficient
	// block fails with ErrRankDeficient.
	OrthQRPos OrthAlg = iota

	// OrthSVD is the general path: singular vectors above the rank threshold
	// max(atol, rtol·‖t‖). Handles rank-deficient blocks.
	OrthSVD
)

// SVDAlg selects the per-block singular-value solver.
type SVDAlg int

const (
	// SVDDefault is gonum's LAPACK-style driver.
	SVDDefault SVDAlg = iota

	// SVDJacobi is the in-house one-sided Jacobi solver — a genuinely
	// different algorithm, kept as the remediation path when the default
	// does not converge on a block.
	SVDJacobi
)

// DEFAULTS — single source of truth for zero-value behavior.
const (
	// DefaultWorkers = 0 means "resolve to runtime.GOMAXPROCS(0) at call
	// time"; any positive value is used verbatim.
	DefaultWorkers = 0

	// DefaultAtol is the absolute floor of the rank threshold
	// max(atol, rtol·‖t‖). Zero: purely relative by default.
	DefaultAtol = 0.0

	// DefaultRtol is the relative part of the rank threshold.
	DefaultRtol = 1e-12

	// DefaultHermitianTol bounds |a[i,j] − a[j,i]| in Eigen's per-block
	// symmetry check before dispatching EigH vs Eig.
	DefaultHermitianTol = 1e-12

	// DefaultEqualTol is the tolerance of EqualApprox.
	DefaultEqualTol = 1e-12

	// defaultRNGSeed is the fixed seed behind a nil *rand.Rand: same inputs,
	// same stream, every run and platform. Arbitrary but stable.
	defaultRNGSeed int64 = 1
)

// Internal panic messages (no magic strings).
const (
	panicWorkersInvalid = "tensor: WithWorkers: n must be >= 1"
	panicTolInvalid     = "tensor: WithTolerances: atol and rtol must be finite, non-negative"
	panicHermTolInvalid = "tensor: WithHermitianTol: tol must be finite, non-negative"
	panicOrthAlgInvalid = "tensor: WithOrthAlg: unknown algorithm"
	panicSVDAlgInvalid  = "tensor: WithSVDAlg: unknown algorithm"
)

// Option mutates internal options. Safe to apply repeatedly (idempotent).
// Constructors MUST panic only on nonsensical values (programmer error).
type Option func(*Options)

// Options stores the effective configuration after applying Option setters.
// It is intentionally opaque; public entry points accept ...Option and
// resolve them via gatherOptions.
type Options struct {
	workers int               // DefaultWorkers; resolved in gatherOptions
	trunc   TruncationScheme  // TruncNone
	orthAlg OrthAlg           // OrthQRPos
	svdAlg  SVDAlg            // SVDDefault
	atol    float64           // DefaultAtol
	rtol    float64           // DefaultRtol
	hermTol float64           // DefaultHermitianTol
}

// WithWorkers caps the per-sector worker pool at n goroutines.
// Panics when n < 1 (programmer error). n = 1 is sequential execution.
func WithWorkers(n int) Option {
	if n < 1 {
		panic(panicWorkersInvalid)
	}

	return func(o *Options) { o.workers = n }
}

// WithSequential forces sequential per-sector execution; shorthand for
// WithWorkers(1). Useful for deterministic profiling and leak hunting.
func WithSequential() Option {
	return func(o *Options) { o.workers = 1 }
}

// WithTruncation installs the truncation scheme consumed by TSVD.
// Schemes are value objects built by TruncNone/TruncError/TruncDim/
// TruncSpace/TruncBelow; their constructors validate eagerly.
func WithTruncation(ts TruncationScheme) Option {
	return func(o *Options) { o.trunc = ts }
}

// WithOrthAlg selects the orthogonalization algorithm for LeftOrth,
// RightOrth, LeftNull and RightNull. Panics on an unknown tag.
func WithOrthAlg(a OrthAlg) Option {
	if a != OrthQRPos && a != OrthSVD {
		panic(panicOrthAlgInvalid)
	}

	return func(o *Options) { o.orthAlg = a }
}

// WithSVDAlg selects the per-block singular-value solver for TSVD and the
// SVD-based orthogonalization paths. Panics on an unknown tag.
func WithSVDAlg(a SVDAlg) Option {
	if a != SVDDefault && a != SVDJacobi {
		panic(panicSVDAlgInvalid)
	}

	return func(o *Options) { o.svdAlg = a }
}

// WithTolerances sets the absolute and relative parts of the rank threshold
// max(atol, rtol·‖t‖) used by the orthogonalization and null-space routines.
// Panics on non-finite or negative values.
func WithTolerances(atol, rtol float64) Option {
	if !finite(atol) || !finite(rtol) || atol < 0 || rtol < 0 {
		panic(panicTolInvalid)
	}

	return func(o *Options) {
		o.atol = atol
		o.rtol = rtol
	}
}

// WithHermitianTol sets the per-entry symmetry tolerance of Eigen's runtime
// hermiticity check. Panics on non-finite or negative values.
func WithHermitianTol(tol float64) Option {
	if !finite(tol) || tol < 0 {
		panic(panicHermTolInvalid)
	}

	return func(o *Options) { o.hermTol = tol }
}

// gatherOptions applies opts over the documented defaults and resolves
// derived invariants (worker count). Internal; call once per operation.
func gatherOptions(opts ...Option) Options {
	o := Options{
		workers: DefaultWorkers,
		trunc:   TruncNone(),
		orthAlg: OrthQRPos,
		svdAlg:  SVDDefault,
		atol:    DefaultAtol,
		rtol:    DefaultRtol,
		hermTol: DefaultHermitianTol,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers == 0 {
		o.workers = runtime.GOMAXPROCS(0)
	}

	return o
}

// defaultRNG returns the deterministic stream behind a nil *rand.Rand.
// Policy mirrors construction: rng == nil ⇒ fixed default seed.
func defaultRNG(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}

	return rand.New(rand.NewSource(defaultRNGSeed))
}

// finite reports whether x is neither NaN nor ±Inf.
func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
