// Package tensor is the block-sparse tensor-map engine.
//
// 🚀 What is a TensorMap?
//
//	A TensorMap is a linear map between two products of graded spaces
//	(domain → codomain) that stores only the symmetry-allowed data: one
//	dense float64 block per coupled sector, living in a single arena.
//	Schur's lemma guarantees everything outside those blocks is zero, so
//	it is never stored and never touched.
//
// ✨ What the package provides:
//   - Construction: zeros, per-sector dictionaries, raw payloads (trivial
//     symmetry), generators, seeded randomness, identities, clones
//   - Views: Block / Subblock / Raw — all alias the owning arena
//   - Algebra: Add, Scale, Compose, Adjoint (lazy view), Dot, Norm, Trace
//   - Permute / Repartition: move legs across the domain/codomain boundary
//   - Factorizations: TSVD with global truncation, LeftOrth/RightOrth,
//     LeftNull/RightNull, EigH/Eig/Eigen — per coupled sector, reassembled
//
// Layout invariants (the engine's backbone):
//   - I1 — blocks exist exactly for the coupled sectors attainable from
//     BOTH sides; they are allocated once and never resized.
//   - I2 — within a block, rows partition into contiguous ranges per
//     fusion tree under one fixed canonical order (tuples lexicographic,
//     trees canonical), columns analogously; the layout is a pure function
//     of the product, so every operation sees the same ordering.
//   - I3 — composition demands structural space equality, not merely
//     matching dimensions.
//
// Concurrency: per-sector work is embarrassingly parallel — each closure
// touches one sector's disjoint arena range, so the only synchronization is
// the final gather. Configure with WithWorkers / WithSequential. Read-only
// borrows are unrestricted; callers must serialize in-place mutators
// targeting one TensorMap.
//
// Failure taxonomy: sentinel errors in errors.go, matched via errors.Is;
// numerical failures arrive wrapped in a *SectorError naming the offending
// coupled sector and are never auto-retried. A failing multi-sector
// operation commits nothing: inputs keep their prior state.
//
// Dense kernels: gonum/mat (multiply, SVD, QR, LQ, eigensolvers) plus two
// in-house fallbacks — a rectangular Householder QR for the wide/tall
// shapes gonum's QR/LQ refuse, and a one-sided Jacobi SVD selectable via
// WithSVDAlg as the remediation path for non-converging blocks.
package tensor
