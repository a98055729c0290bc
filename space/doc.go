// Package space does the dimension bookkeeping of graded vector spaces.
//
// 🚀 What is a graded space?
//
//	A Space is a finite-dimensional vector space split into symmetry
//	sectors: each carried sector has a multiplicity (its dimension inside
//	the space).  A Product is an ordered tuple of such spaces — the
//	codomain or domain of a tensor map.
//
// ✨ What the package provides:
//   - Space   — immutable value; per-sector dims, duals, style tag
//   - Product — ordered tuple; total dims, attainable coupled sectors,
//     per-coupled-sector block dimensions, deterministic tuple iteration
//   - Fuse    — collapse a Product into the single equivalent Space
//
// Determinism rules (the engine's layout invariants build on these):
//   - Sectors() always lists sectors in the canonical order of the
//     symmetry, after dual-mapping.
//   - EachSectorTuple walks tuples in lexicographic canonical order — an
//     odometer over the per-leg sector lists, never map iteration.
//   - Equality is structural: same grading, same dual flag, same style.
//
// Style is a capability tag, not a hierarchy: Euclidean spaces carry the
// standard inner product (adjoints and norms are allowed); Generic spaces
// refuse those operations with tensor.ErrNotInnerProduct downstream.
package space
