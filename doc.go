// Package symtensor is an in-memory engine for symmetric (block-sparse)
// tensor maps — linear maps between graded vector spaces that store only
// the symmetry-allowed blocks and run every heavy operation blockwise.
//
// 🚀 What is symtensor?
//
//	A deterministic, library-shaped numerical core that brings together:
//		• Sector algebra: trivial, ℤₙ and U(1) symmetry labels with fusion rules
//		• Graded spaces: per-sector dimension bookkeeping, duals, fused products
//		• Fusion trees: canonical enumeration and tree-pair permutation transforms
//		• TensorMap: block-diagonal storage keyed by coupled sector
//		• Algebra: add, scale, compose, adjoint, trace, norms
//		• Index permutation: repartition legs across the domain/codomain boundary
//		• Factorizations: truncated SVD, QR/LQ orthogonalization, null spaces,
//		  eigendecomposition — all per coupled sector, then reassembled
//
// ✨ Why choose symtensor?
//
//   - Schur-exact – only symmetry-allowed data is ever stored or touched
//   - Deterministic – one canonical order for sectors, tuples and trees,
//     identical across every operation and every run
//   - Fail-fast – sentinel errors for every misuse, no panics on user input
//   - Parallel by construction – per-sector work races on nothing
//
// Everything is organized under four subpackages:
//
//	sector/ — symmetry sectors: labels, duals, fusion rules, canonical order
//	fusion/ — fusion trees: enumeration, canonical order, pair transforms
//	space/  — graded index spaces and ordered products of them
//	tensor/ — the engine: TensorMap, algebra, permutation, factorizations
//
// Quick ASCII picture of a block-diagonal tensor map over sectors {0, 1}:
//
//	            ┌─────────┬─────────┐
//	            │ block 0 │    0    │
//	            ├─────────┼─────────┤
//	            │    0    │ block 1 │
//	            └─────────┴─────────┘
//
//	only the two diagonal blocks exist in memory.
//
// Dense per-block kernels come from gonum (multiply, SVD, QR, LQ, eigen);
// two in-house kernels (rectangular Householder QR, one-sided Jacobi SVD)
// cover the shapes and algorithm choices gonum does not expose.
//
//	go get github.com/katalvlaran/symtensor/tensor
package symtensor
