// Package sector defines the symmetry labels the whole engine is graded by.
//
// 🚀 What is a sector?
//
//	A sector is a label for an irreducible representation of the symmetry
//	acting on a tensor's indices.  Every graded space assigns a dimension
//	to each sector it carries, and every tensor map stores one dense block
//	per coupled sector — the single sector to which the index sectors
//	jointly fuse.
//
// ✨ Shipped symmetries (all abelian, bosonic):
//   - Trivial — the "no symmetry" sector; one label, everything fuses to it
//   - ZN      — cyclic group ℤₙ charges (Z2 convenience constructor included)
//   - U1      — integer U(1) charges with additive fusion
//
// Design rules:
//   - Sectors are small comparable value types: they are used as map keys
//     and compared with == in hot paths.
//   - One symmetry per computation: Symmetry() tags must agree across every
//     space of a product and across both sides of a tensor map.
//   - Compare defines THE canonical total order within one symmetry; all
//     deterministic iteration in the engine derives from it.
//   - FusionStyle is a capability tag, not a type hierarchy: Abelian styles
//     fuse to exactly one sector, NonAbelian styles may fuse to several.
//
// Custom symmetries implement the Sector interface; non-abelian ones must
// additionally implement fusion.Recoupler to unlock index permutation.
package sector
