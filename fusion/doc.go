// Package fusion enumerates fusion trees and the transforms between them.
//
// 🚀 What is a fusion tree?
//
//	Given a tuple of uncoupled sectors (a₁,…,aₙ), a fusion tree is one
//	specific way they fuse to a single coupled sector c.  This package
//	uses the left-canonical shape throughout:
//
//	    a₁   a₂   a₃   …   aₙ
//	     \   /    |        |
//	      x₁ ─────┘        |
//	       \               |
//	        x₂ ─ … ─ xₙ₋₂ ─┘
//	         \
//	          c
//
//	Inner holds the n−2 internal lines x₁…xₙ₋₂.  For abelian symmetries
//	every tuple admits at most one tree; non-abelian symmetries branch at
//	every fold.
//
// ✨ What the package provides:
//   - Trees      — exhaustive enumeration in canonical order
//   - Couplings  — the attainable coupled sectors of a tuple
//   - Tree.Key / Tree.Compare — stable identity and THE canonical tree order
//   - PermutePair / Recoupler — re-expressing a (row tree, column tree) pair
//     after legs move across the domain/codomain boundary
//
// Determinism: enumeration order is a pure function of the input tuple and
// the sectors' canonical order; no map iteration, no randomness.
//
// Limitation (documented, deliberate): trees carry no multiplicity vertex
// labels, so symmetries with fusion multiplicities > 1 are out of scope;
// the shipped styles are all multiplicity-free.
package fusion
