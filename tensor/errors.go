// SPDX-License-Identifier: MIT

// Package tensor: sentinel error set (unified, consistent).
// This file defines ONLY package-level sentinel errors plus the sector-tagged
// wrapper for numerical failures. All operations MUST return these sentinels
// and tests MUST check them via errors.Is. No operation panics on
// user-triggered conditions; panics are reserved for programmer errors in
// option constructors.
package tensor

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/symtensor/sector"
)

// NOTE ON NAMING & PREFIXING
// --------------------------
// Every message is prefixed with "tensor: ..." for consistency and easy
// grepping. Do not %w-wrap these sentinels when returning directly; when
// context is essential, wrap with fmt.Errorf("Op: ctx: %w", ErrX) at the
// detection site — callers still match via errors.Is.

var (
	// ErrNilTensor indicates a nil *TensorMap receiver or argument.
	ErrNilTensor = errors.New("tensor: nil tensor map")

	// ErrSpaceMismatch indicates incompatible domain/codomain structure:
	// algebra over unequal spaces, composition violating I3, endomorphism
	// checks, or a truncation target foreign to the tensor's symmetry.
	ErrSpaceMismatch = errors.New("tensor: space mismatch")

	// ErrInvalidPermutation indicates a malformed index-partition request:
	// (p1, p2) is not an exact permutation of all combined legs.
	ErrInvalidPermutation = errors.New("tensor: invalid index permutation")

	// ErrNoSuchSector indicates block addressing with a coupled sector the
	// tensor map does not carry.
	ErrNoSuchSector = errors.New("tensor: no block for this coupled sector")

	// ErrMismatchedCoupledSector indicates subblock addressing with a tree
	// pair whose coupled sectors differ.
	ErrMismatchedCoupledSector = errors.New("tensor: tree pair couples to different sectors")

	// ErrNoSuchTree indicates subblock addressing with a fusion tree absent
	// from the block's canonical layout.
	ErrNoSuchTree = errors.New("tensor: fusion tree not in block layout")

	// ErrNotInnerProduct indicates a norm- or adjoint-sensitive operation on
	// a space without a distinguished inner product (Generic style).
	ErrNotInnerProduct = errors.New("tensor: space carries no inner product")

	// ErrNotTrivial indicates a raw-payload operation on a tensor map whose
	// symmetry carries structure; raw views exist for the trivial sector only.
	ErrNotTrivial = errors.New("tensor: raw access requires the trivial symmetry")

	// ErrShape indicates a supplied payload whose length or per-sector shape
	// disagrees with the block layout at construction.
	ErrShape = errors.New("tensor: payload shape mismatch")

	// ErrNonFinite indicates a NaN or ±Inf value in a supplied payload;
	// construction validates finiteness once, mutation thereafter does not.
	ErrNonFinite = errors.New("tensor: NaN or Inf in payload")

	// ErrRankDeficient indicates a QR/LQ orthogonalization on a block whose
	// diagonal falls below the rank threshold; callers switch to OrthSVD.
	ErrRankDeficient = errors.New("tensor: rank-deficient block, use the SVD path")

	// ErrNumericalFailure indicates a per-sector dense solver that did not
	// converge. It arrives wrapped in a *SectorError naming the sector and
	// is never auto-retried; remediation (different algorithm, loosened
	// tolerance) is the caller's choice.
	ErrNumericalFailure = errors.New("tensor: per-sector solver did not converge")
)

// SectorError tags a failure with the operation and the offending coupled
// sector. It wraps the underlying sentinel, so errors.Is still matches.
type SectorError struct {
	// Op is the public operation that failed, e.g. "TSVD".
	Op string
	// Sector is the coupled sector whose per-block solve failed.
	Sector sector.Sector
	// Err is the underlying sentinel (ErrNumericalFailure, ErrRankDeficient).
	Err error
}

// Error renders "Op: sector <s>: <underlying>".
func (e *SectorError) Error() string {
	return fmt.Sprintf("%s: sector %s: %v", e.Op, e.Sector, e.Err)
}

// Unwrap exposes the underlying sentinel to errors.Is / errors.As.
func (e *SectorError) Unwrap() error { return e.Err }

// sectorErrorf builds the tagged wrapper; err must be non-nil.
func sectorErrorf(op string, c sector.Sector, err error) error {
	return &SectorError{Op: op, Sector: c, Err: err}
}
