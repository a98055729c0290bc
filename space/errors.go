// SPDX-License-Identifier: MIT

// Package space: sentinel error set.
// All constructors MUST return these sentinels and tests MUST check them via
// errors.Is. Messages are prefixed "space: ..." for grepping; wrap with
// fmt.Errorf("ctx: %w", ErrX) when context is essential.
package space

import "errors"

var (
	// ErrBadDimension is returned when a grade carries a non-positive
	// multiplicity or a trivial space is requested with dimension <= 0.
	ErrBadDimension = errors.New("space: sector multiplicity must be > 0")

	// ErrDuplicateSector is returned when one sector appears twice in a
	// grading; merge the multiplicities instead.
	ErrDuplicateSector = errors.New("space: duplicate sector in grading")

	// ErrMixedSymmetry is returned when a grading or a product mixes sectors
	// of different symmetries.
	ErrMixedSymmetry = errors.New("space: sectors of different symmetries")

	// ErrEmptySpace is returned when a space is built with no grades at all;
	// zero-dimensional spaces are not representable.
	ErrEmptySpace = errors.New("space: grading must carry at least one sector")
)
