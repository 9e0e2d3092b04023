// SPDX-License-Identifier: MIT
// Package tensor: sentinel error set.
// Every exported operation returns one of these sentinels, optionally wrapped
// with fmt.Errorf("Ctx: %w", ErrX). Callers match with errors.Is.

package tensor

import "errors"

var (
	// ErrBadShape is returned when a requested extent is negative.
	ErrBadShape = errors.New("tensor: invalid shape")

	// ErrOutOfRange indicates that an index is outside the tensor bounds
	// or that the number of indices does not match the rank.
	ErrOutOfRange = errors.New("tensor: index out of range")

	// ErrDimensionMismatch indicates that supplied values do not fit the
	// shape of the target parameter.
	ErrDimensionMismatch = errors.New("tensor: dimension mismatch")

	// ErrNaNInf signals a NaN or ±Inf value written into a parameter.
	ErrNaNInf = errors.New("tensor: NaN or Inf encountered")

	// ErrNotBoolean signals a value other than 0/1 written into a boolean tensor.
	ErrNotBoolean = errors.New("tensor: non-boolean value")

	// ErrUnknownSet indicates that a signature references an undeclared set.
	ErrUnknownSet = errors.New("tensor: unknown set")

	// ErrUnknownMember indicates that a categorical value or row key is not a
	// member of the relevant set.
	ErrUnknownMember = errors.New("tensor: unknown set member")

	// ErrDuplicateSet is returned when a set label is defined twice.
	ErrDuplicateSet = errors.New("tensor: duplicate set")

	// ErrDuplicateMember is returned when a set lists the same member twice.
	ErrDuplicateMember = errors.New("tensor: duplicate set member")

	// ErrDuplicateParameter is returned when a parameter name is declared twice.
	ErrDuplicateParameter = errors.New("tensor: duplicate parameter")

	// ErrUnknownParameter is returned when populating an undeclared parameter.
	ErrUnknownParameter = errors.New("tensor: unknown parameter")

	// ErrNilTensor indicates that a nil tensor was passed where one is required.
	ErrNilTensor = errors.New("tensor: nil tensor")
)
