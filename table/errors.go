// SPDX-License-Identifier: MIT

package table

import "errors"

var (
	// ErrDuplicateIndex is returned when a time index contains the same timestamp twice.
	ErrDuplicateIndex = errors.New("table: duplicate timestamp")

	// ErrDuplicateColumn is returned when a header names the same column twice.
	ErrDuplicateColumn = errors.New("table: duplicate column")

	// ErrLengthMismatch is returned when a column length differs from the index length.
	ErrLengthMismatch = errors.New("table: column length mismatch")

	// ErrMissingFile is returned when a per-key file expanded from a template does not exist.
	ErrMissingFile = errors.New("table: missing file")

	// ErrBadTimestamp is returned when an index cell cannot be parsed as a timestamp.
	ErrBadTimestamp = errors.New("table: invalid timestamp")

	// ErrBadValue is returned when a data cell cannot be parsed as a number.
	ErrBadValue = errors.New("table: invalid value")

	// ErrEmptyFile is returned when a file has no header row.
	ErrEmptyFile = errors.New("table: empty file")
)
