// SPDX-License-Identifier: MIT
// Package validate holds the structural and value-range checks applied to
// entity tables, time series and assembled parameters.
//
// Fatal conditions are returned as *Error wrapping one of the sentinels
// below; soft anomalies are written to the supplied logger and never
// returned.
package validate

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingColumn indicates that a mandatory column is absent from a table.
	ErrMissingColumn = errors.New("validate: mandatory column missing")

	// ErrNotNumeric indicates a text value in a column that must be numeric.
	ErrNotNumeric = errors.New("validate: non-numeric value")

	// ErrNotText indicates a numeric value in a column that must hold text.
	ErrNotText = errors.New("validate: numeric value in text column")

	// ErrMissingValue indicates an empty cell or an incomplete series where a value is required.
	ErrMissingValue = errors.New("validate: missing value")

	// ErrDuplicateID indicates two entity rows sharing one identifier.
	ErrDuplicateID = errors.New("validate: duplicate identifier")

	// ErrBelowMinimum indicates a value under its hard lower bound.
	ErrBelowMinimum = errors.New("validate: value below lower bound")

	// ErrAboveMaximum indicates a value over its hard upper bound.
	ErrAboveMaximum = errors.New("validate: value above upper bound")

	// ErrNegative indicates a negative availability factor or flow maximum.
	ErrNegative = errors.New("validate: negative value")

	// ErrNaNInf indicates a NaN or infinite value where a finite one is required.
	ErrNaNInf = errors.New("validate: NaN or Inf value")

	// ErrMinAboveMax indicates a lower bound exceeding its upper bound.
	ErrMinAboveMax = errors.New("validate: minimum above maximum")

	// ErrDuplicateIndex indicates a repeated timestamp in a time-indexed table.
	ErrDuplicateIndex = errors.New("validate: duplicate timestamp")

	// ErrShape indicates two tensors compared element-wise with different shapes.
	ErrShape = errors.New("validate: shape mismatch")
)

// Error is a fatal validation failure with its location.
// Row and Step are -1 when they do not apply.
type Error struct {
	Check   string
	Subject string
	Entity  string
	Column  string
	Row     int
	Step    int
	Err     error
}

func newError(check, subject string, err error) *Error {
	return &Error{Check: check, Subject: subject, Row: -1, Step: -1, Err: err}
}

func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s(%s)", e.Check, e.Subject)
	if e.Entity != "" {
		fmt.Fprintf(&sb, " entity %q", e.Entity)
	}
	if e.Column != "" {
		fmt.Fprintf(&sb, " column %q", e.Column)
	}
	if e.Row >= 0 {
		fmt.Fprintf(&sb, " row %d", e.Row)
	}
	if e.Step >= 0 {
		fmt.Fprintf(&sb, " step %d", e.Step)
	}
	fmt.Fprintf(&sb, ": %v", e.Err)

	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }
