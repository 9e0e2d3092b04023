// SPDX-License-Identifier: MIT
// Package tensor provides the dense multi-dimensional parameter storage used
// to hand data to the market-clearing solver, the named discrete sets that
// index it, and a Builder that declares and populates parameters by set
// signature.
//
// Tensor is a row-major, flat-slice container in the same spirit as a dense
// matrix: shape and strides are fixed at construction, every accessor
// returns an error instead of panicking, and NaN/±Inf values are rejected at
// the write boundary.
package tensor

import (
	"fmt"
	"math"
	"strings"
)

// tensorErrorf wraps an underlying error with Tensor method context.
func tensorErrorf(method string, idx []int, err error) error {
	return fmt.Errorf("Tensor.%s(%v): %w", method, idx, err)
}

// Tensor is a dense row-major array of float64 values.
// shape holds the extent of each axis, strides the flat step of each axis.
// A boolean tensor stores 0/1 and refuses any other value.
type Tensor struct {
	shape   []int     // extent per axis
	strides []int     // flat step per axis
	data    []float64 // flat backing storage, len == product(shape)
	boolean bool      // 0/1 only
}

// New creates a zero-filled tensor with the given shape.
// A zero extent is legal and produces an empty tensor (an empty set is a
// valid index domain). A rank-0 tensor holds a single scalar.
// Stage 1 (Validate): every extent must be ≥ 0.
// Stage 2 (Prepare): compute strides from the last axis backwards.
// Stage 3 (Finalize): allocate backing storage.
// Complexity: O(product(shape)).
func New(shape ...int) (*Tensor, error) {
	var (
		n   = 1
		i   int
		dim int
	)
	for i, dim = range shape {
		if dim < 0 {
			return nil, fmt.Errorf("New: axis %d extent %d: %w", i, dim, ErrBadShape)
		}
		n *= dim
	}

	strides := make([]int, len(shape))
	step := 1
	for i = len(shape) - 1; i >= 0; i-- {
		strides[i] = step
		step *= shape[i]
	}

	return &Tensor{
		shape:   append([]int(nil), shape...),
		strides: strides,
		data:    make([]float64, n),
	}, nil
}

// NewBool creates a zero-filled (all false) boolean tensor.
// Complexity: O(product(shape)).
func NewBool(shape ...int) (*Tensor, error) {
	t, err := New(shape...)
	if err != nil {
		return nil, err
	}
	t.boolean = true

	return t, nil
}

// Shape returns a copy of the tensor extents.
func (t *Tensor) Shape() []int { return append([]int(nil), t.shape...) }

// Rank returns the number of axes.
func (t *Tensor) Rank() int { return len(t.shape) }

// Len returns the total number of cells.
func (t *Tensor) Len() int { return len(t.data) }

// Bool reports whether the tensor is boolean.
func (t *Tensor) Bool() bool { return t.boolean }

// offset computes the flat index of idx or returns ErrOutOfRange.
// Complexity: O(rank).
func (t *Tensor) offset(method string, idx []int) (int, error) {
	if len(idx) != len(t.shape) {
		return 0, tensorErrorf(method, idx, ErrOutOfRange)
	}
	off := 0
	for i, v := range idx {
		if v < 0 || v >= t.shape[i] {
			return 0, tensorErrorf(method, idx, ErrOutOfRange)
		}
		off += v * t.strides[i]
	}

	return off, nil
}

// check applies the write policy: finite values only, 0/1 for booleans.
func (t *Tensor) check(method string, idx []int, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return tensorErrorf(method, idx, ErrNaNInf)
	}
	if t.boolean && v != 0 && v != 1 {
		return tensorErrorf(method, idx, ErrNotBoolean)
	}

	return nil
}

// At retrieves the element at idx.
// Complexity: O(rank).
func (t *Tensor) At(idx ...int) (float64, error) {
	off, err := t.offset("At", idx)
	if err != nil {
		return 0, err
	}

	return t.data[off], nil
}

// Set assigns v at idx.
// Stage 1 (Validate): bounds check, then numeric policy.
// Stage 2 (Execute): write into data slice.
// Complexity: O(rank).
func (t *Tensor) Set(v float64, idx ...int) error {
	off, err := t.offset("Set", idx)
	if err != nil {
		return err
	}
	if err = t.check("Set", idx, v); err != nil {
		return err
	}
	t.data[off] = v

	return nil
}

// SetBool assigns true (1) or false (0) at idx.
func (t *Tensor) SetBool(b bool, idx ...int) error {
	if b {
		return t.Set(1, idx...)
	}

	return t.Set(0, idx...)
}

// Fill assigns v to every cell.
// Complexity: O(Len).
func (t *Tensor) Fill(v float64) error {
	if err := t.check("Fill", nil, v); err != nil {
		return err
	}
	for i := range t.data {
		t.data[i] = v
	}

	return nil
}

// SetRow writes values along the last axis at the position given by the
// leading indices (len(prefix) == Rank()-1).
// Stage 1 (Validate): prefix bounds, row length, numeric policy for every value.
// Stage 2 (Execute): copy into the contiguous last-axis run.
// Complexity: O(rank + len(values)).
func (t *Tensor) SetRow(values []float64, prefix ...int) error {
	if len(t.shape) == 0 || len(prefix) != len(t.shape)-1 {
		return tensorErrorf("SetRow", prefix, ErrOutOfRange)
	}
	last := t.shape[len(t.shape)-1]
	if len(values) != last {
		return fmt.Errorf("Tensor.SetRow(%v): %d values for extent %d: %w",
			prefix, len(values), last, ErrDimensionMismatch)
	}
	off := 0
	for i, v := range prefix {
		if v < 0 || v >= t.shape[i] {
			return tensorErrorf("SetRow", prefix, ErrOutOfRange)
		}
		off += v * t.strides[i]
	}
	for j, v := range values {
		if err := t.check("SetRow", append(append([]int(nil), prefix...), j), v); err != nil {
			return err
		}
	}
	copy(t.data[off:off+last], values)

	return nil
}

// Row returns a copy of the last-axis run at the given leading indices.
func (t *Tensor) Row(prefix ...int) ([]float64, error) {
	if len(t.shape) == 0 || len(prefix) != len(t.shape)-1 {
		return nil, tensorErrorf("Row", prefix, ErrOutOfRange)
	}
	off := 0
	for i, v := range prefix {
		if v < 0 || v >= t.shape[i] {
			return nil, tensorErrorf("Row", prefix, ErrOutOfRange)
		}
		off += v * t.strides[i]
	}
	last := t.shape[len(t.shape)-1]

	return append([]float64(nil), t.data[off:off+last]...), nil
}

// Data returns a copy of the flat row-major storage.
func (t *Tensor) Data() []float64 { return append([]float64(nil), t.data...) }

// Unravel converts a flat offset into per-axis indices.
// Complexity: O(rank).
func (t *Tensor) Unravel(off int) ([]int, error) {
	if off < 0 || off >= len(t.data) {
		return nil, tensorErrorf("Unravel", []int{off}, ErrOutOfRange)
	}
	idx := make([]int, len(t.shape))
	for i, s := range t.strides {
		idx[i] = off / s
		off %= s
	}

	return idx, nil
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	return &Tensor{
		shape:   append([]int(nil), t.shape...),
		strides: append([]int(nil), t.strides...),
		data:    append([]float64(nil), t.data...),
		boolean: t.boolean,
	}
}

// Equal reports whether o has the same kind, shape and cell values.
// Complexity: O(Len).
func (t *Tensor) Equal(o *Tensor) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.boolean != o.boolean || len(t.shape) != len(o.shape) || len(t.data) != len(o.data) {
		return false
	}
	for i := range t.shape {
		if t.shape[i] != o.shape[i] {
			return false
		}
	}
	for i := range t.data {
		if t.data[i] != o.data[i] {
			return false
		}
	}

	return true
}

// String implements fmt.Stringer for debugging: shape followed by the flat data.
func (t *Tensor) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tensor%v[", t.shape)
	for i, v := range t.data {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%g", v)
	}
	sb.WriteString("]")

	return sb.String()
}
