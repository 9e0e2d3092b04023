// SPDX-License-Identifier: MIT

package tensor

import (
	"fmt"
)

// Init describes the initial content of a freshly declared parameter.
type Init struct {
	value   float64
	boolean bool
}

// Zero initializes a numeric parameter with 0.
func Zero() Init { return Init{} }

// False initializes a boolean parameter with false everywhere.
func False() Init { return Init{boolean: true} }

// Const initializes a numeric parameter with v everywhere.
func Const(v float64) Init { return Init{value: v} }

// Parameter is a named tensor together with its set signature.
type Parameter struct {
	Name      string
	Signature []string
	Value     *Tensor
}

// Series is a source of named rows, such as a time-indexed table whose
// column names are set members.
type Series interface {
	Column(name string) ([]float64, bool)
}

// Categorical is a source of categorical columns, such as an entity table.
type Categorical interface {
	Strings(column string) []string
}

// Encoding declares a one-hot parameter: for every member of the first axis
// the value found in Column selects the position on the second axis.
type Encoding struct {
	Parameter string
	Column    string
}

// Builder declares parameters against a Sets registry and populates them.
// Parameters keep their declaration order.
type Builder struct {
	sets   *Sets
	order  []string
	params map[string]*Parameter
}

// NewBuilder returns a Builder bound to sets.
func NewBuilder(sets *Sets) *Builder {
	return &Builder{sets: sets, params: make(map[string]*Parameter)}
}

// Sets returns the registry the builder resolves signatures against.
func (b *Builder) Sets() *Sets { return b.sets }

// Declare creates parameter name with the given signature and initial value.
//
// Implementation:
//   - Stage 1 (Validate): unique name, every label of the signature defined.
//   - Stage 2 (Prepare): allocate a tensor shaped by the set cardinalities.
//   - Stage 3 (Finalize): apply the initial value.
//
// Behavior highlights:
//   - The signature is copied; later changes by the caller are not seen.
//   - An empty set yields a zero-length axis, not an error.
//   - Declaration order is the order returned by Parameters.
//
// Inputs:
//   - name: parameter name, unique within the builder.
//   - signature: set labels, one per axis, outermost first.
//   - init: Zero, False or Const; False makes the tensor boolean.
//
// Returns:
//   - error: ErrDuplicateParameter, ErrUnknownSet, or ErrNaNInf for a
//     non-finite Const.
//
// Complexity: O(product(shape)).
func (b *Builder) Declare(name string, signature []string, init Init) error {
	if _, ok := b.params[name]; ok {
		return fmt.Errorf("Declare(%q): %w", name, ErrDuplicateParameter)
	}
	shape, err := b.sets.Shape(signature)
	if err != nil {
		return fmt.Errorf("Declare(%q): %w", name, err)
	}

	var t *Tensor
	if init.boolean {
		t, err = NewBool(shape...)
	} else {
		t, err = New(shape...)
	}
	if err != nil {
		return fmt.Errorf("Declare(%q): %w", name, err)
	}
	if init.value != 0 {
		if err = t.Fill(init.value); err != nil {
			return fmt.Errorf("Declare(%q): %w", name, err)
		}
	}

	b.order = append(b.order, name)
	b.params[name] = &Parameter{Name: name, Signature: append([]string(nil), signature...), Value: t}

	return nil
}

// Parameter returns the declared parameter name.
func (b *Builder) Parameter(name string) (*Parameter, error) {
	p, ok := b.params[name]
	if !ok {
		return nil, fmt.Errorf("Parameter(%q): %w", name, ErrUnknownParameter)
	}

	return p, nil
}

// Parameters returns every parameter in declaration order.
func (b *Builder) Parameters() []*Parameter {
	out := make([]*Parameter, len(b.order))
	for i, name := range b.order {
		out[i] = b.params[name]
	}

	return out
}

// rank fetches name and checks its rank.
func (b *Builder) rank(method, name string, want int) (*Parameter, error) {
	p, err := b.Parameter(name)
	if err != nil {
		return nil, err
	}
	if p.Value.Rank() != want {
		return nil, fmt.Errorf("%s(%q): rank %d, want %d: %w",
			method, name, p.Value.Rank(), want, ErrDimensionMismatch)
	}

	return p, nil
}

// Assign copies values into a one-axis parameter; the length must match.
// Complexity: O(len(values)).
func (b *Builder) Assign(name string, values []float64) error {
	p, err := b.rank("Assign", name, 1)
	if err != nil {
		return err
	}
	if err = p.Value.SetRow(values); err != nil {
		return fmt.Errorf("Assign(%q): %w", name, err)
	}

	return nil
}

// AssignSeries fills a two-axis parameter row by row. For every member of
// the first axis the row named after the member is copied from src; members
// without a row keep the initial value. Row length must equal the second
// axis extent and NaN/±Inf values are rejected.
// Complexity: O(product(shape)).
func (b *Builder) AssignSeries(name string, src Series) error {
	p, err := b.rank("AssignSeries", name, 2)
	if err != nil {
		return err
	}
	members, err := b.sets.Members(p.Signature[0])
	if err != nil {
		return fmt.Errorf("AssignSeries(%q): %w", name, err)
	}
	for i, m := range members {
		row, ok := src.Column(m)
		if !ok {
			continue
		}
		if err = p.Value.SetRow(row, i); err != nil {
			return fmt.Errorf("AssignSeries(%q) row %q: %w", name, m, err)
		}
	}

	return nil
}

// AssignSlice fills the two-axis slice of a three-axis parameter selected by
// outer, a member of the first axis. Rows are located by the members of the
// second axis as in AssignSeries.
// Complexity: O(shape[1]*shape[2]).
func (b *Builder) AssignSlice(name, outer string, src Series) error {
	p, err := b.rank("AssignSlice", name, 3)
	if err != nil {
		return err
	}
	oi, err := b.sets.Index(p.Signature[0], outer)
	if err != nil {
		return fmt.Errorf("AssignSlice(%q): %w", name, err)
	}
	members, err := b.sets.Members(p.Signature[1])
	if err != nil {
		return fmt.Errorf("AssignSlice(%q): %w", name, err)
	}
	for j, m := range members {
		row, ok := src.Column(m)
		if !ok {
			continue
		}
		if err = p.Value.SetRow(row, oi, j); err != nil {
			return fmt.Errorf("AssignSlice(%q) [%q %q]: %w", name, outer, m, err)
		}
	}

	return nil
}

// Encode populates the boolean parameter enc.Parameter as a one-hot
// encoding: for the i-th member of the first axis, the cell at the position
// of src.Strings(enc.Column)[i] on the second axis is set to true.
//
// Implementation:
//   - Stage 1 (Validate): boolean rank-2 parameter, one value per first-axis member.
//   - Stage 2 (Execute): locate every category; unknown values are fatal.
//
// Behavior highlights:
//   - Cells already true stay true; Encode never clears.
//   - Row i of src maps to member i of the first axis, so src must list its
//     rows in set order.
//
// Inputs:
//   - enc: the parameter to fill and the categorical column to read.
//   - src: any source of string columns, typically an entity table.
//
// Returns:
//   - error: ErrUnknownParameter, ErrNotBoolean, ErrDimensionMismatch, or
//     ErrUnknownMember naming the column and row of an unknown category.
//
// Complexity: O(n) for n first-axis members.
func (b *Builder) Encode(enc Encoding, src Categorical) error {
	p, err := b.rank("Encode", enc.Parameter, 2)
	if err != nil {
		return err
	}
	if !p.Value.Bool() {
		return fmt.Errorf("Encode(%q): numeric parameter: %w", enc.Parameter, ErrNotBoolean)
	}
	values := src.Strings(enc.Column)
	shape := p.Value.Shape()
	if len(values) != shape[0] {
		return fmt.Errorf("Encode(%q): %d values for %d members: %w",
			enc.Parameter, len(values), shape[0], ErrDimensionMismatch)
	}
	for i, v := range values {
		j, err := b.sets.Index(p.Signature[1], v)
		if err != nil {
			return fmt.Errorf("Encode(%q) column %q row %d: %w", enc.Parameter, enc.Column, i, err)
		}
		if err = p.Value.SetBool(true, i, j); err != nil {
			return fmt.Errorf("Encode(%q): %w", enc.Parameter, err)
		}
	}

	return nil
}

// AssignLiteral copies a row-major literal covering the whole parameter.
// Complexity: O(Len).
func (b *Builder) AssignLiteral(name string, values []float64) error {
	p, err := b.Parameter(name)
	if err != nil {
		return err
	}
	if len(values) != p.Value.Len() {
		return fmt.Errorf("AssignLiteral(%q): %d values for %d cells: %w",
			name, len(values), p.Value.Len(), ErrDimensionMismatch)
	}
	for off, v := range values {
		idx, _ := p.Value.Unravel(off)
		if err = p.Value.Set(v, idx...); err != nil {
			return fmt.Errorf("AssignLiteral(%q): %w", name, err)
		}
	}

	return nil
}

// SetAt writes a single cell addressed by set members.
func (b *Builder) SetAt(name string, v float64, members ...string) error {
	p, err := b.Parameter(name)
	if err != nil {
		return err
	}
	if len(members) != len(p.Signature) {
		return fmt.Errorf("SetAt(%q): %d members for rank %d: %w",
			name, len(members), len(p.Signature), ErrOutOfRange)
	}
	idx := make([]int, len(members))
	for i, m := range members {
		if idx[i], err = b.sets.Index(p.Signature[i], m); err != nil {
			return fmt.Errorf("SetAt(%q): %w", name, err)
		}
	}
	if err = p.Value.Set(v, idx...); err != nil {
		return fmt.Errorf("SetAt(%q): %w", name, err)
	}

	return nil
}

// Put replaces the content of name with a precomputed tensor of the same
// shape, such as an incidence matrix.
func (b *Builder) Put(name string, src *Tensor) error {
	if src == nil {
		return fmt.Errorf("Put(%q): %w", name, ErrNilTensor)
	}
	p, err := b.Parameter(name)
	if err != nil {
		return err
	}
	want, got := p.Value.Shape(), src.Shape()
	if !sameShape(want, got) {
		return fmt.Errorf("Put(%q): shape %v, want %v: %w", name, got, want, ErrDimensionMismatch)
	}

	return b.AssignLiteral(name, src.data)
}

// Validate re-checks that every parameter shape equals the cardinalities of
// its signature sets.
// Complexity: O(parameters × rank).
func (b *Builder) Validate() error {
	for _, name := range b.order {
		p := b.params[name]
		want, err := b.sets.Shape(p.Signature)
		if err != nil {
			return fmt.Errorf("Validate(%q): %w", name, err)
		}
		if got := p.Value.Shape(); !sameShape(want, got) {
			return fmt.Errorf("Validate(%q): shape %v, want %v: %w", name, got, want, ErrDimensionMismatch)
		}
	}

	return nil
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
