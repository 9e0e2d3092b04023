// SPDX-License-Identifier: MIT
// Package table holds time-indexed numeric tables: an ordered timestamp index
// and named float64 columns aligned to it. It reads them from CSV, resolves
// per-zone or per-line tables from single or templated files, and performs
// the alignment operations the assembly pipeline needs (exact alignment,
// nearest-timestamp reindexing, index intersection).
//
// Missing values are NaN throughout.
package table

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Table is an ordered time index with named columns of equal length.
// Column order is insertion order.
type Table struct {
	index   []time.Time
	columns []string
	pos     map[string]int
	data    [][]float64 // data[col][row]
}

// New returns a table with the given index and no columns.
// The index is copied.
func New(index []time.Time) *Table {
	return &Table{
		index: append([]time.Time(nil), index...),
		pos:   make(map[string]int),
	}
}

// Index returns a copy of the time index.
func (t *Table) Index() []time.Time { return append([]time.Time(nil), t.index...) }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.index) }

// Columns returns the column names in order.
func (t *Table) Columns() []string { return append([]string(nil), t.columns...) }

// Has reports whether name is a column.
func (t *Table) Has(name string) bool {
	_, ok := t.pos[name]
	return ok
}

// Column returns the values of name. The slice is owned by the table and
// must not be modified.
func (t *Table) Column(name string) ([]float64, bool) {
	i, ok := t.pos[name]
	if !ok {
		return nil, false
	}

	return t.data[i], true
}

// At returns the value of column name at row i, or NaN when either is absent.
func (t *Table) At(name string, i int) float64 {
	c, ok := t.pos[name]
	if !ok || i < 0 || i >= len(t.index) {
		return math.NaN()
	}

	return t.data[c][i]
}

// Add appends a new column. The values are copied.
func (t *Table) Add(name string, values []float64) error {
	if _, ok := t.pos[name]; ok {
		return fmt.Errorf("Table.Add(%q): %w", name, ErrDuplicateColumn)
	}
	if len(values) != len(t.index) {
		return fmt.Errorf("Table.Add(%q): %d values for %d rows: %w",
			name, len(values), len(t.index), ErrLengthMismatch)
	}
	t.pos[name] = len(t.columns)
	t.columns = append(t.columns, name)
	t.data = append(t.data, append([]float64(nil), values...))

	return nil
}

// Put replaces column name, appending it when absent.
func (t *Table) Put(name string, values []float64) error {
	i, ok := t.pos[name]
	if !ok {
		return t.Add(name, values)
	}
	if len(values) != len(t.index) {
		return fmt.Errorf("Table.Put(%q): %d values for %d rows: %w",
			name, len(values), len(t.index), ErrLengthMismatch)
	}
	t.data[i] = append([]float64(nil), values...)

	return nil
}

// Constant appends a column holding v in every row.
func (t *Table) Constant(name string, v float64) error {
	values := make([]float64, len(t.index))
	for i := range values {
		values[i] = v
	}

	return t.Add(name, values)
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := New(t.index)
	for i, name := range t.columns {
		_ = c.Add(name, t.data[i])
	}

	return c
}

// Select returns a new table limited to names, in the given order.
// Names that are not columns are skipped.
func (t *Table) Select(names []string) *Table {
	out := New(t.index)
	for _, name := range names {
		if v, ok := t.Column(name); ok {
			_ = out.Add(name, v)
		}
	}

	return out
}

// FillNaN replaces every NaN with v, in place.
func (t *Table) FillNaN(v float64) {
	for _, col := range t.data {
		for i, x := range col {
			if math.IsNaN(x) {
				col[i] = v
			}
		}
	}
}

// Max returns the largest non-NaN value of column name, or NaN when the
// column is absent or holds no finite number.
func (t *Table) Max(name string) float64 {
	col, ok := t.Column(name)
	if !ok {
		return math.NaN()
	}
	vals := make([]float64, 0, len(col))
	for _, x := range col {
		if !math.IsNaN(x) {
			vals = append(vals, x)
		}
	}
	if len(vals) == 0 {
		return math.NaN()
	}

	return floats.Max(vals)
}

// Align returns a table on index idx with the same columns. Rows are
// matched on exact timestamps; timestamps absent from t become NaN.
// Complexity: O(len(idx) + rows × columns).
func (t *Table) Align(idx []time.Time) *Table {
	lookup := make(map[int64]int, len(t.index))
	for i, ts := range t.index {
		lookup[ts.UnixNano()] = i
	}
	out := New(idx)
	for c, name := range t.columns {
		values := make([]float64, len(idx))
		for i, ts := range idx {
			if r, ok := lookup[ts.UnixNano()]; ok {
				values[i] = t.data[c][r]
			} else {
				values[i] = math.NaN()
			}
		}
		_ = out.Add(name, values)
	}

	return out
}

// Restrict returns the rows of t whose timestamps belong to idx, in the
// order of idx. It is Align for an idx that is a subset of the index.
func (t *Table) Restrict(idx []time.Time) *Table { return t.Align(idx) }

// Reindex returns a table on idx where each target timestamp takes the row
// of the nearest source timestamp (ties prefer the later one). Remaining NaN
// values are then filled backwards from the next valid value in the column,
// and trailing NaN runs forward from the last valid value.
// Stage 1 (Prepare): nearest source row per target timestamp.
// Stage 2 (Execute): copy values column by column.
// Stage 3 (Finalize): backward fill, then forward fill of the tail.
// Complexity: O(len(idx) × log rows + len(idx) × columns).
func (t *Table) Reindex(idx []time.Time) *Table {
	src := nearest(t.index, idx)
	out := New(idx)
	for c, name := range t.columns {
		values := make([]float64, len(idx))
		for i, r := range src {
			if r < 0 {
				values[i] = math.NaN()
				continue
			}
			values[i] = t.data[c][r]
		}
		backfill(values)
		_ = out.Add(name, values)
	}

	return out
}

// nearest maps every target timestamp to the position of the closest source
// timestamp, or -1 when the source is empty. source must be sorted.
func nearest(source, target []time.Time) []int {
	out := make([]int, len(target))
	for i, ts := range target {
		if len(source) == 0 {
			out[i] = -1
			continue
		}
		j := searchTime(source, ts)
		switch {
		case j == 0:
			out[i] = 0
		case j == len(source):
			out[i] = len(source) - 1
		default:
			before, after := ts.Sub(source[j-1]), source[j].Sub(ts)
			if after <= before {
				out[i] = j
			} else {
				out[i] = j - 1
			}
		}
	}

	return out
}

// searchTime returns the first position whose timestamp is not before ts.
func searchTime(source []time.Time, ts time.Time) int {
	lo, hi := 0, len(source)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if source[mid].Before(ts) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	return lo
}

func backfill(values []float64) {
	next := math.NaN()
	for i := len(values) - 1; i >= 0; i-- {
		if math.IsNaN(values[i]) {
			values[i] = next
		} else {
			next = values[i]
		}
	}
	last := math.NaN()
	for i, v := range values {
		if math.IsNaN(v) {
			values[i] = last
		} else {
			last = v
		}
	}
}

// Intersect returns the timestamps of a that also occur in b, in a's order.
func Intersect(a, b []time.Time) []time.Time {
	in := make(map[int64]struct{}, len(b))
	for _, ts := range b {
		in[ts.UnixNano()] = struct{}{}
	}
	out := make([]time.Time, 0, len(a))
	for _, ts := range a {
		if _, ok := in[ts.UnixNano()]; ok {
			out = append(out, ts)
		}
	}

	return out
}

// Contains reports whether ts is part of idx.
func Contains(idx []time.Time, ts time.Time) bool {
	for _, x := range idx {
		if x.Equal(ts) {
			return true
		}
	}

	return false
}

// Range returns the timestamps from start to stop inclusive at step.
func Range(start, stop time.Time, step time.Duration) []time.Time {
	if step <= 0 || stop.Before(start) {
		return nil
	}
	n := int(stop.Sub(start)/step) + 1
	out := make([]time.Time, 0, n)
	for ts := start; !ts.After(stop); ts = ts.Add(step) {
		out = append(out, ts)
	}

	return out
}
