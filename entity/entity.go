// SPDX-License-Identifier: MIT
// Package entity holds the static per-unit and per-demand tables: ordered
// rows, named columns, and cells typed on read as empty, numeric or text.
package entity

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Well-known column names.
const (
	ColUnit       = "Unit"
	ColZone       = "Zone"
	ColTechnology = "Technology"
)

var (
	// ErrDuplicateColumn is returned when a header names the same column twice.
	ErrDuplicateColumn = errors.New("entity: duplicate column")

	// ErrRowWidth is returned when a row does not match the column count.
	ErrRowWidth = errors.New("entity: row width mismatch")

	// ErrUnknownColumn is returned when a column lookup fails.
	ErrUnknownColumn = errors.New("entity: unknown column")
)

// Kind is the type of a cell.
type Kind uint8

const (
	Empty Kind = iota
	Number
	Text
)

// Cell is a single typed value.
type Cell struct {
	kind Kind
	num  float64
	str  string
}

// EmptyCell returns an empty cell.
func EmptyCell() Cell { return Cell{} }

// NumberCell returns a numeric cell; NaN yields an empty cell.
func NumberCell(v float64) Cell {
	if math.IsNaN(v) {
		return Cell{}
	}

	return Cell{kind: Number, num: v}
}

// TextCell returns a text cell; blank text yields an empty cell.
func TextCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{}
	}

	return Cell{kind: Text, str: s}
}

// ParseCell types a raw CSV field: blank → Empty, numeric → Number, else Text.
func ParseCell(raw string) Cell {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Cell{}
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return NumberCell(v)
	}

	return Cell{kind: Text, str: s}
}

// Kind returns the cell type.
func (c Cell) Kind() Kind { return c.kind }

// Float returns the numeric value, or NaN for empty and text cells.
func (c Cell) Float() float64 {
	if c.kind != Number {
		return math.NaN()
	}

	return c.num
}

// String returns the text form; numbers are formatted without trailing zeros.
func (c Cell) String() string {
	switch c.kind {
	case Number:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	case Text:
		return c.str
	}

	return ""
}

// Table is an ordered set of rows with named columns.
type Table struct {
	name    string
	columns []string
	pos     map[string]int
	rows    [][]Cell
}

// New returns an empty table with the given columns.
func New(name string, columns []string) (*Table, error) {
	t := &Table{name: name, pos: make(map[string]int, len(columns))}
	for _, c := range columns {
		if err := t.addColumn(c); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func (t *Table) addColumn(c string) error {
	if _, ok := t.pos[c]; ok {
		return fmt.Errorf("entity %s: column %q: %w", t.name, c, ErrDuplicateColumn)
	}
	t.pos[c] = len(t.columns)
	t.columns = append(t.columns, c)

	return nil
}

// Name returns the table name used in diagnostics.
func (t *Table) Name() string { return t.name }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Columns returns the column names in order.
func (t *Table) Columns() []string { return append([]string(nil), t.columns...) }

// Has reports whether column is present.
func (t *Table) Has(column string) bool {
	_, ok := t.pos[column]
	return ok
}

// Append adds a row; its width must equal the column count.
func (t *Table) Append(cells []Cell) error {
	if len(cells) != len(t.columns) {
		return fmt.Errorf("entity %s: %d cells for %d columns: %w",
			t.name, len(cells), len(t.columns), ErrRowWidth)
	}
	t.rows = append(t.rows, append([]Cell(nil), cells...))

	return nil
}

// Cell returns the cell at row i of column, or an empty cell when absent.
func (t *Table) Cell(i int, column string) Cell {
	c, ok := t.pos[column]
	if !ok || i < 0 || i >= len(t.rows) {
		return Cell{}
	}

	return t.rows[i][c]
}

// Float is shorthand for Cell(i, column).Float().
func (t *Table) Float(i int, column string) float64 { return t.Cell(i, column).Float() }

// Text is shorthand for Cell(i, column).String().
func (t *Table) Text(i int, column string) string { return t.Cell(i, column).String() }

// Floats returns column as numbers (NaN for non-numeric cells).
func (t *Table) Floats(column string) []float64 {
	out := make([]float64, len(t.rows))
	for i := range t.rows {
		out[i] = t.Float(i, column)
	}

	return out
}

// Strings returns column as text.
func (t *Table) Strings(column string) []string {
	out := make([]string, len(t.rows))
	for i := range t.rows {
		out[i] = t.Text(i, column)
	}

	return out
}

// IDs returns the Unit column.
func (t *Table) IDs() []string { return t.Strings(ColUnit) }

// Set writes a cell; the column must exist.
func (t *Table) Set(i int, column string, c Cell) error {
	p, ok := t.pos[column]
	if !ok {
		return fmt.Errorf("entity %s: %q: %w", t.name, column, ErrUnknownColumn)
	}
	if i < 0 || i >= len(t.rows) {
		return fmt.Errorf("entity %s: row %d out of range", t.name, i)
	}
	t.rows[i][p] = c

	return nil
}

// Ensure adds column filled with empty cells when absent.
func (t *Table) Ensure(column string) {
	if t.Has(column) {
		return
	}
	_ = t.addColumn(column)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], Cell{})
	}
}

// Rename renames a column; absent columns are ignored.
func (t *Table) Rename(from, to string) error {
	p, ok := t.pos[from]
	if !ok {
		return nil
	}
	if _, clash := t.pos[to]; clash {
		return fmt.Errorf("entity %s: rename %q to %q: %w", t.name, from, to, ErrDuplicateColumn)
	}
	delete(t.pos, from)
	t.pos[to] = p
	t.columns[p] = to

	return nil
}

// FillEmpty replaces empty cells of column with v, adding the column if needed.
func (t *Table) FillEmpty(column string, v float64) {
	t.Ensure(column)
	p := t.pos[column]
	for i := range t.rows {
		if t.rows[i][p].kind == Empty {
			t.rows[i][p] = NumberCell(v)
		}
	}
}

// Filter returns a new table with the rows for which keep returns true.
func (t *Table) Filter(keep func(i int) bool) *Table {
	out := &Table{name: t.name, columns: t.Columns(), pos: make(map[string]int, len(t.pos))}
	for k, v := range t.pos {
		out.pos[k] = v
	}
	for i, r := range t.rows {
		if keep(i) {
			out.rows = append(out.rows, append([]Cell(nil), r...))
		}
	}

	return out
}

// SumBy sums the numeric column value grouped by the text of column key.
// Non-numeric values are skipped.
func (t *Table) SumBy(key, value string) map[string]float64 {
	out := make(map[string]float64)
	for i := range t.rows {
		v := t.Float(i, value)
		if math.IsNaN(v) {
			continue
		}
		out[t.Text(i, key)] += v
	}

	return out
}

// Concat stacks tables vertically. The result carries the union of the
// columns in order of first appearance; missing cells are empty.
func Concat(name string, parts ...*Table) *Table {
	out := &Table{name: name, pos: make(map[string]int)}
	for _, p := range parts {
		for _, c := range p.columns {
			if !out.Has(c) {
				_ = out.addColumn(c)
			}
		}
	}
	for _, p := range parts {
		for i := range p.rows {
			row := make([]Cell, len(out.columns))
			for j, c := range out.columns {
				row[j] = p.Cell(i, c)
			}
			out.rows = append(out.rows, row)
		}
	}

	return out
}
