// SPDX-License-Identifier: MIT

package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// timeLayouts lists the accepted index formats, most specific first.
// Layouts carrying an offset are parsed and then reduced to wall-clock time.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTime parses an index cell. The result is expressed in UTC with the
// wall-clock fields of the input; zone offsets are dropped.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return time.Date(ts.Year(), ts.Month(), ts.Day(),
				ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond(), time.UTC), nil
		}
	}

	return time.Time{}, fmt.Errorf("ParseTime(%q): %w", s, ErrBadTimestamp)
}

// ParseValue parses a data cell; empty and "nan" cells are NaN.
func ParseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("ParseValue(%q): %w", s, ErrBadValue)
	}

	return v, nil
}

// ReadCSV reads a time-indexed table. The first row is the header and the
// first column the timestamp index. Rows are sorted by timestamp.
//
// A file with a single data column whose header parses as a number is
// treated as headerless: the header row becomes the first data row and the
// column is named "0".
//
// Errors: ErrEmptyFile, ErrBadTimestamp, ErrBadValue, ErrDuplicateColumn,
// ErrDuplicateIndex, all wrapped with the file path.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ReadCSV(%s): %w", path, err)
	}
	defer f.Close()

	t, err := readCSV(f)
	if err != nil {
		return nil, fmt.Errorf("ReadCSV(%s): %w", path, err)
	}

	return t, nil
}

func readCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, err
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	var records [][]string
	if headerless(header) {
		records = append(records, header)
		header = []string{"", "0"}
	}
	rest, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	records = append(records, rest...)

	names := make([]string, len(header)-1)
	seen := make(map[string]struct{}, len(names))
	for i, h := range header[1:] {
		h = strings.TrimSpace(h)
		if _, ok := seen[h]; ok {
			return nil, fmt.Errorf("header %q: %w", h, ErrDuplicateColumn)
		}
		seen[h] = struct{}{}
		names[i] = h
	}

	type row struct {
		ts     time.Time
		values []float64
	}
	rows := make([]row, 0, len(records))
	stamps := make(map[int64]int, len(records))
	for n, rec := range records {
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		ts, err := ParseTime(rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+2, err)
		}
		if prev, ok := stamps[ts.UnixNano()]; ok {
			return nil, fmt.Errorf("line %d repeats line %d (%s): %w",
				n+2, prev, ts.Format(time.DateTime), ErrDuplicateIndex)
		}
		stamps[ts.UnixNano()] = n + 2

		values := make([]float64, len(names))
		for c := range names {
			values[c] = math.NaN()
			if c+1 < len(rec) {
				if values[c], err = ParseValue(rec[c+1]); err != nil {
					return nil, fmt.Errorf("line %d column %q: %w", n+2, names[c], err)
				}
			}
		}
		rows = append(rows, row{ts: ts, values: values})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ts.Before(rows[j].ts) })

	idx := make([]time.Time, len(rows))
	for i, r := range rows {
		idx[i] = r.ts
	}
	t := New(idx)
	for c, name := range names {
		col := make([]float64, len(rows))
		for i, r := range rows {
			col[i] = r.values[c]
		}
		if err = t.Add(name, col); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// headerless reports whether the first row of a single-column file is data.
func headerless(header []string) bool {
	if len(header) != 2 {
		return false
	}
	if _, err := ParseTime(header[0]); err != nil {
		return false
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(header[1]), 64)

	return err == nil
}
