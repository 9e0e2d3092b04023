// SPDX-License-Identifier: MIT

// Package table_test provides runnable examples of time-indexed tables.
package table_test

import (
	"fmt"
	"math"
	"time"

	"github.com/katalvlaran/mcinput/table"
)

// ExampleTable_Reindex demonstrates the extension of a series over a longer
// index: nearest rows first, then gaps filled from the next valid value.
// Complexity: O(T log R).
func ExampleTable_Reindex() {
	// 1) Three hourly rows with a gap in the middle.
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t := table.New(table.Range(start, start.Add(2*time.Hour), time.Hour))
	_ = t.Add("A", []float64{1, math.NaN(), 3})

	// 2) Extend to five hours; the tail repeats the last row.
	long := t.Reindex(table.Range(start, start.Add(4*time.Hour), time.Hour))

	// 3) Print the extended column.
	values, _ := long.Column("A")
	fmt.Println(values)
	// Output: [1 3 3 3 3]
}
