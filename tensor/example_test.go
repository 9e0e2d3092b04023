// SPDX-License-Identifier: MIT

// Package tensor_test provides runnable examples of the parameter builder.
package tensor_test

import (
	"fmt"

	"github.com/katalvlaran/mcinput/tensor"
)

// columns is a minimal Categorical backed by a map of string columns.
type columns map[string][]string

func (c columns) Strings(name string) []string { return c[name] }

// ExampleBuilder_Encode demonstrates a one-hot encoding of the unit technology.
// Complexity: O(units).
func ExampleBuilder_Encode() {
	// 1) Register the unit and technology sets.
	sets := tensor.NewSets()
	_ = sets.Define("u", []string{"U1", "U2", "U3"})
	_ = sets.Define("t", []string{"HOBO", "SOTH"})

	// 2) Declare a boolean parameter over (u, t).
	b := tensor.NewBuilder(sets)
	if err := b.Declare("Technology", []string{"u", "t"}, tensor.False()); err != nil {
		fmt.Println("error:", err)
		return
	}

	// 3) Encode one category per unit, rows in set order.
	src := columns{"Technology": {"SOTH", "HOBO", "SOTH"}}
	if err := b.Encode(tensor.Encoding{Parameter: "Technology", Column: "Technology"}, src); err != nil {
		fmt.Println("error:", err)
		return
	}

	// 4) Print one row per unit.
	p, _ := b.Parameter("Technology")
	for i := range 3 {
		row, _ := p.Value.Row(i)
		fmt.Println(row)
	}
	// Output:
	// [0 1]
	// [1 0]
	// [0 1]
}
