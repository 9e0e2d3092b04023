// SPDX-License-Identifier: MIT

// Package topology_test provides runnable examples of line classification
// and incidence matrices.
package topology_test

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/katalvlaran/mcinput/table"
	"github.com/katalvlaran/mcinput/topology"
)

// ExampleResolve demonstrates how two crossings leaving a simulated zone are
// summed into a single rest-of-world export.
// Complexity: O(C × T).
func ExampleResolve() {
	// 1) Two hourly steps shared by both tables.
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	idx := table.Range(start, start.Add(time.Hour), time.Hour)

	// 2) Historical flows from BE towards two zones that are not simulated.
	flows := table.New(idx)
	_ = flows.Add("BE -> FR", []float64{1, 2})
	_ = flows.Add("BE -> UK", []float64{3, 4})

	// 3) Only BE is simulated; no capacities are needed for crossings.
	res, err := topology.Resolve([]string{"BE"}, table.New(idx), flows, zap.NewNop())
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	// 4) Print the pseudo-lines and their aggregated series.
	out, _ := res.RoW.Column(topology.ExportName("BE"))
	in, _ := res.RoW.Column(topology.ImportName("BE"))
	fmt.Println(res.Connections)
	fmt.Println(out, in)
	// Output:
	// [BE -> RoW RoW -> BE]
	// [4 6] [0 0]
}

// ExampleIncidence demonstrates the connections × zones matrix of a chain.
// Complexity: O(C + Z).
func ExampleIncidence() {
	// 1) Two lines chaining three zones.
	conns := []string{"A -> B", "B -> C"}
	zones := []string{"A", "B", "C"}

	// 2) Build the matrix: -1 at the origin, +1 at the destination.
	m, err := topology.Incidence(conns, zones, zap.NewNop())
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	// 3) Print one row per connection.
	for i := range conns {
		row, _ := m.Row(i)
		fmt.Println(conns[i], row)
	}
	// Output:
	// A -> B [-1 1 0]
	// B -> C [0 -1 1]
}
