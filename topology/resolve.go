// SPDX-License-Identifier: MIT

package topology

import (
	"fmt"
	"math"
	"slices"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/mcinput/table"
)

// Result is the resolved transmission topology.
type Result struct {
	// Index is the intersection of the capacity and flow indices.
	Index []time.Time
	// Internal holds the capacity of every line between two simulated zones.
	Internal *table.Table
	// RoW holds the aggregated flows "<z> -> RoW" and "RoW -> <z>".
	RoW *table.Table
	// Connections lists the Internal columns, then the RoW columns.
	Connections []string
	// Network is the graph of simulated zones and internal lines.
	Network *Network
}

// Resolve splits the connections found in ntc and flows into internal lines
// (both endpoints simulated), whose capacity is taken from ntc, and
// rest-of-world crossings, whose historical flows are summed per simulated
// zone into an export and an import pseudo-line.
//
// Implementation:
//   - Stage 1: intersect the indices; none in common is ErrDisjointIndex,
//     a partial overlap is warned about with the number of lost points.
//   - Stage 2: warn about the first negative value of each table.
//   - Stage 3: candidate list = flow headers, then capacity headers not in
//     flows; classify each by its endpoints.
//   - Stage 4: internal lines without capacity are dropped with a warning;
//     zones without any connection are warned about when several zones are
//     simulated; disconnected groups of zones are logged.
//   - Stage 5: aggregate the crossings per zone in configured zone order.
//
// Behavior highlights:
//   - Connections between two non-simulated zones are ignored.
//   - A crossing known only from ntc has no historical flow and is ignored.
//   - A zone with crossings gets both pseudo-lines, the one without data
//     being all zeros.
//
// Inputs:
//   - zones: the simulated zones, in output order.
//   - ntc: capacities keyed by "<from> -> <to>".
//   - flows: historical flows keyed the same way.
//
// Returns:
//   - *Result: both tables on the common index, the connection list and the
//     network of internal lines.
//   - error: ErrDisjointIndex, ErrBadConnection for an unparsable header.
//
// Complexity: O(C × T) for C connections and T timestamps.
func Resolve(zones []string, ntc, flows *table.Table, log *zap.Logger) (*Result, error) {
	idx := table.Intersect(ntc.Index(), flows.Index())
	if len(idx) == 0 {
		return nil, fmt.Errorf("Resolve: %w", ErrDisjointIndex)
	}
	if len(idx) < ntc.Len() || len(idx) < flows.Len() {
		lost := max(ntc.Len(), flows.Len()) - len(idx)
		log.Warn("capacity and flow indices differ, using their intersection", zap.Int("lost", lost))
	}
	warnNegative(ntc, "NTC", log)
	warnNegative(flows, "flows", log)

	ntc = ntc.Restrict(idx)
	flows = flows.Restrict(idx)
	simulated := make(map[string]bool, len(zones))
	for _, z := range zones {
		simulated[z] = true
	}

	candidates := flows.Columns()
	for _, c := range ntc.Columns() {
		if !flows.Has(c) {
			candidates = append(candidates, c)
		}
	}

	res := &Result{
		Index:    idx,
		Internal: table.New(idx),
		RoW:      table.New(idx),
		Network:  NewNetwork(zones...),
	}
	var crossings []Connection
	for _, name := range candidates {
		c, err := ParseConnection(name, Strict)
		if err != nil {
			return nil, fmt.Errorf("Resolve: %w", err)
		}
		from, to := simulated[c.From], simulated[c.To]
		switch {
		case from && to:
			capacity, ok := ntc.Column(name)
			if !ok {
				log.Warn("connection between simulated zones has no capacity, dropped", zap.String("line", name))
				continue
			}
			log.Info("internal connection, capacity used as maximum flow", zap.String("line", name))
			if err = res.Internal.Add(name, capacity); err != nil {
				return nil, fmt.Errorf("Resolve: %w", err)
			}
			if err = res.Network.Connect(name, c.From, c.To); err != nil {
				return nil, fmt.Errorf("Resolve: %w", err)
			}
		case from || to:
			if flows.Has(name) {
				crossings = append(crossings, c)
			}
		}
	}
	res.Connections = res.Internal.Columns()

	for _, z := range zones {
		if len(zones) < 2 {
			break
		}
		touched := slices.ContainsFunc(crossings, func(c Connection) bool { return c.Involves(z) })
		if d, _ := res.Network.Degree(z); d == 0 && !touched {
			log.Warn("zone is not connected to any other zone, simulated in isolation", zap.String("zone", z))
		}
	}
	if comps := res.Network.Components(); len(comps) > 1 {
		log.Info("simulated zones form several groups", zap.Any("groups", comps))
	}

	for _, z := range zones {
		var exports, imports [][]float64
		for _, c := range crossings {
			series, _ := flows.Column(c.Name())
			switch {
			case c.From == z:
				log.Info("rest-of-world export, historical flows imposed", zap.String("line", c.Name()))
				exports = append(exports, series)
			case c.To == z:
				log.Info("rest-of-world import, historical flows imposed", zap.String("line", c.Name()))
				imports = append(imports, series)
			}
		}
		if len(exports) == 0 && len(imports) == 0 {
			continue
		}
		if err := res.RoW.Add(ExportName(z), sum(len(idx), exports)); err != nil {
			return nil, fmt.Errorf("Resolve: %w", err)
		}
		if err := res.RoW.Add(ImportName(z), sum(len(idx), imports)); err != nil {
			return nil, fmt.Errorf("Resolve: %w", err)
		}
	}
	res.Connections = append(res.Connections, res.RoW.Columns()...)

	return res, nil
}

// sum adds series element-wise into a fresh slice of length n.
func sum(n int, series [][]float64) []float64 {
	out := make([]float64, n)
	for _, s := range series {
		floats.Add(out, s)
	}

	return out
}

// warnNegative logs the first negative cell of t, scanning row by row.
func warnNegative(t *table.Table, name string, log *zap.Logger) {
	cols := t.Columns()
	idx := t.Index()
	for i := range idx {
		for _, c := range cols {
			if v := t.At(c, i); !math.IsNaN(v) && v < 0 {
				log.Warn("negative value", zap.String("table", name),
					zap.String("line", c), zap.Time("step", idx[i]))
				return
			}
		}
	}
}
