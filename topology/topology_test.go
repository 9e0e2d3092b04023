// SPDX-License-Identifier: MIT

package topology_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/katalvlaran/mcinput/table"
	"github.com/katalvlaran/mcinput/topology"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func hoursFrom(start, n int) []time.Time {
	first := t0.Add(time.Duration(start) * time.Hour)
	return table.Range(first, first.Add(time.Duration(n-1)*time.Hour), time.Hour)
}

func build(t *testing.T, idx []time.Time, cols map[string][]float64, order ...string) *table.Table {
	t.Helper()
	tb := table.New(idx)
	for _, c := range order {
		require.NoError(t, tb.Add(c, cols[c]))
	}

	return tb
}

func TestParseConnection(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		mode topology.Mode
		want topology.Connection
		err  bool
	}{
		{"A -> B", topology.Strict, topology.Connection{From: "A", To: "B"}, false},
		{"A->B", topology.Strict, topology.Connection{}, true},
		{"A->B", topology.Loose, topology.Connection{From: "A", To: "B"}, false},
		{" A ->  B ", topology.Loose, topology.Connection{From: "A", To: "B"}, false},
		{"A -> B -> C", topology.Loose, topology.Connection{}, true},
		{"A -> ", topology.Loose, topology.Connection{}, true},
	}
	for _, tc := range cases {
		got, err := topology.ParseConnection(tc.in, tc.mode)
		if tc.err {
			require.ErrorIs(t, err, topology.ErrBadConnection, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got)
	}
}

func TestResolve_RoWAggregation(t *testing.T) {
	t.Parallel()
	idx := hoursFrom(0, 2)
	flows := build(t, idx, map[string][]float64{
		"A -> X": {1, 2},
		"A -> Y": {3, 4},
		"Y -> A": {5, 5},
		"X -> Y": {9, 9},
	}, "A -> X", "A -> Y", "Y -> A", "X -> Y")
	ntc := table.New(idx)

	res, err := topology.Resolve([]string{"A"}, ntc, flows, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, []string{"A -> RoW", "RoW -> A"}, res.Connections)
	out, _ := res.RoW.Column("A -> RoW")
	in, _ := res.RoW.Column("RoW -> A")
	require.Equal(t, []float64{4, 6}, out)
	require.Equal(t, []float64{5, 5}, in)
	require.Empty(t, res.Internal.Columns())
}

func TestResolve_InternalAndIsolation(t *testing.T) {
	t.Parallel()
	idx := hoursFrom(0, 2)
	ntc := build(t, idx, map[string][]float64{
		"A -> B": {10, 10},
		"B -> A": {8, 8},
	}, "A -> B", "B -> A")
	flows := build(t, idx, map[string][]float64{
		"A -> B": {1, 1},
		"C -> A": {2, 2},
		"A -> C": {-1, 0},
	}, "A -> B", "C -> A", "A -> C")
	core, logs := observer.New(zapcore.DebugLevel)

	res, err := topology.Resolve([]string{"A", "B", "C", "D"}, ntc, flows, zap.New(core))
	require.NoError(t, err)
	require.Equal(t, []string{"A -> B", "B -> A"}, res.Connections)
	capAB, _ := res.Internal.Column("A -> B")
	require.Equal(t, []float64{10, 10}, capAB)

	warns := logs.FilterLevelExact(zapcore.WarnLevel)
	require.Equal(t, 2, warns.FilterMessageSnippet("no capacity").Len(), "C -> A and A -> C dropped")
	require.Equal(t, 1, warns.FilterMessageSnippet("negative").Len())
	isolated := warns.FilterMessageSnippet("not connected").All()
	require.Len(t, isolated, 2)
	require.Equal(t, "C", isolated[0].ContextMap()["zone"])
	require.Equal(t, "D", isolated[1].ContextMap()["zone"])
}

func TestResolve_Indices(t *testing.T) {
	t.Parallel()
	ntc := build(t, hoursFrom(0, 3), map[string][]float64{"A -> B": {1, 1, 1}}, "A -> B")
	flows := build(t, hoursFrom(2, 3), map[string][]float64{"A -> B": {1, 1, 1}}, "A -> B")
	core, logs := observer.New(zapcore.DebugLevel)

	res, err := topology.Resolve([]string{"A", "B"}, ntc, flows, zap.New(core))
	require.NoError(t, err)
	require.Len(t, res.Index, 1)
	lost := logs.FilterMessageSnippet("intersection").All()
	require.Len(t, lost, 1)
	require.EqualValues(t, 2, lost[0].ContextMap()["lost"])

	_, err = topology.Resolve([]string{"A"}, ntc, build(t, hoursFrom(5, 1), nil), zap.NewNop())
	require.ErrorIs(t, err, topology.ErrDisjointIndex)
}

func TestIncidence_RowsBalance(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.DebugLevel)
	conns := []string{"A -> B", "B->C", "A -> RoW", "RoW -> C"}

	m, err := topology.Incidence(conns, []string{"A", "B", "C"}, zap.New(core))
	require.NoError(t, err)
	require.Equal(t, []int{4, 3}, m.Shape())
	for i := range conns {
		row, err := m.Row(i)
		require.NoError(t, err)
		require.InDelta(t, 0, row[0]+row[1]+row[2], 0)
	}
	require.Equal(t, []float64{
		-1, 1, 0,
		0, -1, 1,
		0, 0, 0,
		0, 0, 0,
	}, m.Data())
	require.Equal(t, 2, logs.FilterLevelExact(zapcore.WarnLevel).Len())

	m, err = topology.Incidence(conns[2:], []string{"A", "C", topology.RoW}, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, []float64{-1, 0, 1, 0, 1, -1}, m.Data())

	_, err = topology.Incidence([]string{"A"}, []string{"A"}, zap.NewNop())
	require.ErrorIs(t, err, topology.ErrBadConnection)
}

func TestNetwork_Components(t *testing.T) {
	t.Parallel()
	n := topology.NewNetwork("A", "B", "C", "D")
	require.NoError(t, n.Connect("A -> B", "A", "B"))
	require.NoError(t, n.Connect("D -> C", "D", "C"))
	require.ErrorIs(t, n.Connect("A -> B", "A", "B"), topology.ErrDuplicateLine)
	require.ErrorIs(t, n.Connect("A -> Z", "A", "Z"), topology.ErrUnknownZone)

	require.Equal(t, [][]string{{"A", "B"}, {"C", "D"}}, n.Components())
	d, err := n.Degree("A")
	require.NoError(t, err)
	require.Equal(t, 1, d)
	nb, err := n.Neighbors("C")
	require.NoError(t, err)
	require.Equal(t, []string{"D"}, nb)
}
