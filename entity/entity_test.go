// SPDX-License-Identifier: MIT

package entity_test

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/katalvlaran/mcinput/entity"
)

const unitsCSV = `,Unit,Zone,Technology,PowerCapacity,Fuel
0,U1,A,WSHE,100,GAS
1,U2,B,Other,50,GAS
2,U3,A,SOTH,0,SUN
3,U4,X,GETH,10,GEO
4,U5,B,THMS,,WAT
`

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))

	return p
}

func TestParseCell(t *testing.T) {
	t.Parallel()
	require.Equal(t, entity.Empty, entity.ParseCell("  ").Kind())
	require.Equal(t, entity.Empty, entity.ParseCell("nan").Kind())
	require.Equal(t, entity.Number, entity.ParseCell("1.5").Kind())
	require.Equal(t, "1.5", entity.ParseCell("1.5").String())
	require.Equal(t, entity.Text, entity.ParseCell("GAS").Kind())
	require.True(t, math.IsNaN(entity.ParseCell("GAS").Float()))
}

func TestReadCSV_DropsRowLabel(t *testing.T) {
	t.Parallel()
	tb, err := entity.ReadCSV(write(t, t.TempDir(), "u.csv", unitsCSV), "units")
	require.NoError(t, err)
	require.Equal(t, []string{"Unit", "Zone", "Technology", "PowerCapacity", "Fuel"}, tb.Columns())
	require.Equal(t, 5, tb.Len())
	require.Equal(t, []string{"U1", "U2", "U3", "U4", "U5"}, tb.IDs())
	require.Equal(t, entity.Empty, tb.Cell(4, "PowerCapacity").Kind())

	_, err = entity.ReadCSV(write(t, t.TempDir(), "d.csv", "Unit,Unit\nU1,U2\n"), "units")
	require.ErrorIs(t, err, entity.ErrDuplicateColumn)
}

func TestSelectUnits(t *testing.T) {
	t.Parallel()
	tb, err := entity.ReadCSV(write(t, t.TempDir(), "u.csv", unitsCSV), "units")
	require.NoError(t, err)
	core, logs := observer.New(zapcore.DebugLevel)

	out := entity.SelectUnits(tb, []string{"A", "B"}, zap.New(core))
	// U5 has an empty capacity, which is not zero and is left to the checks
	require.Equal(t, []string{"U1", "U5"}, out.IDs())
	require.Equal(t, 3, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	require.Equal(t, 5, tb.Len(), "source table is untouched")
}

func TestSelectDemands(t *testing.T) {
	t.Parallel()
	tb, err := entity.ReadCSV(write(t, t.TempDir(), "d.csv",
		"Unit,Zone,Sector,MaxDemand\nD1,A,IND,10\nD2,A,COM,0\nD3,Z,REZ,5\n"), "demands")
	require.NoError(t, err)

	out := entity.SelectDemands(tb, []string{"A"}, zap.NewNop())
	require.Equal(t, []string{"D1"}, out.IDs())
	require.Equal(t, map[string]float64{"A": 10}, out.SumBy("Zone", "MaxDemand"))
}

func TestLoad_Template(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	write(t, dir, "A.csv", "Unit,Zone,PowerCapacity\nU1,A,1\n")
	write(t, dir, "B.csv", "Unit,Zone,Fuel\nU2,B,GAS\n")
	core, logs := observer.New(zapcore.DebugLevel)

	tb, err := entity.Load(context.Background(), filepath.Join(dir, "##.csv"),
		[]string{"A", "B", "C"}, "units", zap.New(core))
	require.NoError(t, err)
	require.Equal(t, []string{"Unit", "Zone", "PowerCapacity", "Fuel"}, tb.Columns())
	require.Equal(t, []string{"U1", "U2"}, tb.IDs())
	require.Equal(t, entity.Empty, tb.Cell(1, "PowerCapacity").Kind())
	require.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())

	_, err = entity.Load(context.Background(), filepath.Join(dir, "none.csv"), nil, "units", zap.NewNop())
	require.ErrorIs(t, err, entity.ErrNoData)
}

func TestTableEdits(t *testing.T) {
	t.Parallel()
	tb, err := entity.New("units", []string{"Unit", "RampUp"})
	require.NoError(t, err)
	require.NoError(t, tb.Append([]entity.Cell{entity.TextCell("U1"), entity.EmptyCell()}))
	require.ErrorIs(t, tb.Append([]entity.Cell{entity.TextCell("U2")}), entity.ErrRowWidth)

	require.NoError(t, tb.Rename("RampUp", "UnitRampUp"))
	tb.FillEmpty("UnitRampUp", 1)
	tb.FillEmpty("PriceBlockOrder", 0)
	require.Equal(t, []float64{1}, tb.Floats("UnitRampUp"))
	require.Equal(t, []float64{0}, tb.Floats("PriceBlockOrder"))
	require.ErrorIs(t, tb.Rename("Unit", "UnitRampUp"), entity.ErrDuplicateColumn)
}
