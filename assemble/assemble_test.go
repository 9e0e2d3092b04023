// SPDX-License-Identifier: MIT

package assemble_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/katalvlaran/mcinput/assemble"
	"github.com/katalvlaran/mcinput/config"
	"github.com/katalvlaran/mcinput/entity"
	"github.com/katalvlaran/mcinput/validate"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

const unitsCSV = `Unit,Fuel,Zone,Sector,Technology,PowerCapacity,RampUp,RampDown,OrderType,PriceBlockOrder,PriceFlexibleOrder,AccaptanceBlockOrdersMin,AvailabilityFactorFlexibleOrder,Efficiency,CO2Intensity,StorageCapacity,StorageSelfDischarge,StorageChargingCapacity,StorageChargingEfficiency
U1,GAS,A,IND,HOBO,100,,,Simple,,,,,0.9,0.2,,,,
U2,SUN,B,IND,SOTH,50,10,10,Simple,,,,,1,0,,,,
S1,OTH,A,IND,THMS,20,5,5,Storage,,,,,0.95,0,80,0.01,20,0.9
X1,GAS,C,IND,HOBO,10,1,1,Simple,,,,,0.5,0.2,,,,
O1,GAS,A,IND,Other,10,1,1,Simple,,,,,0.5,0.2,,,,
`

const demandsCSV = `Unit,Zone,Sector,MaxDemand
D1,A,IND,200
D2,B,REZ,100
D3,B,COM,0
`

// hourly renders a time-indexed CSV with n hourly rows from t0.
func hourly(cols []string, n int, value func(col string, step int) float64) string {
	var sb strings.Builder
	sb.WriteString("," + strings.Join(cols, ",") + "\n")
	for i := 0; i < n; i++ {
		sb.WriteString(t0.Add(time.Duration(i) * time.Hour).Format("2006-01-02 15:04:05"))
		for _, c := range cols {
			fmt.Fprintf(&sb, ",%g", value(c, i))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func constant(values map[string]float64) func(string, int) float64 {
	return func(c string, _ int) float64 { return values[c] }
}

type BuildSuite struct {
	suite.Suite
	dir  string
	cfg  *config.Config
	logs *observer.ObservedLogs
	log  *zap.Logger
}

func TestBuildSuite(t *testing.T) { suite.Run(t, new(BuildSuite)) }

func (s *BuildSuite) write(name, body string) string {
	p := filepath.Join(s.dir, name)
	s.Require().NoError(os.WriteFile(p, []byte(body), 0o644))

	return p
}

func (s *BuildSuite) SetupTest() {
	s.dir = s.T().TempDir()
	cfg, err := config.Default()
	s.Require().NoError(err)
	cfg.StartDate, cfg.StopDate = t0, t0
	cfg.HorizonLength, cfg.LookAhead = 1, 1
	cfg.Zones = []string{"A", "B"}
	cfg.SimulationDirectory = s.dir

	cfg.Paths.PlayersSupplySide = s.write("units.csv", unitsCSV)
	cfg.Paths.PlayersDemandSide = s.write("demands.csv", demandsCSV)
	cfg.Paths.QuantitySimpleOrder = s.write("af_simple.csv",
		hourly([]string{"U1", "SOTH"}, 24, constant(map[string]float64{"U1": 0.8, "SOTH": 0.5})))
	cfg.Paths.QuantityDemandOrder = s.write("af_demand.csv",
		hourly([]string{"D1", "D2"}, 24, constant(map[string]float64{"D1": 1, "D2": 0.7})))
	cfg.Paths.PriceSimpleOrder = s.write("prices.csv",
		hourly([]string{"U1"}, 24, func(_ string, i int) float64 { return float64(40 + i) }))
	cfg.Paths.ReservoirLevels = s.write("levels.csv",
		hourly([]string{"THMS"}, 24, constant(map[string]float64{"THMS": 0.5})))
	cfg.Paths.Interconnections = s.write("flows.csv",
		hourly([]string{"A -> C", "C -> B"}, 24, constant(map[string]float64{"A -> C": 10, "C -> B": 5})))
	cfg.Paths.NTC = s.write("ntc.csv",
		hourly([]string{"A -> B", "B -> A"}, 24, constant(map[string]float64{"A -> B": 100, "B -> A": 80})))
	s.cfg = cfg

	core, logs := observer.New(zapcore.DebugLevel)
	s.log, s.logs = zap.New(core), logs
}

func (s *BuildSuite) build() *assemble.Package {
	pkg, err := assemble.Build(context.Background(), s.cfg, s.log)
	s.Require().NoError(err)

	return pkg
}

func (s *BuildSuite) members(pkg *assemble.Package, label string) []string {
	m, err := pkg.Sets.Members(label)
	s.Require().NoError(err)

	return m
}

func (s *BuildSuite) row(pkg *assemble.Package, name string, i int) []float64 {
	prm, ok := pkg.Parameter(name)
	s.Require().True(ok, name)
	r, err := prm.Value.Row(i)
	s.Require().NoError(err)

	return r
}

func (s *BuildSuite) data(pkg *assemble.Package, name string) []float64 {
	prm, ok := pkg.Parameter(name)
	s.Require().True(ok, name)

	return prm.Value.Data()
}

func (s *BuildSuite) TestSets() {
	pkg := s.build()
	s.Equal([]string{"U1", "U2", "S1"}, s.members(pkg, "u"))
	s.Equal([]string{"D1", "D2"}, s.members(pkg, "d"))
	s.Equal([]string{"S1"}, s.members(pkg, "s"))
	s.Equal([]string{"A -> B", "B -> A", "A -> RoW", "RoW -> A", "B -> RoW", "RoW -> B"}, s.members(pkg, "l"))
	s.Len(s.members(pkg, "h"), 48)
	s.Len(s.members(pkg, "z"), 24)
	s.Equal("1", s.members(pkg, "h")[0])
	s.Equal(assemble.Version, pkg.Version)
	s.NotZero(pkg.BuildID)

	for _, p := range pkg.Parameters {
		want, err := pkg.Sets.Shape(p.Signature)
		s.Require().NoError(err)
		s.Equal(want, p.Value.Shape(), p.Name)
	}
}

func (s *BuildSuite) TestUnitParameters() {
	pkg := s.build()
	s.Equal([]float64{100, 50, 20}, s.data(pkg, "PowerCapacity"))
	s.Equal([]float64{1, 10, 5}, s.data(pkg, "UnitRampUp"))
	s.Equal([]float64{0, 0, 0}, s.data(pkg, "PriceBlockOrder"))
	s.Equal([]float64{200, 100}, s.data(pkg, "MaxDemand"))

	u1 := s.row(pkg, "AvailabilityFactorSimpleOrder", 0)
	s.Len(u1, 48)
	s.InDelta(0.8, u1[47], 1e-12)
	s.InDelta(0.5, s.row(pkg, "AvailabilityFactorSimpleOrder", 1)[30], 1e-12)
	s.Equal(make([]float64, 48), s.row(pkg, "AvailabilityFactorSimpleOrder", 2))

	prices := s.row(pkg, "PriceSimpleOrder", 0)
	s.Equal(40.0, prices[0])
	s.Equal(63.0, prices[23])
	s.Equal(63.0, prices[40])

	s.Equal(1, s.logs.FilterMessage("no specific data for entity, using generic data").
		FilterField(zap.String("entity", "U2")).Len())
	always := s.logs.FilterMessage("availability factor is always 100%")
	s.Equal(1, always.Len())
	s.Equal(1, always.FilterField(zap.String("entity", "D1")).Len())
}

func (s *BuildSuite) TestOneHot() {
	pkg := s.build()
	ot := s.row(pkg, "OrderType", 2)
	s.Equal([]float64{0, 0, 0, 1}, ot)
	loc := s.data(pkg, "LocationSupplySide")
	s.Equal([]float64{1, 0, 0, 1, 1, 0}, loc)
	s.Equal([]float64{1, 0, 0, 0, 1, 0}, s.data(pkg, "Sector"))
}

func (s *BuildSuite) TestStorage() {
	pkg := s.build()
	s.Equal([]float64{80}, s.data(pkg, "StorageCapacity"))
	s.Equal([]float64{0.95}, s.data(pkg, "StorageDischargeEfficiency"))
	s.Equal([]float64{0.9}, s.data(pkg, "StorageChargingEfficiency"))
	s.Equal([]float64{40}, s.data(pkg, "StorageInitial"))
	s.InDelta(0.5, s.row(pkg, "StorageProfile", 0)[47], 1e-12)
	s.Equal(make([]float64, 48), s.row(pkg, "StorageInflow", 0))
	s.Equal(make([]float64, 48), s.row(pkg, "StorageOutflow", 0))
}

func (s *BuildSuite) TestNetwork() {
	pkg := s.build()
	s.Equal(100.0, s.row(pkg, "FlowMaximum", 0)[10])
	s.Equal(0.0, s.row(pkg, "FlowMinimum", 0)[10])
	s.Equal(10.0, s.row(pkg, "FlowMaximum", 2)[47])
	s.Equal(10.0, s.row(pkg, "FlowMinimum", 2)[47])
	s.Equal(5.0, s.row(pkg, "FlowMinimum", 5)[0])
	s.Equal(0.0, s.row(pkg, "FlowMaximum", 4)[0])

	s.Equal([]float64{-1, 1}, s.row(pkg, "LineNode", 0))
	s.Equal([]float64{1, -1}, s.row(pkg, "LineNode", 1))
	s.Equal([]float64{0, 0}, s.row(pkg, "LineNode", 2))

	s.Equal([]float64{200 * 24, 100 * 24}, s.data(pkg, "NodeDailyRampUp"))
	s.Equal([]float64{100 * 24, 80 * 24, 0, 0, 0, 0}, s.data(pkg, "LineDailyRampDown"))
	s.Equal(200.0, s.row(pkg, "NodeHourlyRampUp", 0)[5])
	s.Equal(80.0, s.row(pkg, "LineHourlyRampUp", 1)[47])
	s.Equal(make([]float64, 48), s.row(pkg, "LineHourlyRampUp", 2))
}

func (s *BuildSuite) TestConfigParameter() {
	pkg := s.build()
	s.Equal([]float64{
		2024, 1, 1, 0,
		2024, 1, 1, 0,
		0, 0, 1, 0,
		0, 0, 1, 0,
	}, s.data(pkg, "Config"))
}

func (s *BuildSuite) TestDeterministic() {
	snapshot := func(pkg *assemble.Package) map[string][]float64 {
		out := make(map[string][]float64)
		for _, p := range pkg.Parameters {
			out[p.Name] = p.Value.Data()
		}
		for _, l := range pkg.Sets.Labels() {
			m, _ := pkg.Sets.Members(l)
			out["set:"+l] = []float64{float64(len(m))}
		}
		return out
	}
	a, b := s.build(), s.build()
	s.Empty(cmp.Diff(snapshot(a), snapshot(b)))
	s.Empty(cmp.Diff(s.members(a, "l"), s.members(b, "l")))
	s.NotEqual(a.BuildID, b.BuildID)
}

func (s *BuildSuite) TestStorageByTechnology() {
	s.cfg.Variants.StorageSet = config.StorageTechnologies
	pkg := s.build()
	s.Equal([]string{"THMS"}, s.members(pkg, "s"))
	s.Equal([]float64{80}, s.data(pkg, "StorageCapacity"))
	s.InDelta(0.95, s.data(pkg, "StorageDischargeEfficiency")[0], 1e-12)
	s.Equal([]float64{40}, s.data(pkg, "StorageInitial"))
}

func (s *BuildSuite) TestRampVariants() {
	s.cfg.Variants.HourlyRamps = false
	s.cfg.Variants.DailyRamps = false
	pkg := s.build()
	for _, name := range []string{"NodeHourlyRampUp", "LineHourlyRampDown", "NodeDailyRampUp", "LineDailyRampDown"} {
		_, ok := pkg.Parameter(name)
		s.False(ok, name)
	}
	_, ok := pkg.Parameter("FlowMaximum")
	s.True(ok)
}

func (s *BuildSuite) TestMissingInterconnections() {
	s.cfg.Paths.Interconnections = filepath.Join(s.dir, "absent.csv")
	s.cfg.Paths.NTC = ""
	pkg := s.build()
	s.Empty(s.members(pkg, "l"))
	s.Equal(2, s.logs.FilterMessage("interconnection file not found, no lines taken from it").Len())
	s.Equal(2, s.logs.FilterMessage("zone is not connected to any other zone, simulated in isolation").Len())
}

func (s *BuildSuite) TestFailures() {
	cases := map[string]struct {
		mutate func()
		want   error
	}{
		"level above one": {
			func() {
				s.cfg.Paths.ReservoirLevels = s.write("bad_levels.csv",
					hourly([]string{"S1"}, 24, constant(map[string]float64{"S1": 1.5})))
			},
			validate.ErrAboveMaximum,
		},
		"no units file": {
			func() { s.cfg.Paths.PlayersSupplySide = filepath.Join(s.dir, "none.csv") },
			entity.ErrNoData,
		},
		"storage without capacity": {
			func() {
				s.cfg.Paths.PlayersSupplySide = s.write("units_bad.csv",
					strings.Replace(unitsCSV, "0.95,0,80,", "0.95,0,,", 1))
			},
			validate.ErrMissingValue,
		},
		"negative availability": {
			func() {
				s.cfg.Paths.QuantityDemandOrder = s.write("af_bad.csv",
					hourly([]string{"D1"}, 24, constant(map[string]float64{"D1": -0.1})))
			},
			validate.ErrNegative,
		},
		"availability gap": {
			func() {
				body := hourly([]string{"U1", "SOTH"}, 24, constant(map[string]float64{"U1": 0.8, "SOTH": 0.5}))
				body = strings.Replace(body, "2024-01-01 05:00:00,0.8,0.5", "2024-01-01 05:00:00,0.8,", 1)
				s.cfg.Paths.QuantitySimpleOrder = s.write("af_gap.csv", body)
			},
			validate.ErrNaNInf,
		},
		"duplicate unit": {
			func() {
				s.cfg.Paths.PlayersSupplySide = s.write("units_dup.csv",
					unitsCSV+"U1,GAS,B,IND,HOBO,5,1,1,Simple,,,,,0.9,0.2,,,,\n")
			},
			validate.ErrDuplicateID,
		},
	}
	for name, tc := range cases {
		s.Run(name, func() {
			s.SetupTest()
			tc.mutate()
			_, err := assemble.Build(context.Background(), s.cfg, s.log)
			s.ErrorIs(err, tc.want)
		})
	}
}

func (s *BuildSuite) TestCancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := assemble.Build(ctx, s.cfg, s.log)
	s.ErrorIs(err, context.Canceled)
}

func TestNewHorizon(t *testing.T) {
	cfg, err := config.Default()
	if err != nil {
		t.Fatal(err)
	}
	cfg.StartDate = t0
	cfg.StopDate = t0.AddDate(0, 0, 1)
	cfg.LookAhead = 2
	cfg.TimeStep = 15 * time.Minute

	h := assemble.NewHorizon(cfg)
	if got, want := len(h.Standard), 2*96; got != want {
		t.Fatalf("standard: got %d, want %d", got, want)
	}
	if got, want := len(h.Long), 4*96; got != want {
		t.Fatalf("long: got %d, want %d", got, want)
	}
	if want := time.Date(2024, 1, 2, 23, 45, 0, 0, time.UTC); !h.Last().Equal(want) {
		t.Fatalf("last: got %s, want %s", h.Last(), want)
	}
}
