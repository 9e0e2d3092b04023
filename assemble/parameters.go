// SPDX-License-Identifier: MIT

package assemble

import (
	"fmt"
	"time"

	"github.com/katalvlaran/mcinput/config"
	"github.com/katalvlaran/mcinput/entity"
	"github.com/katalvlaran/mcinput/tensor"
	"github.com/katalvlaran/mcinput/topology"
	"github.com/katalvlaran/mcinput/validate"
)

// Config set members.
var (
	configRows = []string{"FirstDay", "LastDay", "RollingHorizon Length", "RollingHorizon LookAhead"}
	configCols = []string{"year", "month", "day", "val"}
)

// declaration is one parameter with its set signature.
type declaration struct {
	name      string
	signature []string
	boolean   bool
}

// declarations lists every parameter in output order.
var declarations = []declaration{
	{"AccaptanceBlockOrdersMin", []string{"u"}, false},
	{"AvailabilityFactorDemandOrder", []string{"d", "h"}, false},
	{"AvailabilityFactorSimpleOrder", []string{"u", "h"}, false},
	{"AvailabilityFactorBlockOrder", []string{"u", "h"}, false},
	{"AvailabilityFactorFlexibleOrder", []string{"u"}, false},
	{"MaxDemand", []string{"d"}, false},
	{"Fuel", []string{"u", "f"}, true},
	{"LocationDemandSide", []string{"d", "n"}, true},
	{"LocationSupplySide", []string{"u", "n"}, true},
	{"OrderType", []string{"u", "o"}, true},
	{"PowerCapacity", []string{"u"}, false},
	{"PriceDemandOrder", []string{"d", "h"}, false},
	{"PriceSimpleOrder", []string{"u", "h"}, false},
	{"PriceBlockOrder", []string{"u"}, false},
	{"PriceFlexibleOrder", []string{"u"}, false},
	{"Sector", []string{"d", "sk"}, true},
	{"Technology", []string{"u", "t"}, true},
	{"LineNode", []string{"l", "n"}, false},
	{"FlowMaximum", []string{"l", "h"}, false},
	{"FlowMinimum", []string{"l", "h"}, false},
	{"UnitRampUp", []string{"u"}, false},
	{"UnitRampDown", []string{"u"}, false},
	{"NodeHourlyRampUp", []string{"n", "h"}, false},
	{"NodeHourlyRampDown", []string{"n", "h"}, false},
	{"NodeDailyRampUp", []string{"n"}, false},
	{"NodeDailyRampDown", []string{"n"}, false},
	{"LineHourlyRampUp", []string{"l", "h"}, false},
	{"LineHourlyRampDown", []string{"l", "h"}, false},
	{"LineDailyRampUp", []string{"l"}, false},
	{"LineDailyRampDown", []string{"l"}, false},
	{"NodeInitial", []string{"n"}, false},
	{"LineInitial", []string{"l"}, false},
	{"StorageCapacity", []string{"s"}, false},
	{"StorageChargingCapacity", []string{"s"}, false},
	{"StorageChargingEfficiency", []string{"s"}, false},
	{"StorageDischargeEfficiency", []string{"s"}, false},
	{"StorageSelfDischarge", []string{"s"}, false},
	{"StorageInflow", []string{"s", "h"}, false},
	{"StorageInitial", []string{"s"}, false},
	{"StorageMinimum", []string{"s"}, false},
	{"StorageOutflow", []string{"s", "h"}, false},
	{"StorageProfile", []string{"s", "h"}, false},
	{"Config", []string{"x_config", "y_config"}, false},
}

// One-hot parameters and the entity column that selects the category.
var encodings = []struct {
	tensor.Encoding
	demand bool
}{
	{tensor.Encoding{Parameter: "OrderType", Column: "OrderType"}, false},
	{tensor.Encoding{Parameter: "Sector", Column: "Sector"}, true},
	{tensor.Encoding{Parameter: "Technology", Column: entity.ColTechnology}, false},
	{tensor.Encoding{Parameter: "Fuel", Column: "Fuel"}, false},
	{tensor.Encoding{Parameter: "LocationDemandSide", Column: entity.ColZone}, true},
	{tensor.Encoding{Parameter: "LocationSupplySide", Column: entity.ColZone}, false},
}

// Unit and demand columns copied as is.
var (
	unitColumns   = []string{"PowerCapacity", "UnitRampUp", "UnitRampDown", "PriceBlockOrder", "PriceFlexibleOrder", "AccaptanceBlockOrdersMin", "AvailabilityFactorFlexibleOrder"}
	demandColumns = []string{"MaxDemand"}
)

// omitted reports whether name is a ramp parameter left out by the variants.
func omitted(name string, v config.Variants) bool {
	switch name {
	case "NodeHourlyRampUp", "NodeHourlyRampDown", "LineHourlyRampUp", "LineHourlyRampDown":
		return !v.HourlyRamps
	case "NodeDailyRampUp", "NodeDailyRampDown", "LineDailyRampUp", "LineDailyRampDown":
		return !v.DailyRamps
	}

	return false
}

// defineSets registers the index sets.
func (p *pipeline) defineSets(sto *storageData) (*tensor.Sets, error) {
	c := p.cfg.Commons
	steps := len(p.h.Long)
	sets := tensor.NewSets()
	for _, s := range []struct {
		label   string
		members []string
	}{
		{"d", p.demands.IDs()},
		{"u", p.units.IDs()},
		{"o", c.OrderTypes},
		{"n", p.cfg.Zones},
		{"l", p.topo.Connections},
		{"t", c.Technologies},
		{"tr", c.Renewables},
		{"f", c.Fuels},
		{"s", sto.ids},
		{"h", labels(steps)},
		{"z", labels(steps - p.cfg.LookAhead*p.cfg.StepsPerDay())},
		{"sk", c.Sectors},
		{"x_config", configRows},
		{"y_config", configCols},
	} {
		if err := sets.Define(s.label, s.members); err != nil {
			return nil, fmt.Errorf("sets: %w", err)
		}
	}

	return sets, nil
}

// populate declares every parameter and fills it.
// Stage 1 (Declare): zero or false initial values, ramps per variant.
// Stage 2 (Assign): entity columns, series, storage, flows, encodings.
// Stage 3 (Finalize): flow bounds, incidence matrix and shape validation.
func (p *pipeline) populate(sets *tensor.Sets, sto *storageData) (*tensor.Builder, error) {
	b := tensor.NewBuilder(sets)
	for _, d := range declarations {
		if omitted(d.name, p.cfg.Variants) {
			continue
		}
		init := tensor.Zero()
		if d.boolean {
			init = tensor.False()
		}
		if err := b.Declare(d.name, d.signature, init); err != nil {
			return nil, err
		}
	}

	for _, c := range unitColumns {
		if err := b.Assign(c, p.units.Floats(c)); err != nil {
			return nil, err
		}
	}
	for _, c := range demandColumns {
		if err := b.Assign(c, p.demands.Floats(c)); err != nil {
			return nil, err
		}
	}

	for _, s := range []struct {
		name string
		src  tensor.Series
	}{
		{"AvailabilityFactorDemandOrder", p.afDemand},
		{"AvailabilityFactorSimpleOrder", p.afSimple},
		{"AvailabilityFactorBlockOrder", p.afBlock},
		{"PriceDemandOrder", p.priceDemand},
		{"PriceSimpleOrder", p.priceSimple},
	} {
		if err := b.AssignSeries(s.name, s.src); err != nil {
			return nil, err
		}
	}

	if err := p.assignRamps(b); err != nil {
		return nil, err
	}
	if err := assignStorage(b, sto); err != nil {
		return nil, err
	}
	if err := p.assignFlows(b); err != nil {
		return nil, err
	}

	for _, e := range encodings {
		src := p.units
		if e.demand {
			src = p.demands
		}
		if err := b.Encode(e.Encoding, src); err != nil {
			return nil, err
		}
	}

	if err := b.AssignLiteral("Config", configLiteral(p.h.First(), p.h.Last(), p.cfg)); err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	return b, nil
}

func (p *pipeline) assignRamps(b *tensor.Builder) error {
	if p.cfg.Variants.HourlyRamps {
		for _, r := range []struct {
			name string
			src  tensor.Series
		}{
			{"NodeHourlyRampUp", p.nodeHourlyUp},
			{"NodeHourlyRampDown", p.nodeHourlyDown},
			{"LineHourlyRampUp", p.lineHourlyUp},
			{"LineHourlyRampDown", p.lineHourlyDown},
		} {
			if err := b.AssignSeries(r.name, r.src); err != nil {
				return err
			}
		}
	}
	if !p.cfg.Variants.DailyRamps {
		return nil
	}

	for _, r := range []struct {
		name   string
		keys   []string
		values map[string]float64
	}{
		{"NodeDailyRampUp", p.cfg.Zones, p.nodeDailyUp},
		{"NodeDailyRampDown", p.cfg.Zones, p.nodeDailyDown},
		{"LineDailyRampUp", p.topo.Connections, p.lineDailyUp},
		{"LineDailyRampDown", p.topo.Connections, p.lineDailyDown},
	} {
		for _, k := range r.keys {
			v, ok := r.values[k]
			if !ok {
				continue
			}
			if err := b.SetAt(r.name, v, k); err != nil {
				return err
			}
		}
	}

	return nil
}

func assignStorage(b *tensor.Builder, sto *storageData) error {
	for _, s := range []struct {
		name   string
		values []float64
	}{
		{"StorageCapacity", sto.capacity},
		{"StorageChargingCapacity", sto.chargingCapacity},
		{"StorageChargingEfficiency", sto.chargingEfficiency},
		{"StorageDischargeEfficiency", sto.dischargeEfficiency},
		{"StorageSelfDischarge", sto.selfDischarge},
		{"StorageInitial", sto.initial},
	} {
		if err := b.Assign(s.name, s.values); err != nil {
			return err
		}
	}
	if err := b.AssignSeries("StorageProfile", sto.profile); err != nil {
		return err
	}

	return b.AssignSeries("StorageInflow", sto.inflow)
}

// assignFlows sets the flow bounds: internal lines are capped by their
// transfer capacity, rest-of-world lines are pinned to the historical flow.
func (p *pipeline) assignFlows(b *tensor.Builder) error {
	for _, src := range []tensor.Series{p.ntcs, p.row} {
		if err := b.AssignSeries("FlowMaximum", src); err != nil {
			return err
		}
	}
	if err := b.AssignSeries("FlowMinimum", p.row); err != nil {
		return err
	}

	lo, err := b.Parameter("FlowMinimum")
	if err != nil {
		return err
	}
	hi, err := b.Parameter("FlowMaximum")
	if err != nil {
		return err
	}
	if err = validate.Bounds(lo.Value, hi.Value, "Flow"); err != nil {
		return err
	}

	inc, err := topology.Incidence(p.topo.Connections, p.cfg.Zones, p.log)
	if err != nil {
		return err
	}

	return b.Put("LineNode", inc)
}

// configLiteral returns the Config rows: first and last simulated day, then
// the horizon length and look-ahead in days.
func configLiteral(first, last time.Time, cfg *config.Config) []float64 {
	return []float64{
		float64(first.Year()), float64(first.Month()), float64(first.Day()), 0,
		float64(last.Year()), float64(last.Month()), float64(last.Day()), 0,
		0, 0, float64(cfg.HorizonLength), 0,
		0, 0, float64(cfg.LookAhead), 0,
	}
}
