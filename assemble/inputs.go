// SPDX-License-Identifier: MIT

package assemble

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/mcinput/config"
	"github.com/katalvlaran/mcinput/entity"
	"github.com/katalvlaran/mcinput/fallback"
	"github.com/katalvlaran/mcinput/table"
	"github.com/katalvlaran/mcinput/topology"
	"github.com/katalvlaran/mcinput/validate"
)

// hoursPerDay scales daily ramp fractions into energy over one horizon.
const hoursPerDay = 24

// Unit columns filled with 0 when empty.
var zeroFilled = []string{
	"PriceBlockOrder", "PriceFlexibleOrder", "AccaptanceBlockOrdersMin", "AvailabilityFactorFlexibleOrder",
}

// Storage columns that may be left empty in the input.
var storageOptional = []string{
	"StorageSelfDischarge", "StorageChargingCapacity", "StorageChargingEfficiency",
}

// inputs gathers every table read and checked before parameters are built.
type inputs struct {
	units, demands, storage *entity.Table

	levels, inflows             *table.Table
	afDemand, afSimple, afBlock *table.Table
	priceDemand, priceSimple    *table.Table

	nodeHourlyUp, nodeHourlyDown *table.Table
	lineHourlyUp, lineHourlyDown *table.Table
	nodeDailyUp, nodeDailyDown   map[string]float64
	lineDailyUp, lineDailyDown   map[string]float64

	flows, ntc *table.Table
	topo       *topology.Result
	ntcs, row  *table.Table
}

// pipeline carries the state of one Build.
type pipeline struct {
	ctx context.Context
	cfg *config.Config
	log *zap.Logger
	h   Horizon
	inputs
}

// loadSupply reads, filters and checks the supply side, then selects the
// storage units.
func (p *pipeline) loadSupply() error {
	units, err := entity.Load(p.ctx, p.cfg.Paths.PlayersSupplySide, p.cfg.Zones, "PlayersSupplySide", p.log)
	if err != nil {
		return fmt.Errorf("supply: %w", err)
	}
	units = entity.SelectUnits(units, p.cfg.Zones, p.log)
	if err = validate.Units(units); err != nil {
		return fmt.Errorf("supply: %w", err)
	}
	for _, c := range zeroFilled {
		units.FillEmpty(c, 0)
	}
	for _, r := range [][2]string{{"RampUp", "UnitRampUp"}, {"RampDown", "UnitRampDown"}} {
		if err = units.Rename(r[0], r[1]); err != nil {
			return fmt.Errorf("supply: %w", err)
		}
		units.FillEmpty(r[1], 1)
	}
	for _, c := range validate.StorageColumns {
		units.Ensure(c)
	}

	techs := p.cfg.Commons.StorageTechnologies
	storage := units.Filter(func(i int) bool {
		return slices.Contains(techs, units.Text(i, entity.ColTechnology))
	})
	if err = validate.Storage(storage, p.log); err != nil {
		return fmt.Errorf("supply: %w", err)
	}
	for _, c := range storageOptional {
		storage.FillEmpty(c, 0)
	}
	p.log.Info("supply side loaded", zap.Int("units", units.Len()), zap.Int("storage", storage.Len()))
	p.units, p.storage = units, storage

	return nil
}

// loadReservoirs resolves the reservoir levels and scaled inflows of the
// storage units by unit, then technology, then zone.
func (p *pipeline) loadReservoirs() error {
	zero := 0.0
	for _, r := range []struct {
		name, path string
		dst        **table.Table
	}{
		{"ReservoirLevels", p.cfg.Paths.ReservoirLevels, &p.levels},
		{"ReservoirScaledInflows", p.cfg.Paths.StorageInflows, &p.inflows},
	} {
		src, err := fallback.LoadSource(p.ctx, r.path, p.cfg.Zones, r.name, p.log)
		if err != nil {
			return fmt.Errorf("reservoirs: %w", err)
		}
		*r.dst, err = fallback.Resolve(p.storage, src, p.h.Standard, fallback.Options{
			Table:   r.name,
			Keys:    []string{entity.ColUnit, entity.ColTechnology, entity.ColZone},
			Default: &zero,
		}, p.log)
		if err != nil {
			return fmt.Errorf("reservoirs: %w", err)
		}
	}

	return nil
}

// loadDemand reads, filters and checks the demand side.
func (p *pipeline) loadDemand() error {
	demands, err := entity.Load(p.ctx, p.cfg.Paths.PlayersDemandSide, p.cfg.Zones, "PlayersDemandSide", p.log)
	if err != nil {
		return fmt.Errorf("demand: %w", err)
	}
	demands = entity.SelectDemands(demands, p.cfg.Zones, p.log)
	if err = validate.Demands(demands); err != nil {
		return fmt.Errorf("demand: %w", err)
	}
	p.log.Info("demand side loaded", zap.Int("demands", demands.Len()))
	p.demands = demands

	return nil
}

// loadOrders resolves availability factors and prices. Demand orders are
// matched by name only, supply orders by name then technology.
func (p *pipeline) loadOrders() error {
	zero := 0.0
	byUnit := []string{entity.ColUnit}
	byTech := []string{entity.ColUnit, entity.ColTechnology}
	for _, o := range []struct {
		name, path string
		ents       *entity.Table
		keys       []string
		dst        **table.Table
	}{
		{"QuantityDemandOrder", p.cfg.Paths.QuantityDemandOrder, p.demands, byUnit, &p.afDemand},
		{"QuantitySimpleOrder", p.cfg.Paths.QuantitySimpleOrder, p.units, byTech, &p.afSimple},
		{"QuantityBlockOrder", p.cfg.Paths.QuantityBlockOrder, p.units, byTech, &p.afBlock},
		{"PriceDemandOrder", p.cfg.Paths.PriceDemandOrder, p.demands, byUnit, &p.priceDemand},
		{"PriceSimpleOrder", p.cfg.Paths.PriceSimpleOrder, p.units, byTech, &p.priceSimple},
	} {
		src, err := fallback.LoadSource(p.ctx, o.path, p.cfg.Zones, o.name, p.log)
		if err != nil {
			return fmt.Errorf("orders: %w", err)
		}
		*o.dst, err = fallback.Resolve(o.ents, src, p.h.Standard, fallback.Options{
			Table: o.name, Keys: o.keys, Default: &zero,
		}, p.log)
		if err != nil {
			return fmt.Errorf("orders: %w", err)
		}
	}

	return nil
}

// loadNodeRamps resolves the zone ramp tables and scales them by the
// maximum demand of each zone.
func (p *pipeline) loadNodeRamps() error {
	peak := p.demands.SumBy(entity.ColZone, "MaxDemand")
	d, paths := p.cfg.Defaults, p.cfg.Paths

	if p.cfg.Variants.DailyRamps {
		up, err := p.zoneTable("NodeDailyRampUp", paths.NodeDailyRampUp, p.cfg.Zones, d.NodeDailyRampUp)
		if err != nil {
			return err
		}
		down, err := p.zoneTable("NodeDailyRampDown", paths.NodeDailyRampDown, p.cfg.Zones, d.NodeDailyRampDown)
		if err != nil {
			return err
		}
		p.nodeDailyUp = p.daily(up, p.cfg.Zones, peak)
		p.nodeDailyDown = p.daily(down, p.cfg.Zones, peak)
	}
	if p.cfg.Variants.HourlyRamps {
		up, err := p.zoneTable("NodeHourlyRampUp", paths.NodeHourlyRampUp, p.cfg.Zones, d.NodeHourlyRampUp)
		if err != nil {
			return err
		}
		down, err := p.zoneTable("NodeHourlyRampDown", paths.NodeHourlyRampDown, p.cfg.Zones, d.NodeHourlyRampDown)
		if err != nil {
			return err
		}
		p.nodeHourlyUp, p.nodeHourlyDown = scaled(up, peak), scaled(down, peak)
	}

	return nil
}

// loadInterconnections reads historical flows and transfer capacities, then
// the line ramps scaled by the largest capacity of each line.
func (p *pipeline) loadInterconnections() error {
	var err error
	if p.flows, err = p.interconnectionTable("Interconnections", p.cfg.Paths.Interconnections); err != nil {
		return err
	}
	if p.ntc, err = p.interconnectionTable("NTC", p.cfg.Paths.NTC); err != nil {
		return err
	}

	lines := p.ntc.Columns()
	peak := make(map[string]float64, len(lines))
	for _, l := range lines {
		peak[l] = p.ntc.Max(l)
	}
	d, paths := p.cfg.Defaults, p.cfg.Paths

	if p.cfg.Variants.DailyRamps {
		up, err := p.zoneTable("LineDailyRampUp", paths.LineDailyRampUp, lines, d.LineDailyRampUp)
		if err != nil {
			return err
		}
		down, err := p.zoneTable("LineDailyRampDown", paths.LineDailyRampDown, lines, d.LineDailyRampDown)
		if err != nil {
			return err
		}
		p.lineDailyUp = p.daily(up, lines, peak)
		p.lineDailyDown = p.daily(down, lines, peak)
	}
	if p.cfg.Variants.HourlyRamps {
		up, err := p.zoneTable("LineHourlyRampUp", paths.LineHourlyRampUp, lines, d.LineHourlyRampUp)
		if err != nil {
			return err
		}
		down, err := p.zoneTable("LineHourlyRampDown", paths.LineHourlyRampDown, lines, d.LineHourlyRampDown)
		if err != nil {
			return err
		}
		p.lineHourlyUp, p.lineHourlyDown = scaled(up, peak), scaled(down, peak)
	}

	return nil
}

// interconnectionTable reads a line-keyed table. A missing file yields an
// empty table on the standard index; missing values are 0.
func (p *pipeline) interconnectionTable(name, path string) (*table.Table, error) {
	if !table.IsFile(path) {
		p.log.Warn("interconnection file not found, no lines taken from it",
			zap.String("table", name), zap.String("path", path))
		return table.New(p.h.Standard), nil
	}
	t, err := table.ReadCSV(path)
	if err != nil {
		return nil, fmt.Errorf("interconnections(%s): %w", name, err)
	}
	t.FillNaN(0)

	return t, nil
}

func (p *pipeline) zoneTable(name, path string, keys []string, def float64) (*table.Table, error) {
	t, err := table.ResolveZoneTable(p.ctx, table.Request{
		Name: name, Path: path, Index: p.h.Standard, Keys: keys, Default: &def,
	}, p.log)
	if err != nil {
		return nil, fmt.Errorf("ramps: %w", err)
	}

	return t, nil
}

// daily turns the first row of a ramp table into an amount over one
// optimization horizon: value × peak × 24 × HorizonLength.
func (p *pipeline) daily(t *table.Table, keys []string, peak map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(keys))
	horizon := hoursPerDay * float64(p.cfg.HorizonLength)
	for _, k := range keys {
		out[k] = t.At(k, 0) * peak[k] * horizon
	}

	return out
}

// scaled multiplies every column of t by the peak of its key.
func scaled(t *table.Table, peak map[string]float64) *table.Table {
	out := table.New(t.Index())
	for _, c := range t.Columns() {
		col, _ := t.Column(c)
		_ = out.Add(c, floats.ScaleTo(make([]float64, len(col)), peak[c], col))
	}

	return out
}
