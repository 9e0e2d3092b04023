// SPDX-License-Identifier: MIT
// Package assemble turns a configuration and its input files into the
// complete, validated set of index sets and parameter tensors consumed by
// the market-clearing optimizer.
//
// Build runs the stages in a fixed order: horizon, supply side, reservoirs,
// demand side, orders, node ramps, interconnections and line ramps, checks
// and topology, look-ahead extension, sets and parameters. The first fatal
// condition stops the build; soft anomalies are logged and the build goes on.
package assemble

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/katalvlaran/mcinput/config"
	"github.com/katalvlaran/mcinput/fallback"
	"github.com/katalvlaran/mcinput/table"
	"github.com/katalvlaran/mcinput/topology"
	"github.com/katalvlaran/mcinput/validate"
)

// Build assembles the solver input described by cfg.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Package, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("assemble.Build: %w", err)
	}
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("assemble.Build: %w", err)
	}
	log = log.With(zap.String("build", id.String()))
	log.Info("build started", zap.String("version", Version),
		zap.Time("start", cfg.StartDate), zap.Time("stop", cfg.StopDate), zap.Strings("zones", cfg.Zones))

	p := &pipeline{ctx: ctx, cfg: cfg, log: log, h: NewHorizon(cfg)}
	for _, stage := range []func() error{
		p.loadSupply,
		p.loadReservoirs,
		p.loadDemand,
		p.loadOrders,
		p.loadNodeRamps,
		p.loadInterconnections,
		p.resolveTopology,
		p.checkSeries,
		p.extend,
		p.checkExtended,
	} {
		if err = ctx.Err(); err != nil {
			return nil, fmt.Errorf("assemble.Build: %w", err)
		}
		if err = stage(); err != nil {
			return nil, fmt.Errorf("assemble.Build: %w", err)
		}
	}

	sto := p.storageUnits()
	if cfg.Variants.StorageSet == config.StorageTechnologies {
		sto = sto.byTechnology(cfg.Commons.StorageTechnologies, p.storage, len(p.h.Long))
	}
	sets, err := p.defineSets(sto)
	if err != nil {
		return nil, fmt.Errorf("assemble.Build: %w", err)
	}
	b, err := p.populate(sets, sto)
	if err != nil {
		return nil, fmt.Errorf("assemble.Build: %w", err)
	}
	log.Info("build finished", zap.Int("parameters", len(b.Parameters())), zap.Int("steps", len(p.h.Long)))

	return &Package{
		Sets:       sets,
		Parameters: b.Parameters(),
		Units:      p.units,
		Demands:    p.demands,
		Config:     cfg,
		Horizon:    p.h,
		Version:    Version,
		BuildID:    id,
	}, nil
}

// resolveTopology classifies the lines and aligns their tables on the
// standard index.
func (p *pipeline) resolveTopology() error {
	res, err := topology.Resolve(p.cfg.Zones, p.ntc, p.flows, p.log)
	if err != nil {
		return fmt.Errorf("topology: %w", err)
	}
	p.topo = res
	p.ntcs = res.Internal.Align(p.h.Standard)
	p.row = res.RoW.Align(p.h.Standard)
	p.log.Info("topology resolved",
		zap.Int("internal", len(res.Network.Lines())), zap.Int("connections", len(res.Connections)))

	return nil
}

// timeTables returns the time-indexed tables with their names. Ramp tables
// left out by the variants are skipped.
func (p *pipeline) timeTables() []struct {
	name string
	t    **table.Table
} {
	out := []struct {
		name string
		t    **table.Table
	}{
		{"QuantityDemandOrder", &p.afDemand},
		{"QuantitySimpleOrder", &p.afSimple},
		{"QuantityBlockOrder", &p.afBlock},
		{"PriceDemandOrder", &p.priceDemand},
		{"PriceSimpleOrder", &p.priceSimple},
		{"ReservoirLevels", &p.levels},
		{"ReservoirScaledInflows", &p.inflows},
		{"NTC", &p.ntcs},
		{"RoW", &p.row},
	}
	if p.cfg.Variants.HourlyRamps {
		out = append(out, []struct {
			name string
			t    **table.Table
		}{
			{"NodeHourlyRampUp", &p.nodeHourlyUp},
			{"NodeHourlyRampDown", &p.nodeHourlyDown},
			{"LineHourlyRampUp", &p.lineHourlyUp},
			{"LineHourlyRampDown", &p.lineHourlyDown},
		}...)
	}

	return out
}

// checkSeries runs the time-series and availability checks on the standard
// index. Supply availability warnings cover the renewable and storage
// technologies only.
func (p *pipeline) checkSeries() error {
	for _, tt := range p.timeTables() {
		if err := validate.TimeSeries(*tt.t, p.h.First(), p.h.Last(), tt.name, p.log); err != nil {
			return err
		}
	}

	techs := append(append([]string(nil), p.cfg.Commons.Renewables...), p.cfg.Commons.StorageTechnologies...)
	if err := validate.AvailabilityFactors(p.demands, p.afDemand, "QuantityDemandOrder", nil, p.log); err != nil {
		return err
	}
	if err := validate.AvailabilityFactors(p.units, p.afSimple, "QuantitySimpleOrder", techs, p.log); err != nil {
		return err
	}

	return validate.AvailabilityFactors(p.units, p.afBlock, "QuantityBlockOrder", techs, p.log)
}

// extend reindexes every time-indexed table on the long index.
func (p *pipeline) extend() error {
	for _, tt := range p.timeTables() {
		*tt.t = (*tt.t).Reindex(p.h.Long)
	}
	p.log.Debug("series extended over the look-ahead",
		zap.Int("standard", len(p.h.Standard)), zap.Int("long", len(p.h.Long)))

	return nil
}

// checkExtended runs the completeness and reservoir level checks on the
// extended tables. Prices and inflows must be complete for every entity.
func (p *pipeline) checkExtended() error {
	for _, c := range []struct {
		name string
		t    *table.Table
		ids  []string
	}{
		{"PriceDemandOrder", p.priceDemand, p.demands.IDs()},
		{"PriceSimpleOrder", p.priceSimple, p.units.IDs()},
		{"ReservoirScaledInflows", p.inflows, p.storage.IDs()},
	} {
		if miss := fallback.Missing(c.t, c.ids); len(miss) > 0 {
			return fmt.Errorf("%s: no complete series for %v: %w", c.name, miss, validate.ErrMissingValue)
		}
	}

	return validate.Profile(p.levels, "ReservoirLevels")
}
