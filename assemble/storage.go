// SPDX-License-Identifier: MIT

package assemble

import (
	"math"
	"slices"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/mcinput/entity"
)

// series is a set of named rows keyed by set member.
type series map[string][]float64

// Column implements tensor.Series.
func (s series) Column(name string) ([]float64, bool) {
	v, ok := s[name]
	return v, ok
}

// storageData holds the storage quantities of every member of set s.
type storageData struct {
	ids []string

	capacity            []float64
	power               []float64
	chargingCapacity    []float64
	chargingEfficiency  []float64
	dischargeEfficiency []float64
	selfDischarge       []float64
	initial             []float64

	profile series
	inflow  series
}

// storageUnits computes the storage quantities per unit on the long index.
// A unit whose level profile never rises above zero gets a zero profile.
func (p *pipeline) storageUnits() *storageData {
	st := p.storage
	steps := len(p.h.Long)
	d := &storageData{
		ids:                 st.IDs(),
		capacity:            st.Floats("StorageCapacity"),
		power:               st.Floats("PowerCapacity"),
		chargingCapacity:    st.Floats("StorageChargingCapacity"),
		chargingEfficiency:  st.Floats("StorageChargingEfficiency"),
		dischargeEfficiency: st.Floats("Efficiency"),
		selfDischarge:       st.Floats("StorageSelfDischarge"),
		initial:             make([]float64, st.Len()),
		profile:             make(series, st.Len()),
		inflow:              make(series, st.Len()),
	}

	for i, id := range d.ids {
		level, ok := p.levels.Column(id)
		if ok && slices.ContainsFunc(level, func(v float64) bool { return v > 0 }) {
			d.profile[id] = level
			d.initial[i] = level[0] * d.capacity[i]
		} else {
			p.log.Warn("no reservoir level for storage unit, using a zero profile", zap.String("unit", id))
			d.profile[id] = make([]float64, steps)
		}

		inflow, ok := p.inflows.Column(id)
		if !ok {
			inflow = make([]float64, steps)
		}
		d.inflow[id] = floats.ScaleTo(make([]float64, steps), d.power[i], inflow)
	}

	return d
}

// byTechnology aggregates unit quantities per technology. Capacities,
// inflows and initial levels are summed; efficiencies, self-discharge and
// profiles are averaged with the storage capacity as weight.
// Complexity: O(techs × units × steps).
func (d *storageData) byTechnology(techs []string, st *entity.Table, steps int) *storageData {
	n := len(techs)
	out := &storageData{
		ids:                 append([]string(nil), techs...),
		capacity:            make([]float64, n),
		power:               make([]float64, n),
		chargingCapacity:    make([]float64, n),
		chargingEfficiency:  make([]float64, n),
		dischargeEfficiency: make([]float64, n),
		selfDischarge:       make([]float64, n),
		initial:             make([]float64, n),
		profile:             make(series, n),
		inflow:              make(series, n),
	}
	techOf := st.Strings(entity.ColTechnology)

	for j, tech := range techs {
		profile := make([]float64, steps)
		inflow := make([]float64, steps)
		for i, id := range d.ids {
			if techOf[i] != tech {
				continue
			}
			w := d.capacity[i]
			out.capacity[j] += w
			out.power[j] += d.power[i]
			out.chargingCapacity[j] += d.chargingCapacity[i]
			out.chargingEfficiency[j] += w * d.chargingEfficiency[i]
			out.dischargeEfficiency[j] += w * d.dischargeEfficiency[i]
			out.selfDischarge[j] += w * d.selfDischarge[i]
			out.initial[j] += d.initial[i]
			floats.AddScaled(profile, w, d.profile[id])
			floats.Add(inflow, d.inflow[id])
		}
		if w := out.capacity[j]; w > 0 && !math.IsNaN(w) {
			out.chargingEfficiency[j] /= w
			out.dischargeEfficiency[j] /= w
			out.selfDischarge[j] /= w
			floats.Scale(1/w, profile)
		}
		out.profile[tech] = profile
		out.inflow[tech] = inflow
	}

	return out
}
