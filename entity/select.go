// SPDX-License-Identifier: MIT

package entity

import (
	"go.uber.org/zap"
)

const (
	// TechnologyOther marks units that do not take part in the market.
	TechnologyOther = "Other"

	colPowerCapacity = "PowerCapacity"
	colMaxDemand     = "MaxDemand"
)

// SelectUnits keeps the units that take part in the simulation. Units with
// technology Other, a zero power capacity or a zone outside zones are
// dropped with one warning each.
func SelectUnits(units *Table, zones []string, log *zap.Logger) *Table {
	in := zoneSet(zones)

	return units.Filter(func(i int) bool {
		id := units.Text(i, ColUnit)
		switch {
		case units.Text(i, ColTechnology) == TechnologyOther:
			log.Warn("unit dropped: technology Other", zap.String("unit", id))
			return false
		case units.Float(i, colPowerCapacity) == 0:
			log.Warn("unit dropped: zero power capacity", zap.String("unit", id))
			return false
		case !in[units.Text(i, ColZone)]:
			log.Warn("unit dropped: zone not simulated",
				zap.String("unit", id), zap.String("zone", units.Text(i, ColZone)))
			return false
		}
		return true
	})
}

// SelectDemands keeps the demands with a non-zero maximum and a simulated zone.
func SelectDemands(demands *Table, zones []string, log *zap.Logger) *Table {
	in := zoneSet(zones)

	return demands.Filter(func(i int) bool {
		id := demands.Text(i, ColUnit)
		switch {
		case demands.Float(i, colMaxDemand) == 0:
			log.Warn("demand dropped: zero maximum demand", zap.String("demand", id))
			return false
		case !in[demands.Text(i, ColZone)]:
			log.Warn("demand dropped: zone not simulated",
				zap.String("demand", id), zap.String("zone", demands.Text(i, ColZone)))
			return false
		}
		return true
	})
}

func zoneSet(zones []string) map[string]bool {
	in := make(map[string]bool, len(zones))
	for _, z := range zones {
		in[z] = true
	}

	return in
}
