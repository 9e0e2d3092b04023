// SPDX-License-Identifier: MIT

package validate

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/katalvlaran/mcinput/entity"
)

// Mandatory columns.
var (
	UnitColumns = []string{
		"Unit", "Fuel", "Zone", "Sector", "Technology", "PowerCapacity", "RampUp", "RampDown",
		"OrderType", "PriceBlockOrder", "PriceFlexibleOrder", "AccaptanceBlockOrdersMin",
		"AvailabilityFactorFlexibleOrder", "Efficiency", "CO2Intensity",
	}
	UnitText    = []string{"Unit", "Fuel", "Zone", "Sector", "Technology", "OrderType"}
	UnitNumeric = []string{"PowerCapacity"}

	DemandColumns = []string{"Unit", "Zone", "Sector", "MaxDemand"}
	DemandText    = []string{"Unit", "Zone", "Sector"}
	DemandNumeric = []string{"MaxDemand"}

	StorageColumns = []string{
		"StorageCapacity", "StorageSelfDischarge", "StorageChargingCapacity", "StorageChargingEfficiency",
	}
	StorageNumeric = []string{"StorageCapacity"}
)

// RequireColumns fails on the first column of cols absent from t.
func RequireColumns(t *entity.Table, cols []string) error {
	for _, c := range cols {
		if !t.Has(c) {
			e := newError("RequireColumns", t.Name(), ErrMissingColumn)
			e.Column = c
			return e
		}
	}

	return nil
}

// NumericColumns requires every cell of cols to hold a number.
func NumericColumns(t *entity.Table, cols []string) error {
	ids := t.IDs()
	for _, c := range cols {
		for i := 0; i < t.Len(); i++ {
			var err error
			switch t.Cell(i, c).Kind() {
			case entity.Text:
				err = ErrNotNumeric
			case entity.Empty:
				err = ErrMissingValue
			default:
				continue
			}
			e := newError("NumericColumns", t.Name(), err)
			e.Column, e.Row, e.Entity = c, i, ids[i]
			return e
		}
	}

	return nil
}

// StringColumns requires every cell of cols to hold non-empty text.
func StringColumns(t *entity.Table, cols []string) error {
	for _, c := range cols {
		for i := 0; i < t.Len(); i++ {
			var err error
			switch t.Cell(i, c).Kind() {
			case entity.Number:
				err = ErrNotText
			case entity.Empty:
				err = ErrMissingValue
			default:
				continue
			}
			e := newError("StringColumns", t.Name(), err)
			e.Column, e.Row = c, i
			return e
		}
	}

	return nil
}

// UniqueIDs requires the Unit column to be unique. The error names every
// duplicate and the zones of the first one.
func UniqueIDs(t *entity.Table) error {
	ids := t.IDs()
	seen := make(map[string]bool, len(ids))
	var dups []string
	for _, id := range ids {
		if seen[id] {
			dups = append(dups, id)
		}
		seen[id] = true
	}
	if len(dups) == 0 {
		return nil
	}
	var zones []string
	for i, id := range ids {
		if id == dups[0] {
			zones = append(zones, t.Text(i, entity.ColZone))
		}
	}
	e := newError("UniqueIDs", t.Name(), fmt.Errorf("%w: %v, %q appears in zones %v", ErrDuplicateID, dups, dups[0], zones))
	e.Entity = dups[0]

	return e
}

// LowerBound requires column values ≥ min (> min when strict). Missing
// values are not compared. The error lists every offending entity.
func LowerBound(t *entity.Table, column string, min float64, strict bool) error {
	bad := offenders(t, column, func(v float64) bool {
		return v < min || (strict && v == min)
	})
	if len(bad) == 0 {
		return nil
	}
	e := newError("LowerBound", t.Name(), fmt.Errorf("%w %g: units %v", ErrBelowMinimum, min, bad))
	e.Column = column

	return e
}

// UpperBound requires column values ≤ max.
func UpperBound(t *entity.Table, column string, max float64) error {
	bad := offenders(t, column, func(v float64) bool { return v > max })
	if len(bad) == 0 {
		return nil
	}
	e := newError("UpperBound", t.Name(), fmt.Errorf("%w %g: units %v", ErrAboveMaximum, max, bad))
	e.Column = column

	return e
}

func offenders(t *entity.Table, column string, bad func(float64) bool) []string {
	var out []string
	for i := 0; i < t.Len(); i++ {
		if v := t.Float(i, column); !math.IsNaN(v) && bad(v) {
			out = append(out, t.Text(i, entity.ColUnit))
		}
	}

	return out
}

// Units runs the supply-side checks: mandatory columns, text and numeric
// columns, unique names, PowerCapacity ≥ 0 and 0 < Efficiency ≤ 1.
func Units(t *entity.Table) error {
	if err := RequireColumns(t, UnitColumns); err != nil {
		return err
	}
	if err := NumericColumns(t, UnitNumeric); err != nil {
		return err
	}
	if err := StringColumns(t, UnitText); err != nil {
		return err
	}
	if err := UniqueIDs(t); err != nil {
		return err
	}
	if err := LowerBound(t, "PowerCapacity", 0, false); err != nil {
		return err
	}
	if err := LowerBound(t, "Efficiency", 0, true); err != nil {
		return err
	}

	return UpperBound(t, "Efficiency", 1)
}

// Demands runs the demand-side checks.
func Demands(t *entity.Table) error {
	if err := RequireColumns(t, DemandColumns); err != nil {
		return err
	}
	if err := NumericColumns(t, DemandNumeric); err != nil {
		return err
	}
	if err := StringColumns(t, DemandText); err != nil {
		return err
	}

	return UniqueIDs(t)
}

// Storage checks the storage units: mandatory storage columns and a numeric
// capacity. A StorageInitial column is deprecated and only warned about.
func Storage(t *entity.Table, log *zap.Logger) error {
	if t.Has("StorageInitial") {
		log.Warn("StorageInitial column is deprecated and ignored, initial levels come from the reservoir level table",
			zap.String("table", t.Name()))
	}
	if err := RequireColumns(t, StorageColumns); err != nil {
		return err
	}

	return NumericColumns(t, StorageNumeric)
}
