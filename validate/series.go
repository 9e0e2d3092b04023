// SPDX-License-Identifier: MIT

package validate

import (
	"fmt"
	"math"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/katalvlaran/mcinput/entity"
	"github.com/katalvlaran/mcinput/table"
	"github.com/katalvlaran/mcinput/tensor"
)

// ProfileTolerance is the slack allowed above a relative level of 1.
const ProfileTolerance = 1e-11

// TimeSeries checks a time-indexed table: a repeated timestamp is fatal; a
// start or stop timestamp outside the index and columns with missing
// entries are warned about.
func TimeSeries(t *table.Table, start, stop time.Time, name string, log *zap.Logger) error {
	idx := t.Index()
	seen := make(map[int64]struct{}, len(idx))
	for i, ts := range idx {
		if _, ok := seen[ts.UnixNano()]; ok {
			e := newError("TimeSeries", name, ErrDuplicateIndex)
			e.Step = i
			return e
		}
		seen[ts.UnixNano()] = struct{}{}
	}

	log = log.With(zap.String("table", name))
	if _, ok := seen[start.UnixNano()]; !ok {
		log.Warn("start date not in index", zap.Time("start", start))
	}
	if _, ok := seen[stop.UnixNano()]; !ok {
		log.Warn("stop date not in index", zap.Time("stop", stop))
	}
	for _, c := range t.Columns() {
		col, _ := t.Column(c)
		missing := 0
		for _, v := range col {
			if math.IsNaN(v) {
				missing++
			}
		}
		if missing > 0 {
			log.Warn("missing entries", zap.String("column", c), zap.Int("missing", missing))
		}
	}

	return nil
}

// AvailabilityFactors checks availability factors of the entities whose
// technology is in techs (every entity when techs is empty). For each of
// them a missing column or a constant factor of 1 is warned about. Over the
// whole table NaN, ±Inf and negative values are fatal and values above 1 are
// warned about. Expects the standard index, before any gap filling.
func AvailabilityFactors(ents *entity.Table, af *table.Table, name string, techs []string, log *zap.Logger) error {
	log = log.With(zap.String("table", name))
	for i, id := range ents.IDs() {
		tech := ents.Text(i, entity.ColTechnology)
		if len(techs) > 0 && !slices.Contains(techs, tech) {
			continue
		}
		col, ok := af.Column(id)
		if !ok {
			log.Warn("entity has no availability factor, default used", zap.String("entity", id), zap.String("technology", tech))
			continue
		}
		always := len(col) > 0
		for _, v := range col {
			if v != 1 {
				always = false
				break
			}
		}
		if always {
			log.Warn("availability factor is always 100%", zap.String("entity", id), zap.String("technology", tech))
		}
	}

	above := false
	for _, c := range af.Columns() {
		col, _ := af.Column(c)
		for step, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				e := newError("AvailabilityFactors", name, ErrNaNInf)
				e.Entity, e.Step = c, step
				return e
			}
			if v < 0 {
				e := newError("AvailabilityFactors", name, ErrNegative)
				e.Entity, e.Step = c, step
				return e
			}
			if v > 1 {
				above = true
			}
		}
	}
	if above {
		log.Warn("some availability factors are higher than one")
	}

	return nil
}

// Profile requires every relative reservoir level to stay within 1 plus
// ProfileTolerance.
func Profile(t *table.Table, name string) error {
	for _, c := range t.Columns() {
		col, _ := t.Column(c)
		for step, v := range col {
			if v > 1+ProfileTolerance {
				e := newError("Profile", name, fmt.Errorf("%w 1: level %g", ErrAboveMaximum, v))
				e.Entity, e.Step = c, step
				return e
			}
		}
	}

	return nil
}

// Bounds compares two tensors of equal shape element-wise: min > max and a
// negative max are fatal and report the first offending position in
// row-major order.
func Bounds(min, max *tensor.Tensor, subject string) error {
	if !slices.Equal(min.Shape(), max.Shape()) {
		return newError("Bounds", subject, fmt.Errorf("%w: %v vs %v", ErrShape, min.Shape(), max.Shape()))
	}
	lo, hi := min.Data(), max.Data()
	for off := range lo {
		if lo[off] > hi[off] {
			return boundsError(min, subject, off, ErrMinAboveMax)
		}
	}
	for off := range hi {
		if hi[off] < 0 {
			return boundsError(min, subject, off, ErrNegative)
		}
	}

	return nil
}

func boundsError(t *tensor.Tensor, subject string, off int, err error) *Error {
	e := newError("Bounds", subject, err)
	idx, _ := t.Unravel(off)
	if len(idx) > 0 {
		e.Row = idx[0]
	}
	if len(idx) > 1 {
		e.Step = idx[1]
	}

	return e
}
