// SPDX-License-Identifier: MIT

package assemble

import (
	"strconv"
	"time"

	"github.com/katalvlaran/mcinput/config"
	"github.com/katalvlaran/mcinput/table"
)

// Horizon holds the two time indices of a build.
type Horizon struct {
	// Standard runs from StartDate 00:00 to the last step of StopDate.
	Standard []time.Time
	// Long extends Standard by the look-ahead days.
	Long []time.Time
	// Step is the time step.
	Step time.Duration
}

// NewHorizon derives the standard and long indices from cfg.
func NewHorizon(cfg *config.Config) Horizon {
	day := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	start := day(cfg.StartDate)
	stop := day(cfg.StopDate).Add(24*time.Hour - cfg.TimeStep)
	long := stop.AddDate(0, 0, cfg.LookAhead)

	return Horizon{
		Standard: table.Range(start, stop, cfg.TimeStep),
		Long:     table.Range(start, long, cfg.TimeStep),
		Step:     cfg.TimeStep,
	}
}

// First returns the first standard step.
func (h Horizon) First() time.Time { return h.Standard[0] }

// Last returns the last standard step.
func (h Horizon) Last() time.Time { return h.Standard[len(h.Standard)-1] }

// labels returns "1".."n".
func labels(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = strconv.Itoa(i + 1)
	}

	return out
}
