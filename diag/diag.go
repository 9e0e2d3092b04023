// SPDX-License-Identifier: MIT
// Package diag builds the structured logger shared by every pipeline stage
// and the counters that summarize a build for batch monitoring.
package diag

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrLevel is returned for an unknown log level.
var ErrLevel = errors.New("diag: unknown log level")

// Options configure NewLogger.
type Options struct {
	Level   string    // debug, info, warn (warning), error
	Format  string    // console or json, for the console sink
	File    string    // optional JSON log file, appended to
	Console io.Writer // defaults to os.Stderr
}

// ParseLevel maps a level name to a zap level. "warning" and "critical" are
// accepted as aliases of warn and error.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warning":
		return zapcore.WarnLevel, nil
	case "critical":
		return zapcore.ErrorLevel, nil
	}
	lvl, err := zapcore.ParseLevel(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrLevel, s)
	}

	return lvl, nil
}

// NewLogger builds a logger writing to the console and, when opts.File is
// set, to a JSON file. When counters is non-nil every entry is counted per
// level. The returned function flushes and closes the sinks.
func NewLogger(opts Options, counters *Counters) (*zap.Logger, func() error, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	switch opts.Format {
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		consoleCfg := encCfg
		consoleCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(consoleCfg)
	}
	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.AddSync(console), lvl)}

	var file *os.File
	if opts.File != "" {
		file, err = os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("diag: open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(file), lvl))
	}

	zopts := []zap.Option{zap.ErrorOutput(zapcore.AddSync(console))}
	if counters != nil {
		zopts = append(zopts, zap.Hooks(counters.observe))
	}
	log := zap.New(zapcore.NewTee(cores...), zopts...)

	closer := func() error {
		_ = log.Sync()
		if file != nil {
			return file.Close()
		}
		return nil
	}

	return log, closer, nil
}

// Counters hold the per-build metrics.
type Counters struct {
	registry *prometheus.Registry
	entries  *prometheus.CounterVec
	duration prometheus.Gauge
}

// NewCounters returns counters registered on a private registry.
func NewCounters() *Counters {
	c := &Counters{
		registry: prometheus.NewRegistry(),
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mcinput_diagnostics_total",
			Help: "Diagnostics emitted during the build, by severity.",
		}, []string{"level"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mcinput_build_duration_seconds",
			Help: "Wall-clock duration of the last build.",
		}),
	}
	c.registry.MustRegister(c.entries, c.duration)

	return c
}

func (c *Counters) observe(e zapcore.Entry) error {
	c.entries.WithLabelValues(e.Level.String()).Inc()
	return nil
}

// Count returns the number of entries logged at lvl.
func (c *Counters) Count(lvl zapcore.Level) float64 {
	var m dto.Metric
	if err := c.entries.WithLabelValues(lvl.String()).Write(&m); err != nil {
		return 0
	}

	return m.GetCounter().GetValue()
}

// ObserveBuild records the duration of a build.
func (c *Counters) ObserveBuild(d time.Duration) { c.duration.Set(d.Seconds()) }

// Registry exposes the private registry.
func (c *Counters) Registry() *prometheus.Registry { return c.registry }

// WriteMetrics writes the counters in the Prometheus text format, for
// collection by a node exporter textfile collector.
func WriteMetrics(path string, c *Counters) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("diag: write metrics: %w", err)
	}

	return nil
}
