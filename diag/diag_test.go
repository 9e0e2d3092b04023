// SPDX-License-Identifier: MIT

package diag_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/katalvlaran/mcinput/diag"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]zapcore.Level{
		"":         zapcore.InfoLevel,
		"debug":    zapcore.DebugLevel,
		"warning":  zapcore.WarnLevel,
		"WARN":     zapcore.WarnLevel,
		"critical": zapcore.ErrorLevel,
	} {
		got, err := diag.ParseLevel(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := diag.ParseLevel("loud")
	require.ErrorIs(t, err, diag.ErrLevel)
}

func TestNewLogger_TeeAndCounters(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	var console bytes.Buffer
	counters := diag.NewCounters()

	log, closeFn, err := diag.NewLogger(diag.Options{
		Level: "info", File: filepath.Join(dir, "build.log"), Console: &console,
	}, counters)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("loaded", zap.String("table", "units"))
	log.Warn("fallback used", zap.String("entity", "U1"))
	log.Warn("fallback used", zap.String("entity", "U2"))
	require.NoError(t, closeFn())

	require.Contains(t, console.String(), "fallback used")
	require.NotContains(t, console.String(), "hidden")
	raw, err := os.ReadFile(filepath.Join(dir, "build.log"))
	require.NoError(t, err)
	require.Equal(t, 3, strings.Count(string(raw), "\n"))
	require.Contains(t, string(raw), `"entity":"U2"`)

	require.Equal(t, 2.0, counters.Count(zapcore.WarnLevel))
	require.Equal(t, 1.0, counters.Count(zapcore.InfoLevel))
	require.Zero(t, counters.Count(zapcore.DebugLevel))

	counters.ObserveBuild(1500 * time.Millisecond)
	out := filepath.Join(dir, "build.prom")
	require.NoError(t, diag.WriteMetrics(out, counters))
	prom, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(prom), `mcinput_diagnostics_total{level="warn"} 2`)
	require.Contains(t, string(prom), "mcinput_build_duration_seconds 1.5")
}
