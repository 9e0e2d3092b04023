// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const configYAML = `
simulation_directory: sim
start_date: 2024-01-01
stop_date: 2024-01-01
horizon_length: 1
look_ahead: 0
zones: [A]
paths:
  players_supply_side: units.csv
  players_demand_side: demands.csv
`

const units = `Unit,Fuel,Zone,Sector,Technology,PowerCapacity,RampUp,RampDown,OrderType,PriceBlockOrder,PriceFlexibleOrder,AccaptanceBlockOrdersMin,AvailabilityFactorFlexibleOrder,Efficiency,CO2Intensity
U1,GAS,A,IND,HOBO,100,1,1,Simple,0,0,0,0,0.9,0.2
`

const demands = `Unit,Zone,Sector,MaxDemand
D1,A,IND,50
`

func fixture(t *testing.T, cfg string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range map[string]string{
		"config.yaml": cfg, "units.csv": units, "demands.csv": demands,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	return dir
}

func TestRun_Help(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &out, []string{"--help"}))
	require.Contains(t, out.String(), "--config")
}

func TestRun_Usage(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), &out, nil)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 2, exitErr.Code)

	err = run(context.Background(), &out, []string{"--bogus"})
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 2, exitErr.Code)

	err = run(context.Background(), &out, []string{"--config", filepath.Join(t.TempDir(), "none.yaml")})
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 2, exitErr.Code)
}

func TestRun_Build(t *testing.T) {
	dir := fixture(t, configYAML)
	metrics := filepath.Join(dir, "build.prom")
	var out bytes.Buffer

	err := run(context.Background(), &out, []string{
		"-c", filepath.Join(dir, "config.yaml"), "--log-level", "warn", "--metrics-file", metrics,
	})
	require.NoError(t, err, out.String())

	require.FileExists(t, filepath.Join(dir, "sim", "Inputs.db"))
	require.FileExists(t, filepath.Join(dir, "sim", "Inputs.yaml"))
	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	require.Contains(t, string(prom), "mcinput_build_duration_seconds")
	require.Contains(t, string(prom), `mcinput_diagnostics_total{level="warn"}`)
}

func TestRun_BuildFailure(t *testing.T) {
	dir := fixture(t, configYAML+"  ntc: ntc.csv\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ntc.csv"), []byte(",A -> B\nnot a date,1\n"), 0o644))
	var out bytes.Buffer

	err := run(context.Background(), &out, []string{filepath.Join(dir, "config.yaml"), "--out", filepath.Join(dir, "o")})
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 1, exitErr.Code)
	require.Contains(t, out.String(), "build failed")
	require.NoFileExists(t, filepath.Join(dir, "o", "Inputs.db"))
}
