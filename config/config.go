// SPDX-License-Identifier: MIT
// Package config loads and validates the simulation configuration record.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. MCINPUT_LOOK_AHEAD.
const EnvPrefix = "MCINPUT"

// DateLayout is the layout of start_date and stop_date.
const DateLayout = "2006-01-02"

// Storage set variants.
const (
	StorageUnits        = "units"
	StorageTechnologies = "technologies"
)

var (
	// ErrInvalid is returned by Validate.
	ErrInvalid = errors.New("config: invalid configuration")
)

// Config is the immutable simulation configuration.
type Config struct {
	SimulationDirectory string        `mapstructure:"simulation_directory"`
	StartDate           time.Time     `mapstructure:"start_date"`
	StopDate            time.Time     `mapstructure:"stop_date"`
	HorizonLength       int           `mapstructure:"horizon_length"`
	LookAhead           int           `mapstructure:"look_ahead"`
	TimeStep            time.Duration `mapstructure:"time_step"`
	Zones               []string      `mapstructure:"zones"`

	Paths    Paths    `mapstructure:"paths"`
	Defaults Defaults `mapstructure:"defaults"`
	Commons  Commons  `mapstructure:"commons"`
	Variants Variants `mapstructure:"variants"`
	Output   Output   `mapstructure:"output"`
	Logging  Logging  `mapstructure:"logging"`
}

// Paths lists the input files. Each entry is a single file, a template
// containing "##" expanded per zone, or empty.
type Paths struct {
	PlayersSupplySide   string `mapstructure:"players_supply_side"`
	PlayersDemandSide   string `mapstructure:"players_demand_side"`
	QuantityDemandOrder string `mapstructure:"quantity_demand_order"`
	QuantitySimpleOrder string `mapstructure:"quantity_simple_order"`
	QuantityBlockOrder  string `mapstructure:"quantity_block_order"`
	PriceDemandOrder    string `mapstructure:"price_demand_order"`
	PriceSimpleOrder    string `mapstructure:"price_simple_order"`
	Interconnections    string `mapstructure:"interconnections"`
	NTC                 string `mapstructure:"ntc"`
	NodeHourlyRampUp    string `mapstructure:"node_hourly_ramp_up"`
	NodeHourlyRampDown  string `mapstructure:"node_hourly_ramp_down"`
	NodeDailyRampUp     string `mapstructure:"node_daily_ramp_up"`
	NodeDailyRampDown   string `mapstructure:"node_daily_ramp_down"`
	LineHourlyRampUp    string `mapstructure:"line_hourly_ramp_up"`
	LineHourlyRampDown  string `mapstructure:"line_hourly_ramp_down"`
	LineDailyRampUp     string `mapstructure:"line_daily_ramp_up"`
	LineDailyRampDown   string `mapstructure:"line_daily_ramp_down"`
	ReservoirLevels     string `mapstructure:"reservoir_levels"`
	StorageInflows      string `mapstructure:"storage_inflows"`
}

func (p *Paths) all() []*string {
	return []*string{
		&p.PlayersSupplySide, &p.PlayersDemandSide,
		&p.QuantityDemandOrder, &p.QuantitySimpleOrder, &p.QuantityBlockOrder,
		&p.PriceDemandOrder, &p.PriceSimpleOrder,
		&p.Interconnections, &p.NTC,
		&p.NodeHourlyRampUp, &p.NodeHourlyRampDown, &p.NodeDailyRampUp, &p.NodeDailyRampDown,
		&p.LineHourlyRampUp, &p.LineHourlyRampDown, &p.LineDailyRampUp, &p.LineDailyRampDown,
		&p.ReservoirLevels, &p.StorageInflows,
	}
}

// Defaults are the values used when a ramp table has no data.
type Defaults struct {
	NodeHourlyRampUp   float64 `mapstructure:"node_hourly_ramp_up"`
	NodeHourlyRampDown float64 `mapstructure:"node_hourly_ramp_down"`
	NodeDailyRampUp    float64 `mapstructure:"node_daily_ramp_up"`
	NodeDailyRampDown  float64 `mapstructure:"node_daily_ramp_down"`
	LineHourlyRampUp   float64 `mapstructure:"line_hourly_ramp_up"`
	LineHourlyRampDown float64 `mapstructure:"line_hourly_ramp_down"`
	LineDailyRampUp    float64 `mapstructure:"line_daily_ramp_up"`
	LineDailyRampDown  float64 `mapstructure:"line_daily_ramp_down"`
}

// Commons are the fixed category lists of the market model.
type Commons struct {
	OrderTypes          []string `mapstructure:"order_types"`
	Technologies        []string `mapstructure:"technologies"`
	Renewables          []string `mapstructure:"renewables"`
	StorageTechnologies []string `mapstructure:"storage_technologies"`
	Fuels               []string `mapstructure:"fuels"`
	Sectors             []string `mapstructure:"sectors"`
}

// Variants switch between alternative parameter layouts.
type Variants struct {
	StorageSet  string `mapstructure:"storage_set"`
	HourlyRamps bool   `mapstructure:"hourly_ramps"`
	DailyRamps  bool   `mapstructure:"daily_ramps"`
}

// Output selects the artifacts written next to the simulation directory.
type Output struct {
	SQLite   string `mapstructure:"sqlite"`
	Manifest string `mapstructure:"manifest"`
	Metrics  string `mapstructure:"metrics"`
}

// Logging configures the diagnostics sink.
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// setDefaults registers every default on v.
func setDefaults(v *viper.Viper) {
	v.SetDefault("time_step", "1h")
	v.SetDefault("horizon_length", 1)
	v.SetDefault("look_ahead", 0)

	v.SetDefault("commons.order_types", []string{"Simple", "Block", "Flexible", "Storage"})
	v.SetDefault("commons.technologies", []string{"HOBO", "HEPU", "ELHE", "SOTH", "GETH", "WSHE", "THMS"})
	v.SetDefault("commons.renewables", []string{"SOTH", "GETH", "WSHE"})
	v.SetDefault("commons.storage_technologies", []string{"THMS"})
	v.SetDefault("commons.fuels", []string{
		"BIO", "GAS", "HRD", "LIG", "NUC", "OIL", "PEA", "SUN", "WAT", "WIN", "WST", "OTH", "GEO",
	})
	v.SetDefault("commons.sectors", []string{"IND", "REZ", "COM"})

	for _, k := range []string{
		"node_hourly_ramp_up", "node_hourly_ramp_down", "node_daily_ramp_up", "node_daily_ramp_down",
		"line_hourly_ramp_up", "line_hourly_ramp_down", "line_daily_ramp_up", "line_daily_ramp_down",
	} {
		v.SetDefault("defaults."+k, 1.0)
	}

	v.SetDefault("variants.storage_set", StorageUnits)
	v.SetDefault("variants.hourly_ramps", true)
	v.SetDefault("variants.daily_ramps", true)

	v.SetDefault("output.sqlite", "Inputs.db")
	v.SetDefault("output.manifest", "Inputs.yaml")
	v.SetDefault("output.metrics", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")
}

// Default returns the configuration produced by an empty file.
func Default() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	return decode(v, "")
}

// Load reads the YAML configuration at path. Environment variables prefixed
// with EnvPrefix override file values. Relative paths are resolved against
// the directory of path. The result is validated.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config.Load(%s): %w", path, err)
	}
	cfg, err := decode(v, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("config.Load(%s): %w", path, err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load(%s): %w", path, err)
	}

	return cfg, nil
}

func decode(v *viper.Viper, base string) (*Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeHookFunc(DateLayout),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, err
	}
	if base != "" {
		cfg.resolve(base)
	}

	return &cfg, nil
}

// resolve makes relative paths absolute against base.
func (c *Config) resolve(base string) {
	if c.SimulationDirectory != "" && !filepath.IsAbs(c.SimulationDirectory) {
		c.SimulationDirectory = filepath.Join(base, c.SimulationDirectory)
	}
	for _, p := range c.Paths.all() {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
	if c.Logging.File != "" && !filepath.IsAbs(c.Logging.File) {
		c.Logging.File = filepath.Join(base, c.Logging.File)
	}
}

// Validate checks the fields the pipeline relies on.
func (c *Config) Validate() error {
	switch {
	case len(c.Zones) == 0:
		return fmt.Errorf("%w: no zones", ErrInvalid)
	case c.StartDate.IsZero() || c.StopDate.IsZero():
		return fmt.Errorf("%w: start_date and stop_date are required", ErrInvalid)
	case c.StopDate.Before(c.StartDate):
		return fmt.Errorf("%w: stop_date %s before start_date %s", ErrInvalid,
			c.StopDate.Format(DateLayout), c.StartDate.Format(DateLayout))
	case c.HorizonLength < 1:
		return fmt.Errorf("%w: horizon_length %d must be at least 1", ErrInvalid, c.HorizonLength)
	case c.LookAhead < 0:
		return fmt.Errorf("%w: look_ahead %d must not be negative", ErrInvalid, c.LookAhead)
	case c.TimeStep <= 0 || (24*time.Hour)%c.TimeStep != 0:
		return fmt.Errorf("%w: time_step %s must divide one day", ErrInvalid, c.TimeStep)
	case c.Variants.StorageSet != StorageUnits && c.Variants.StorageSet != StorageTechnologies:
		return fmt.Errorf("%w: variants.storage_set %q", ErrInvalid, c.Variants.StorageSet)
	}
	seen := make(map[string]bool, len(c.Zones))
	for _, z := range c.Zones {
		if z == "" || seen[z] {
			return fmt.Errorf("%w: empty or duplicate zone %q", ErrInvalid, z)
		}
		seen[z] = true
	}

	return nil
}

// StepsPerDay returns the number of time steps in one day.
func (c *Config) StepsPerDay() int { return int(24 * time.Hour / c.TimeStep) }
