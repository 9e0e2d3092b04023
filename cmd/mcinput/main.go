// SPDX-License-Identifier: MIT
// Command mcinput builds the input package of the market-clearing model
// from a YAML configuration and writes it to the simulation directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/katalvlaran/mcinput/assemble"
	"github.com/katalvlaran/mcinput/config"
	"github.com/katalvlaran/mcinput/diag"
	"github.com/katalvlaran/mcinput/export"
)

// ExitError carries the process exit code of a failed run.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

// options are the parsed command-line flags.
type options struct {
	config      string
	logLevel    string
	logFile     string
	out         string
	metricsFile string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Stderr, os.Args[1:])
	stop()
	if err == nil {
		return
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Message != "" {
			fmt.Fprintln(os.Stderr, exitErr.Message)
		}
		os.Exit(exitErr.Code)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func parse(args []string, output io.Writer) (*options, bool, error) {
	fs := pflag.NewFlagSet("mcinput", pflag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprint(output, "Usage:\n  mcinput --config <file.yaml> [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	opts := &options{}
	fs.StringVarP(&opts.config, "config", "c", "", "Path to the YAML configuration.")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error. Overrides the configuration.")
	fs.StringVar(&opts.logFile, "log-file", "", "JSON log file. Overrides the configuration.")
	fs.StringVarP(&opts.out, "out", "o", "", "Output directory. Defaults to the simulation directory.")
	fs.StringVar(&opts.metricsFile, "metrics-file", "", "Prometheus textfile written after the build.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if opts.config == "" && fs.NArg() > 0 {
		opts.config = fs.Arg(0)
	}
	if opts.config == "" {
		fs.Usage()
		return nil, false, &ExitError{Code: 2, Message: "missing --config"}
	}

	return opts, false, nil
}

func run(ctx context.Context, output io.Writer, args []string) error {
	opts, exit, err := parse(args, output)
	if err != nil || exit {
		return err
	}

	cfg, err := config.Load(opts.config)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.logFile != "" {
		cfg.Logging.File = opts.logFile
	}
	if opts.metricsFile != "" {
		cfg.Output.Metrics = opts.metricsFile
	}
	out := cfg.SimulationDirectory
	if opts.out != "" {
		out = opts.out
	}
	if out == "" {
		return &ExitError{Code: 2, Message: "no output directory: set simulation_directory or --out"}
	}

	counters := diag.NewCounters()
	log, closeLog, err := diag.NewLogger(diag.Options{
		Level: cfg.Logging.Level, Format: cfg.Logging.Format, File: cfg.Logging.File, Console: output,
	}, counters)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	defer closeLog()

	started := time.Now()
	err = build(ctx, cfg, out, log)
	counters.ObserveBuild(time.Since(started))
	if cfg.Output.Metrics != "" {
		if merr := diag.WriteMetrics(cfg.Output.Metrics, counters); merr != nil {
			log.Error("metrics not written", zap.Error(merr))
		}
	}
	if err != nil {
		log.Error("build failed", zap.Error(err))
		return &ExitError{Code: 1}
	}

	return nil
}

func build(ctx context.Context, cfg *config.Config, out string, log *zap.Logger) error {
	pkg, err := assemble.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	if err = os.MkdirAll(out, 0o755); err != nil {
		return err
	}

	db := within(out, cfg.Output.SQLite)
	if err = export.WriteSQLite(ctx, db, pkg); err != nil {
		return err
	}
	log.Info("package written", zap.String("path", db))
	if cfg.Output.Manifest != "" {
		manifest := within(out, cfg.Output.Manifest)
		if err = export.WriteManifest(manifest, pkg); err != nil {
			return err
		}
		log.Info("manifest written", zap.String("path", manifest))
	}

	return nil
}

// within resolves a relative output name against dir.
func within(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}

	return filepath.Join(dir, name)
}
