package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/mojomark/mojomark/internal/machine"
	"github.com/mojomark/mojomark/internal/projectconfig"
	"github.com/mojomark/mojomark/internal/reporting"
	"github.com/mojomark/mojomark/internal/results"
	"github.com/mojomark/mojomark/internal/runner"
	"github.com/mojomark/mojomark/internal/versions"
	"github.com/spf13/cobra"
)

// homeEnv overrides the toolchain cache root (default ~/.mojomark).
const homeEnv = "MOJOMARK_HOME"

// Replaced in tests.
var (
	newToolchain = func(binary string) runner.Toolchain {
		return runner.NewMojoToolchain(binary)
	}
	detectVersion  = versions.DetectVersion
	captureMachine = machine.Capture
	newIndex       = versions.NewIndex
)

// env is what most commands need: merged configuration, a console for
// output and the result store.
type env struct {
	cfg     *projectconfig.ProjectConfig
	console *reporting.Console
	store   *results.Store
}

// loadEnv loads .mojomark.yaml from the working directory upwards and
// applies command-line overrides on top.
func loadEnv(cmd *cobra.Command, overrides projectconfig.Overrides) (*env, error) {
	cfg, err := projectconfig.Load(".")
	if err != nil {
		return nil, err
	}
	// Paths typed on the command line are relative to the working
	// directory, not to the configuration file.
	if o := overrides.OutputDir; o != nil && *o != "" {
		abs, err := filepath.Abs(*o)
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", *o, err)
		}
		overrides.OutputDir = &abs
	}
	overrides.Apply(cfg)

	return &env{
		cfg:     cfg,
		console: newConsole(cmd),
		store:   results.NewStore(cfg.Resolve(cfg.Results.Dir), results.WithCompression(cfg.Compress())),
	}, nil
}

func newConsole(cmd *cobra.Command) *reporting.Console {
	return reporting.NewConsole(cmd.OutOrStdout(), reporting.VerbosityFrom(verboseOutput, debugLogging))
}

// reportDir is where generated reports are written.
func (e *env) reportDir() string {
	return e.cfg.Resolve(e.cfg.Report.OutputDir)
}

// userBenchmarkDir is where custom templates are discovered and created.
func (e *env) userBenchmarkDir() string {
	return e.cfg.Resolve(e.cfg.Benchmarks.UserDir)
}

func newManager() *versions.Manager {
	opts := []versions.ManagerOption{versions.WithIndex(newIndex())}
	if root := os.Getenv(homeEnv); root != "" {
		opts = append(opts, versions.WithRoot(root))
	}
	return versions.NewManager(opts...)
}

// noOverrides keeps the loaded configuration as is.
var noOverrides = projectconfig.Overrides{}

// changed returns &v when the named flag was set on the command line.
func changed[T any](cmd *cobra.Command, name string, v T) *T {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

// interruptible returns a context cancelled on Ctrl+C so in-flight builds
// and benchmark processes are killed.
func interruptible(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt)
}
