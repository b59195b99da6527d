package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/mojomark/mojomark/internal/compare"
	"github.com/mojomark/mojomark/internal/discovery"
	"github.com/mojomark/mojomark/internal/hooks"
	"github.com/mojomark/mojomark/internal/projectconfig"
	"github.com/mojomark/mojomark/internal/reporting"
	"github.com/mojomark/mojomark/internal/results"
	"github.com/mojomark/mojomark/internal/versions"
	"github.com/spf13/cobra"
)

var (
	regressionCategory  string
	regressionNames     []string
	regressionSamples   int
	regressionWarmup    int
	regressionJobs      int
	regressionFormat    string
	regressionOutputDir string
	regressionNoCache   bool
	regressionStable    float64
	regressionWarning   float64
	regressionImproved  float64
)

func newRegressionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regression <base> <target>",
		Short: "Benchmark two Mojo versions back to back and compare them",
		Long: `Run a full regression assessment between two Mojo versions.

Both versions are installed into isolated environments under the cache
root, benchmarked one after the other on this machine, and compared. Use
the aliases "current" (the mojo on PATH) and "latest" (newest published
release) instead of explicit versions.

Examples:
  mojomark regression current latest
  mojomark regression 0.7.0 0.26.1
  mojomark regression 0.7.0 0.26.1 --category compute --samples 20`,
		Args: cobra.ExactArgs(2),
		RunE: regressionCommandE,
	}

	cmd.Flags().StringVarP(&regressionCategory, "category", "c", "", "Only run benchmarks in this category")
	cmd.Flags().StringArrayVarP(&regressionNames, "benchmark", "b", nil, "Only run this benchmark name or category/name (can be repeated)")
	cmd.Flags().IntVarP(&regressionSamples, "samples", "s", projectconfig.DefaultSamples, "Timed runs per benchmark")
	cmd.Flags().IntVarP(&regressionWarmup, "warmup", "w", projectconfig.DefaultWarmup, "Untimed runs before sampling")
	cmd.Flags().IntVarP(&regressionJobs, "jobs", "j", projectconfig.DefaultJobs, "Benchmarks built and run in parallel")
	cmd.Flags().StringVarP(&regressionFormat, "format", "f", projectconfig.DefaultReportFormat, "Report format: markdown, html, junit, both, all or none")
	cmd.Flags().StringVarP(&regressionOutputDir, "output", "o", "", "Report output directory")
	cmd.Flags().BoolVar(&regressionNoCache, "no-cache", false, "Always recompile instead of reusing cached builds")
	addThresholdFlags(cmd, &regressionStable, &regressionWarning, &regressionImproved)

	return cmd
}

func regressionCommandE(cmd *cobra.Command, args []string) error {
	overrides := thresholdOverrides(cmd, regressionStable, regressionWarning, regressionImproved)
	overrides.Samples = changed(cmd, "samples", regressionSamples)
	overrides.Warmup = changed(cmd, "warmup", regressionWarmup)
	overrides.Jobs = changed(cmd, "jobs", regressionJobs)
	overrides.Format = changed(cmd, "format", regressionFormat)
	overrides.OutputDir = changed(cmd, "output", regressionOutputDir)
	e, err := loadEnv(cmd, overrides)
	if err != nil {
		return err
	}
	if e.cfg.Benchmark.Samples < 1 {
		return fmt.Errorf("samples must be at least 1, got %d", e.cfg.Benchmark.Samples)
	}
	thresholds := e.cfg.ThresholdValues()
	if err := thresholds.Validate(); err != nil {
		return err
	}
	formats, err := reporting.ParseFormats(e.cfg.Report.Format)
	if err != nil {
		return err
	}

	ctx, stop := interruptible(cmd)
	defer stop()

	c := e.console
	manager := newManager()
	baseVersion, err := manager.ResolveAlias(ctx, args[0])
	if err != nil {
		return err
	}
	targetVersion, err := manager.ResolveAlias(ctx, args[1])
	if err != nil {
		return err
	}
	if baseVersion == targetVersion {
		c.Printf("%s\n", c.Warn(fmt.Sprintf("Base and target are the same version (%s). Nothing to compare.", baseVersion)))
		return nil
	}

	c.Header("Regression Assessment")
	c.Printf("\n  Machine:  %s\n", captureMachine(ctx).Summary())
	c.Printf("  Base:     Mojo %s\n", baseVersion)
	c.Printf("  Target:   Mojo %s\n", targetVersion)
	c.Printf("  Samples:  %d | Warmup: %d\n\n", e.cfg.Benchmark.Samples, e.cfg.Warmup())

	benchmarks, err := discoverBenchmarks(e, regressionCategory, regressionNames)
	if err != nil {
		return err
	}
	if len(benchmarks) == 0 {
		c.Printf("%s\n", c.Warn("No benchmarks found."))
		return nil
	}
	c.Printf("  %d benchmark(s) to run\n\n", len(benchmarks))

	c.Rule(fmt.Sprintf("Phase 1 — Mojo %s", baseVersion))
	base, err := benchmarkVersion(ctx, e, manager, baseVersion, benchmarks)
	if err != nil {
		return err
	}

	c.Printf("\n")
	c.Rule(fmt.Sprintf("Phase 2 — Mojo %s", targetVersion))
	target, err := benchmarkVersion(ctx, e, manager, targetVersion, benchmarks)
	if err != nil {
		return err
	}

	c.Printf("\n")
	c.Rule("Regression Report")
	diffs := compare.Results(base, target, thresholds)
	if len(diffs) == 0 {
		c.Printf("%s\n", c.Warn("No matching benchmarks to compare."))
		return nil
	}
	c.Printf("\n")
	c.ComparisonTable(fmt.Sprintf("Regression Report: Mojo %s → %s", baseVersion, targetVersion),
		baseVersion, targetVersion, diffs)
	printUnmatched(c, base, target)
	c.Printf("\n")
	c.Legend(thresholds)

	if formats.Any() {
		paths, err := writeComparisonReports("regression", base, target, diffs, thresholds, formats, e.reportDir())
		if err != nil {
			return err
		}
		printPaths(c, "Reports:", paths)
	}
	return regressionError(diffs)
}

// benchmarkVersion installs version if needed, runs every benchmark with
// it and saves the results.
func benchmarkVersion(ctx context.Context, e *env, manager *versions.Manager, version string, benchmarks []discovery.Benchmark) (*results.ResultSet, error) {
	c := e.console
	binary, err := manager.Binary(ctx, version, func(msg string) {
		c.Printf("  %s\n", c.Dim(msg))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up Mojo %s: %w", version, err)
	}
	actual := detectVersion(ctx, binary)
	c.Printf("  Mojo %s ready\n\n", actual)
	if actual != "unknown" && versions.CompareStrings(actual, version) != 0 {
		c.Printf("  %s\n", c.Warn(fmt.Sprintf("binary reports %s; results are recorded as %s", actual, version)))
	}

	if err := runHooks(ctx, e, hooks.BeforeRun, version, binary, ""); err != nil {
		return nil, err
	}
	set, _, err := runSuite(ctx, e, binary, version, benchmarks, !regressionNoCache)
	if err != nil {
		return nil, err
	}
	if len(set.Benchmarks) == 0 {
		return nil, errors.New("all benchmarks failed on Mojo " + version)
	}

	path, err := e.store.Save(set)
	if err != nil {
		return nil, err
	}
	c.Printf("\n  %s\n", c.Dim("Saved → "+path))
	if err := runHooks(ctx, e, hooks.AfterRun, version, binary, path); err != nil {
		return nil, err
	}
	return set, nil
}
