package main

import (
	"errors"
	"fmt"

	"github.com/mojomark/mojomark/internal/codegen"
	"github.com/mojomark/mojomark/internal/hooks"
	"github.com/mojomark/mojomark/internal/projectconfig"
	"github.com/mojomark/mojomark/internal/reporting"
	"github.com/mojomark/mojomark/internal/versions"
	"github.com/spf13/cobra"
)

var (
	runCategory  string
	runNames     []string
	runSamples   int
	runWarmup    int
	runJobs      int
	runMojo      string
	runFormat    string
	runOutputDir string
	runNoCache   bool
	runCompress  bool
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run benchmarks against the installed Mojo",
		Long: `Run benchmarks against the Mojo found on PATH (or --mojo).

Every template is rendered for the detected Mojo version, compiled once and
executed warmup + samples times. Results are saved to the results directory
so later runs can be compared against them.`,
		Args: cobra.NoArgs,
		RunE: runCommandE,
	}

	cmd.Flags().StringVarP(&runCategory, "category", "c", "", "Only run benchmarks in this category")
	cmd.Flags().StringArrayVarP(&runNames, "benchmark", "b", nil, "Only run this benchmark name or category/name (can be repeated)")
	cmd.Flags().IntVarP(&runSamples, "samples", "s", projectconfig.DefaultSamples, "Timed runs per benchmark")
	cmd.Flags().IntVarP(&runWarmup, "warmup", "w", projectconfig.DefaultWarmup, "Untimed runs before sampling")
	cmd.Flags().IntVarP(&runJobs, "jobs", "j", projectconfig.DefaultJobs, "Benchmarks built and run in parallel")
	cmd.Flags().StringVar(&runMojo, "mojo", "mojo", "Mojo binary to benchmark")
	cmd.Flags().StringVarP(&runFormat, "format", "f", "", "Also write a report: markdown, html, junit, both or all")
	cmd.Flags().StringVarP(&runOutputDir, "output", "o", "", "Report output directory")
	cmd.Flags().BoolVar(&runNoCache, "no-cache", false, "Always recompile instead of reusing cached builds")
	cmd.Flags().BoolVar(&runCompress, "compress", false, "Write the result file zstd-compressed")

	return cmd
}

func runCommandE(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd, projectconfig.Overrides{
		Samples:   changed(cmd, "samples", runSamples),
		Warmup:    changed(cmd, "warmup", runWarmup),
		Jobs:      changed(cmd, "jobs", runJobs),
		OutputDir: changed(cmd, "output", runOutputDir),
		Compress:  changed(cmd, "compress", runCompress),
	})
	if err != nil {
		return err
	}
	if e.cfg.Benchmark.Samples < 1 {
		return fmt.Errorf("samples must be at least 1, got %d", e.cfg.Benchmark.Samples)
	}

	var formats reporting.Formats
	if runFormat != "" {
		if formats, err = reporting.ParseFormats(runFormat); err != nil {
			return err
		}
	}

	ctx, stop := interruptible(cmd)
	defer stop()

	c := e.console
	version := detectVersion(ctx, runMojo)
	if version == "unknown" {
		return versions.ErrNoMojo
	}

	c.Printf("\n%s\n", c.Bold("mojomark — Mojo Performance Regression Detector"))
	c.Printf("  Mojo version: %s\n", version)
	c.Printf("  Samples: %d | Warmup: %d\n", e.cfg.Benchmark.Samples, e.cfg.Warmup())
	c.Verbosef("  Jobs: %d | Profile: %s\n", e.cfg.Benchmark.Jobs, codegen.DefaultCatalog().Resolve(version).Name)

	benchmarks, err := discoverBenchmarks(e, runCategory, runNames)
	if err != nil {
		return err
	}
	if len(benchmarks) == 0 {
		c.Printf("\n%s\n", c.Warn("No benchmarks found."))
		return nil
	}
	if err := runHooks(ctx, e, hooks.BeforeRun, version, runMojo, ""); err != nil {
		return err
	}
	c.Printf("\nRunning %d benchmark(s)...\n\n", len(benchmarks))

	set, failed, err := runSuite(ctx, e, runMojo, version, benchmarks, !runNoCache)
	if err != nil {
		return err
	}
	if len(set.Benchmarks) == 0 {
		return errors.New("all benchmarks failed")
	}

	c.Printf("\n")
	c.RunTable("Benchmark Results", set)

	path, err := e.store.Save(set)
	if err != nil {
		return err
	}
	c.Printf("\nResults saved → %s\n", path)
	if len(failed) > 0 {
		c.Printf("%s\n", c.Warn(fmt.Sprintf("%d benchmark(s) failed and were not recorded", len(failed))))
	}
	if err := runHooks(ctx, e, hooks.AfterRun, version, runMojo, path); err != nil {
		return err
	}

	if formats.Any() {
		paths, err := writeRunReports(set, toFailures(failed), formats, e.reportDir())
		if err != nil {
			return err
		}
		printPaths(c, "Reports:", paths)
	}
	return nil
}
