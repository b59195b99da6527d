package main

import (
	"errors"
	"fmt"

	"github.com/mojomark/mojomark/internal/compare"
	"github.com/mojomark/mojomark/internal/machine"
	"github.com/mojomark/mojomark/internal/projectconfig"
	"github.com/mojomark/mojomark/internal/reporting"
	"github.com/mojomark/mojomark/internal/results"
	"github.com/spf13/cobra"
)

var (
	compareFormat    string
	compareOutputDir string
	compareStable    float64
	compareWarning   float64
	compareImproved  float64
)

func newCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <base-version> <target-version>",
		Short: "Compare stored results of two Mojo versions",
		Long: `Compare the newest stored results of two Mojo versions.

Each benchmark present in both runs is classified by the change in its mean
time. The command exits with status 1 when any benchmark regressed.`,
		Args: cobra.ExactArgs(2),
		RunE: compareCommandE,
	}

	cmd.Flags().StringVarP(&compareFormat, "format", "f", "", "Also write a report: markdown, html, junit, both or all")
	cmd.Flags().StringVarP(&compareOutputDir, "output", "o", "", "Report output directory")
	addThresholdFlags(cmd, &compareStable, &compareWarning, &compareImproved)

	return cmd
}

// addThresholdFlags registers the classification threshold flags.
func addThresholdFlags(cmd *cobra.Command, stable, warning, improved *float64) {
	cmd.Flags().Float64Var(stable, "stable", compare.DefaultStable, "Largest slowdown in percent still reported as stable")
	cmd.Flags().Float64Var(warning, "warning", compare.DefaultWarning, "Largest slowdown in percent reported as a warning")
	cmd.Flags().Float64Var(improved, "improved", compare.DefaultImproved, "Change in percent at or below which a benchmark counts as improved")
}

func thresholdOverrides(cmd *cobra.Command, stable, warning, improved float64) projectconfig.Overrides {
	return projectconfig.Overrides{
		Stable:   changed(cmd, "stable", stable),
		Warning:  changed(cmd, "warning", warning),
		Improved: changed(cmd, "improved", improved),
	}
}

func compareCommandE(cmd *cobra.Command, args []string) error {
	overrides := thresholdOverrides(cmd, compareStable, compareWarning, compareImproved)
	overrides.OutputDir = changed(cmd, "output", compareOutputDir)
	e, err := loadEnv(cmd, overrides)
	if err != nil {
		return err
	}
	thresholds := e.cfg.ThresholdValues()
	if err := thresholds.Validate(); err != nil {
		return err
	}
	var formats reporting.Formats
	if compareFormat != "" {
		if formats, err = reporting.ParseFormats(compareFormat); err != nil {
			return err
		}
	}

	base, err := loadVersion(e, args[0])
	if err != nil {
		return err
	}
	target, err := loadVersion(e, args[1])
	if err != nil {
		return err
	}

	c := e.console
	diffs := compare.Results(base, target, thresholds)
	if len(diffs) == 0 {
		c.Printf("%s\n", c.Warn("No matching benchmarks found between the two runs."))
		return nil
	}

	warnMachineMismatch(c, base, target)
	c.ComparisonTable(fmt.Sprintf("Comparison: Mojo %s -> %s", base.MojoVersion, target.MojoVersion),
		base.MojoVersion, target.MojoVersion, diffs)
	printUnmatched(c, base, target)
	c.Printf("\n")
	c.Legend(thresholds)

	if formats.Any() {
		paths, err := writeComparisonReports("compare", base, target, diffs, thresholds, formats, e.reportDir())
		if err != nil {
			return err
		}
		printPaths(c, "Reports:", paths)
	}
	return regressionError(diffs)
}

// loadVersion loads the newest stored results for version.
func loadVersion(e *env, version string) (*results.ResultSet, error) {
	set, err := e.store.LoadVersion(version)
	if errors.Is(err, results.ErrNoResults) {
		return nil, fmt.Errorf("%w (run 'mojomark history' to see available results)", err)
	}
	return set, err
}

// warnMachineMismatch notes when two runs were recorded on different
// hardware.
func warnMachineMismatch(c *reporting.Console, base, target *results.ResultSet) {
	a, errA := machine.FromMap(base.Machine)
	b, errB := machine.FromMap(target.Machine)
	if errA != nil || errB != nil || a.Empty() || b.Empty() || machine.Match(a, b) {
		return
	}
	c.Printf("%s\n", c.Warn("Note: the runs were recorded on different machines; timings may not be comparable."))
	c.Verbosef("  %s: %s\n  %s: %s\n", base.MojoVersion, a.Summary(), target.MojoVersion, b.Summary())
}

// printUnmatched lists target benchmarks without a baseline (verbose only).
func printUnmatched(c *reporting.Console, base, target *results.ResultSet) {
	keys := compare.Unmatched(base, target)
	if len(keys) == 0 || c.Verbosity() < reporting.Verbose {
		return
	}
	c.Printf("\n  Not compared:\n")
	for _, k := range keys {
		c.Printf("    %s/%s  %s\n", k.Category, k.Name, c.Dim("no baseline in Mojo "+base.MojoVersion))
	}
}
