package main

import (
	"errors"
	"fmt"

	"github.com/mojomark/mojomark/internal/compare"
	"github.com/mojomark/mojomark/internal/projectconfig"
	"github.com/mojomark/mojomark/internal/reporting"
	"github.com/mojomark/mojomark/internal/results"
	"github.com/spf13/cobra"
)

var (
	reportFormat    string
	reportVersion   string
	reportCompare   []string
	reportOutputDir string
)

func newReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a report from stored results",
		Long: `Generate Markdown, HTML or JUnit reports from stored results.

Without flags the most recent result is reported. Use --version to pick a
specific Mojo version or --compare-versions to report on the difference
between two versions.`,
		Args: cobra.NoArgs,
		RunE: reportCommandE,
	}

	cmd.Flags().StringVarP(&reportFormat, "format", "f", projectconfig.DefaultReportFormat, "Report format: markdown, html, junit, both or all")
	cmd.Flags().StringVarP(&reportVersion, "version", "v", "", "Report on this Mojo version (default: most recent result)")
	cmd.Flags().StringSliceVarP(&reportCompare, "compare-versions", "c", nil, "Compare two versions: BASE,TARGET")
	cmd.Flags().StringVarP(&reportOutputDir, "output", "o", "", "Report output directory")

	return cmd
}

func reportCommandE(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd, projectconfig.Overrides{
		Format:    changed(cmd, "format", reportFormat),
		OutputDir: changed(cmd, "output", reportOutputDir),
	})
	if err != nil {
		return err
	}
	if len(reportCompare) != 0 && len(reportCompare) != 2 {
		return fmt.Errorf("--compare-versions takes exactly two versions, got %d", len(reportCompare))
	}
	if len(reportCompare) == 2 && reportVersion != "" {
		return errors.New("--version and --compare-versions cannot be used together")
	}

	formats, err := reporting.ParseFormats(e.cfg.Report.Format)
	if err != nil {
		return err
	}
	if !formats.Any() {
		return errors.New("report format \"none\" produces no files")
	}

	var paths []string
	if len(reportCompare) == 2 {
		paths, err = reportComparison(e, reportCompare[0], reportCompare[1], formats)
	} else {
		paths, err = reportRun(e, reportVersion, formats)
	}
	if err != nil {
		return err
	}

	c := e.console
	c.Printf("\n")
	c.Header("Report generated")
	for _, p := range paths {
		c.Printf("  %s %s\n", c.Good("✓"), p)
	}
	return nil
}

func reportComparison(e *env, baseVersion, targetVersion string, formats reporting.Formats) ([]string, error) {
	thresholds := e.cfg.ThresholdValues()
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	base, err := loadVersion(e, baseVersion)
	if err != nil {
		return nil, err
	}
	target, err := loadVersion(e, targetVersion)
	if err != nil {
		return nil, err
	}
	diffs := compare.Results(base, target, thresholds)
	return writeComparisonReports("compare", base, target, diffs, thresholds, formats, e.reportDir())
}

func reportRun(e *env, version string, formats reporting.Formats) ([]string, error) {
	var set *results.ResultSet
	var err error
	if version != "" {
		set, err = loadVersion(e, version)
	} else {
		set, err = latestResult(e.store)
	}
	if err != nil {
		return nil, err
	}
	return writeRunReports(set, nil, formats, e.reportDir())
}

// latestResult loads the most recent result file of any version.
func latestResult(store *results.Store) (*results.ResultSet, error) {
	paths, err := store.List()
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w (run 'mojomark run' first)", results.ErrNoResults)
	}
	return results.Load(paths[0])
}
