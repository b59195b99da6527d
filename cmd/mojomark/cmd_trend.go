package main

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/mattn/go-runewidth"
	"github.com/mojomark/mojomark/internal/reporting"
	"github.com/mojomark/mojomark/internal/trend"
	"github.com/spf13/cobra"
)

var (
	trendCategory  string
	trendBenchmark string
	trendVersions  []string
	trendCSV       string
	trendWidth     int
)

func newTrendCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Show how benchmark times changed across Mojo versions",
		Long: `Show each benchmark's mean time across every stored Mojo version,
oldest version first, as a sparkline and per-version bars.

Use --csv to export the data points for plotting elsewhere ("-" writes to
standard output).`,
		Args: cobra.NoArgs,
		RunE: trendCommandE,
	}

	cmd.Flags().StringVarP(&trendCategory, "category", "c", "", "Only include this category")
	cmd.Flags().StringVarP(&trendBenchmark, "benchmark", "b", "", "Only include this benchmark name")
	cmd.Flags().StringSliceVar(&trendVersions, "versions", nil, "Only include these Mojo versions (comma separated)")
	cmd.Flags().StringVar(&trendCSV, "csv", "", "Write data points as CSV to this file")
	cmd.Flags().IntVar(&trendWidth, "width", 30, "Width of the per-version bars")

	return cmd
}

func trendCommandE(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd, noOverrides)
	if err != nil {
		return err
	}
	c := e.console

	sets, err := e.store.LoadAll()
	if err != nil {
		return err
	}
	if len(sets) == 0 {
		c.Printf("No stored results found.\n")
		c.Printf("Run 'mojomark run' to generate results.\n")
		return nil
	}

	trends := trend.Gather(sets, trend.Filter{
		Category:  trendCategory,
		Benchmark: trendBenchmark,
		Versions:  trendVersions,
	})
	if len(trends) == 0 {
		c.Printf("No benchmarks match the given filters.\n")
		return nil
	}

	if trendCSV != "" {
		return exportTrendCSV(cmd.OutOrStdout(), c, trends)
	}

	c.Header("Performance Trends")
	for _, t := range trends {
		printTrend(c, t)
	}
	return nil
}

func printTrend(c *reporting.Console, t trend.Trend) {
	means := t.MeanValues()
	change := c.Dim("single version")
	if pct, ok := t.OverallDeltaPct(); ok {
		first, _ := t.Earliest()
		last, _ := t.Latest()
		change = fmt.Sprintf("%s (%s → %s)", colorDelta(c, pct), first.Version, last.Version)
	}
	c.Printf("\n%s  %s  %s\n", c.Bold(t.Label()), trend.Sparkline(means), change)

	width := 0
	for _, v := range t.Versions() {
		width = max(width, runewidth.StringWidth(v))
	}
	peak := slices.Max(means)
	for _, p := range t.Points {
		c.Printf("  %s  %10s  %s\n",
			runewidth.FillRight(p.Version, width),
			reporting.FormatTime(p.MeanNs),
			c.Dim(trend.Bar(p.MeanNs, peak, trendWidth)))
	}
}

// colorDelta styles a percent change; slower is worse.
func colorDelta(c *reporting.Console, pct float64) string {
	s := reporting.FormatDelta(pct)
	switch {
	case pct > 0:
		return c.Bad(s)
	case pct < 0:
		return c.Good(s)
	}
	return s
}

func exportTrendCSV(stdout io.Writer, c *reporting.Console, trends []trend.Trend) error {
	if trendCSV == "-" {
		return trend.ExportCSV(stdout, trends)
	}
	f, err := os.Create(trendCSV)
	if err != nil {
		return fmt.Errorf("creating %s: %w", trendCSV, err)
	}
	if err := trend.ExportCSV(f, trends); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", trendCSV, err)
	}
	c.Printf("Exported %d trend(s) → %s\n", len(trends), trendCSV)
	return nil
}
