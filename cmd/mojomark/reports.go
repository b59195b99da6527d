package main

import (
	"time"

	"github.com/mojomark/mojomark/internal/compare"
	"github.com/mojomark/mojomark/internal/reporting"
	"github.com/mojomark/mojomark/internal/results"
	"github.com/mojomark/mojomark/internal/runner"
)

// writeRunReports writes a single-run report in every selected format and
// returns the written paths.
func writeRunReports(set *results.ResultSet, failures []reporting.Failure, formats reporting.Formats, dir string) ([]string, error) {
	now := time.Now()
	var paths []string

	if formats.Markdown {
		p, err := reporting.Save(reporting.RunMarkdown(set), reporting.RunFileName(now, set.MojoVersion, "md"), dir)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	if formats.HTML {
		html, err := reporting.RunHTML(set)
		if err != nil {
			return paths, err
		}
		p, err := reporting.Save(html, reporting.RunFileName(now, set.MojoVersion, "html"), dir)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	if formats.JUnit {
		xml, err := reporting.MarshalJUnit(reporting.ConvertRunToJUnit(set, failures))
		if err != nil {
			return paths, err
		}
		p, err := reporting.Save(xml, reporting.RunFileName(now, set.MojoVersion, "xml"), dir)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// writeComparisonReports writes a comparison report in every selected
// format. kind is "compare" or "regression" and prefixes the file names.
func writeComparisonReports(kind string, base, target *results.ResultSet, diffs []compare.Diff, t compare.Thresholds, formats reporting.Formats, dir string) ([]string, error) {
	now := time.Now()
	name := func(ext string) string {
		return reporting.CompareFileName(now, kind, base.MojoVersion, target.MojoVersion, ext)
	}
	var paths []string

	if formats.Markdown {
		p, err := reporting.Save(reporting.ComparisonMarkdown(base, target, diffs, t), name("md"), dir)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	if formats.HTML {
		html, err := reporting.ComparisonHTML(base, target, diffs, t)
		if err != nil {
			return paths, err
		}
		p, err := reporting.Save(html, name("html"), dir)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	if formats.JUnit {
		xml, err := reporting.MarshalJUnit(reporting.ConvertComparisonToJUnit(base, target, diffs, t))
		if err != nil {
			return paths, err
		}
		p, err := reporting.Save(xml, name("xml"), dir)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// toFailures adapts failed runner outcomes for the JUnit report.
func toFailures(outcomes []runner.Outcome) []reporting.Failure {
	out := make([]reporting.Failure, 0, len(outcomes))
	for _, o := range outcomes {
		out = append(out, reporting.Failure{
			Name:     o.Benchmark.Name,
			Category: o.Benchmark.Category,
			Message:  o.Err.Error(),
		})
	}
	return out
}

// regressionError returns a *RegressionError when any diff regressed.
func regressionError(diffs []compare.Diff) error {
	if !compare.HasRegression(diffs) {
		return nil
	}
	return &RegressionError{Count: compare.Summarize(diffs)[compare.Regression], Total: len(diffs)}
}

// printPaths lists written files under a heading.
func printPaths(c *reporting.Console, heading string, paths []string) {
	if len(paths) == 0 {
		return
	}
	c.Printf("\n%s\n", heading)
	for _, p := range paths {
		c.Printf("  %s %s\n", c.Good("✓"), p)
	}
}
