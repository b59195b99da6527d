package reporting

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mojomark/mojomark/internal/compare"
	"github.com/mojomark/mojomark/internal/results"
)

func targetRun() *results.ResultSet {
	return &results.ResultSet{
		MojoVersion: "0.8.0",
		Timestamp:   time.Date(2026, 2, 11, 2, 30, 0, 0, time.UTC),
		Benchmarks: []results.Sample{
			{Name: "fibonacci", Category: "compute", SamplesNs: []int64{100_000_000, 102_000_000, 99_000_000}},
			{Name: "sorting", Category: "compute", SamplesNs: []int64{50_000_000, 51_000_000, 49_000_000}},
		},
	}
}

func baseRun() *results.ResultSet {
	return &results.ResultSet{
		MojoVersion: "0.7.0",
		Timestamp:   time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
		Benchmarks: []results.Sample{
			{Name: "fibonacci", Category: "compute", SamplesNs: []int64{110_000_000, 112_000_000, 108_000_000}},
			{Name: "sorting", Category: "compute", SamplesNs: []int64{45_000_000, 46_000_000, 44_000_000}},
		},
	}
}

func sampleDiffs() []compare.Diff {
	return compare.Results(baseRun(), targetRun(), compare.DefaultThresholds())
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		ns   float64
		want string
	}{
		{0, "0 ns"},
		{999, "999 ns"},
		{1_000, "1.0 µs"},
		{12_345, "12.3 µs"},
		{1_000_000, "1.0 ms"},
		{100_333_333, "100.3 ms"},
		{50_000_000, "50.0 ms"},
		{1_000_000_000, "1.00 s"},
		{2_345_000_000, "2.35 s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTime(tt.ns), "FormatTime(%v)", tt.ns)
	}
}

func TestFormatDelta(t *testing.T) {
	assert.Equal(t, "-8.8%", FormatDelta(-8.78))
	assert.Equal(t, "+11.1%", FormatDelta(11.11))
	assert.Equal(t, "+0.0%", FormatDelta(0))
}

func TestStatusDisplay(t *testing.T) {
	assert.Equal(t, ">>", Indicator(compare.Improved))
	assert.Equal(t, "OK", Indicator(compare.Stable))
	assert.Equal(t, "!!", Indicator(compare.Warning))
	assert.Equal(t, "XX", Indicator(compare.Regression))

	assert.Equal(t, "improved", Label(compare.Improved))
	assert.Equal(t, "REGRESSION", Label(compare.Regression))
	assert.Equal(t, "Warning", Title(compare.Warning))
}

func TestLegend(t *testing.T) {
	assert.Equal(t,
		">> >5% faster | OK <3% change | !! 3-10% slower | XX >10% slower",
		Legend(compare.DefaultThresholds()))
	assert.Equal(t,
		">> >2.5% faster | OK <1% change | !! 1-4% slower | XX >4% slower",
		Legend(compare.Thresholds{Stable: 1, Warning: 4, Improved: -2.5}))
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name string
		want Formats
	}{
		{"markdown", Formats{Markdown: true}},
		{"html", Formats{HTML: true}},
		{"junit", Formats{JUnit: true}},
		{"both", Formats{Markdown: true, HTML: true}},
		{"all", Formats{Markdown: true, HTML: true, JUnit: true}},
		{"none", Formats{}},
	}
	for _, tt := range tests {
		got, err := ParseFormats(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}

	none, _ := ParseFormats("none")
	assert.False(t, none.Any())

	_, err := ParseFormats("pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdf")
}

func TestFileNames(t *testing.T) {
	ts := time.Date(2026, 2, 11, 2, 30, 5, 0, time.FixedZone("X", 3600))
	assert.Equal(t, "2026-02-11_013005_mojo-0.8.0.md", RunFileName(ts, "0.8.0", "md"))
	assert.Equal(t, "2026-02-11_013005_compare_0.7.0_vs_0.8.0.html", CompareFileName(ts, "compare", "0.7.0", "0.8.0", "html"))
	assert.Equal(t, "2026-02-11_013005_regression_0.7.0_vs_0.8.0.xml", CompareFileName(ts, "regression", "0.7.0", "0.8.0", "xml"))
}

func TestRunMarkdown(t *testing.T) {
	md := RunMarkdown(targetRun())

	assert.Contains(t, md, "# mojomark Report — Mojo 0.8.0")
	assert.Contains(t, md, "**Mojo version:** 0.8.0")
	assert.Contains(t, md, "**Benchmarks:** 2")
	assert.Contains(t, md, "**Date:** 2026-02-11 02:30:00 UTC")
	assert.Contains(t, md, "| Category | Benchmark | Mean | Median | Min | Max | Std Dev | Samples |")
	assert.Contains(t, md, "| compute | fibonacci | 100.3 ms |")
	assert.Contains(t, md, "50.0 ms")
	assert.NotContains(t, md, "**Machine:**")
}

func TestRunMarkdown_Empty(t *testing.T) {
	set := &results.ResultSet{MojoVersion: "0.8.0", Timestamp: time.Now()}
	md := RunMarkdown(set)

	assert.Contains(t, md, "# mojomark Report")
	assert.Contains(t, md, "**Benchmarks:** 0")
	assert.Contains(t, md, "_No benchmarks recorded._")
	assert.NotContains(t, md, "| Category |")
}

func TestRunMarkdown_Machine(t *testing.T) {
	set := targetRun()
	set.Machine = map[string]any{"cpu": "Apple M3", "cores": 8, "ram_gb": 16.0, "os": "Darwin 24.1.0", "arch": "arm64"}
	assert.Contains(t, RunMarkdown(set), "**Machine:** Apple M3, 8 cores, 16.0GB RAM, Darwin 24.1.0 (arm64)")
}

func TestComparisonMarkdown(t *testing.T) {
	md := ComparisonMarkdown(baseRun(), targetRun(), sampleDiffs(), compare.DefaultThresholds())

	assert.Contains(t, md, "# mojomark Comparison — Mojo 0.7.0 vs 0.8.0")
	assert.Contains(t, md, "| Category | Benchmark | 0.7.0 | 0.8.0 | Delta | Status |")
	// fibonacci: 110ms -> 100.3ms, sorting: 45ms -> 50ms
	assert.Contains(t, md, "-8.8%")
	assert.Contains(t, md, "+11.1%")
	assert.Contains(t, md, ">> improved")
	assert.Contains(t, md, "XX REGRESSION")
	assert.Contains(t, md, "## Summary")
	assert.Contains(t, md, "1 of 2 benchmarks regressed.")
	assert.Contains(t, md, "| OK stable | 0 |")
	assert.Contains(t, md, "### Thresholds")
	assert.Contains(t, md, "delta >= 10%")
	assert.NotContains(t, md, "<span")
	assert.NotContains(t, md, "### Not compared")
}

func TestComparisonMarkdown_NotCompared(t *testing.T) {
	base := baseRun()
	target := targetRun()
	base.Benchmarks = append(base.Benchmarks, results.Sample{Name: "old", Category: "io", SamplesNs: []int64{5}})
	target.Benchmarks = append(target.Benchmarks, results.Sample{Name: "new", Category: "io", SamplesNs: []int64{5}})

	diffs := compare.Results(base, target, compare.DefaultThresholds())
	md := ComparisonMarkdown(base, target, diffs, compare.DefaultThresholds())

	assert.Contains(t, md, "### Not compared")
	assert.Contains(t, md, "- `io/new`: no baseline in Mojo 0.7.0")
	assert.Contains(t, md, "- `io/old`: missing from Mojo 0.8.0")
}

func TestComparisonMarkdown_DifferentMachines(t *testing.T) {
	base := baseRun()
	target := targetRun()
	base.Machine = map[string]any{"cpu": "A", "cores": 8, "hostname_hash": "aaa"}
	target.Machine = map[string]any{"cpu": "B", "cores": 8, "hostname_hash": "bbb"}

	md := ComparisonMarkdown(base, target, sampleDiffs(), compare.DefaultThresholds())
	assert.Contains(t, md, "different machines")
}

func TestRunHTML(t *testing.T) {
	html, err := RunHTML(targetRun())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "</html>")
	assert.Contains(t, html, "</body>")
	assert.Contains(t, html, "<title>mojomark — Mojo 0.8.0</title>")
	assert.Contains(t, html, "<style>")
	assert.Contains(t, html, "--accent")
	assert.Contains(t, html, "summary-card")
	assert.Contains(t, html, "Benchmarks")
	assert.Contains(t, html, "Categories")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "fibonacci")
	assert.Contains(t, html, "sorting")
	assert.Equal(t, 1, strings.Count(html, "<h1>"), "heading rendered once")
}

func TestComparisonHTML(t *testing.T) {
	html, err := ComparisonHTML(baseRun(), targetRun(), sampleDiffs(), compare.DefaultThresholds())
	require.NoError(t, err)

	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "0.7.0")
	assert.Contains(t, html, "0.8.0")
	assert.Contains(t, html, "border-radius")
	assert.Contains(t, html, `<span class="badge badge-improved">improved</span>`)
	assert.Contains(t, html, `<span class="delta-negative">-8.8%</span>`)
	assert.Contains(t, html, `<span class="delta-positive">+11.1%</span>`)
	assert.Contains(t, html, "Improved")
	assert.Contains(t, html, "Regression")
	assert.Contains(t, html, "card-regression")
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path, err := Save("# Test Report", "test.md", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Test Report", string(data))
	assert.Equal(t, "test.md", filepath.Base(path))
}

func TestSave_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "sub", "dir")
	path, err := Save("content", "test.html", nested)
	require.NoError(t, err)
	assert.Equal(t, nested, filepath.Dir(path))
	assert.FileExists(t, path)
}

func TestInterpret(t *testing.T) {
	diffs := sampleDiffs()
	assert.Equal(t, "8.8% faster (110.0 ms -> 100.3 ms)", InterpretDiff(diffs[0]))
	assert.Equal(t, "11.1% slower (45.0 ms -> 50.0 ms)", InterpretDiff(diffs[1]))
	assert.Equal(t, "no significant change (+1.0%)", InterpretDiff(compare.Diff{DeltaPct: 1, Status: compare.Stable}))

	assert.Equal(t, "No benchmarks could be compared.", InterpretSummary(compare.Summarize(nil)))
	assert.Equal(t, "All 1 benchmarks are stable.", InterpretSummary(compare.Summary{compare.Stable: 1}))
	assert.Equal(t, "No regressions; 1 of 2 benchmarks improved.",
		InterpretSummary(compare.Summary{compare.Stable: 1, compare.Improved: 1}))

	assert.Equal(t, "1 improved, 1 regression", SummaryParts(compare.Summarize(diffs)))
	assert.Empty(t, SummaryParts(compare.Summarize(nil)))
}
