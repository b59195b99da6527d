package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mojomark/mojomark/internal/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	day1 = time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	day2 = time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC)
)

func TestCompare_Regression(t *testing.T) {
	w := newWorkspace(t)
	w.saveResult(t, "0.7.0", day1, map[string]int64{"compute/fibonacci": 110_000_000, "collections/list_sum": 45_000_000})
	w.saveResult(t, "0.8.0", day2, map[string]int64{"compute/fibonacci": 100_000_000, "collections/list_sum": 50_000_000})

	out, err := runCLI(t, "compare", "0.7.0", "0.8.0")

	var regression *RegressionError
	require.ErrorAs(t, err, &regression)
	assert.Equal(t, 1, regression.Count)
	assert.Equal(t, 2, regression.Total)
	assert.Equal(t, ExitRegression, exitCode(err))

	assert.Contains(t, out, "Comparison: Mojo 0.7.0 -> 0.8.0")
	assert.Contains(t, out, "-9.1%")
	assert.Contains(t, out, "+11.1%")
	assert.Contains(t, out, "Summary: 1 improved, 1 regression")
	assert.Contains(t, out, "Thresholds:")
}

func TestCompare_NoRegression(t *testing.T) {
	w := newWorkspace(t)
	w.saveResult(t, "0.7.0", day1, map[string]int64{"compute/fibonacci": 100_000_000})
	w.saveResult(t, "0.8.0", day2, map[string]int64{"compute/fibonacci": 101_000_000})

	out, err := runCLI(t, "compare", "0.7.0", "0.8.0")
	require.NoError(t, err)
	assert.Contains(t, out, "Summary: 1 stable")
}

func TestCompare_ThresholdFlags(t *testing.T) {
	w := newWorkspace(t)
	w.saveResult(t, "0.7.0", day1, map[string]int64{"compute/fibonacci": 100_000_000})
	w.saveResult(t, "0.8.0", day2, map[string]int64{"compute/fibonacci": 104_000_000})

	_, err := runCLI(t, "compare", "0.7.0", "0.8.0")
	require.NoError(t, err, "+4% is a warning by default")

	_, err = runCLI(t, "compare", "0.7.0", "0.8.0", "--stable", "1", "--warning", "2")
	var regression *RegressionError
	assert.ErrorAs(t, err, &regression)
}

func TestCompare_InvalidThresholds(t *testing.T) {
	w := newWorkspace(t)
	w.saveResult(t, "0.7.0", day1, map[string]int64{"compute/fibonacci": 1})
	w.saveResult(t, "0.8.0", day2, map[string]int64{"compute/fibonacci": 1})

	_, err := runCLI(t, "compare", "0.7.0", "0.8.0", "--improved", "5")
	require.ErrorContains(t, err, "improved threshold must be negative")
	assert.Equal(t, ExitError, exitCode(err))
}

func TestCompare_MissingVersion(t *testing.T) {
	w := newWorkspace(t)
	w.saveResult(t, "0.7.0", day1, map[string]int64{"compute/fibonacci": 1})

	_, err := runCLI(t, "compare", "0.7.0", "9.9.9")
	require.ErrorIs(t, err, results.ErrNoResults)
	assert.Contains(t, err.Error(), "9.9.9")
	assert.Contains(t, err.Error(), "mojomark history")
}

func TestCompare_NoOverlap(t *testing.T) {
	w := newWorkspace(t)
	w.saveResult(t, "0.7.0", day1, map[string]int64{"compute/fibonacci": 1})
	w.saveResult(t, "0.8.0", day2, map[string]int64{"strings/concat": 1})

	out, err := runCLI(t, "compare", "0.7.0", "0.8.0")
	require.NoError(t, err)
	assert.Contains(t, out, "No matching benchmarks found between the two runs.")
}

func TestCompare_VerboseListsUnmatched(t *testing.T) {
	w := newWorkspace(t)
	w.saveResult(t, "0.7.0", day1, map[string]int64{"compute/fibonacci": 100})
	w.saveResult(t, "0.8.0", day2, map[string]int64{"compute/fibonacci": 100, "strings/concat": 1})

	out, err := runCLI(t, "compare", "0.7.0", "0.8.0", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "strings/concat  no baseline in Mojo 0.7.0")
}

func TestCompare_WritesReports(t *testing.T) {
	w := newWorkspace(t)
	w.saveResult(t, "0.7.0", day1, map[string]int64{"compute/fibonacci": 100})
	w.saveResult(t, "0.8.0", day2, map[string]int64{"compute/fibonacci": 100})

	_, err := runCLI(t, "compare", "0.7.0", "0.8.0", "-f", "markdown")
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join("reports", "*_compare_0.7.0_vs_0.8.0.md"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "mojomark Comparison — Mojo 0.7.0 vs 0.8.0")
}

func TestCompare_RequiresTwoVersions(t *testing.T) {
	newWorkspace(t)
	_, err := runCLI(t, "compare", "0.7.0")
	assert.Error(t, err)
}

func TestCompare_OutputFlagRelativeToWorkingDir(t *testing.T) {
	w := newWorkspace(t)
	require.NoError(t, os.WriteFile(".mojomark.yaml", []byte("report:\n  output_dir: docs/perf\n"), 0o644))
	w.saveResult(t, "0.7.0", day1, map[string]int64{"compute/fibonacci": 100})
	w.saveResult(t, "0.8.0", day2, map[string]int64{"compute/fibonacci": 100})

	sub := filepath.Join(w.dir, "nested", "dir")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	t.Chdir(sub)

	_, err := runCLI(t, "compare", "0.7.0", "0.8.0", "-f", "markdown", "-o", "out")
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(sub, "out", "*_compare_0.7.0_vs_0.8.0.md"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
	assert.NoDirExists(t, filepath.Join(w.dir, "out"))
	assert.NoDirExists(t, filepath.Join(w.dir, "docs", "perf"))
}
