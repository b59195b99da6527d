package reporting

import (
	"fmt"
	"math"
	"strings"

	"github.com/mojomark/mojomark/internal/compare"
)

// InterpretDiff returns a plain-language explanation of one diff.
func InterpretDiff(d compare.Diff) string {
	switch d.Status {
	case compare.Improved:
		return fmt.Sprintf("%.1f%% faster (%s -> %s)", math.Abs(d.DeltaPct), FormatTime(d.BaseMeanNs), FormatTime(d.TargetMeanNs))
	case compare.Stable:
		return fmt.Sprintf("no significant change (%s)", FormatDelta(d.DeltaPct))
	case compare.Warning:
		return fmt.Sprintf("%.1f%% slower, within tolerance (%s -> %s)", d.DeltaPct, FormatTime(d.BaseMeanNs), FormatTime(d.TargetMeanNs))
	default:
		return fmt.Sprintf("%.1f%% slower (%s -> %s)", d.DeltaPct, FormatTime(d.BaseMeanNs), FormatTime(d.TargetMeanNs))
	}
}

// InterpretSummary turns status counts into a one-line verdict.
func InterpretSummary(s compare.Summary) string {
	total := s.Total()
	switch {
	case total == 0:
		return "No benchmarks could be compared."
	case s[compare.Regression] > 0:
		return fmt.Sprintf("%d of %d benchmarks regressed.", s[compare.Regression], total)
	case s[compare.Warning] > 0:
		return fmt.Sprintf("No regressions; %d of %d benchmarks are slightly slower.", s[compare.Warning], total)
	case s[compare.Improved] > 0:
		return fmt.Sprintf("No regressions; %d of %d benchmarks improved.", s[compare.Improved], total)
	default:
		return fmt.Sprintf("All %d benchmarks are stable.", total)
	}
}

// SummaryParts renders the non-zero counts as "1 improved, 2 stable".
// The result is empty when every count is zero.
func SummaryParts(s compare.Summary) string {
	var parts []string
	for _, st := range compare.Statuses {
		if n := s[st]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, st))
		}
	}
	return strings.Join(parts, ", ")
}
