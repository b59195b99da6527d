package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/mojomark/mojomark/internal/compare"
	"github.com/mojomark/mojomark/internal/machine"
	"github.com/mojomark/mojomark/internal/results"
)

const dateLayout = "2006-01-02 15:04:05 UTC"

// mdOptions switches the Markdown builders into the variant embedded in
// HTML pages: the page shell writes the heading, and deltas and statuses
// carry inline spans for styling.
type mdOptions struct {
	html bool
}

// RunMarkdown renders a single result set.
func RunMarkdown(set *results.ResultSet) string {
	return runMarkdown(set, mdOptions{})
}

func runMarkdown(set *results.ResultSet, opts mdOptions) string {
	var b strings.Builder

	if !opts.html {
		fmt.Fprintf(&b, "# %s\n\n", runHeading(set))
	}
	fmt.Fprintf(&b, "**Mojo version:** %s  \n", set.MojoVersion)
	fmt.Fprintf(&b, "**Date:** %s  \n", formatDate(set.Timestamp))
	if m := machineSummary(set); m != "" {
		fmt.Fprintf(&b, "**Machine:** %s  \n", m)
	}
	fmt.Fprintf(&b, "**Benchmarks:** %d  \n", len(set.Benchmarks))
	fmt.Fprintf(&b, "**Categories:** %d\n\n", set.Categories())

	b.WriteString("## Results\n\n")
	if len(set.Benchmarks) == 0 {
		b.WriteString("_No benchmarks recorded._\n")
		return b.String()
	}

	b.WriteString("| Category | Benchmark | Mean | Median | Min | Max | Std Dev | Samples |\n")
	b.WriteString("|----------|-----------|-----:|-------:|----:|----:|--------:|--------:|\n")
	for _, s := range set.Benchmarks {
		st := s.Stats()
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %d |\n",
			escapeCell(s.Category), escapeCell(s.Name),
			FormatTime(st.MeanNs), FormatTime(st.MedianNs),
			FormatTime(st.MinNs), FormatTime(st.MaxNs),
			FormatTime(st.StdDevNs), st.Samples)
	}
	return b.String()
}

// ComparisonMarkdown renders the diffs between two result sets.
func ComparisonMarkdown(base, target *results.ResultSet, diffs []compare.Diff, t compare.Thresholds) string {
	return comparisonMarkdown(base, target, diffs, t, mdOptions{})
}

func comparisonMarkdown(base, target *results.ResultSet, diffs []compare.Diff, t compare.Thresholds, opts mdOptions) string {
	var b strings.Builder

	if !opts.html {
		fmt.Fprintf(&b, "# %s\n\n", comparisonHeading(base, target))
	}
	fmt.Fprintf(&b, "**Baseline:** Mojo %s (%s)  \n", base.MojoVersion, formatDate(base.Timestamp))
	fmt.Fprintf(&b, "**Target:** Mojo %s (%s)  \n", target.MojoVersion, formatDate(target.Timestamp))
	if m := machineSummary(target); m != "" {
		fmt.Fprintf(&b, "**Machine:** %s  \n", m)
	}
	fmt.Fprintf(&b, "**Benchmarks compared:** %d\n\n", len(diffs))

	if note := machineNote(base, target); note != "" {
		fmt.Fprintf(&b, "> **Note:** %s\n\n", note)
	}

	summary := compare.Summarize(diffs)
	b.WriteString("## Summary\n\n")
	b.WriteString(InterpretSummary(summary) + "\n\n")
	b.WriteString("| Status | Count |\n")
	b.WriteString("|--------|------:|\n")
	for _, st := range compare.Statuses {
		fmt.Fprintf(&b, "| %s %s | %d |\n", Indicator(st), Label(st), summary[st])
	}
	b.WriteString("\n")

	b.WriteString("## Results\n\n")
	if len(diffs) == 0 {
		b.WriteString("_No matching benchmarks._\n\n")
	} else {
		fmt.Fprintf(&b, "| Category | Benchmark | %s | %s | Delta | Status |\n",
			escapeCell(base.MojoVersion), escapeCell(target.MojoVersion))
		b.WriteString("|----------|-----------|-----:|-----:|------:|:------:|\n")
		for _, d := range diffs {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
				escapeCell(d.Category), escapeCell(d.Name),
				FormatTime(d.BaseMeanNs), FormatTime(d.TargetMeanNs),
				deltaCell(d.DeltaPct, opts), statusCell(d.Status, opts))
		}
		b.WriteString("\n")
	}

	newOnes := compare.Unmatched(base, target)
	dropped := compare.Unmatched(target, base)
	if len(newOnes) > 0 || len(dropped) > 0 {
		b.WriteString("### Not compared\n\n")
		for _, k := range newOnes {
			fmt.Fprintf(&b, "- `%s/%s`: no baseline in Mojo %s\n", k.Category, k.Name, base.MojoVersion)
		}
		for _, k := range dropped {
			fmt.Fprintf(&b, "- `%s/%s`: missing from Mojo %s\n", k.Category, k.Name, target.MojoVersion)
		}
		b.WriteString("\n")
	}

	b.WriteString("### Thresholds\n\n")
	b.WriteString("| Indicator | Status | Rule |\n")
	b.WriteString("|:---------:|--------|------|\n")
	fmt.Fprintf(&b, "| %s | %s | delta <= %g%% |\n", Indicator(compare.Improved), Label(compare.Improved), t.Improved)
	fmt.Fprintf(&b, "| %s | %s | abs(delta) < %g%% |\n", Indicator(compare.Stable), Label(compare.Stable), t.Stable)
	fmt.Fprintf(&b, "| %s | %s | otherwise, below %g%% |\n", Indicator(compare.Warning), Label(compare.Warning), t.Warning)
	fmt.Fprintf(&b, "| %s | %s | delta >= %g%% |\n", Indicator(compare.Regression), Label(compare.Regression), t.Warning)
	return b.String()
}

func runHeading(set *results.ResultSet) string {
	return "mojomark Report — Mojo " + set.MojoVersion
}

func comparisonHeading(base, target *results.ResultSet) string {
	return fmt.Sprintf("mojomark Comparison — Mojo %s vs %s", base.MojoVersion, target.MojoVersion)
}

func deltaCell(pct float64, opts mdOptions) string {
	text := FormatDelta(pct)
	if !opts.html {
		return text
	}
	class := "delta-neutral"
	switch {
	case pct < 0:
		class = "delta-negative"
	case pct > 0:
		class = "delta-positive"
	}
	return fmt.Sprintf(`<span class="%s">%s</span>`, class, text)
}

func statusCell(s compare.Status, opts mdOptions) string {
	if !opts.html {
		return Indicator(s) + " " + Label(s)
	}
	return fmt.Sprintf(`<span class="badge badge-%s">%s</span>`, s, Label(s))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format(dateLayout)
}

func machineSummary(set *results.ResultSet) string {
	info, err := machine.FromMap(set.Machine)
	if err != nil || info.Empty() {
		return ""
	}
	return info.Summary()
}

// machineNote warns when two runs were recorded on different hosts.
func machineNote(base, target *results.ResultSet) string {
	a, errA := machine.FromMap(base.Machine)
	b, errB := machine.FromMap(target.Machine)
	if errA != nil || errB != nil || a.Empty() || b.Empty() {
		return ""
	}
	if machine.Match(a, b) {
		return ""
	}
	return "baseline and target were recorded on different machines; deltas may reflect hardware, not the compiler."
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
