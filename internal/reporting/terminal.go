package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/mojomark/mojomark/internal/compare"
	"github.com/mojomark/mojomark/internal/results"
)

// Verbosity controls how much detail terminal output includes.
type Verbosity int

const (
	Normal Verbosity = iota
	Verbose
	Debug
)

// VerbosityFrom maps the global flags to a Verbosity.
func VerbosityFrom(verbose, debug bool) Verbosity {
	switch {
	case debug:
		return Debug
	case verbose:
		return Verbose
	}
	return Normal
}

type styles struct {
	brand   lipgloss.Style
	bold    lipgloss.Style
	dim     lipgloss.Style
	good    lipgloss.Style
	great   lipgloss.Style
	warn    lipgloss.Style
	bad     lipgloss.Style
	heading lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		brand:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		bold:    r.NewStyle().Bold(true),
		dim:     r.NewStyle().Faint(true),
		good:    r.NewStyle().Foreground(lipgloss.Color("2")),
		great:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("3")),
		bad:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		heading: r.NewStyle().Bold(true).Underline(true),
	}
}

// Console writes styled, human-oriented output. Colors are dropped
// automatically when w is not a terminal.
type Console struct {
	w         io.Writer
	verbosity Verbosity
	st        styles
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer, v Verbosity) *Console {
	return &Console{w: w, verbosity: v, st: newStyles(w)}
}

// Writer returns the underlying writer.
func (c *Console) Writer() io.Writer {
	return c.w
}

// Verbosity returns the configured verbosity.
func (c *Console) Verbosity() Verbosity {
	return c.verbosity
}

// Printf writes formatted text as-is.
func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c.w, format, args...) //nolint:errcheck
}

// Header prints "mojomark — <title>".
func (c *Console) Header(title string) {
	c.Printf("%s — %s\n", c.st.brand.Render("mojomark"), title)
}

// Bold renders s in bold.
func (c *Console) Bold(s string) string { return c.st.bold.Render(s) }

// Dim renders s faint.
func (c *Console) Dim(s string) string { return c.st.dim.Render(s) }

// Good renders s in green.
func (c *Console) Good(s string) string { return c.st.good.Render(s) }

// Warn renders s in yellow.
func (c *Console) Warn(s string) string { return c.st.warn.Render(s) }

// Bad renders s in bold red.
func (c *Console) Bad(s string) string { return c.st.bad.Render(s) }

// Rule prints a section divider.
func (c *Console) Rule(title string) {
	line := strings.Repeat("─", 4)
	c.Printf("%s %s %s\n", c.Dim(line), c.st.heading.Render(title), c.Dim(line))
}

// Verbosef prints only at Verbose or higher.
func (c *Console) Verbosef(format string, args ...any) {
	if c.verbosity < Verbose {
		return
	}
	msg := fmt.Sprintf(format, args...)
	trimmed := strings.TrimSuffix(msg, "\n")
	c.Printf("%s%s", c.Dim(trimmed), msg[len(trimmed):])
}

// statusStyle colors a status the way the legend describes it.
func (c *Console) statusStyle(s compare.Status) lipgloss.Style {
	switch s {
	case compare.Improved:
		return c.st.great
	case compare.Stable:
		return c.st.good
	case compare.Warning:
		return c.st.warn
	}
	return c.st.bad
}

// RunTable prints the statistics of a result set. Verbose output adds
// the sample count.
func (c *Console) RunTable(title string, set *results.ResultSet) {
	headers := []string{"Category", "Benchmark", "Mean", "Median", "Min", "Max", "Std Dev"}
	right := []bool{false, false, true, true, true, true, true}
	if c.verbosity >= Verbose {
		headers = append(headers, "Samples")
		right = append(right, true)
	}

	rows := make([][]cell, 0, len(set.Benchmarks))
	for _, s := range set.Benchmarks {
		st := s.Stats()
		row := []cell{
			{text: s.Category, style: &c.st.dim},
			{text: s.Name, style: &c.st.bold},
			{text: FormatTime(st.MeanNs), style: &c.st.brand},
			{text: FormatTime(st.MedianNs)},
			{text: FormatTime(st.MinNs), style: &c.st.good},
			{text: FormatTime(st.MaxNs), style: &c.st.bad},
			{text: FormatTime(st.StdDevNs), style: &c.st.dim},
		}
		if c.verbosity >= Verbose {
			row = append(row, cell{text: fmt.Sprint(st.Samples)})
		}
		rows = append(rows, row)
	}
	c.table(title, headers, right, rows)
}

// ComparisonTable prints one row per diff followed by the summary line.
// Verbose output explains every non-stable diff.
func (c *Console) ComparisonTable(title, baseVersion, targetVersion string, diffs []compare.Diff) {
	headers := []string{"Category", "Benchmark", baseVersion, targetVersion, "Delta", "Status"}
	right := []bool{false, false, true, true, true, false}

	rows := make([][]cell, 0, len(diffs))
	for _, d := range diffs {
		style := c.statusStyle(d.Status)
		rows = append(rows, []cell{
			{text: d.Category, style: &c.st.dim},
			{text: d.Name, style: &c.st.bold},
			{text: FormatTime(d.BaseMeanNs)},
			{text: FormatTime(d.TargetMeanNs)},
			{text: FormatDelta(d.DeltaPct), style: &style},
			{text: Indicator(d.Status), style: &style},
		})
	}
	c.table(title, headers, right, rows)

	if c.verbosity >= Verbose {
		for _, d := range diffs {
			if d.Status == compare.Stable {
				continue
			}
			c.Printf("  %s %s: %s\n", c.statusStyle(d.Status).Render(Indicator(d.Status)), d.Label(), InterpretDiff(d))
		}
	}
	c.Summary(compare.Summarize(diffs))
}

// Summary prints the non-zero status counts.
func (c *Console) Summary(s compare.Summary) {
	var parts []string
	for _, st := range compare.Statuses {
		if n := s[st]; n > 0 {
			parts = append(parts, c.statusStyle(st).Render(fmt.Sprintf("%d %s", n, st)))
		}
	}
	c.Printf("\n  Summary: %s\n", strings.Join(parts, ", "))
}

// Legend prints the threshold legend.
func (c *Console) Legend(t compare.Thresholds) {
	c.Printf("\n  %s\n", c.Dim("Thresholds: "+Legend(t)))
}

// Table prints plain rows under headers. Columns are left-aligned.
func (c *Console) Table(title string, headers []string, rows [][]string) {
	right := make([]bool, len(headers))
	cells := make([][]cell, len(rows))
	for i, row := range rows {
		cells[i] = make([]cell, len(row))
		for j, text := range row {
			cells[i][j] = cell{text: text}
		}
	}
	c.table(title, headers, right, cells)
}

type cell struct {
	text  string
	style *lipgloss.Style
}

// table prints an aligned plain-text table. Widths are measured before
// styling so escape sequences never affect alignment.
func (c *Console) table(title string, headers []string, right []bool, rows [][]cell) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cl := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cl.text))
		}
	}

	total := 0
	for _, w := range widths {
		total += w
	}
	total += 3 * (len(widths) - 1)

	if title != "" {
		pad := max(0, (total-runewidth.StringWidth(title))/2)
		c.Printf("%s%s\n", strings.Repeat(" ", pad), c.st.heading.Render(title))
	}

	head := make([]string, len(headers))
	for i, h := range headers {
		head[i] = c.st.bold.Render(align(h, widths[i], right[i]))
	}
	c.Printf("%s\n", strings.Join(head, "   "))
	c.Printf("%s\n", c.Dim(strings.Repeat("─", total)))

	for _, row := range rows {
		out := make([]string, len(row))
		for i, cl := range row {
			text := align(cl.text, widths[i], right[i])
			if cl.style != nil {
				text = cl.style.Render(text)
			}
			out[i] = text
		}
		c.Printf("%s\n", strings.TrimRight(strings.Join(out, "   "), " "))
	}
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

func padLeft(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return strings.Repeat(" ", width-sw) + s
}

func align(s string, width int, right bool) string {
	if right {
		return padLeft(s, width)
	}
	return padRight(s, width)
}
