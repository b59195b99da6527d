// Package reporting renders benchmark results and comparisons as terminal
// tables, Markdown, HTML and JUnit XML.
package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mojomark/mojomark/internal/compare"
	"github.com/mojomark/mojomark/internal/results"
)

// DefaultDir is where reports are written unless configured otherwise.
const DefaultDir = "reports"

// Legend explains the status indicators for the given thresholds.
func Legend(t compare.Thresholds) string {
	return fmt.Sprintf(">> >%g%% faster | OK <%g%% change | !! %g-%g%% slower | XX >%g%% slower",
		-t.Improved, t.Stable, t.Stable, t.Warning, t.Warning)
}

// FormatTime renders a nanosecond value with a unit suited to its size.
func FormatTime(ns float64) string {
	switch {
	case ns < 1e3:
		return fmt.Sprintf("%.0f ns", ns)
	case ns < 1e6:
		return fmt.Sprintf("%.1f µs", ns/1e3)
	case ns < 1e9:
		return fmt.Sprintf("%.1f ms", ns/1e6)
	default:
		return fmt.Sprintf("%.2f s", ns/1e9)
	}
}

// FormatDelta renders a percentage change with an explicit sign.
func FormatDelta(pct float64) string {
	return fmt.Sprintf("%+.1f%%", pct)
}

// Indicator is the two-character marker shown for a status.
func Indicator(s compare.Status) string {
	switch s {
	case compare.Improved:
		return ">>"
	case compare.Stable:
		return "OK"
	case compare.Warning:
		return "!!"
	case compare.Regression:
		return "XX"
	}
	return "??"
}

// Label is the word shown for a status. Regressions are upper-cased so
// they stand out in plain text.
func Label(s compare.Status) string {
	if s == compare.Regression {
		return "REGRESSION"
	}
	return s.String()
}

// Title is the capitalized status name used for headings and cards.
func Title(s compare.Status) string {
	name := s.String()
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// Formats selects which report files are produced.
type Formats struct {
	Markdown bool
	HTML     bool
	JUnit    bool
}

// FormatNames lists the accepted report format values.
var FormatNames = []string{"markdown", "html", "junit", "both", "all", "none"}

// ParseFormats maps a report format value to the files it produces. "both"
// is Markdown and HTML; "all" adds JUnit.
func ParseFormats(name string) (Formats, error) {
	switch name {
	case "markdown", "md":
		return Formats{Markdown: true}, nil
	case "html":
		return Formats{HTML: true}, nil
	case "junit":
		return Formats{JUnit: true}, nil
	case "both", "":
		return Formats{Markdown: true, HTML: true}, nil
	case "all":
		return Formats{Markdown: true, HTML: true, JUnit: true}, nil
	case "none":
		return Formats{}, nil
	}
	return Formats{}, fmt.Errorf("unknown report format %q (want one of %s)", name, strings.Join(FormatNames, ", "))
}

// Any reports whether at least one file is produced.
func (f Formats) Any() bool {
	return f.Markdown || f.HTML || f.JUnit
}

// Stamp formats t for use in report file names.
func Stamp(t time.Time) string {
	return t.UTC().Format(results.FileTimeLayout)
}

// RunFileName names a single-run report: "<ts>_mojo-<version>.<ext>".
func RunFileName(t time.Time, version, ext string) string {
	return fmt.Sprintf("%s_mojo-%s.%s", Stamp(t), version, ext)
}

// CompareFileName names a comparison report:
// "<ts>_<kind>_<base>_vs_<target>.<ext>", where kind is "compare" or
// "regression".
func CompareFileName(t time.Time, kind, base, target, ext string) string {
	return fmt.Sprintf("%s_%s_%s_vs_%s.%s", Stamp(t), kind, base, target, ext)
}

// Save writes content to dir/name, creating dir as needed, and returns the
// written path.
func Save(content, name, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}
