// Package trend folds stored result sets into per-benchmark timelines
// ordered by compiler version.
package trend

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mojomark/mojomark/internal/results"
	"github.com/mojomark/mojomark/internal/versions"
)

// Point is one benchmark measured under one compiler version.
type Point struct {
	Version   string
	Timestamp time.Time
	MeanNs    float64
	MedianNs  float64
	MinNs     float64
	MaxNs     float64
	StdDevNs  float64
	Samples   int
}

// Trend is the history of one benchmark across versions.
type Trend struct {
	Name     string
	Category string
	Points   []Point
}

// Label returns "<category>/<name>".
func (t Trend) Label() string {
	return t.Category + "/" + t.Name
}

func (t Trend) Versions() []string {
	out := make([]string, len(t.Points))
	for i, p := range t.Points {
		out[i] = p.Version
	}
	return out
}

func (t Trend) MeanValues() []float64 {
	out := make([]float64, len(t.Points))
	for i, p := range t.Points {
		out[i] = p.MeanNs
	}
	return out
}

// Earliest returns the point for the lowest version.
func (t Trend) Earliest() (Point, bool) {
	if len(t.Points) == 0 {
		return Point{}, false
	}
	return t.Points[0], true
}

// Latest returns the point for the highest version.
func (t Trend) Latest() (Point, bool) {
	if len(t.Points) == 0 {
		return Point{}, false
	}
	return t.Points[len(t.Points)-1], true
}

// OverallDeltaPct is the change from the earliest to the latest mean. It
// is undefined with fewer than two points or a zero first mean.
func (t Trend) OverallDeltaPct() (float64, bool) {
	if len(t.Points) < 2 {
		return 0, false
	}
	first := t.Points[0].MeanNs
	last := t.Points[len(t.Points)-1].MeanNs
	if first == 0 {
		return 0, false
	}
	return (last - first) / first * 100, true
}

// Filter narrows which measurements Gather considers. Empty fields match
// everything.
type Filter struct {
	Category  string
	Benchmark string
	Versions  []string
}

func (f Filter) matchVersion(v string) bool {
	return len(f.Versions) == 0 || slices.Contains(f.Versions, v)
}

func (f Filter) matchSample(s results.Sample) bool {
	if f.Category != "" && s.Category != f.Category {
		return false
	}
	if f.Benchmark != "" && s.Name != f.Benchmark {
		return false
	}
	return true
}

// Gather builds trends from sets ordered newest first. Only the first
// occurrence of a version per benchmark is kept. Points are sorted by
// version and trends by category then name.
func Gather(sets []*results.ResultSet, f Filter) []Trend {
	byKey := map[results.Key]*Trend{}
	seen := map[results.Key]map[string]bool{}

	for _, set := range sets {
		if !f.matchVersion(set.MojoVersion) {
			continue
		}
		for _, s := range set.Benchmarks {
			if !f.matchSample(s) {
				continue
			}
			k := s.Key()
			if seen[k] == nil {
				seen[k] = map[string]bool{}
			}
			if seen[k][set.MojoVersion] {
				continue
			}
			seen[k][set.MojoVersion] = true

			tr, ok := byKey[k]
			if !ok {
				tr = &Trend{Name: s.Name, Category: s.Category}
				byKey[k] = tr
			}
			st := s.Stats()
			tr.Points = append(tr.Points, Point{
				Version:   set.MojoVersion,
				Timestamp: set.Timestamp,
				MeanNs:    st.MeanNs,
				MedianNs:  st.MedianNs,
				MinNs:     st.MinNs,
				MaxNs:     st.MaxNs,
				StdDevNs:  st.StdDevNs,
				Samples:   st.Samples,
			})
		}
	}

	trends := make([]Trend, 0, len(byKey))
	for _, tr := range byKey {
		slices.SortStableFunc(tr.Points, func(a, b Point) int {
			return versions.CompareStrings(a.Version, b.Version)
		})
		trends = append(trends, *tr)
	}
	slices.SortFunc(trends, func(a, b Trend) int {
		return cmp.Or(cmp.Compare(a.Category, b.Category), cmp.Compare(a.Name, b.Name))
	})
	return trends
}

const sparkBlocks = " ▁▂▃▄▅▆▇█"

// Sparkline renders values as block characters, lowest to highest.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	if len(values) == 1 {
		return "▅"
	}
	lo, hi := slices.Min(values), slices.Max(values)
	if lo == hi {
		return strings.Repeat("▅", len(values))
	}

	blocks := []rune(sparkBlocks)
	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / (hi - lo) * 8)
		b.WriteRune(blocks[min(idx, 8)])
	}
	return b.String()
}

// Bar renders a horizontal bar proportional to value/maxValue. A non-zero
// maxValue always yields at least one block.
func Bar(value, maxValue float64, width int) string {
	if maxValue == 0 {
		return ""
	}
	n := int(value / maxValue * float64(width))
	return strings.Repeat("█", max(n, 1))
}

// CSVHeader is the first row written by ExportCSV.
var CSVHeader = []string{
	"benchmark", "category", "version", "timestamp",
	"mean_ns", "median_ns", "min_ns", "max_ns", "std_dev_ns", "samples",
}

// ExportCSV writes one row per point.
func ExportCSV(w io.Writer, trends []Trend) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, tr := range trends {
		for _, p := range tr.Points {
			ts := ""
			if !p.Timestamp.IsZero() {
				ts = p.Timestamp.Format(time.RFC3339Nano)
			}
			row := []string{
				tr.Name,
				tr.Category,
				p.Version,
				ts,
				formatNs(p.MeanNs),
				formatNs(p.MedianNs),
				formatNs(p.MinNs),
				formatNs(p.MaxNs),
				formatNs(p.StdDevNs),
				strconv.Itoa(p.Samples),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing CSV row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatNs(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64)
}
