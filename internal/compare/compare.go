// Package compare diffs two result sets and classifies each per-benchmark
// change against configurable thresholds.
package compare

import (
	"errors"
	"fmt"
	"math"

	"github.com/mojomark/mojomark/internal/results"
)

// Status is the classification of one benchmark's change.
type Status int

const (
	Improved Status = iota
	Stable
	Warning
	Regression
)

// Statuses lists every status in display order.
var Statuses = []Status{Improved, Stable, Warning, Regression}

func (s Status) String() string {
	switch s {
	case Improved:
		return "improved"
	case Stable:
		return "stable"
	case Warning:
		return "warning"
	case Regression:
		return "regression"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText writes the status name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

const (
	DefaultStable   = 3.0
	DefaultWarning  = 10.0
	DefaultImproved = -5.0
)

// Thresholds are percentage boundaries. Positive deltas are slower.
type Thresholds struct {
	// Stable is the half-width of the band around zero treated as noise.
	Stable float64 `json:"stable"`
	// Warning is the delta at and above which a change is a regression.
	Warning float64 `json:"warning"`
	// Improved is the delta at and below which a change is an improvement.
	Improved float64 `json:"improved"`
}

// DefaultThresholds returns 3 / 10 / -5.
func DefaultThresholds() Thresholds {
	return Thresholds{Stable: DefaultStable, Warning: DefaultWarning, Improved: DefaultImproved}
}

// Validate reports NaN values and a non-negative improved threshold.
func (t Thresholds) Validate() error {
	var errs []error
	for _, f := range []struct {
		name string
		v    float64
	}{{"stable", t.Stable}, {"warning", t.Warning}, {"improved", t.Improved}} {
		if math.IsNaN(f.v) {
			errs = append(errs, fmt.Errorf("%s threshold is NaN", f.name))
		}
	}
	if t.Improved >= 0 {
		errs = append(errs, fmt.Errorf("improved threshold must be negative, got %g", t.Improved))
	}
	if t.Stable < 0 {
		errs = append(errs, fmt.Errorf("stable threshold must not be negative, got %g", t.Stable))
	}
	return errors.Join(errs...)
}

// Classify maps a delta percentage to a status. Equality at Improved counts
// as improved, equality at Warning counts as a regression, and the stable
// band excludes its edge.
func Classify(deltaPct float64, t Thresholds) Status {
	switch {
	case deltaPct <= t.Improved:
		return Improved
	case math.Abs(deltaPct) < t.Stable:
		return Stable
	case deltaPct >= t.Warning:
		return Regression
	default:
		return Warning
	}
}

// Diff is the comparison of one benchmark present in both runs.
type Diff struct {
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	BaseMeanNs   float64 `json:"base_mean_ns"`
	TargetMeanNs float64 `json:"target_mean_ns"`
	DeltaPct     float64 `json:"delta_pct"`
	Status       Status  `json:"status"`
}

// Label returns "<category>/<name>".
func (d Diff) Label() string {
	return d.Category + "/" + d.Name
}

// Results compares target against baseline. Benchmarks missing from the
// baseline, or whose baseline mean is zero, are skipped. Output follows
// the target's benchmark order.
func Results(baseline, target *results.ResultSet, t Thresholds) []Diff {
	base := baseline.Index()

	diffs := make([]Diff, 0, len(target.Benchmarks))
	for _, tb := range target.Benchmarks {
		bb, ok := base[tb.Key()]
		if !ok {
			continue
		}
		baseMean := bb.Mean()
		if baseMean == 0 {
			continue
		}
		targetMean := tb.Mean()
		delta := (targetMean - baseMean) / baseMean * 100
		diffs = append(diffs, Diff{
			Name:         tb.Name,
			Category:     tb.Category,
			BaseMeanNs:   baseMean,
			TargetMeanNs: targetMean,
			DeltaPct:     delta,
			Status:       Classify(delta, t),
		})
	}
	return diffs
}

// Summary counts diffs per status. Every status is always present.
type Summary map[Status]int

// Summarize counts diffs per status.
func Summarize(diffs []Diff) Summary {
	s := make(Summary, len(Statuses))
	for _, st := range Statuses {
		s[st] = 0
	}
	for _, d := range diffs {
		s[d.Status]++
	}
	return s
}

// Total returns the number of diffs counted.
func (s Summary) Total() int {
	n := 0
	for _, c := range s {
		n += c
	}
	return n
}

// HasRegression reports whether any diff is a regression.
func HasRegression(diffs []Diff) bool {
	for _, d := range diffs {
		if d.Status == Regression {
			return true
		}
	}
	return false
}

// Unmatched returns the target benchmarks that have no baseline
// counterpart, in target order.
func Unmatched(baseline, target *results.ResultSet) []results.Key {
	base := baseline.Index()
	var out []results.Key
	for _, tb := range target.Benchmarks {
		if _, ok := base[tb.Key()]; !ok {
			out = append(out, tb.Key())
		}
	}
	return out
}
