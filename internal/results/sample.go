// Package results holds benchmark measurements and persists them as JSON
// result sets.
package results

import (
	"encoding/json"
	"math"
	"slices"
)

// Sample is the raw measurement of one benchmark in one run. Statistics
// are always derived from SamplesNs.
type Sample struct {
	Name      string
	Category  string
	SamplesNs []int64
}

// Key identifies a benchmark across runs.
type Key struct {
	Category string
	Name     string
}

// Key returns the (category, name) identity of s.
func (s Sample) Key() Key {
	return Key{Category: s.Category, Name: s.Name}
}

// Label returns "<category>/<name>".
func (s Sample) Label() string {
	return s.Category + "/" + s.Name
}

// Mean is the arithmetic mean, or 0 with no samples.
func (s Sample) Mean() float64 {
	if len(s.SamplesNs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s.SamplesNs {
		sum += float64(v)
	}
	return sum / float64(len(s.SamplesNs))
}

// Median is the middle sample, or the mean of the two middle samples for
// an even count.
func (s Sample) Median() float64 {
	n := len(s.SamplesNs)
	if n == 0 {
		return 0
	}
	sorted := slices.Clone(s.SamplesNs)
	slices.Sort(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return (float64(sorted[n/2-1]) + float64(sorted[n/2])) / 2
}

func (s Sample) Min() int64 {
	if len(s.SamplesNs) == 0 {
		return 0
	}
	return slices.Min(s.SamplesNs)
}

func (s Sample) Max() int64 {
	if len(s.SamplesNs) == 0 {
		return 0
	}
	return slices.Max(s.SamplesNs)
}

// StdDev is the sample standard deviation (n-1 denominator). It is 0 with
// fewer than two samples.
func (s Sample) StdDev() float64 {
	n := len(s.SamplesNs)
	if n < 2 {
		return 0
	}
	mean := s.Mean()
	var sq float64
	for _, v := range s.SamplesNs {
		d := float64(v) - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(n-1))
}

// Stats is the summary block written alongside the raw samples.
type Stats struct {
	MeanNs   float64 `json:"mean_ns"`
	MedianNs float64 `json:"median_ns"`
	MinNs    float64 `json:"min_ns"`
	MaxNs    float64 `json:"max_ns"`
	StdDevNs float64 `json:"std_dev_ns"`
	Samples  int     `json:"samples"`
}

// Stats computes the summary for s.
func (s Sample) Stats() Stats {
	return Stats{
		MeanNs:   s.Mean(),
		MedianNs: s.Median(),
		MinNs:    float64(s.Min()),
		MaxNs:    float64(s.Max()),
		StdDevNs: s.StdDev(),
		Samples:  len(s.SamplesNs),
	}
}

type sampleJSON struct {
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	SamplesNs []int64 `json:"samples_ns"`
	Stats     *Stats  `json:"stats,omitempty"`
}

// MarshalJSON writes the samples together with freshly computed stats.
func (s Sample) MarshalJSON() ([]byte, error) {
	samples := s.SamplesNs
	if samples == nil {
		samples = []int64{}
	}
	stats := s.Stats()
	return json.Marshal(sampleJSON{
		Name:      s.Name,
		Category:  s.Category,
		SamplesNs: samples,
		Stats:     &stats,
	})
}

// UnmarshalJSON reads the samples and ignores any stored stats block.
func (s *Sample) UnmarshalJSON(data []byte) error {
	var raw sampleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Name = raw.Name
	s.Category = raw.Category
	s.SamplesNs = raw.SamplesNs
	return nil
}
