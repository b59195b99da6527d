package results

import (
	"time"
)

// ResultSet is one full run against one compiler version.
type ResultSet struct {
	MojoVersion string         `json:"mojo_version"`
	Timestamp   time.Time      `json:"timestamp"`
	Machine     map[string]any `json:"machine,omitempty"`
	Benchmarks  []Sample       `json:"benchmarks"`
}

// New returns an empty result set for version stamped with the current
// UTC time.
func New(version string, machine map[string]any) *ResultSet {
	return &ResultSet{
		MojoVersion: version,
		Timestamp:   time.Now().UTC(),
		Machine:     machine,
		Benchmarks:  []Sample{},
	}
}

// Add appends a sample.
func (rs *ResultSet) Add(s Sample) {
	rs.Benchmarks = append(rs.Benchmarks, s)
}

// Find returns the sample with the given key.
func (rs *ResultSet) Find(k Key) (Sample, bool) {
	for _, s := range rs.Benchmarks {
		if s.Key() == k {
			return s, true
		}
	}
	return Sample{}, false
}

// Index maps every sample by key. Later duplicates replace earlier ones.
func (rs *ResultSet) Index() map[Key]Sample {
	idx := make(map[Key]Sample, len(rs.Benchmarks))
	for _, s := range rs.Benchmarks {
		idx[s.Key()] = s
	}
	return idx
}

// Categories returns the number of distinct categories.
func (rs *ResultSet) Categories() int {
	seen := map[string]bool{}
	for _, s := range rs.Benchmarks {
		seen[s.Category] = true
	}
	return len(seen)
}
