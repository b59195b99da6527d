package results

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleStats(t *testing.T) {
	tests := []struct {
		name    string
		samples []int64
		mean    float64
		median  float64
		min     int64
		max     int64
		stddev  float64
	}{
		{"empty", nil, 0, 0, 0, 0, 0},
		{"single", []int64{42}, 42, 42, 42, 42, 0},
		{"odd count", []int64{300, 100, 200}, 200, 200, 100, 300, 100},
		{"even count", []int64{4, 1, 3, 2}, 2.5, 2.5, 1, 4, 1.2909944487358056},
		{"identical", []int64{7, 7, 7}, 7, 7, 7, 7, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := Sample{Name: "x", Category: "c", SamplesNs: tc.samples}
			assert.InDelta(t, tc.mean, s.Mean(), 1e-9)
			assert.InDelta(t, tc.median, s.Median(), 1e-9)
			assert.Equal(t, tc.min, s.Min())
			assert.Equal(t, tc.max, s.Max())
			assert.InDelta(t, tc.stddev, s.StdDev(), 1e-9)

			stats := s.Stats()
			assert.Equal(t, len(tc.samples), stats.Samples)
			assert.InDelta(t, tc.mean, stats.MeanNs, 1e-9)
		})
	}
}

func TestSampleMedianDoesNotReorder(t *testing.T) {
	s := Sample{SamplesNs: []int64{3, 1, 2}}
	_ = s.Median()
	assert.Equal(t, []int64{3, 1, 2}, s.SamplesNs)
}

func TestSampleKeyAndLabel(t *testing.T) {
	s := Sample{Name: "fibonacci", Category: "compute"}
	assert.Equal(t, Key{Category: "compute", Name: "fibonacci"}, s.Key())
	assert.Equal(t, "compute/fibonacci", s.Label())
}

func TestSampleMarshalWritesStats(t *testing.T) {
	s := Sample{Name: "fib", Category: "compute", SamplesNs: []int64{100, 200}}
	data, err := json.Marshal(s)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "fib", raw["name"])
	assert.Equal(t, "compute", raw["category"])
	stats, ok := raw["stats"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 150.0, stats["mean_ns"], 1e-9)
	assert.InDelta(t, 2.0, stats["samples"], 1e-9)
}

func TestSampleMarshalEmptySamples(t *testing.T) {
	data, err := json.Marshal(Sample{Name: "a", Category: "b"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"samples_ns":[]`)
}

func TestSampleUnmarshalIgnoresStoredStats(t *testing.T) {
	doc := `{"name": "fib", "category": "compute", "samples_ns": [10, 20, 30],
	         "stats": {"mean_ns": 999, "median_ns": 999, "min_ns": 1, "max_ns": 1, "std_dev_ns": 5, "samples": 9}}`
	var s Sample
	require.NoError(t, json.Unmarshal([]byte(doc), &s))
	assert.Equal(t, []int64{10, 20, 30}, s.SamplesNs)
	assert.InDelta(t, 20.0, s.Mean(), 1e-9)
	assert.Equal(t, 3, s.Stats().Samples)
}

func TestResultSet(t *testing.T) {
	rs := New("0.26.1", map[string]any{"cpu": "test"})
	assert.Equal(t, "0.26.1", rs.MojoVersion)
	assert.False(t, rs.Timestamp.IsZero())
	assert.Empty(t, rs.Benchmarks)

	rs.Add(Sample{Name: "fib", Category: "compute", SamplesNs: []int64{1}})
	rs.Add(Sample{Name: "concat", Category: "strings", SamplesNs: []int64{2}})
	rs.Add(Sample{Name: "loop_sum", Category: "compute", SamplesNs: []int64{3}})

	got, ok := rs.Find(Key{Category: "strings", Name: "concat"})
	require.True(t, ok)
	assert.Equal(t, []int64{2}, got.SamplesNs)

	_, ok = rs.Find(Key{Category: "compute", Name: "concat"})
	assert.False(t, ok)

	assert.Len(t, rs.Index(), 3)
	assert.Equal(t, 2, rs.Categories())
}
