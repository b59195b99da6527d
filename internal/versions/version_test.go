package versions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Version
	}{
		{"0.26.1", Version{0, 26, 1}},
		{"0.26.1.0", Version{0, 26, 1, 0}},
		{"1", Version{1}},
		{"0.7.beta", Version{0, 7, 0}},
		{"", Version{0}},
		{"-3.2", Version{0, 2}},
		{" 26", Version{26}},
		{"0. 26 .1\n", Version{0, 26, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in))
		})
	}
}

func TestVersion_String(t *testing.T) {
	assert.Equal(t, "0.26.1", Parse("0.26.1").String())
	assert.Equal(t, "0.7.0", Parse("0.7.rc1").String())
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"0.26", "0.26.0", 0},
		{"0.26.1", "0.26", 1},
		{"0.25.7.0", "0.26", -1},
		{"1.0", "0.99.99", 1},
		{"0.0", "", 0},
		{"0.7.0", "0.7.0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareStrings(tt.a, tt.b))
			assert.Equal(t, -tt.want, CompareStrings(tt.b, tt.a))
		})
	}
}

func TestSort(t *testing.T) {
	vs := []string{"0.26.1", "0.7.0", "0.25.7", "0.10.0", "0.8.0"}
	Sort(vs)
	assert.Equal(t, []string{"0.7.0", "0.8.0", "0.10.0", "0.25.7", "0.26.1"}, vs)

	SortDesc(vs)
	assert.Equal(t, []string{"0.26.1", "0.25.7", "0.10.0", "0.8.0", "0.7.0"}, vs)
}

func TestClosest(t *testing.T) {
	available := []string{"0.7.0", "0.8.0", "24.4.0", "25.1.0", "0.26.1"}

	t.Run("finds closest", func(t *testing.T) {
		got := Closest("0.7.1", available, 2)
		assert.Equal(t, []string{"0.7.0", "0.8.0"}, got)
	})

	t.Run("exact match is first", func(t *testing.T) {
		got := Closest("24.4.0", available, 3)
		assert.Equal(t, "24.4.0", got[0])
	})

	t.Run("n larger than available", func(t *testing.T) {
		got := Closest("0.7.0", available, 10)
		assert.Len(t, got, len(available))
	})

	t.Run("does not modify input", func(t *testing.T) {
		in := []string{"0.26.1", "0.7.0"}
		_ = Closest("0.7.0", in, 1)
		assert.Equal(t, []string{"0.26.1", "0.7.0"}, in)
	})
}
