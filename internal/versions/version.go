// Package versions parses and orders Mojo version strings and manages the
// isolated environments that hold installed Mojo releases.
package versions

import (
	"slices"
	"strconv"
	"strings"
)

// Version is a parsed version string: one non-negative integer per
// dot-separated segment.
type Version []int

// Parse splits s on "." and converts each segment to an integer. Segments
// are trimmed of surrounding whitespace, and segments that are not plain
// integers become 0, so Parse never fails:
// "0.7.beta" parses as 0.7.0 and "" parses as 0.
func Parse(s string) Version {
	parts := strings.Split(s, ".")
	v := make(Version, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			n = 0
		}
		v = append(v, n)
	}
	return v
}

// String joins the segments back together with dots.
func (v Version) String() string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

// Compare orders two versions segment by segment. Missing trailing
// segments count as 0, so 0.26 and 0.26.0 compare equal.
func Compare(a, b Version) int {
	n := max(len(a), len(b))
	for i := 0; i < n; i++ {
		x, y := at(a, i), at(b, i)
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return 0
}

// CompareStrings parses both strings and compares them.
func CompareStrings(a, b string) int {
	return Compare(Parse(a), Parse(b))
}

// Sort orders version strings oldest first. Equal versions keep their
// relative order.
func Sort(vs []string) {
	slices.SortStableFunc(vs, CompareStrings)
}

// SortDesc orders version strings newest first.
func SortDesc(vs []string) {
	slices.SortStableFunc(vs, func(a, b string) int {
		return CompareStrings(b, a)
	})
}

// Closest returns up to n entries of available ranked by their distance
// from target, where distance is the sum of absolute per-segment
// differences. Ties keep the order of available.
func Closest(target string, available []string, n int) []string {
	t := Parse(target)
	ranked := slices.Clone(available)
	slices.SortStableFunc(ranked, func(a, b string) int {
		return distance(t, Parse(a)) - distance(t, Parse(b))
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

func distance(a, b Version) int {
	d := 0
	for i := 0; i < max(len(a), len(b)); i++ {
		x, y := at(a, i), at(b, i)
		if x > y {
			d += x - y
		} else {
			d += y - x
		}
	}
	return d
}

func at(v Version, i int) int {
	if i < len(v) {
		return v[i]
	}
	return 0
}
