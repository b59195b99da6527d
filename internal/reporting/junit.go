package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/mojomark/mojomark/internal/compare"
	"github.com/mojomark/mojomark/internal/results"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one run or one comparison.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one benchmark.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

// JUnitFailure represents a regression.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError represents a benchmark that could not be built or run.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitSkipped marks a benchmark that could not be compared.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// Failure is a benchmark that produced no measurement in a run.
type Failure struct {
	Name     string
	Category string
	Message  string
}

// ConvertRunToJUnit converts a result set to JUnit XML. Measured benchmarks
// pass; failures become errors.
func ConvertRunToJUnit(set *results.ResultSet, failures []Failure) *JUnitTestSuites {
	suite := JUnitTestSuite{
		Name:      "mojomark Mojo " + set.MojoVersion,
		Timestamp: set.Timestamp.UTC().Format(time.RFC3339),
		Properties: []JUnitProperty{
			{Name: "mojo_version", Value: set.MojoVersion},
		},
	}
	if m := machineSummary(set); m != "" {
		suite.Properties = append(suite.Properties, JUnitProperty{Name: "machine", Value: m})
	}

	for _, s := range set.Benchmarks {
		st := s.Stats()
		tc := JUnitTestCase{
			Name:      s.Name,
			Classname: s.Category,
			Time:      nsToSeconds(st.MeanNs),
			SystemOut: fmt.Sprintf("mean=%s median=%s min=%s max=%s stddev=%s samples=%d",
				FormatTime(st.MeanNs), FormatTime(st.MedianNs), FormatTime(st.MinNs),
				FormatTime(st.MaxNs), FormatTime(st.StdDevNs), st.Samples),
		}
		suite.Time += tc.Time
		suite.TestCases = append(suite.TestCases, tc)
	}
	for _, f := range failures {
		suite.TestCases = append(suite.TestCases, JUnitTestCase{
			Name:      f.Name,
			Classname: f.Category,
			Error: &JUnitError{
				Message: f.Message,
				Type:    "BenchmarkError",
			},
		})
		suite.Errors++
	}
	suite.Tests = len(suite.TestCases)

	return wrapSuite(suite)
}

// ConvertComparisonToJUnit converts a comparison to JUnit XML: one test
// case per diff, regressions as failures and benchmarks without a
// counterpart as skipped.
func ConvertComparisonToJUnit(base, target *results.ResultSet, diffs []compare.Diff, t compare.Thresholds) *JUnitTestSuites {
	suite := JUnitTestSuite{
		Name:      fmt.Sprintf("mojomark Mojo %s vs %s", base.MojoVersion, target.MojoVersion),
		Timestamp: target.Timestamp.UTC().Format(time.RFC3339),
		Properties: []JUnitProperty{
			{Name: "baseline", Value: base.MojoVersion},
			{Name: "target", Value: target.MojoVersion},
			{Name: "threshold.stable", Value: fmt.Sprintf("%g", t.Stable)},
			{Name: "threshold.warning", Value: fmt.Sprintf("%g", t.Warning)},
			{Name: "threshold.improved", Value: fmt.Sprintf("%g", t.Improved)},
		},
	}

	for _, d := range diffs {
		suite.TestCases = append(suite.TestCases, convertDiff(d))
		if d.Status == compare.Regression {
			suite.Failures++
		}
	}
	for _, k := range compare.Unmatched(base, target) {
		suite.TestCases = append(suite.TestCases, JUnitTestCase{
			Name:      k.Name,
			Classname: k.Category,
			Skipped:   &JUnitSkipped{Message: "no baseline in Mojo " + base.MojoVersion},
		})
		suite.Skipped++
	}
	suite.Tests = len(suite.TestCases)
	for _, tc := range suite.TestCases {
		suite.Time += tc.Time
	}

	return wrapSuite(suite)
}

func convertDiff(d compare.Diff) JUnitTestCase {
	tc := JUnitTestCase{
		Name:      d.Name,
		Classname: d.Category,
		Time:      nsToSeconds(d.TargetMeanNs),
		SystemOut: fmt.Sprintf("%s %s: %s", Indicator(d.Status), Label(d.Status), InterpretDiff(d)),
	}
	if d.Status == compare.Regression {
		tc.Failure = &JUnitFailure{
			Message: fmt.Sprintf("%s: %s", d.Label(), FormatDelta(d.DeltaPct)),
			Type:    "PerformanceRegression",
			Body:    InterpretDiff(d),
		}
	}
	return tc
}

func wrapSuite(suite JUnitTestSuite) *JUnitTestSuites {
	return &JUnitTestSuites{
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		Errors:     suite.Errors,
		Time:       suite.Time,
		TestSuites: []JUnitTestSuite{suite},
	}
}

func nsToSeconds(ns float64) float64 {
	return ns / 1e9
}

// MarshalJUnit renders suites as an XML document.
func MarshalJUnit(suites *JUnitTestSuites) (string, error) {
	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JUnit XML: %w", err)
	}
	return xml.Header + string(data) + "\n", nil
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(suites *JUnitTestSuites, path string) error {
	out, err := MarshalJUnit(suites)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(out), 0644)
}
