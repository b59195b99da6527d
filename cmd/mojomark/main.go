package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess    = 0 // Nothing regressed
	ExitRegression = 1 // Comparison found a regression or a template is invalid
	ExitError      = 2 // Configuration or runtime error
)

// RegressionError indicates that benchmarks ran and compared successfully,
// but at least one benchmark is slower than the regression threshold.
type RegressionError struct {
	Count int
	Total int
}

func (e *RegressionError) Error() string {
	return fmt.Sprintf("%d of %d benchmark(s) regressed", e.Count, e.Total)
}

// InvalidTemplateError indicates that one or more templates failed
// validation.
type InvalidTemplateError struct {
	Invalid int
}

func (e *InvalidTemplateError) Error() string {
	return fmt.Sprintf("%d file(s) failed validation", e.Invalid)
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var regressionErr *RegressionError
	var invalidErr *InvalidTemplateError
	if errors.As(err, &regressionErr) || errors.As(err, &invalidErr) {
		return ExitRegression
	}
	// All other errors are configuration/runtime errors
	return ExitError
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}
