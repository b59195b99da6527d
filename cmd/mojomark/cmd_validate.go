package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mojomark/mojomark/internal/codegen"
	"github.com/mojomark/mojomark/internal/projectconfig"
	"github.com/mojomark/mojomark/internal/reporting"
	"github.com/mojomark/mojomark/internal/results"
	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file...]",
		Short: "Check templates, result files or a configuration file",
		Long: `Check files for problems without running anything.

  *.mojo                 benchmark templates
  *.json, *.json.zst     stored result files
  *.yaml, *.yml          mojomark configuration

Without arguments every discovered benchmark template is checked. The
command exits with status 1 when any file is invalid.`,
		RunE: validateCommandE,
	}
}

func validateCommandE(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return validateDiscovered(cmd)
	}

	c := newConsole(cmd)
	invalid := 0
	for _, path := range args {
		problems, err := validateFile(path)
		if err != nil {
			return err
		}
		if !printValidation(c, path, problems) {
			invalid++
		}
	}
	return validationResult(c, len(args), invalid)
}

func validateDiscovered(cmd *cobra.Command) error {
	e, err := loadEnv(cmd, noOverrides)
	if err != nil {
		return err
	}
	benchmarks, err := discoverBenchmarks(e, "", nil)
	if err != nil {
		return err
	}

	invalid := 0
	for _, b := range benchmarks {
		raw, err := b.Source()
		if err != nil {
			return err
		}
		if !printValidation(e.console, b.Location(), codegen.ValidateSource(string(raw))) {
			invalid++
		}
	}
	return validationResult(e.console, len(benchmarks), invalid)
}

// validateFile picks a check by file name. Problems are returned as
// messages; err is only set for files that cannot be checked at all.
func validateFile(path string) ([]string, error) {
	name := strings.TrimSuffix(filepath.Base(path), results.CompressedExt)
	switch filepath.Ext(name) {
	case ".json":
		_, err := results.Load(path)
		var invalid *results.InvalidFileError
		switch {
		case errors.As(err, &invalid):
			return invalid.Problems, nil
		case err != nil:
			return []string{err.Error()}, nil
		}
		return nil, nil
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return []string{err.Error()}, nil
		}
		_, err = projectconfig.Parse(path, data)
		var invalid *projectconfig.InvalidError
		switch {
		case errors.As(err, &invalid):
			return invalid.Problems, nil
		case err != nil:
			return []string{err.Error()}, nil
		}
		return nil, nil
	}
	return codegen.Validate(path), nil
}

func printValidation(c *reporting.Console, name string, problems []string) bool {
	if len(problems) == 0 {
		c.Printf("%s %s\n", c.Good("✓"), name)
		return true
	}
	c.Printf("%s %s\n", c.Bad("✗"), name)
	for _, p := range problems {
		c.Printf("    - %s\n", p)
	}
	return false
}

func validationResult(c *reporting.Console, total, invalid int) error {
	if invalid > 0 {
		return &InvalidTemplateError{Invalid: invalid}
	}
	c.Printf("\n%s\n", c.Good(fmt.Sprintf("All %d file(s) valid.", total)))
	return nil
}
