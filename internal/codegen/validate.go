package codegen

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mojomark/mojomark/internal/template"
)

// Validate checks that path holds a usable benchmark template and returns
// one message per problem. An empty result means the template is valid.
// Content checks are skipped when the file cannot be read.
func Validate(path string) []string {
	var problems []string

	if filepath.Ext(path) != ".mojo" {
		problems = append(problems, "file must have a .mojo extension, got "+quoteExt(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return append([]string{"file not found: " + path}, problems...)
		}
		return append(problems, "cannot read file: "+err.Error())
	}

	return append(problems, ValidateSource(string(data))...)
}

// ValidateSource runs the content checks of Validate on raw template text.
func ValidateSource(raw string) []string {
	var problems []string
	if strings.TrimSpace(raw) == "" {
		problems = append(problems, "file is empty")
	}

	parsed := template.Parse(raw)
	if !parsed.HasSection(template.SectionWorkload) {
		problems = append(problems, "missing # ==WORKLOAD== section")
	}
	if strings.TrimSpace(parsed.Section(template.SectionWorkload)) == "" {
		problems = append(problems, "WORKLOAD section is empty")
	}
	if len(parsed.Keeps) == 0 {
		problems = append(problems, "no # KEEP: directive; the optimizer may eliminate the workload")
	}
	return problems
}

func quoteExt(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return "no extension"
	}
	return `"` + ext + `"`
}
