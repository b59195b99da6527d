// Package scaffold creates starter benchmark templates for mojomark add.
package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultCategory is used when mojomark add is given no category.
const DefaultCategory = "custom"

// ErrExists is returned by Create when the target file is already present.
var ErrExists = errors.New("benchmark already exists")

// ValidateName rejects names with path-traversal characters or empty names.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("benchmark name must not be empty")
	}
	cleaned := filepath.Clean(name)
	if cleaned == "." || cleaned == ".." || strings.Contains(name, "..") ||
		strings.ContainsAny(cleaned, `/\`) {
		return fmt.Errorf("benchmark name %q contains invalid path characters", name)
	}
	return nil
}

// TitleCase converts a snake_case or kebab-case name to Title Case.
func TitleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Template returns a starter template for category/name that passes
// validation as written.
func Template(name, category string) string {
	return fmt.Sprintf(`"""%s: describe what this benchmark measures."""

# %s/%s benchmark template.
#
#   MODULE    top-level helpers (functions, structs)
#   SETUP     untimed preparation inside main()
#   WORKLOAD  the code being timed
#
# Tokens such as {{LIST}}, {{APPEND}} and {{CONST}} adapt to the target
# Mojo version. Wrap version-specific code in {{#MODERN}}...{{/MODERN}}
# or {{#LEGACY}}...{{/LEGACY}}. Every result the workload computes should
# be listed in a KEEP directive so the compiler cannot discard it.

# ==MODULE==

# ==SETUP==
var n = 1_000_000

# ==WORKLOAD==
var total = 0
for i in range(n):
    total += i

# KEEP: total int
`, TitleCase(name), category, name)
}

// Create writes a starter template to dir/category/name.mojo and returns
// its path. It refuses to overwrite an existing file.
func Create(dir, category, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	if category == "" {
		category = DefaultCategory
	}
	if err := ValidateName(category); err != nil {
		return "", fmt.Errorf("category: %w", err)
	}

	path := filepath.Join(dir, category, name+".mojo")
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("%w: %s", ErrExists, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(Template(name, category)), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
