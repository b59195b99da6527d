package codegen

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mojomark/mojomark/internal/template"
)

// TimingMarker prefixes the line a generated program prints with its
// measured nanoseconds.
const TimingMarker = "MOJOMARK_NS"

// sentinels are the unreachable-branch conditions emitted by the manual
// harness so the optimizer cannot discard kept variables.
var sentinels = map[string]string{
	"int":   "%s == -1",
	"float": "%s == -1.0",
	"str":   "len(%s) == 0",
	"list":  "%s[0] == -1",
}

// Sentinel returns the guard condition for a kept variable. Unknown type
// hints use the int form.
func Sentinel(name, typeHint string) string {
	pattern, ok := sentinels[typeHint]
	if !ok {
		pattern = sentinels[template.DefaultKeepType]
	}
	return fmt.Sprintf(pattern, name)
}

// Generate emits a complete Mojo program for parsed under profile p.
func Generate(parsed *template.Parsed, p Profile) string {
	if p.Harness == HarnessManualTimed {
		return buildManualTimed(parsed, p)
	}
	return buildClosureTimed(parsed, p)
}

func buildClosureTimed(parsed *template.Parsed, p Profile) string {
	var parts []string
	if parsed.Docstring != "" {
		parts = append(parts, parsed.Docstring, "")
	}

	parts = append(parts, "import benchmark")
	if strings.Contains(parsed.Section(template.SectionWorkload), "black_box(") {
		parts = append(parts, "from benchmark import keep, black_box")
	} else {
		parts = append(parts, "from benchmark import keep")
	}
	parts = append(parts, parsed.Imports...)
	parts = append(parts, "")
	parts = appendModule(parts, parsed, p)

	parts = append(parts, "", "fn main() raises:")
	if setup := expandSection(parsed, template.SectionSetup, p); setup != "" {
		parts = append(parts, indent(setup, 4), "")
	}

	parts = append(parts, "    fn workload() capturing:")
	parts = append(parts, indent(expandSection(parsed, template.SectionWorkload, p), 8))
	for _, k := range parsed.Keeps {
		parts = append(parts, "        keep("+k.Name+")")
	}
	parts = append(parts, "")

	parts = append(parts,
		"    var report = benchmark.run[workload](2, 1_000_000_000, 0.1, 2)",
		`    print("`+TimingMarker+`", Int(report.mean("ns")))`,
		"",
	)
	return strings.Join(parts, "\n")
}

func buildManualTimed(parsed *template.Parsed, p Profile) string {
	var parts []string
	if parsed.Docstring != "" {
		parts = append(parts, parsed.Docstring, "")
	}

	parts = append(parts, "from time import now")
	parts = append(parts, parsed.Imports...)
	parts = append(parts, "")
	parts = appendModule(parts, parsed, p)

	parts = append(parts, "", "fn main():")
	if setup := expandSection(parsed, template.SectionSetup, p); setup != "" {
		parts = append(parts, indent(setup, 4), "")
	}

	parts = append(parts, "    var _bench_start = now()", "")
	parts = append(parts, indent(expandSection(parsed, template.SectionWorkload, p), 4), "")
	parts = append(parts, "    var _bench_elapsed = now() - _bench_start", "")

	for _, k := range parsed.Keeps {
		parts = append(parts,
			"    if "+Sentinel(k.Name, k.Type)+":",
			`        print("unreachable")`,
		)
	}
	parts = append(parts, "")

	parts = append(parts, `    print("`+TimingMarker+`", _bench_elapsed)`, "")
	return strings.Join(parts, "\n")
}

// appendModule adds the expanded MODULE section surrounded by blank lines,
// or nothing when it is empty.
func appendModule(parts []string, parsed *template.Parsed, p Profile) []string {
	module := expandSection(parsed, template.SectionModule, p)
	if module == "" {
		return parts
	}
	return append(parts, "", module, "")
}

func expandSection(parsed *template.Parsed, s template.Section, p Profile) string {
	return stripBlankEdges(template.Expand(parsed.Section(s), p.Tokens, p.Conditional))
}

// stripBlankEdges drops leading and trailing whitespace-only lines and
// keeps interior blank lines.
func stripBlankEdges(text string) string {
	lines := strings.Split(text, "\n")
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

// indent prefixes every non-blank line with n spaces. Blank lines become
// empty.
func indent(text string, n int) string {
	if text == "" {
		return ""
	}
	prefix := strings.Repeat(" ", n)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
		} else {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// RenderSource parses raw template text and generates the program for the
// profile catalog resolves for version.
func RenderSource(raw, version string, catalog Catalog) string {
	p := catalog.Resolve(version)
	return Generate(template.Parse(raw), p)
}

// Render reads the template at path and renders it for version.
func Render(path, version string, catalog Catalog) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading template %s: %w", path, err)
	}
	slog.Debug("Rendering template",
		"template", filepath.Base(path), "profile", catalog.Resolve(version).Name, "version", version)
	return RenderSource(string(data), version, catalog), nil
}

// RenderToFile renders the template at path and writes the result to
// outDir under the template's file name. It returns the written path.
func RenderToFile(path, outDir, version string, catalog Catalog) (string, error) {
	source, err := Render(path, version, catalog)
	if err != nil {
		return "", err
	}
	return WriteSource(source, outDir, filepath.Base(path))
}

// WriteSource writes generated source to outDir/name, creating outDir if
// needed.
func WriteSource(source, outDir, name string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	out := filepath.Join(outDir, name)
	if err := os.WriteFile(out, []byte(source), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", out, err)
	}
	return out, nil
}
