package template

import (
	"regexp"
	"strings"
)

// Section names a block of template body text.
type Section string

// Sections consulted by the code generator. Any other section name is
// accepted by the parser but never surfaces in Parsed.
const (
	SectionModule   Section = "MODULE"
	SectionSetup    Section = "SETUP"
	SectionWorkload Section = "WORKLOAD"
)

// DefaultKeepType is the type hint used when a KEEP directive omits one.
const DefaultKeepType = "int"

// Keep is a workload variable that must stay observable after timing.
type Keep struct {
	Name string
	Type string
}

// Parsed is a template split into its parts. It is produced fresh for
// every render and never shared.
type Parsed struct {
	Docstring string
	Imports   []string
	Sections  map[Section]string
	Keeps     []Keep

	seen map[Section]bool
}

// Section returns the raw text of s, or "" when the template has none.
func (p *Parsed) Section(s Section) string {
	return p.Sections[s]
}

// HasSection reports whether a marker for s appeared in the template,
// even if the section turned out to be empty.
func (p *Parsed) HasSection(s Section) bool {
	return p.seen[s]
}

var (
	sectionRe = regexp.MustCompile(`^#\s*==(\w+)==\s*$`)
	importRe  = regexp.MustCompile(`^#\s*IMPORT:\s*(.+)$`)
	keepRe    = regexp.MustCompile(`^#\s*KEEP:\s*(\w+)\s*(\w+)?\s*$`)
)

// lineKind classifies one template line.
type lineKind int

const (
	lineBody lineKind = iota
	lineSection
	lineImport
	lineKeep
)

// classify matches the trimmed line against the three directive forms.
// The forms are mutually exclusive; anything else is body text.
func classify(trimmed string) (lineKind, []string) {
	if m := sectionRe.FindStringSubmatch(trimmed); m != nil {
		return lineSection, m
	}
	if m := importRe.FindStringSubmatch(trimmed); m != nil {
		return lineImport, m
	}
	if m := keepRe.FindStringSubmatch(trimmed); m != nil {
		return lineKeep, m
	}
	return lineBody, nil
}

// Parse splits raw template text into docstring, imports, sections and
// keep directives. It never fails: malformed input degrades to empty
// sections.
//
// A section that appears twice accumulates: the lines of both occurrences
// are concatenated in source order.
func Parse(raw string) *Parsed {
	docstring, body := splitDocstring(raw)

	lines := map[Section][]string{}
	p := &Parsed{
		Docstring: docstring,
		Imports:   []string{},
		Keeps:     []Keep{},
		seen:      map[Section]bool{},
	}

	var current Section
	for _, line := range splitLines(body) {
		kind, m := classify(strings.TrimSpace(line))
		switch kind {
		case lineSection:
			current = Section(m[1])
			p.seen[current] = true
		case lineImport:
			p.Imports = append(p.Imports, strings.TrimSpace(m[1]))
		case lineKeep:
			typ := m[2]
			if typ == "" {
				typ = DefaultKeepType
			}
			p.Keeps = append(p.Keeps, Keep{Name: m[1], Type: typ})
		default:
			if current != "" {
				lines[current] = append(lines[current], line)
			}
		}
	}

	p.Sections = map[Section]string{
		SectionModule:   strings.Join(lines[SectionModule], "\n"),
		SectionSetup:    strings.Join(lines[SectionSetup], "\n"),
		SectionWorkload: strings.Join(lines[SectionWorkload], "\n"),
	}
	return p
}

// splitDocstring extracts a leading """...""" block when it is the first
// non-whitespace content. An unterminated block is left in the body.
func splitDocstring(text string) (docstring, body string) {
	if !strings.HasPrefix(strings.TrimLeft(text, " \t\r\n"), `"""`) {
		return "", text
	}
	first := strings.Index(text, `"""`)
	second := strings.Index(text[first+3:], `"""`)
	if second == -1 {
		return "", text
	}
	end := first + 3 + second + 3
	return strings.TrimSpace(text[:end]), text[end:]
}

// splitLines splits on line breaks and drops the empty element a trailing
// newline would otherwise produce.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
