// Package template parses version-neutral benchmark templates and expands
// their {{TOKEN}} markers and {{#TAG}}...{{/TAG}} conditional blocks for a
// specific compiler profile.
package template

import (
	"regexp"
	"sort"
	"strings"
)

// Tag selects which conditional blocks survive expansion.
type Tag string

const (
	TagModern Tag = "MODERN"
	TagLegacy Tag = "LEGACY"
)

// Tags lists every conditional tag the expander recognises.
var Tags = []Tag{TagModern, TagLegacy}

var (
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
	conditionals = conditionalPattern(Tags)
)

// conditionalPattern builds one alternation with a capture group per tag,
// so the leftmost block of any tag is matched first.
func conditionalPattern(tags []Tag) *regexp.Regexp {
	alts := make([]string, len(tags))
	for i, t := range tags {
		q := regexp.QuoteMeta(string(t))
		alts[i] = `\{\{#` + q + `\}\}\n?(.*?)\{\{/` + q + `\}\}\n?`
	}
	return regexp.MustCompile(`(?s)` + strings.Join(alts, "|"))
}

// ApplyTokens replaces every {{NAME}} marker whose NAME is in tokens with
// its value. Markers for names not in the map are left untouched, and
// replacement text is not rescanned.
func ApplyTokens(text string, tokens map[string]string) string {
	if len(tokens) == 0 || !strings.Contains(text, "{{") {
		return text
	}
	// Longest names first, so a marker whose name extends another one at the
	// same position wins.
	names := make([]string, 0, len(tokens))
	for name := range tokens {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	pairs := make([]string, 0, 2*len(names))
	for _, name := range names {
		pairs = append(pairs, "{{"+name+"}}", tokens[name])
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// ApplyConditionals keeps the content of blocks tagged keep, drops blocks
// of every other tag along with their delimiters, and repeats until no
// block is left. Runs of three or more newlines are then collapsed to one
// blank line. Unmatched delimiters pass through as text.
func ApplyConditionals(text string, keep Tag) string {
	for {
		next := applyConditionalsOnce(text, keep)
		if next == text {
			break
		}
		text = next
	}
	return blankRunRe.ReplaceAllString(text, "\n\n")
}

func applyConditionalsOnce(text string, keep Tag) string {
	matches := conditionals.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return text
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])
		for i, tag := range Tags {
			start, end := m[2*(i+1)], m[2*(i+1)+1]
			if start < 0 {
				continue
			}
			if tag == keep {
				b.WriteString(text[start:end])
			}
			break
		}
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

// Expand applies token substitution and then conditional filtering.
func Expand(text string, tokens map[string]string, keep Tag) string {
	return ApplyConditionals(ApplyTokens(text, tokens), keep)
}
