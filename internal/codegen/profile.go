// Package codegen renders benchmark templates into version-specific Mojo
// source wrapped in a timing harness.
package codegen

import (
	"github.com/mojomark/mojomark/internal/template"
	"github.com/mojomark/mojomark/internal/versions"
)

// Harness selects how the generated program times its workload.
type Harness int

const (
	// HarnessClosureTimed wraps the workload in a closure passed to the
	// compiler's benchmark module.
	HarnessClosureTimed Harness = iota
	// HarnessManualTimed brackets the workload with two clock readings.
	HarnessManualTimed
)

func (h Harness) String() string {
	switch h {
	case HarnessClosureTimed:
		return "closure-timed"
	case HarnessManualTimed:
		return "manual-timed"
	default:
		return "unknown"
	}
}

// Token names substituted into templates.
const (
	TokenList            = "LIST"
	TokenAppend          = "APPEND"
	TokenConst           = "CONST"
	TokenMut             = "MUT"
	TokenStructDecorator = "STRUCT_DECORATOR"
	TokenStructTraits    = "STRUCT_TRAITS"
	TokenMoveSuffix      = "MOVE_SUFFIX"
)

// Profile bundles everything that varies between compiler releases.
type Profile struct {
	Name        string
	MinVersion  versions.Version
	Tokens      map[string]string
	Harness     Harness
	Conditional template.Tag
}

// Catalog is an ordered list of profiles, most specific first.
type Catalog []Profile

// DefaultCatalog returns a fresh copy of the built-in profiles. The last
// entry has a zero minimum version so Resolve is total.
func DefaultCatalog() Catalog {
	return Catalog{
		{
			Name:       "modern",
			MinVersion: versions.Version{0, 26},
			Tokens: map[string]string{
				TokenList:            "List",
				TokenAppend:          "append",
				TokenConst:           "comptime",
				TokenMut:             "mut",
				TokenStructDecorator: "@fieldwise_init",
				TokenStructTraits:    "Copyable, Movable",
				TokenMoveSuffix:      "^",
			},
			Harness:     HarnessClosureTimed,
			Conditional: template.TagModern,
		},
		{
			Name:       "transitional",
			MinVersion: versions.Version{0, 25},
			Tokens: map[string]string{
				TokenList:            "List",
				TokenAppend:          "append",
				TokenConst:           "alias",
				TokenMut:             "inout",
				TokenStructDecorator: "",
				TokenStructTraits:    "CollectionElement",
				TokenMoveSuffix:      "",
			},
			Harness:     HarnessManualTimed,
			Conditional: template.TagLegacy,
		},
		{
			Name:       "legacy",
			MinVersion: versions.Version{0, 0},
			Tokens: map[string]string{
				TokenList:            "DynamicVector",
				TokenAppend:          "push_back",
				TokenConst:           "alias",
				TokenMut:             "inout",
				TokenStructDecorator: "",
				TokenStructTraits:    "CollectionElement",
				TokenMoveSuffix:      "",
			},
			Harness:     HarnessManualTimed,
			Conditional: template.TagLegacy,
		},
	}
}

// Resolve returns the first profile whose minimum version is at or below
// version. When no entry qualifies the last entry is returned; an empty
// catalog yields the zero Profile.
func (c Catalog) Resolve(version string) Profile {
	if len(c) == 0 {
		return Profile{}
	}
	v := versions.Parse(version)
	for _, p := range c {
		if versions.Compare(v, p.MinVersion) >= 0 {
			return p
		}
	}
	return c[len(c)-1]
}

// Names returns profile names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, len(c))
	for i, p := range c {
		names[i] = p.Name
	}
	return names
}
