package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// TemplateExt is the file extension of benchmark templates.
const TemplateExt = ".mojo"

// Benchmark is a template found during discovery.
type Benchmark struct {
	Name     string // file name without extension
	Category string // name of the directory containing the template
	Path     string // slash-separated path relative to the source root
	Dir      string // user directory the template came from; empty for built-ins

	fsys fs.FS
}

// Label returns "<category>/<name>".
func (b Benchmark) Label() string {
	return b.Category + "/" + b.Name
}

// Builtin reports whether the template ships with the binary.
func (b Benchmark) Builtin() bool {
	return b.Dir == ""
}

// Location is a human readable origin for the template.
func (b Benchmark) Location() string {
	if b.Builtin() {
		return "builtin:" + b.Path
	}
	return filepath.Join(b.Dir, filepath.FromSlash(b.Path))
}

// Source reads the template text.
func (b Benchmark) Source() ([]byte, error) {
	if b.fsys == nil {
		return nil, fmt.Errorf("benchmark %s has no source", b.Label())
	}
	data, err := fs.ReadFile(b.fsys, b.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", b.Location(), err)
	}
	return data, nil
}

// FromFile wraps a single template on disk. The category is taken from the
// parent directory name.
func FromFile(file string) Benchmark {
	dir := filepath.Dir(file)
	base := filepath.Base(file)
	return Benchmark{
		Name:     strings.TrimSuffix(base, filepath.Ext(base)),
		Category: filepath.Base(dir),
		Path:     base,
		Dir:      dir,
		fsys:     os.DirFS(dir),
	}
}

// Discover lists templates laid out as <category>/<name>.mojo in builtin
// and then in each of extraDirs. A template in a later source replaces one
// with the same category and name from an earlier source. Sources that do
// not exist are ignored. A non-empty category keeps only that category.
// The result is sorted by category, then name.
func Discover(builtin fs.FS, category string, extraDirs ...string) ([]Benchmark, error) {
	found := map[string]Benchmark{}

	if builtin != nil {
		if err := walk(builtin, "", category, found); err != nil {
			return nil, fmt.Errorf("walking built-in templates: %w", err)
		}
	}

	for _, dir := range extraDirs {
		if dir == "" {
			continue
		}
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", dir, err)
		}
		if info, err := os.Stat(absDir); err != nil || !info.IsDir() {
			continue
		}
		if err := walk(os.DirFS(absDir), absDir, category, found); err != nil {
			return nil, fmt.Errorf("walking directory %s: %w", absDir, err)
		}
	}

	benchmarks := make([]Benchmark, 0, len(found))
	for _, b := range found {
		benchmarks = append(benchmarks, b)
	}
	sort.Slice(benchmarks, func(i, j int) bool {
		if benchmarks[i].Category != benchmarks[j].Category {
			return benchmarks[i].Category < benchmarks[j].Category
		}
		return benchmarks[i].Name < benchmarks[j].Name
	})
	return benchmarks, nil
}

func walk(fsys fs.FS, dir, category string, found map[string]Benchmark) error {
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == "." {
				return err
			}
			return nil // skip inaccessible entries
		}

		// Skip hidden directories
		if d.IsDir() && p != "." && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		if d.IsDir() || path.Ext(p) != TemplateExt {
			return nil
		}

		parent := path.Dir(p)
		if parent == "." {
			return nil // templates must live in a category directory
		}
		cat := path.Base(parent)
		if category != "" && cat != category {
			return nil
		}

		b := Benchmark{
			Name:     strings.TrimSuffix(path.Base(p), TemplateExt),
			Category: cat,
			Path:     p,
			Dir:      dir,
			fsys:     fsys,
		}
		found[b.Label()] = b
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Filter returns the benchmarks whose label or name matches one of names.
// An empty names slice returns benchmarks unchanged.
func Filter(benchmarks []Benchmark, names []string) []Benchmark {
	if len(names) == 0 {
		return benchmarks
	}
	want := map[string]bool{}
	for _, n := range names {
		want[n] = true
	}
	var result []Benchmark
	for _, b := range benchmarks {
		if want[b.Name] || want[b.Label()] {
			result = append(result, b)
		}
	}
	return result
}

// Categories returns the distinct categories in benchmarks, sorted.
func Categories(benchmarks []Benchmark) []string {
	seen := map[string]bool{}
	var cats []string
	for _, b := range benchmarks {
		if !seen[b.Category] {
			seen[b.Category] = true
			cats = append(cats, b.Category)
		}
	}
	sort.Strings(cats)
	return cats
}
