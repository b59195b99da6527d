package discovery

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

// writeTemplate creates a template file under root/category/name.mojo.
func writeTemplate(t *testing.T, root, category, name, content string) string {
	t.Helper()
	dir := filepath.Join(root, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name+TemplateExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func labels(benchmarks []Benchmark) []string {
	var out []string
	for _, b := range benchmarks {
		out = append(out, b.Label())
	}
	return out
}

func TestDiscoverBuiltin(t *testing.T) {
	builtin := fstest.MapFS{
		"compute/fib.mojo":  {Data: []byte("fn main(): pass")},
		"compute/sort.mojo": {Data: []byte("fn main(): pass")},
		"simd/dot.mojo":     {Data: []byte("fn main(): pass")},
		"simd/README.md":    {Data: []byte("docs")},
		"toplevel.mojo":     {Data: []byte("ignored")},
		".hidden/skip.mojo": {Data: []byte("ignored")},
		"compute/notes.txt": {Data: []byte("ignored")},
	}

	benchmarks, err := Discover(builtin, "")
	if err != nil {
		t.Fatal(err)
	}

	got := labels(benchmarks)
	want := []string{"compute/fib", "compute/sort", "simd/dot"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
	if !benchmarks[0].Builtin() {
		t.Error("built-in template should report Builtin()")
	}
	if benchmarks[0].Location() != "builtin:compute/fib.mojo" {
		t.Errorf("unexpected location %s", benchmarks[0].Location())
	}
}

func TestDiscoverCategoryFilter(t *testing.T) {
	root := t.TempDir()
	writeTemplate(t, root, "compute", "fib", "fn main(): pass")
	writeTemplate(t, root, "simd", "dot", "fn main(): pass")

	benchmarks, err := Discover(nil, "simd", root)
	if err != nil {
		t.Fatal(err)
	}
	if len(benchmarks) != 1 || benchmarks[0].Name != "dot" {
		t.Fatalf("expected only simd/dot, got %v", labels(benchmarks))
	}
}

func TestDiscoverMergesBuiltinAndUser(t *testing.T) {
	builtin := fstest.MapFS{"compute/fib.mojo": {Data: []byte("fn main(): pass")}}
	user := t.TempDir()
	writeTemplate(t, user, "custom", "my_test", "fn main(): pass")

	benchmarks, err := Discover(builtin, "", user)
	if err != nil {
		t.Fatal(err)
	}
	got := labels(benchmarks)
	if len(got) != 2 || got[0] != "compute/fib" || got[1] != "custom/my_test" {
		t.Fatalf("unexpected benchmarks %v", got)
	}
	if benchmarks[1].Builtin() {
		t.Error("user template should not report Builtin()")
	}
}

func TestDiscoverUserOverridesBuiltin(t *testing.T) {
	builtin := fstest.MapFS{"compute/fib.mojo": {Data: []byte("builtin version")}}
	user := t.TempDir()
	path := writeTemplate(t, user, "compute", "fib", "user version")

	benchmarks, err := Discover(builtin, "", user)
	if err != nil {
		t.Fatal(err)
	}
	if len(benchmarks) != 1 {
		t.Fatalf("expected 1 benchmark, got %d", len(benchmarks))
	}

	src, err := benchmarks[0].Source()
	if err != nil {
		t.Fatal(err)
	}
	if string(src) != "user version" {
		t.Errorf("expected user template to win, got %q", src)
	}
	if benchmarks[0].Location() != path {
		t.Errorf("expected location %s, got %s", path, benchmarks[0].Location())
	}
}

func TestDiscoverLaterUserDirWins(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	writeTemplate(t, first, "compute", "fib", "first")
	writeTemplate(t, second, "compute", "fib", "second")

	benchmarks, err := Discover(nil, "", first, second)
	if err != nil {
		t.Fatal(err)
	}
	src, err := benchmarks[0].Source()
	if err != nil {
		t.Fatal(err)
	}
	if string(src) != "second" {
		t.Errorf("expected second directory to win, got %q", src)
	}
}

func TestDiscoverMissingDirectories(t *testing.T) {
	builtin := fstest.MapFS{"compute/fib.mojo": {Data: []byte("fn main(): pass")}}

	benchmarks, err := Discover(builtin, "", filepath.Join(t.TempDir(), "nonexistent"), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(benchmarks) != 1 {
		t.Errorf("expected 1 benchmark, got %d", len(benchmarks))
	}
}

func TestDiscoverEmpty(t *testing.T) {
	benchmarks, err := Discover(nil, "", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(benchmarks) != 0 {
		t.Errorf("expected no benchmarks, got %v", labels(benchmarks))
	}
}

func TestFromFile(t *testing.T) {
	root := t.TempDir()
	path := writeTemplate(t, root, "strings", "concat", "body")

	b := FromFile(path)
	if b.Name != "concat" || b.Category != "strings" {
		t.Errorf("unexpected benchmark %+v", b)
	}
	src, err := b.Source()
	if err != nil {
		t.Fatal(err)
	}
	if string(src) != "body" {
		t.Errorf("unexpected source %q", src)
	}
}

func TestSourceMissing(t *testing.T) {
	var b Benchmark
	if _, err := b.Source(); err == nil {
		t.Error("expected error for benchmark without a source")
	}
}

func TestFilterAndCategories(t *testing.T) {
	all := []Benchmark{
		{Name: "fib", Category: "compute"},
		{Name: "sort", Category: "compute"},
		{Name: "dot", Category: "simd"},
	}

	if got := Filter(all, nil); len(got) != 3 {
		t.Errorf("empty filter should keep everything, got %d", len(got))
	}
	got := Filter(all, []string{"fib", "simd/dot"})
	if len(got) != 2 || got[0].Name != "fib" || got[1].Name != "dot" {
		t.Errorf("unexpected filter result %v", labels(got))
	}

	cats := Categories(all)
	if len(cats) != 2 || cats[0] != "compute" || cats[1] != "simd" {
		t.Errorf("unexpected categories %v", cats)
	}
}
