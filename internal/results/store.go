package results

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mojomark/mojomark/internal/validation"
)

// DefaultDir is where result files are written unless configured otherwise.
const DefaultDir = "results"

// FileTimeLayout is the timestamp prefix of every result file name.
const FileTimeLayout = "2006-01-02_150405"

// ErrNoResults is returned when no stored result matches a lookup.
var ErrNoResults = errors.New("no results found")

// InvalidFileError reports a result file that failed schema validation.
type InvalidFileError struct {
	Path     string
	Problems []string
}

func (e *InvalidFileError) Error() string {
	return fmt.Sprintf("invalid result file %s: %s", e.Path, strings.Join(e.Problems, "; "))
}

// Store reads and writes result sets in a single directory.
type Store struct {
	dir      string
	compress bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithCompression makes Save write zstd-compressed files.
func WithCompression(enabled bool) StoreOption {
	return func(s *Store) {
		s.compress = enabled
	}
}

// NewStore returns a store rooted at dir. An empty dir means DefaultDir.
func NewStore(dir string, opts ...StoreOption) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	s := &Store{dir: dir}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// FileName returns the name Save would use for set.
func (s *Store) FileName(set *ResultSet) string {
	name := fmt.Sprintf("%s_mojo-%s.json", set.Timestamp.UTC().Format(FileTimeLayout), set.MojoVersion)
	if s.compress {
		name += CompressedExt
	}
	return name
}

// Save writes set to the store and returns the file path.
func (s *Store) Save(set *ResultSet) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating results directory: %w", err)
	}

	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling results: %w", err)
	}
	data = append(data, '\n')
	if s.compress {
		data = compress(data)
	}

	path := filepath.Join(s.dir, s.FileName(set))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing results: %w", err)
	}
	slog.Debug("saved results", "path", path, "benchmarks", len(set.Benchmarks))
	return path, nil
}

// Load reads a result file, decompressing it when the name ends in .zst.
// The document is checked against the result schema before decoding.
func Load(path string) (*ResultSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}
	if IsCompressed(path) {
		data, err = decompress(data)
		if err != nil {
			return nil, fmt.Errorf("decompressing %s: %w", path, err)
		}
	}
	return Decode(path, data)
}

// Decode validates and decodes an uncompressed result document. name is
// only used in error messages.
func Decode(name string, data []byte) (*ResultSet, error) {
	if problems := validation.ValidateResultBytes(data); len(problems) > 0 {
		return nil, &InvalidFileError{Path: name, Problems: problems}
	}

	var set ResultSet
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&set); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	if set.Benchmarks == nil {
		set.Benchmarks = []Sample{}
	}
	return &set, nil
}

// List returns every result file in the store, newest first. A missing
// directory yields an empty list.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading results directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !isResultFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	slices.Reverse(names)

	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(s.dir, n)
	}
	return paths, nil
}

// FindForVersion returns the newest result file recorded for version.
func (s *Store) FindForVersion(version string) (string, error) {
	paths, err := s.List()
	if err != nil {
		return "", err
	}
	suffix := "_mojo-" + version + ".json"
	for _, p := range paths {
		name := strings.TrimSuffix(filepath.Base(p), CompressedExt)
		if strings.HasSuffix(name, suffix) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w for Mojo %s", ErrNoResults, version)
}

// LoadVersion loads the newest result set recorded for version.
func (s *Store) LoadVersion(version string) (*ResultSet, error) {
	path, err := s.FindForVersion(version)
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// LoadAll loads every result file, newest first. Files that cannot be
// read or fail validation are skipped with a warning.
func (s *Store) LoadAll() ([]*ResultSet, error) {
	paths, err := s.List()
	if err != nil {
		return nil, err
	}
	sets := make([]*ResultSet, 0, len(paths))
	for _, p := range paths {
		set, err := Load(p)
		if err != nil {
			slog.Warn("skipping result file", "path", p, "error", err)
			continue
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// Versions returns the distinct versions with stored results, in the
// order they first appear in List.
func (s *Store) Versions() ([]string, error) {
	paths, err := s.List()
	if err != nil {
		return nil, err
	}
	var out []string
	seen := map[string]bool{}
	for _, p := range paths {
		v, ok := VersionFromFileName(filepath.Base(p))
		if !ok || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out, nil
}

// VersionFromFileName extracts the version from a result file name.
func VersionFromFileName(name string) (string, bool) {
	name = strings.TrimSuffix(name, CompressedExt)
	if !strings.HasSuffix(name, ".json") {
		return "", false
	}
	name = strings.TrimSuffix(name, ".json")
	_, v, ok := strings.Cut(name, "_mojo-")
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func isResultFile(name string) bool {
	return strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".json"+CompressedExt)
}
