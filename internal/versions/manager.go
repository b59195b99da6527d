package versions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// ErrNoMojo is returned when no mojo binary can be found on PATH.
var ErrNoMojo = errors.New("could not detect an installed Mojo version; make sure 'mojo' is on your PATH")

const (
	venvPrefix     = "mojo-"
	installTimeout = 300 * time.Second
	detectTimeout  = 10 * time.Second
)

// Progress receives human-readable status updates during long operations.
type Progress func(message string)

// Manager installs Mojo releases into per-version virtual environments
// below <root>/venvs.
type Manager struct {
	root     string
	python   string
	index    *Index
	lookPath func(string) (string, error)
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithRoot overrides the cache root (default ~/.mojomark).
func WithRoot(dir string) ManagerOption {
	return func(m *Manager) {
		m.root = dir
	}
}

// WithPython sets the interpreter used to create virtual environments.
func WithPython(python string) ManagerOption {
	return func(m *Manager) {
		m.python = python
	}
}

// WithIndex sets the package index used for alias resolution and install
// hints.
func WithIndex(ix *Index) ManagerOption {
	return func(m *Manager) {
		m.index = ix
	}
}

// NewManager creates a Manager rooted at ~/.mojomark unless overridden.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		python:   "python3",
		index:    NewIndex(),
		lookPath: exec.LookPath,
	}
	if home, err := os.UserHomeDir(); err == nil {
		m.root = filepath.Join(home, ".mojomark")
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Root returns the cache root directory.
func (m *Manager) Root() string { return m.root }

func (m *Manager) venvsDir() string {
	return filepath.Join(m.root, "venvs")
}

func (m *Manager) venvDir(version string) string {
	return filepath.Join(m.venvsDir(), venvPrefix+version)
}

// findBinary locates the mojo executable inside a virtual environment.
func findBinary(venv string) (string, bool) {
	candidates := []string{
		filepath.Join(venv, "bin", "mojo"),
		filepath.Join(venv, "Scripts", "mojo.exe"),
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, true
		}
	}
	return "", false
}

// Installed reports whether version has a usable cached environment.
func (m *Manager) Installed(version string) bool {
	_, ok := findBinary(m.venvDir(version))
	return ok
}

// Binary returns a mojo binary for version. A cached environment wins,
// then a system mojo reporting the same version, then a fresh install.
func (m *Manager) Binary(ctx context.Context, version string, progress Progress) (string, error) {
	if bin, ok := findBinary(m.venvDir(version)); ok {
		notify(progress, fmt.Sprintf("Mojo %s already cached", version))
		return bin, nil
	}

	if sys, err := m.lookPath("mojo"); err == nil {
		if DetectVersion(ctx, sys) == version {
			notify(progress, fmt.Sprintf("Using system Mojo %s (%s)", version, sys))
			return sys, nil
		}
	}

	return m.Install(ctx, version, progress)
}

// Install creates a fresh virtual environment for version and installs
// the matching mojo package into it. On failure the environment is removed
// and the error carries a hint about published versions when the index is
// reachable.
func (m *Manager) Install(ctx context.Context, version string, progress Progress) (string, error) {
	venv := m.venvDir(version)
	if bin, ok := findBinary(venv); ok {
		notify(progress, fmt.Sprintf("Mojo %s already cached", version))
		return bin, nil
	}

	notify(progress, fmt.Sprintf("Creating isolated environment for Mojo %s...", version))
	if err := os.MkdirAll(filepath.Dir(venv), 0o755); err != nil {
		return "", fmt.Errorf("creating venv directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, installTimeout)
	defer cancel()

	if out, err := run(ctx, m.python, "-m", "venv", "--clear", venv); err != nil {
		return "", fmt.Errorf("creating venv for Mojo %s: %w: %s", version, err, out)
	}

	notify(progress, fmt.Sprintf("Installing Mojo %s...", version))
	out, err := run(ctx, pipPath(venv), "install", "mojo=="+version, "--extra-index-url", ExtraIndexURL, "--quiet")
	if err != nil {
		_ = os.RemoveAll(venv)
		return "", fmt.Errorf("failed to install Mojo %s: %s%s", version, out, m.installHint(ctx, version))
	}

	bin, ok := findBinary(venv)
	if !ok {
		return "", fmt.Errorf("mojo %s installed but binary not found in %s", version, venv)
	}

	notify(progress, fmt.Sprintf("Mojo %s ready", version))
	return bin, nil
}

func (m *Manager) installHint(ctx context.Context, version string) string {
	if m.index == nil {
		return ""
	}
	available, err := m.index.Published(ctx)
	if err != nil || len(available) == 0 {
		slog.Debug("no install hint available", "error", err)
		return ""
	}
	for _, v := range available {
		if v == version {
			return fmt.Sprintf("\nNote: version %s is published but failed to install (it may not support your platform).", version)
		}
	}
	return fmt.Sprintf("\nVersion %s was not found. Closest available: %s\nRun 'mojomark versions' to see all releases.",
		version, strings.Join(Closest(version, available, 5), ", "))
}

// ListCached returns the versions with a usable cached environment, oldest
// first.
func (m *Manager) ListCached() []string {
	entries, err := os.ReadDir(m.venvsDir())
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), venvPrefix) {
			continue
		}
		if _, ok := findBinary(filepath.Join(m.venvsDir(), e.Name())); ok {
			out = append(out, strings.TrimPrefix(e.Name(), venvPrefix))
		}
	}
	Sort(out)
	return out
}

// Clean removes every cached environment and returns the versions that
// were removed.
func (m *Manager) Clean() ([]string, error) {
	removed := m.ListCached()
	if err := os.RemoveAll(m.venvsDir()); err != nil {
		return nil, fmt.Errorf("removing %s: %w", m.venvsDir(), err)
	}
	return removed, nil
}

// ResolveAlias maps "current" to the version of the mojo on PATH and
// "latest" to the newest published release. Any other value is returned
// unchanged.
func (m *Manager) ResolveAlias(ctx context.Context, alias string) (string, error) {
	switch strings.ToLower(alias) {
	case "current":
		bin, err := m.lookPath("mojo")
		if err != nil {
			return "", ErrNoMojo
		}
		v := DetectVersion(ctx, bin)
		if v == "unknown" {
			return "", ErrNoMojo
		}
		return v, nil
	case "latest":
		if m.index == nil {
			return "", errors.New("no package index configured")
		}
		v, err := m.index.Latest(ctx)
		if err != nil {
			return "", fmt.Errorf("could not determine the latest Mojo version: %w", err)
		}
		return v, nil
	}
	return alias, nil
}

// DetectVersion runs "<binary> --version" and returns the second field of
// its output ("mojo 0.26.1.0 (abc)" → "0.26.1.0"). It returns "unknown"
// when the binary cannot be run.
func DetectVersion(ctx context.Context, binary string) string {
	if binary == "" {
		binary = "mojo"
	}
	ctx, cancel := context.WithTimeout(ctx, detectTimeout)
	defer cancel()

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, "--version")
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		slog.Debug("mojo version detection failed", "binary", binary, "error", err)
		return "unknown"
	}
	return versionFromOutput(stdout.String())
}

func versionFromOutput(out string) string {
	out = strings.TrimSpace(out)
	fields := strings.Fields(out)
	if len(fields) >= 2 {
		return fields[1]
	}
	return out
}

func pipPath(venv string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(venv, "Scripts", "pip.exe")
	}
	return filepath.Join(venv, "bin", "pip")
}

func run(ctx context.Context, name string, args ...string) (string, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	err := cmd.Run()
	return strings.TrimSpace(stderr.String()), err
}

func notify(p Progress, msg string) {
	if p != nil {
		p(msg)
	}
}
