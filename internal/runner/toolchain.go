package runner

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/mojomark/mojomark/internal/versions"
)

const (
	DefaultBuildTimeout = 120 * time.Second
	DefaultRunTimeout   = 300 * time.Second
)

//go:generate go tool mockgen -source=toolchain.go -destination=mock_toolchain_test.go -package=runner

// Toolchain compiles and executes generated benchmark programs.
type Toolchain interface {
	// ID identifies the compiler for build caching.
	ID() string

	// Version returns the compiler version, or "unknown".
	Version(ctx context.Context) string

	// Build compiles src into the executable out.
	Build(ctx context.Context, src, out string) error

	// Exec runs a compiled benchmark and returns its standard output.
	Exec(ctx context.Context, bin string) (string, error)
}

// MojoToolchain drives the mojo command line.
type MojoToolchain struct {
	// Binary is the mojo executable. Empty means "mojo" on PATH.
	Binary       string
	BuildTimeout time.Duration
	RunTimeout   time.Duration
}

// NewMojoToolchain returns a toolchain for binary with default timeouts.
func NewMojoToolchain(binary string) *MojoToolchain {
	return &MojoToolchain{
		Binary:       binary,
		BuildTimeout: DefaultBuildTimeout,
		RunTimeout:   DefaultRunTimeout,
	}
}

func (m *MojoToolchain) binary() string {
	if m.Binary == "" {
		return "mojo"
	}
	return m.Binary
}

func (m *MojoToolchain) ID() string {
	return m.binary()
}

func (m *MojoToolchain) Version(ctx context.Context) string {
	return versions.DetectVersion(ctx, m.binary())
}

// BuildError carries the compiler diagnostics of a failed build.
type BuildError struct {
	Source string
	Stderr string
	Err    error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("failed to compile %s: %v\n%s", e.Source, e.Err, e.Stderr)
}

func (e *BuildError) Unwrap() error { return e.Err }

func (m *MojoToolchain) Build(ctx context.Context, src, out string) error {
	ctx, cancel := context.WithTimeout(ctx, orDefault(m.BuildTimeout, DefaultBuildTimeout))
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, m.binary(), "build", src, "-o", out)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &BuildError{Source: src, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return nil
}

func (m *MojoToolchain) Exec(ctx context.Context, bin string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, orDefault(m.RunTimeout, DefaultRunTimeout))
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.String(), fmt.Errorf("benchmark %s failed: %w\n%s", bin, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
