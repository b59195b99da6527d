// Package hooks runs user-configured commands around benchmark runs.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
)

// Lifecycle points.
const (
	BeforeRun = "before_run"
	AfterRun  = "after_run"
)

// Hook defines a single hook command.
type Hook struct {
	Command          string `yaml:"command"`
	WorkingDirectory string `yaml:"working_directory,omitempty"`
	ExitCodes        []int  `yaml:"exit_codes,omitempty"`
	ErrorOnFail      bool   `yaml:"error_on_fail,omitempty"`
}

// Config holds all lifecycle hooks.
type Config struct {
	BeforeRun []Hook `yaml:"before_run,omitempty"`
	AfterRun  []Hook `yaml:"after_run,omitempty"`
}

// Empty reports whether no hooks are configured.
func (c Config) Empty() bool {
	return len(c.BeforeRun) == 0 && len(c.AfterRun) == 0
}

// Runner executes hook commands at lifecycle points.
type Runner struct {
	// Output receives the combined output of every hook. Nil discards it.
	Output io.Writer

	// Dir is used for hooks without a working directory, and relative
	// working directories are joined onto it.
	Dir string
}

// Execute runs hooks in order. name identifies the lifecycle point for
// logging and error context. Each command sees env on top of the current
// environment, plus MOJOMARK_HOOK=name.
func (r *Runner) Execute(ctx context.Context, name string, hooks []Hook, env map[string]string) error {
	for i, h := range hooks {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("hook %s: context canceled: %w", name, err)
		}

		if err := r.runHook(ctx, name, i, h, env); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runHook(ctx context.Context, name string, index int, h Hook, env map[string]string) error {
	if strings.TrimSpace(h.Command) == "" {
		return fmt.Errorf("hook %s[%d]: empty command", name, index)
	}

	parts := strings.Fields(h.Command)
	//nolint:gosec // hook commands come from the project's own config file
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	cmd.Dir = r.workDir(h.WorkingDirectory)
	cmd.Env = append(os.Environ(), "MOJOMARK_HOOK="+name)
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	slog.Debug("Running hook", "point", name, "index", index, "command", h.Command, "dir", cmd.Dir)
	output, err := cmd.CombinedOutput()
	if r.Output != nil && len(output) > 0 {
		for _, line := range strings.Split(strings.TrimRight(string(output), "\n"), "\n") {
			fmt.Fprintf(r.Output, "  [hook:%s] %s\n", name, line)
		}
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// Non-exit error (e.g. command not found)
			if h.ErrorOnFail {
				return fmt.Errorf("hook %s[%d]: %w", name, index, err)
			}
			slog.Warn("Hook failed, continuing", "point", name, "index", index, "error", err)
			return nil
		}
		exitCode = exitErr.ExitCode()
	}

	if !isAcceptableExit(exitCode, h.ExitCodes) {
		if h.ErrorOnFail {
			return fmt.Errorf("hook %s[%d]: command exited with code %d", name, index, exitCode)
		}
		slog.Warn("Hook exited with unexpected code, continuing", "point", name, "index", index, "code", exitCode)
	}
	return nil
}

func (r *Runner) workDir(dir string) string {
	switch {
	case dir == "":
		return r.Dir
	case r.Dir == "" || filepath.IsAbs(dir):
		return dir
	}
	return filepath.Join(r.Dir, dir)
}

// isAcceptableExit checks whether exitCode is in the allowed list.
// An empty allowedCodes list defaults to allowing only exit code 0.
func isAcceptableExit(exitCode int, allowedCodes []int) bool {
	if len(allowedCodes) == 0 {
		return exitCode == 0
	}
	return slices.Contains(allowedCodes, exitCode)
}
