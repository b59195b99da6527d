package main

import (
	"log/slog"
	"strings"

	"github.com/mojomark/mojomark/internal/results"
	"github.com/mojomark/mojomark/internal/spinner"
	"github.com/mojomark/mojomark/internal/versions"
	"github.com/spf13/cobra"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the installed and latest Mojo versions and stored baselines",
		Args:  cobra.NoArgs,
		RunE:  statusCommandE,
	}
}

func statusCommandE(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd, noOverrides)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	c := e.console

	c.Header("Status")
	c.Printf("\n  Machine:  %s\n", c.Bold(captureMachine(ctx).Summary()))

	installed := detectVersion(ctx, "mojo")
	if installed == "unknown" {
		c.Printf("  Installed Mojo:  %s\n", c.Bad("not found"))
	} else {
		c.Printf("  Installed Mojo:  %s\n", c.Bold(installed))
	}

	spin := spinner.Start(c.Writer(), "Checking latest version...")
	latest, err := newIndex().Latest(ctx)
	spin.Stop()
	switch {
	case err != nil:
		slog.Debug("latest version lookup failed", "error", err)
		c.Printf("  Latest stable:   %s\n", c.Dim("could not check"))
	case latest == installed:
		c.Printf("  Latest stable:   %s\n", c.Good(latest+" (you're current)"))
	default:
		c.Printf("  Latest stable:   %s\n", c.Warn(latest))
	}

	if cached := newManager().ListCached(); len(cached) > 0 {
		c.Printf("\n  Cached installs:  %s\n", strings.Join(cached, ", "))
	}

	paths, err := e.store.List()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		c.Printf("\n  %s\n", c.Dim("No stored baselines. Run 'mojomark run' to create one."))
	} else {
		c.Printf("\n  Stored baselines:\n")
		for _, p := range paths {
			set, err := results.Load(p)
			if err != nil {
				slog.Warn("skipping result file", "path", p, "error", err)
				continue
			}
			c.Printf("    %s  →  %d benchmarks  (%s)\n",
				set.MojoVersion, len(set.Benchmarks), set.Timestamp.UTC().Format("2006-01-02 15:04:05"))
		}
	}

	if latest != "" && installed != "unknown" && installed != latest {
		c.Printf("\n  %s pip install mojo==%s --extra-index-url %s\n", c.Dim("Upgrade:"), latest, versions.ExtraIndexURL)
		c.Printf("  %s mojomark run\n", c.Dim("Then run:"))
	}
	return nil
}
