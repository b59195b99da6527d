package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mojomark/mojomark/internal/spinner"
	"github.com/spf13/cobra"
)

// versionsPerRow is how many releases are printed per line.
const versionsPerRow = 5

func newVersionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "List published Mojo releases",
		Long: `List every Mojo release published to the package index, marking the
installed, cached and latest versions.`,
		Args: cobra.NoArgs,
		RunE: versionsCommandE,
	}
}

func versionsCommandE(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd, noOverrides)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	c := e.console

	c.Header("Mojo Versions")

	installed := detectVersion(ctx, "mojo")
	cached := newManager().ListCached()

	ix := newIndex()
	spin := spinner.Start(c.Writer(), "Fetching available versions...")
	available, listErr := ix.Published(ctx)
	latest, _ := ix.Latest(ctx)
	spin.Stop()

	c.Printf("\n")
	if installed == "unknown" {
		c.Printf("  Installed:  %s\n", c.Bad("not found"))
	} else {
		c.Printf("  Installed:  %s\n", c.Bold(installed))
	}
	if latest != "" {
		c.Printf("  Latest:     %s\n", c.Good(latest))
	}
	if len(cached) > 0 {
		c.Printf("  Cached:     %s\n", strings.Join(cached, ", "))
	}

	if listErr != nil {
		return fmt.Errorf("could not fetch version list (check your network): %w", listErr)
	}

	c.Printf("\n  %s published release(s):\n\n", c.Bold(fmt.Sprint(len(available))))
	row := make([]string, 0, versionsPerRow)
	for _, v := range available {
		var markers []string
		if v == installed {
			markers = append(markers, "installed")
		}
		if slices.Contains(cached, v) {
			markers = append(markers, "cached")
		}
		if v == latest {
			markers = append(markers, "latest")
		}
		label := v
		if len(markers) > 0 {
			label = c.Bold(v) + " " + c.Dim("("+strings.Join(markers, ", ")+")")
		}

		row = append(row, label)
		if len(row) == versionsPerRow {
			c.Printf("    %s\n", strings.Join(row, "   "))
			row = row[:0]
		}
	}
	if len(row) > 0 {
		c.Printf("    %s\n", strings.Join(row, "   "))
	}

	c.Printf("\n  %s\n", c.Dim("Tip: mojomark regression current latest"))
	c.Printf("  %s\n", c.Dim("     mojomark regression 0.7.0 0.26.1"))
	return nil
}
