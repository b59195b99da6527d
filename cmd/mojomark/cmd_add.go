package main

import (
	"errors"
	"fmt"

	"github.com/mojomark/mojomark/internal/scaffold"
	"github.com/spf13/cobra"
)

var (
	addCategory string
	addDir      string
)

func newAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a starter benchmark template",
		Long: `Create a new benchmark template in the user benchmark directory
(benchmarks.user_dir in .mojomark.yaml, default benchmarks/).

The template is written to <dir>/<category>/<name>.mojo and picked up by
"mojomark run" automatically.`,
		Args: cobra.ExactArgs(1),
		RunE: addCommandE,
	}

	cmd.Flags().StringVarP(&addCategory, "category", "c", scaffold.DefaultCategory, "Category directory for the template")
	cmd.Flags().StringVar(&addDir, "dir", "", "Benchmark directory (default: benchmarks.user_dir)")

	return cmd
}

func addCommandE(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd, noOverrides)
	if err != nil {
		return err
	}
	dir := addDir
	if dir == "" {
		dir = e.userBenchmarkDir()
	}

	category := addCategory
	if category == "" {
		category = scaffold.DefaultCategory
	}

	path, err := scaffold.Create(dir, category, args[0])
	if err != nil {
		if errors.Is(err, scaffold.ErrExists) {
			return fmt.Errorf("%w (edit it or choose another name)", err)
		}
		return err
	}

	c := e.console
	c.Printf("%s Created %s\n", c.Good("✓"), path)
	c.Printf("\n  Next steps:\n")
	c.Printf("    1. Fill in the MODULE, SETUP and WORKLOAD sections\n")
	c.Printf("    2. mojomark validate %s\n", path)
	c.Printf("    3. mojomark run --benchmark %s/%s\n", category, args[0])
	return nil
}
