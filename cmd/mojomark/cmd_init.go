package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mojomark/mojomark/internal/projectconfig"
	"github.com/spf13/cobra"
)

var initForce bool

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a .mojomark.yaml with the default settings",
		Long: `Create a commented .mojomark.yaml holding every setting at its default
value, and the benchmark directory it points at.`,
		Args: cobra.MaximumNArgs(1),
		RunE: initCommandE,
	}

	cmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration file")

	return cmd
}

func initCommandE(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	c := newConsole(cmd)

	path := filepath.Join(dir, projectconfig.FileName)
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	if err := os.WriteFile(path, []byte(projectconfig.DefaultFileContents()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	c.Printf("%s Created %s\n", c.Good("✓"), path)

	benchDir := filepath.Join(dir, projectconfig.DefaultBenchmarksDir)
	if err := os.MkdirAll(benchDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", benchDir, err)
	}
	c.Printf("%s Created %s\n", c.Good("✓"), benchDir)
	c.Printf("\n  Add a benchmark with: mojomark add <name>\n")
	return nil
}
