package main

import (
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/mojomark/mojomark/internal/results"
	"github.com/spf13/cobra"
)

func newHistoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List stored benchmark results",
		Args:  cobra.NoArgs,
		RunE:  historyCommandE,
	}
}

func historyCommandE(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd, noOverrides)
	if err != nil {
		return err
	}
	c := e.console

	paths, err := e.store.List()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		c.Printf("No stored results found.\n")
		c.Printf("Run 'mojomark run' to generate results.\n")
		return nil
	}

	rows := make([][]string, 0, len(paths))
	for _, p := range paths {
		set, err := results.Load(p)
		if err != nil {
			slog.Warn("skipping result file", "path", p, "error", err)
			continue
		}
		rows = append(rows, []string{
			set.MojoVersion,
			set.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			strconv.Itoa(len(set.Benchmarks)),
			filepath.Base(p),
		})
	}
	c.Table("Stored Results", []string{"Version", "Timestamp", "Benchmarks", "File"}, rows)
	return nil
}
