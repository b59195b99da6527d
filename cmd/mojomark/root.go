package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	debugLogging  bool
	verboseOutput bool
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mojomark",
		Short: "mojomark - Mojo performance regression detector",
		Long: `mojomark benchmarks the Mojo compiler across releases.

It renders version-portable benchmark templates for a given Mojo version,
builds and times them, stores the results, and compares two versions to
flag performance regressions.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&verboseOutput, "verbose", false, "Show extra detail in tables and progress output")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Benchmarking
	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newRegressionCommand())
	cmd.AddCommand(newListCommand())

	// Stored results
	cmd.AddCommand(newCompareCommand())
	cmd.AddCommand(newHistoryCommand())
	cmd.AddCommand(newReportCommand())
	cmd.AddCommand(newTrendCommand())
	cmd.AddCommand(newPublishCommand())

	// Toolchains
	cmd.AddCommand(newStatusCommand())
	cmd.AddCommand(newVersionsCommand())
	cmd.AddCommand(newCleanCommand())

	// Templates
	cmd.AddCommand(newRenderCommand())
	cmd.AddCommand(newAddCommand())
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newInitCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
