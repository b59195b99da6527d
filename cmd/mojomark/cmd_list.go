package main

import (
	"github.com/spf13/cobra"
)

var listCategory string

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available benchmarks",
		Long: `List the built-in benchmarks and any templates in the user benchmark
directory. A user template with the same category and name replaces the
built-in one.`,
		Args: cobra.NoArgs,
		RunE: listCommandE,
	}

	cmd.Flags().StringVarP(&listCategory, "category", "c", "", "Only list benchmarks in this category")

	return cmd
}

func listCommandE(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd, noOverrides)
	if err != nil {
		return err
	}

	benchmarks, err := discoverBenchmarks(e, listCategory, nil)
	if err != nil {
		return err
	}
	if len(benchmarks) == 0 {
		e.console.Printf("No benchmarks found.\n")
		return nil
	}

	rows := make([][]string, 0, len(benchmarks))
	for _, b := range benchmarks {
		rows = append(rows, []string{b.Category, b.Name, b.Location()})
	}
	e.console.Table("Available Benchmarks", []string{"Category", "Benchmark", "File"}, rows)
	return nil
}
