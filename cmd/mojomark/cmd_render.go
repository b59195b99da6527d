package main

import (
	"fmt"
	"os"

	"github.com/mojomark/mojomark/internal/codegen"
	"github.com/mojomark/mojomark/internal/discovery"
	"github.com/spf13/cobra"
)

var (
	renderVersion string
	renderOutput  string
)

func newRenderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Print the program generated from a template for a Mojo version",
		Long: `Render a benchmark template into the Mojo program that would be compiled
for a given version. The template is a file path or the name of a known
benchmark ("fibonacci" or "compute/fibonacci").

Without --version the installed Mojo version is used.`,
		Args: cobra.ExactArgs(1),
		RunE: renderCommandE,
	}

	cmd.Flags().StringVarP(&renderVersion, "version", "v", "", "Mojo version to render for (default: installed version)")
	cmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Write the program to this directory instead of standard output")

	return cmd
}

func renderCommandE(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd, noOverrides)
	if err != nil {
		return err
	}

	version := renderVersion
	if version == "" {
		version = detectVersion(cmd.Context(), "mojo")
		if version == "unknown" {
			return fmt.Errorf("no installed Mojo found; pass --version")
		}
	}

	b, err := findTemplate(e, args[0])
	if err != nil {
		return err
	}
	raw, err := b.Source()
	if err != nil {
		return err
	}

	catalog := codegen.DefaultCatalog()
	source := codegen.RenderSource(string(raw), version, catalog)
	e.console.Verbosef("Rendering %s for Mojo %s (profile %s)\n", b.Label(), version, catalog.Resolve(version).Name)

	if renderOutput == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), source)
		return err
	}
	path, err := codegen.WriteSource(source, renderOutput, b.Name+discovery.TemplateExt)
	if err != nil {
		return err
	}
	e.console.Printf("Rendered → %s\n", path)
	return nil
}

// findTemplate resolves a file path or a benchmark name to a template.
func findTemplate(e *env, ref string) (discovery.Benchmark, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return discovery.FromFile(ref), nil
	}
	benchmarks, err := discoverBenchmarks(e, "", []string{ref})
	if err != nil {
		return discovery.Benchmark{}, err
	}
	switch len(benchmarks) {
	case 0:
		return discovery.Benchmark{}, fmt.Errorf("no template file or benchmark named %q", ref)
	case 1:
		return benchmarks[0], nil
	}
	return discovery.Benchmark{}, fmt.Errorf("%q matches %d benchmarks; use category/name", ref, len(benchmarks))
}
