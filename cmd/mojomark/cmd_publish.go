package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mojomark/mojomark/internal/projectconfig"
	"github.com/mojomark/mojomark/internal/publish"
	"github.com/mojomark/mojomark/internal/results"
	"github.com/mojomark/mojomark/internal/spinner"
	"github.com/spf13/cobra"
)

var (
	publishContainerURL string
	publishPrefix       string
	publishConcurrency  int
)

// newUploader is replaced in tests.
var newUploader = func(containerURL string) (publish.Uploader, error) {
	return publish.NewAzureUploader(containerURL)
}

func newPublishCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish [file...]",
		Short: "Upload results and reports to Azure Blob Storage",
		Long: `Upload result files and reports to an Azure Blob Storage container so CI
runs and dashboards can share them.

Without arguments every stored result and every generated report is
uploaded. Result files go below <prefix>/results/ and everything else below
<prefix>/reports/. A container URL carrying a SAS token is used as is;
otherwise credentials come from the environment (Azure CLI login, managed
identity or AZURE_* variables).`,
		RunE: publishCommandE,
	}

	cmd.Flags().StringVar(&publishContainerURL, "container-url", "", "Blob container URL (default: publish.container_url)")
	cmd.Flags().StringVar(&publishPrefix, "prefix", projectconfig.DefaultPublishPrefix, "Blob name prefix")
	cmd.Flags().IntVar(&publishConcurrency, "concurrency", publish.DefaultConcurrency, "Parallel uploads")

	return cmd
}

func publishCommandE(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd, noOverrides)
	if err != nil {
		return err
	}
	containerURL := e.cfg.Publish.ContainerURL
	if cmd.Flags().Changed("container-url") {
		containerURL = publishContainerURL
	}
	prefix := e.cfg.Publish.Prefix
	if cmd.Flags().Changed("prefix") {
		prefix = publishPrefix
	}

	var files []publish.File
	if len(args) > 0 {
		for _, a := range args {
			files = append(files, publish.File{Path: a, Folder: folderFor(a)})
		}
	} else {
		if files, err = publishableFiles(e); err != nil {
			return err
		}
	}

	c := e.console
	if len(files) == 0 {
		c.Printf("Nothing to publish.\n")
		return nil
	}

	up, err := newUploader(containerURL)
	if err != nil {
		return err
	}
	ctx, stop := interruptible(cmd)
	defer stop()

	spin := spinner.Start(c.Writer(), fmt.Sprintf("Uploading %d file(s)...", len(files)))
	names, err := publish.New(up, prefix, publish.WithConcurrency(publishConcurrency)).Publish(ctx, files)
	spin.Stop()
	if err != nil {
		return err
	}

	c.Printf("Published %d file(s):\n", len(names))
	for _, n := range names {
		c.Printf("  %s %s\n", c.Good("✓"), n)
	}
	return nil
}

// publishableFiles lists stored results and generated reports.
func publishableFiles(e *env) ([]publish.File, error) {
	var files []publish.File

	paths, err := e.store.List()
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		files = append(files, publish.File{Path: p, Folder: "results"})
	}

	entries, err := os.ReadDir(e.reportDir())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading report directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, publish.File{Path: filepath.Join(e.reportDir(), entry.Name()), Folder: "reports"})
	}
	return files, nil
}

func folderFor(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), results.CompressedExt)
	if filepath.Ext(name) == ".json" {
		return "results"
	}
	return "reports"
}
