package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mojomark/mojomark/internal/cache"
	"github.com/spf13/cobra"
)

var cleanYes bool

func newCleanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove cached Mojo installations",
		Long: `Remove every Mojo installation cached under the cache root
(~/.mojomark, or $MOJOMARK_HOME) together with the compiled benchmark cache.`,
		Args: cobra.NoArgs,
		RunE: cleanCommandE,
	}

	cmd.Flags().BoolVarP(&cleanYes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func cleanCommandE(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd, noOverrides)
	if err != nil {
		return err
	}
	c := e.console

	if !cleanYes && !promptConfirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Remove all cached Mojo installations?") {
		return errors.New("aborted; pass --yes to clean without a prompt")
	}

	manager := newManager()
	if manager.Root() == "" {
		return errors.New("cannot determine the cache root; set " + homeEnv)
	}
	removed, err := manager.Clean()
	if err != nil {
		return err
	}
	if err := cache.New(filepath.Join(manager.Root(), buildCacheDir)).Clear(); err != nil {
		return err
	}

	if len(removed) == 0 {
		c.Printf("%s\n", c.Dim("No cached installations to remove."))
		return nil
	}
	c.Printf("%s\n", c.Good(fmt.Sprintf("Removed %d cached version(s):", len(removed))))
	for _, v := range removed {
		c.Printf("  Mojo %s\n", v)
	}
	return nil
}
