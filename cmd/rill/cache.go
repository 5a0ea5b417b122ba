package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rill/internal/driver"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the def-path disk cache",
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove every cached def-path table",
	RunE:  runCacheClean,
}

func init() {
	cacheCmd.AddCommand(cacheCleanCmd)
}

func runCacheClean(cmd *cobra.Command, args []string) error {
	manifest, ok, err := driver.LoadManifestFrom(".")
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no rill.toml found; nothing to clean")
	}
	cache, err := driver.OpenDiskCache(manifest.Config.Cache.Dir)
	if err != nil {
		return err
	}
	if err := cache.DropAll(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "cleaned %s\n", manifest.Config.Cache.Dir)
	return nil
}
