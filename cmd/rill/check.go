package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rill/internal/diagfmt"
	"rill/internal/driver"
	"rill/internal/hir"
	"rill/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <crate.astpack>...",
	Short: "Lower astpacks to HIR and report diagnostics",
	Long:  `Lower one or more parsed crates through the middle tier: id allocation, desugaring, item collection`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	checkCmd.Flags().StringArray("source", nil, "source file backing the astpack, in file-id order (repeatable)")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	checkCmd.Flags().Bool("emit-hir", false, "dump lowered HIR after a clean check")
	checkCmd.Flags().Bool("disk-cache", false, "persist the def-path table keyed by astpack digest")
	checkCmd.Flags().Bool("in-band-lifetimes", false, "enable in-band lifetime binding (overrides the manifest)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	sources, err := cmd.Flags().GetStringArray("source")
	if err != nil {
		return fmt.Errorf("failed to get source flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	suggest, err := cmd.Flags().GetBool("suggest")
	if err != nil {
		return fmt.Errorf("failed to get suggest flag: %w", err)
	}
	emitHIR, err := cmd.Flags().GetBool("emit-hir")
	if err != nil {
		return fmt.Errorf("failed to get emit-hir flag: %w", err)
	}
	useDiskCache, err := cmd.Flags().GetBool("disk-cache")
	if err != nil {
		return fmt.Errorf("failed to get disk-cache flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	colorOn, err := resolveColorMode(cmd)
	if err != nil {
		return err
	}

	manifest, haveManifest, err := driver.LoadManifestFrom(".")
	if err != nil {
		return err
	}
	opts := driver.Options{MaxDiagnostics: maxDiagnostics}
	crateName := "crate"
	baseDir := ""
	if haveManifest {
		opts = driver.OptionsFrom(manifest)
		opts.MaxDiagnostics = maxDiagnostics
		crateName = manifest.Config.Crate.Name
		baseDir = manifest.Root
	}
	if cmd.Flags().Changed("in-band-lifetimes") {
		opts.InBandLifetimes, err = cmd.Flags().GetBool("in-band-lifetimes")
		if err != nil {
			return fmt.Errorf("failed to get in-band-lifetimes flag: %w", err)
		}
	}

	fs := source.NewFileSet()
	for _, path := range sources {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read source %s: %w", path, err)
		}
		fs.Add(path, data, 0)
	}

	var cache *driver.DiskCache
	if useDiskCache {
		if !haveManifest {
			return fmt.Errorf("--disk-cache requires a rill.toml to locate the cache directory")
		}
		cache, err = driver.OpenDiskCache(manifest.Config.Cache.Dir)
		if err != nil {
			return err
		}
	}

	packs, err := driver.DecodePacks(cmd.Context(), args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	hadErrors := false
	for _, pack := range packs {
		result, err := driver.RunPack(pack, opts)
		if err != nil {
			return err
		}
		if cache != nil {
			payload := driver.SnapshotDefPaths(crateName, result.Defs, pack.Builder.Strings)
			if err := cache.Put(pack.Digest, payload); err != nil {
				return fmt.Errorf("write def-path cache: %w", err)
			}
		}

		result.Bag.Sort()
		switch format {
		case "json":
			err = diagfmt.JSON(out, result.Bag, fs, diagfmt.JSONOpts{
				IncludePositions: true,
				BaseDir:          baseDir,
				IncludeNotes:     withNotes,
				IncludeFixes:     suggest,
			})
			if err != nil {
				return err
			}
		default:
			diagfmt.Pretty(out, result.Bag, fs, diagfmt.PrettyOpts{
				Color:     colorOn,
				BaseDir:   baseDir,
				ShowNotes: withNotes,
				ShowFixes: suggest,
			})
		}

		if result.Bag.HasErrors() {
			hadErrors = true
		} else if emitHIR {
			hir.Dump(out, result.Crate, pack.Builder.Strings)
		}
	}

	if hadErrors {
		os.Exit(1)
	}
	return nil
}
