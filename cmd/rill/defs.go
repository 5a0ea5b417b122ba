package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rill/internal/def"
	"rill/internal/driver"
)

var defsCmd = &cobra.Command{
	Use:   "defs [flags] <crate.astpack>...",
	Short: "Print the definition table of lowered crates",
	Long:  `Lower each crate and print its stable definition paths, one per line, in creation order`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDefs,
}

func init() {
	defsCmd.Flags().Bool("keys", false, "show raw def keys (parent, kind, disambiguator) next to paths")
}

func runDefs(cmd *cobra.Command, args []string) error {
	showKeys, err := cmd.Flags().GetBool("keys")
	if err != nil {
		return fmt.Errorf("failed to get keys flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	packs, err := driver.DecodePacks(cmd.Context(), args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, pack := range packs {
		result, err := driver.RunPack(pack, driver.Options{MaxDiagnostics: maxDiagnostics})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %d defs\n", pack.Path,
			result.Defs.Len(def.SpaceLow)+result.Defs.Len(def.SpaceHigh))
		result.Defs.Walk(func(d *def.Def) {
			if showKeys {
				fmt.Fprintf(out, "  %v  %s  (parent=%v kind=%d disambiguator=%d)\n",
					d.Index, result.Defs.DefPath(d.Index),
					d.Key.Parent, d.Key.Data.Kind, d.Key.Data.Disambiguator)
				return
			}
			fmt.Fprintf(out, "  %v  %s\n", d.Index, result.Defs.DefPath(d.Index))
		})
	}
	return nil
}
