package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/assetpath/internal/errors"
	"github.com/vango-dev/assetpath/pkg/assets"
)

func manifestCmd(global *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "manifest [LOGICAL...]",
		Short: "Print the precompiled manifest",
		Long: `Print every logical path in the manifest with its digest path.
With arguments, print only the digest paths of the given logical paths.

Examples:
  assetpath manifest
  assetpath manifest --json
  assetpath manifest application.js`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			m, err := assets.LoadManifest(cfg.ManifestPath())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) > 0 {
				return printDigests(out, m, args, asJSON)
			}

			entries := m.All()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			logicals := make([]string, 0, len(entries))
			for logical := range entries {
				logicals = append(logicals, logical)
			}
			sort.Strings(logicals)

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, logical := range logicals {
				fmt.Fprintf(tw, "%s\t%s\n", logical, entries[logical])
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the manifest as JSON")

	return cmd
}

// printDigests prints the digest path of each logical path, failing on the
// first one the manifest does not list.
func printDigests(out io.Writer, m *assets.Manifest, logicals []string, asJSON bool) error {
	entries := make(map[string]string, len(logicals))
	for _, logical := range logicals {
		if !m.Has(logical) {
			return errors.New("E122").
				WithDetail(logical + " is not in the manifest").
				WithSuggestion("Run `assetpath precompile` after adding the asset")
		}
		entries[logical] = m.Resolve(logical)
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	for _, logical := range logicals {
		fmt.Fprintln(out, entries[logical])
	}
	return nil
}
