package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/assetpath/internal/precompile"
)

func precompileCmd(global *globalFlags) *cobra.Command {
	var (
		output string
		gzip   bool
		clean  bool
	)

	cmd := &cobra.Command{
		Use:   "precompile",
		Short: "Write digested assets and the manifest",
		Long: `Precompile every catalog asset for production.

This command:
  • Resolves every logical path in the catalog
  • Writes each body under its digest path in <output>/<prefix>/
  • Optionally writes gzip variants of text assets
  • Writes manifest.json next to the assets

Examples:
  assetpath precompile
  assetpath precompile --output=dist --gzip`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			p := precompile.New(cfg, cfg.NewCatalog(), precompile.Options{
				Output: output,
				Gzip:   gzip,
				OnProgress: func(step string) {
					info(out, step)
				},
			})

			if clean {
				info(out, "Cleaning %s...", p.Dir())
				if err := p.Clean(); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result, err := p.Run(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintln(out)
			success(out, "Precompiled %d assets (%s) in %s",
				result.Files, formatBytes(result.Bytes), result.Duration.Round(time.Millisecond))
			info(out, "Assets:   %s", result.Dir)
			info(out, "Manifest: %s", result.ManifestPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default from config)")
	cmd.Flags().BoolVar(&gzip, "gzip", false, "Also write .gz variants of text assets")
	cmd.Flags().BoolVar(&clean, "clean", false, "Remove previously precompiled assets first")

	return cmd
}
