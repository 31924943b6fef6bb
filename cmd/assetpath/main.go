package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/assetpath/internal/config"
	"github.com/vango-dev/assetpath/internal/errors"
	"github.com/vango-dev/assetpath/pkg/assets"
	"github.com/vango-dev/assetpath/pkg/catalog"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "assetpath",
		Short: "Resolve, serve and precompile web asset paths",
		Long: `assetpath turns asset references into public URLs.

A source such as "application.js" is resolved against a precompiled
manifest, the asset catalog, or the public directory, and rendered with
the configured prefix, digest, asset host and protocol.

Configuration is read from assetpath.json or assetpath.yaml in the
current directory or the nearest parent.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd.ErrOrStderr(), flags.logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file (default: search for assetpath.json)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(
		resolveCmd(flags),
		serveCmd(flags),
		precompileCmd(flags),
		manifestCmd(flags),
		versionCmd(),
	)

	return rootCmd
}

// setupLogging installs a text handler on w at the given level.
func setupLogging(w io.Writer, level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid --log-level %q", level)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})))
	return nil
}

// loadConfig loads the file named by --config, or searches from the
// working directory. Without any config file the defaults apply.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	if flags.configPath != "" {
		return config.LoadFile(flags.configPath)
	}
	cfg, err := config.LoadFromWorkingDir()
	if errors.HasCode(err, "E100") {
		slog.Debug("no config file found, using defaults")
		return config.New(), nil
	}
	return cfg, err
}

// newHelper builds the catalog and a Helper over it.
func newHelper(cfg *config.Config, opts ...assets.HelperOption) (*assets.Helper, *catalog.Catalog, error) {
	cat := cfg.NewCatalog()
	settings, err := cfg.Settings(cat)
	if err != nil {
		return nil, nil, err
	}
	helper, err := assets.New(settings, opts...)
	if err != nil {
		return nil, nil, err
	}
	return helper, cat, nil
}

// printError prints coded errors in full and everything else on one line.
func printError(w io.Writer, err error) {
	if ae, ok := err.(*errors.AssetError); ok {
		fmt.Fprintln(w, strings.TrimRight(ae.Format(), "\n"))
		return
	}
	fmt.Fprintf(w, "\033[31mError:\033[0m %s\n", err)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
