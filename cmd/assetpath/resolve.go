package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/assetpath/pkg/assets"
)

type resolveFlags struct {
	kind     string
	ext      string
	dir      string
	prefix   string
	host     string
	protocol string
	digest   bool
	body     bool
	expand   bool
	debug    bool
	manifest bool
	json     bool
}

// resolveOutput is one --json result.
type resolveOutput struct {
	Source   string          `json:"source"`
	Strategy assets.Strategy `json:"strategy,omitempty"`
	Path     string          `json:"path,omitempty"`
	Paths    []string        `json:"paths,omitempty"`
	Error    string          `json:"error,omitempty"`
}

func resolveCmd(global *globalFlags) *cobra.Command {
	f := &resolveFlags{}

	cmd := &cobra.Command{
		Use:   "resolve SOURCE...",
		Short: "Resolve sources to public paths",
		Long: `Resolve each source and print its public path, one per line.
With --expand a bundle prints one path per dependency.

Flags left unset inherit from the configuration. --prefix=false and
--host=false disable the setting for this call.

Examples:
  assetpath resolve application.js
  assetpath resolve --kind=javascript --digest application
  assetpath resolve --host='assets%d.example.com' --protocol=https logo.png
  assetpath resolve --json --expand application.js`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			helper, _, err := newHelper(cfg)
			if err != nil {
				return err
			}
			return runResolve(cmd, helper, f, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.kind, "kind", "k", "", "Asset kind: audio, font, image, javascript, stylesheet or video")
	flags.StringVar(&f.ext, "ext", "", "Extension appended when the source has a different one")
	flags.StringVar(&f.dir, "dir", "", "Directory for unmanaged files")
	flags.StringVar(&f.prefix, "prefix", "", "Prefix for managed assets, or false")
	flags.StringVar(&f.host, "host", "", "Asset host, or false")
	flags.StringVar(&f.protocol, "protocol", "", "Protocol used with the host: http, https or relative")
	flags.BoolVar(&f.digest, "digest", false, "Use digest paths")
	flags.BoolVar(&f.body, "body", false, "Append body=1 to managed assets")
	flags.BoolVar(&f.expand, "expand", false, "Expand bundles into their dependencies")
	flags.BoolVar(&f.debug, "debug", false, "Disable digest, manifest and host")
	flags.BoolVar(&f.manifest, "manifest", true, "Consult the precompiled manifest")
	flags.BoolVar(&f.json, "json", false, "Print results as JSON")

	return cmd
}

// options converts the flags the user actually set.
func (f *resolveFlags) options(cmd *cobra.Command) assets.Options {
	changed := cmd.Flags().Changed
	opts := assets.Options{
		Ext:      f.ext,
		Dir:      f.dir,
		Protocol: f.protocol,
	}
	if changed("digest") {
		opts.Digest = assets.Bool(f.digest)
	}
	if changed("body") {
		opts.Body = assets.Bool(f.body)
	}
	if changed("expand") {
		opts.Expand = assets.Bool(f.expand)
	}
	if changed("debug") {
		opts.Debug = assets.Bool(f.debug)
	}
	if changed("manifest") {
		opts.Manifest = assets.Bool(f.manifest)
	}
	if changed("prefix") {
		opts.Prefix = flagValue(f.prefix)
	}
	if changed("host") {
		opts.Host = flagValue(f.host)
	}
	return opts
}

func flagValue(v string) assets.Value {
	if v == "false" {
		return assets.Disabled()
	}
	return assets.Literal(v)
}

func runResolve(cmd *cobra.Command, helper *assets.Helper, f *resolveFlags, sources []string) error {
	opts := f.options(cmd)
	out := cmd.OutOrStdout()

	results := make([]resolveOutput, 0, len(sources))
	var firstErr error
	for _, source := range sources {
		var (
			res *assets.Result
			err error
		)
		if f.kind != "" {
			res, err = helper.ResolveKind(assets.Kind(f.kind), source, opts)
		} else {
			res, err = helper.Resolve(source, opts)
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			results = append(results, resolveOutput{Source: source, Error: err.Error()})
			continue
		}
		results = append(results, resolveOutput{
			Source:   source,
			Strategy: res.Strategy,
			Path:     res.Path,
			Paths:    res.All(),
		})
	}

	if f.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
		return firstErr
	}

	for _, r := range results {
		if r.Error != "" {
			continue
		}
		for _, p := range r.Paths {
			fmt.Fprintln(out, p)
		}
	}
	return firstErr
}
