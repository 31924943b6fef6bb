package config

import (
	"log/slog"
	"os"

	"github.com/vango-dev/assetpath/pkg/assets"
)

// Settings converts the configuration into resolver settings. env may be
// nil. A missing manifest file is not an error; precompile has simply not
// run yet.
func (c *Config) Settings(env assets.Environment) (assets.Settings, error) {
	if err := c.Validate(); err != nil {
		return assets.Settings{}, err
	}

	prefix, err := c.Prefix.Value("prefix")
	if err != nil {
		return assets.Settings{}, err
	}
	host, err := c.Host.Value("host")
	if err != nil {
		return assets.Settings{}, err
	}

	s := assets.Settings{
		Digest:      boolValue(c.Digest),
		Debug:       boolValue(c.Debug),
		Expand:      boolValue(c.Expand),
		Prefix:      prefix,
		Host:        host,
		Protocol:    c.Protocol,
		PublicPath:  c.PublicPath(),
		Environment: env,
		FileSystem:  c.FileSystem(),
	}
	if c.Storage.Kind == StorageS3 {
		s.PublicPath = "/"
	}

	if path := c.ManifestPath(); path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			m, err := assets.LoadManifest(path)
			if err != nil {
				return assets.Settings{}, err
			}
			s.Manifest = m
		} else {
			slog.Default().With("component", "config").
				Debug("no manifest", "path", path)
		}
	}

	if len(c.Kinds) > 0 {
		s.DefaultPathOptions = assets.DefaultPathOptions()
		for name, kind := range c.Kinds {
			opts := s.DefaultPathOptions[assets.Kind(name)]
			if kind.Dir != "" {
				opts.Dir = kind.Dir
			}
			if kind.Ext != "" {
				opts.Ext = kind.Ext
			}
			s.DefaultPathOptions[assets.Kind(name)] = opts
		}
	}

	return s, nil
}

func boolValue(b *bool) bool {
	return b != nil && *b
}
