package config

import (
	"os"
	"regexp"
)

// EnvVar names the environment variable that selects the override section.
const EnvVar = "ASSETPATH_ENV"

// Overrides holds per-environment settings. Set fields replace the base
// configuration when the environment is active.
type Overrides struct {
	Digest   *bool       `json:"digest,omitempty" yaml:"digest,omitempty"`
	Debug    *bool       `json:"debug,omitempty" yaml:"debug,omitempty"`
	Expand   *bool       `json:"expand,omitempty" yaml:"expand,omitempty"`
	Prefix   ValueConfig `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Host     ValueConfig `json:"host,omitempty" yaml:"host,omitempty"`
	Protocol string      `json:"protocol,omitempty" yaml:"protocol,omitempty"`
	Manifest string      `json:"manifest,omitempty" yaml:"manifest,omitempty"`
	Public   string      `json:"public,omitempty" yaml:"public,omitempty"`
}

// ActiveEnvironment returns the environment in effect: ASSETPATH_ENV if
// set, otherwise the file's environment field.
func (c *Config) ActiveEnvironment() string {
	if env := os.Getenv(EnvVar); env != "" {
		return env
	}
	return c.Environment
}

func (c *Config) applyEnvironmentOverrides() {
	c.Environment = c.ActiveEnvironment()

	var o *Overrides
	switch c.Environment {
	case Development:
		o = c.Development
	case Production:
		o = c.Production
	}
	if o == nil {
		return
	}

	if o.Digest != nil {
		c.Digest = o.Digest
	}
	if o.Debug != nil {
		c.Debug = o.Debug
	}
	if o.Expand != nil {
		c.Expand = o.Expand
	}
	if o.Prefix.IsSet() {
		c.Prefix = o.Prefix
	}
	if o.Host.IsSet() {
		c.Host = o.Host
	}
	if o.Protocol != "" {
		c.Protocol = o.Protocol
	}
	if o.Manifest != "" {
		c.Manifest = o.Manifest
	}
	if o.Public != "" {
		c.Public = o.Public
	}
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVariables substitutes environment variables in string settings.
func (c *Config) expandVariables() {
	c.Protocol = expandVars(c.Protocol)
	c.Manifest = expandVars(c.Manifest)
	c.Public = expandVars(c.Public)
	c.Catalog.Root = expandVars(c.Catalog.Root)
	for i, p := range c.Catalog.Paths {
		c.Catalog.Paths[i] = expandVars(p)
	}
	c.Storage.Bucket = expandVars(c.Storage.Bucket)
	c.Storage.KeyPrefix = expandVars(c.Storage.KeyPrefix)
	c.Storage.Region = expandVars(c.Storage.Region)
	c.Storage.Endpoint = expandVars(c.Storage.Endpoint)
	c.Server.Addr = expandVars(c.Server.Addr)
	c.Precompile.Output = expandVars(c.Precompile.Output)
	if c.Prefix.Expr == "" {
		c.Prefix.Literal = expandVars(c.Prefix.Literal)
	}
	if c.Host.Expr == "" {
		c.Host.Literal = expandVars(c.Host.Literal)
	}
}

// expandVars replaces ${VAR} with the variable's value, or with the
// default given as ${VAR:-default} when the variable is unset or empty.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if v := os.Getenv(parts[1]); v != "" {
			return v
		}
		return parts[2]
	})
}
