package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/assetpath/internal/errors"
	"github.com/vango-dev/assetpath/pkg/assets"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "assetpath.json"

	// DefaultAddr is the default server listen address.
	DefaultAddr = "localhost:3000"

	// DefaultOutput is the default precompile output directory.
	DefaultOutput = "public"

	// DefaultCatalogRoot is where managed asset sources live.
	DefaultCatalogRoot = "app/assets"

	// DefaultManifest is the manifest written by precompile and read at
	// startup.
	DefaultManifest = "public/assets/manifest.json"

	// Development and Production name the override sections.
	Development = "development"
	Production  = "production"
)

// ConfigFileNames are tried in order by Load.
var ConfigFileNames = []string{ConfigFileName, "assetpath.yaml", "assetpath.yml"}

// Config represents an assetpath.json or assetpath.yaml file.
type Config struct {
	// Environment selects the override section to apply.
	// ASSETPATH_ENV overrides the file value.
	Environment string `json:"environment,omitempty" yaml:"environment,omitempty"`

	// Digest selects digest paths for managed assets.
	Digest *bool `json:"digest,omitempty" yaml:"digest,omitempty"`

	// Debug disables digests, the manifest and the asset host, and expands
	// bundles unless Expand is given per call.
	Debug *bool `json:"debug,omitempty" yaml:"debug,omitempty"`

	// Expand splits bundles into their dependencies.
	Expand *bool `json:"expand,omitempty" yaml:"expand,omitempty"`

	// Prefix is the URL path managed assets are mounted at.
	Prefix ValueConfig `json:"prefix,omitempty" yaml:"prefix,omitempty"`

	// Host is the asset host.
	Host ValueConfig `json:"host,omitempty" yaml:"host,omitempty"`

	// Protocol is used with Host: "http", "https" or "relative".
	Protocol string `json:"protocol,omitempty" yaml:"protocol,omitempty"`

	// Manifest is the path of the precompiled manifest.
	Manifest string `json:"manifest,omitempty" yaml:"manifest,omitempty"`

	// Public is the directory unmanaged files are served from.
	Public string `json:"public,omitempty" yaml:"public,omitempty"`

	// Catalog describes the managed asset sources.
	Catalog CatalogConfig `json:"catalog,omitempty" yaml:"catalog,omitempty"`

	// Kinds overrides or adds per-kind defaults.
	Kinds map[string]KindConfig `json:"kinds,omitempty" yaml:"kinds,omitempty"`

	// Storage selects where modification times of public files come from.
	Storage StorageConfig `json:"storage,omitempty" yaml:"storage,omitempty"`

	// Server contains asset server settings.
	Server ServerConfig `json:"server,omitempty" yaml:"server,omitempty"`

	// Precompile contains precompile settings.
	Precompile PrecompileConfig `json:"precompile,omitempty" yaml:"precompile,omitempty"`

	// Development and Production override the fields above when their
	// environment is active.
	Development *Overrides `json:"development,omitempty" yaml:"development,omitempty"`
	Production  *Overrides `json:"production,omitempty" yaml:"production,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// CatalogConfig describes the directory-backed asset environment.
type CatalogConfig struct {
	// Root is the directory search paths are relative to.
	Root string `json:"root,omitempty" yaml:"root,omitempty"`

	// Paths are the search paths in priority order.
	Paths []string `json:"paths,omitempty" yaml:"paths,omitempty"`

	// Bundles maps a bundle's logical path to its members.
	Bundles map[string][]string `json:"bundles,omitempty" yaml:"bundles,omitempty"`
}

// KindConfig holds per-kind defaults.
type KindConfig struct {
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
	Ext string `json:"ext,omitempty" yaml:"ext,omitempty"`
}

// ServerConfig contains asset server settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`

	// Compress enables gzip responses.
	Compress *bool `json:"compress,omitempty" yaml:"compress,omitempty"`
}

// PrecompileConfig contains precompile settings.
type PrecompileConfig struct {
	// Output is the directory precompiled assets are written under.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from the specified directory.
// It looks for assetpath.json, assetpath.yaml and assetpath.yml in turn.
func Load(dir string) (*Config, error) {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E100").
		WithDetail("No assetpath.json or assetpath.yaml found in " + dir).
		WithSuggestion("Create assetpath.json, or pass --config")
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E100").
				WithDetail("No config file at " + path)
		}
		return nil, errors.New("E101").Wrap(err)
	}

	cfg := &Config{}
	if err := cfg.decode(path, data); err != nil {
		return nil, err
	}

	cfg.configPath = path
	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	cfg.applyDefaults()

	return cfg, nil
}

// decode unmarshals data by file extension. JSON files may carry comments
// and trailing commas.
func (c *Config) decode(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			ae := errors.New("E101").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid YAML")
			ae.Wrapped = err
			return ae
		}
		return nil
	default:
		data = jsonc.ToJSON(data)
		if err := json.Unmarshal(data, c); err != nil {
			ae := errors.New("E101").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid JSON")
			ae.Wrapped = err
			if se, ok := err.(*json.SyntaxError); ok {
				line, col := position(data, se.Offset)
				ae.WithLocation(path, line, col)
			}
			return ae
		}
		return nil
	}
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	before := data[:offset]
	line = bytes.Count(before, []byte{'\n'}) + 1
	col = int(offset) - bytes.LastIndexByte(before, '\n')
	return line, col
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Public == "" {
		c.Public = "public"
	}
	if c.Manifest == "" {
		c.Manifest = DefaultManifest
	}
	if c.Catalog.Root == "" {
		c.Catalog.Root = DefaultCatalogRoot
	}
	if len(c.Catalog.Paths) == 0 {
		c.Catalog.Paths = []string{"."}
	}
	if c.Storage.Kind == "" {
		c.Storage.Kind = StorageDisk
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Precompile.Output == "" {
		c.Precompile.Output = DefaultOutput
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Environment {
	case "", Development, Production:
	default:
		return c.invalid("environment must be development or production, got " + c.Environment)
	}

	switch strings.TrimSuffix(strings.TrimSuffix(c.Protocol, "//"), ":") {
	case "", "http", "https", "relative":
	default:
		return c.invalid("protocol must be http, https or relative, got " + c.Protocol)
	}

	if err := c.Storage.validate(); err != nil {
		return c.invalid(err.Error())
	}

	for name, kind := range c.Kinds {
		if name == "" {
			return c.invalid("kinds: empty kind name")
		}
		if strings.Contains(kind.Ext, "/") {
			return c.invalid("kinds." + name + ".ext must not contain '/'")
		}
	}

	if _, err := c.Prefix.Value("prefix"); err != nil {
		return err
	}
	if _, err := c.Host.Value("host"); err != nil {
		return err
	}
	return nil
}

func (c *Config) invalid(detail string) error {
	ae := errors.New("E102").WithDetail(detail)
	if c.configPath != "" {
		ae.Location = &errors.Location{File: c.configPath}
	}
	return ae
}

// resolve makes p relative to the config directory unless it is absolute.
func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir(), p)
}

// PublicPath returns the path to the public directory.
func (c *Config) PublicPath() string {
	return c.resolve(c.Public)
}

// ManifestPath returns the path to the manifest file.
func (c *Config) ManifestPath() string {
	return c.resolve(c.Manifest)
}

// CatalogRoot returns the path to the catalog root.
func (c *Config) CatalogRoot() string {
	return c.resolve(c.Catalog.Root)
}

// OutputPath returns the path to the precompile output directory.
func (c *Config) OutputPath() string {
	return c.resolve(c.Precompile.Output)
}

// MountPrefix returns the URL path managed assets are written to and
// served from: the literal prefix, cleaned. Computed prefixes cannot name
// a single location, so they fall back to assets.DefaultPrefix; a disabled
// prefix mounts at the root and yields "".
func (c *Config) MountPrefix() string {
	prefix := assets.DefaultPrefix
	switch {
	case c.Prefix.Disabled:
		return ""
	case c.Prefix.IsSet() && c.Prefix.Expr == "":
		prefix = c.Prefix.Literal
	}
	clean := path.Clean("/" + prefix)
	if clean == "/" {
		return ""
	}
	return clean
}

// Compress reports whether the server compresses responses.
func (c *Config) Compress() bool {
	return c.Server.Compress == nil || *c.Server.Compress
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range ConfigFileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing a config file, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E100").
				WithDetail("No assetpath config found in " + startDir + " or any parent directory").
				WithSuggestion("Create assetpath.json at the project root")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working
// directory or its nearest parent with a config file.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
