package assets

import (
	"github.com/vango-dev/assetpath/internal/errors"
	"github.com/vango-dev/assetpath/pkg/publicfs"
)

const (
	// DefaultPrefix is the URL path managed assets are mounted at.
	DefaultPrefix = "/assets"

	// DefaultProtocol is used with an asset host when none is configured.
	DefaultProtocol = "http://"

	// DefaultPublicPath is where unmanaged files are looked up.
	DefaultPublicPath = "./public"
)

// Kind names a family of assets with its own default options.
type Kind string

const (
	KindAudio      Kind = "audio"
	KindFont       Kind = "font"
	KindImage      Kind = "image"
	KindJavascript Kind = "javascript"
	KindStylesheet Kind = "stylesheet"
	KindVideo      Kind = "video"
)

// Kinds lists every kind with built-in defaults.
var Kinds = []Kind{KindAudio, KindFont, KindImage, KindJavascript, KindStylesheet, KindVideo}

// Settings is the process-wide configuration every resolution reads.
// Build it once at startup and hand it to New; later changes go through
// Helper.Configure.
type Settings struct {
	// Digest selects digest paths for managed assets.
	Digest bool

	// Prefix is the URL path the environment is mounted at.
	Prefix Value

	// Host is the asset host, e.g. Literal("assets%d.example.com").
	Host Value

	// Protocol is the scheme used with Host. RelativeProtocol renders
	// protocol-relative URLs.
	Protocol string

	// Manifest short-circuits the environment when it has an entry.
	Manifest *Manifest

	// Debug disables digests, the manifest and the asset host, and expands
	// bundles unless Expand is given per call.
	Debug bool

	// Expand splits bundles into their dependencies.
	Expand bool

	// PublicPath is the directory unmanaged files are served from.
	PublicPath string

	// Environment is the upstream resolver. Nil means every source that
	// misses the manifest is a plain file.
	Environment Environment

	// FileSystem answers modification-time queries for plain files.
	FileSystem FileSystem

	// DefaultPathOptions holds per-kind defaults for PathFor.
	DefaultPathOptions map[Kind]Options
}

// DefaultSettings returns Settings with the stock defaults filled in.
func DefaultSettings() Settings {
	s := Settings{}
	s.applyDefaults()
	return s
}

// DefaultPathOptions returns the built-in per-kind defaults.
func DefaultPathOptions() map[Kind]Options {
	return map[Kind]Options{
		KindAudio:      {Dir: "audios"},
		KindFont:       {Dir: "fonts"},
		KindImage:      {Dir: "images"},
		KindJavascript: {Dir: "javascripts", Ext: "js"},
		KindStylesheet: {Dir: "stylesheets", Ext: "css"},
		KindVideo:      {Dir: "videos"},
	}
}

// applyDefaults fills in default values for empty fields.
func (s *Settings) applyDefaults() {
	if !s.Prefix.IsSet() {
		s.Prefix = Literal(DefaultPrefix)
	}
	if s.Protocol == "" {
		s.Protocol = DefaultProtocol
	}
	if s.PublicPath == "" {
		s.PublicPath = DefaultPublicPath
	}
	if s.FileSystem == nil {
		s.FileSystem = publicfs.OS()
	}
	if s.DefaultPathOptions == nil {
		s.DefaultPathOptions = DefaultPathOptions()
	}
}

// Validate checks the settings for values the resolver cannot interpret.
func (s Settings) Validate() error {
	if err := validateValues(s.Prefix, s.Host); err != nil {
		return err
	}
	for kind, opts := range s.DefaultPathOptions {
		if err := opts.Validate(); err != nil {
			if ae, ok := err.(*errors.AssetError); ok {
				ae.Detail = string(kind) + " defaults: " + ae.Detail
			}
			return err
		}
	}
	return nil
}

// clone copies s so that the per-kind map is not shared.
func (s Settings) clone() Settings {
	c := s
	if s.DefaultPathOptions != nil {
		c.DefaultPathOptions = make(map[Kind]Options, len(s.DefaultPathOptions))
		for k, v := range s.DefaultPathOptions {
			c.DefaultPathOptions[k] = v
		}
	}
	return c
}
