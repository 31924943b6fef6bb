package assets

import (
	"github.com/vango-dev/assetpath/internal/errors"
)

// RelativeProtocol as a protocol drops the scheme so that hosted assets
// render as "//host/path".
const RelativeProtocol = "relative"

// Options are the per-call resolution options. Unset fields inherit from
// the per-kind defaults and then from Settings.
type Options struct {
	// Ext is appended to the path when the path does not already end in it.
	Ext string

	// Dir is prepended to relative paths of plain files.
	Dir string

	// Digest selects the digest path of managed assets.
	Digest *bool

	// Prefix is prepended to managed asset paths.
	Prefix Value

	// Host is the asset host. Disabled() suppresses a configured host.
	Host Value

	// Protocol forces the scheme used with an asset host ("https",
	// "https://" or RelativeProtocol).
	Protocol string

	// Body appends body=1 to managed asset paths.
	Body *bool

	// Manifest set to false skips the precompiled manifest.
	Manifest *bool

	// Debug disables digests, the manifest and the asset host, and expands
	// bundles unless Expand is given per call.
	Debug *bool

	// Expand returns one path per bundle dependency.
	Expand *bool
}

// Bool returns a pointer to b, for the tri-state option fields.
func Bool(b bool) *bool {
	return &b
}

// Merge returns o with every unset field taken from weaker.
func (o Options) Merge(weaker Options) Options {
	merged := o
	if merged.Ext == "" {
		merged.Ext = weaker.Ext
	}
	if merged.Dir == "" {
		merged.Dir = weaker.Dir
	}
	if merged.Digest == nil {
		merged.Digest = weaker.Digest
	}
	merged.Prefix = o.Prefix.or(weaker.Prefix)
	merged.Host = o.Host.or(weaker.Host)
	if merged.Protocol == "" {
		merged.Protocol = weaker.Protocol
	}
	if merged.Body == nil {
		merged.Body = weaker.Body
	}
	if merged.Manifest == nil {
		merged.Manifest = weaker.Manifest
	}
	if merged.Debug == nil {
		merged.Debug = weaker.Debug
	}
	if merged.Expand == nil {
		merged.Expand = weaker.Expand
	}
	return merged
}

// Validate rejects option values the resolver cannot interpret.
func (o Options) Validate() error {
	return validateValues(o.Prefix, o.Host)
}

func validateValues(prefix, host Value) error {
	if !prefix.valid() {
		return errors.New("E001").
			WithDetail("prefix is Computed with a nil function").
			WithSuggestion("Use assets.Literal for a fixed prefix")
	}
	if !host.valid() {
		return errors.New("E002").
			WithDetail("host is Computed with a nil function").
			WithSuggestion("Use assets.Literal for a fixed host")
	}
	return nil
}

func boolOr(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return *p
}

// IsContractError reports whether err was caused by invalid caller input.
func IsContractError(err error) bool {
	return errors.IsCategory(err, errors.CategoryContract)
}
