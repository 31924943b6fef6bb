package assets

import "time"

// Asset is a source the upstream Environment manages.
type Asset struct {
	// LogicalPath is the environment-facing name, e.g. "application.js".
	LogicalPath string

	// DigestPath is the content-addressed output name,
	// e.g. "application-9f86d081884c7d65.js".
	DigestPath string

	// Dependencies lists the assets a bundle is concatenated from, in
	// output order.
	Dependencies []*Asset

	// IncludedURIs lists bundle members by URI, loaded through
	// Environment.Lookup. Used when Dependencies is empty.
	IncludedURIs []string
}

// IsBundle reports whether a has constituent assets.
func (a *Asset) IsBundle() bool {
	return len(a.Dependencies) > 0 || len(a.IncludedURIs) > 0
}

// Environment is the upstream asset system.
type Environment interface {
	// Resolve reports whether logicalPath is managed and returns the asset.
	Resolve(logicalPath string) (*Asset, bool)

	// Lookup loads an asset by URI once it is known to exist.
	Lookup(uri string) (*Asset, bool)
}

// FileSystem answers existence and modification-time queries for files in
// the public directory.
type FileSystem interface {
	// Stat returns the modification time of name, or ok=false when name
	// does not exist.
	Stat(name string) (modTime time.Time, ok bool)
}

// Strategy identifies how a source was resolved.
type Strategy string

const (
	StrategyExternal Strategy = "external"
	StrategyManifest Strategy = "manifest"
	StrategyAsset    Strategy = "asset"
	StrategyFile     Strategy = "file"
)

// Observer is notified of every resolution. Implementations must be safe
// for concurrent use.
type Observer interface {
	ObserveResolution(strategy Strategy, source string, paths int, elapsed time.Duration)
	ObserveError(err error)
}

type noopObserver struct{}

func (noopObserver) ObserveResolution(Strategy, string, int, time.Duration) {}
func (noopObserver) ObserveError(error)                                    {}
