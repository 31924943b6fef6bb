package assets

import (
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/assetpath/internal/errors"
	"github.com/vango-dev/assetpath/pkg/uripath"
)

// Helper resolves asset sources against a Settings snapshot.
// It is safe for concurrent use.
type Helper struct {
	mu       sync.RWMutex
	settings Settings

	logger   *slog.Logger
	observer Observer
}

// HelperOption configures a Helper.
type HelperOption func(*Helper)

// WithLogger sets the logger used for resolution diagnostics.
func WithLogger(logger *slog.Logger) HelperOption {
	return func(h *Helper) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithObserver registers an Observer notified of every resolution.
func WithObserver(o Observer) HelperOption {
	return func(h *Helper) {
		if o != nil {
			h.observer = o
		}
	}
}

// New creates a Helper. Empty settings fields get their defaults; invalid
// prefix or host values are rejected.
func New(settings Settings, opts ...HelperOption) (*Helper, error) {
	s := settings.clone()
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}

	h := &Helper{
		settings: s,
		logger:   slog.Default().With("component", "assets"),
		observer: noopObserver{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Settings returns a copy of the current settings.
func (h *Helper) Settings() Settings {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.settings.clone()
}

// Configure applies fn to a copy of the settings and installs the result
// if it is valid. Resolutions already in flight keep the settings they
// started with.
func (h *Helper) Configure(fn func(*Settings)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.settings.clone()
	fn(&s)
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return err
	}
	h.settings = s
	return nil
}

func (h *Helper) snapshot() Settings {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.settings
}

// Result is the outcome of a resolution.
type Result struct {
	Source   string
	Strategy Strategy

	// Path is the resolved path of the source itself.
	Path string

	// Paths holds the per-dependency paths when expansion was requested
	// for a managed asset.
	Paths []string
}

// All returns the expanded paths, or Path when there are none.
func (r *Result) All() []string {
	if len(r.Paths) > 0 {
		return r.Paths
	}
	return []string{r.Path}
}

// Resolve resolves source with opts layered over the settings.
func (h *Helper) Resolve(source string, opts Options) (*Result, error) {
	return h.run(h.snapshot(), source, opts)
}

// AssetPath returns the resolved path of source. Expansion does not apply.
func (h *Helper) AssetPath(source string, opts Options) (string, error) {
	res, err := h.Resolve(source, opts)
	if err != nil {
		return "", err
	}
	return res.Path, nil
}

// AssetPaths returns every path source resolves to: one per dependency
// when expansion is on, otherwise a single path.
func (h *Helper) AssetPaths(source string, opts Options) ([]string, error) {
	res, err := h.Resolve(source, opts)
	if err != nil {
		return nil, err
	}
	return res.All(), nil
}

// ResolveKind resolves source with the defaults of kind under opts.
func (h *Helper) ResolveKind(kind Kind, source string, opts Options) (*Result, error) {
	s := h.snapshot()
	defaults, ok := s.DefaultPathOptions[kind]
	if !ok {
		err := errors.New("E003").
			WithDetail("no defaults for kind " + string(kind)).
			WithSuggestion("Use one of audio, font, image, javascript, stylesheet or video")
		h.reject(source, err)
		return nil, err
	}
	return h.run(s, source, opts.Merge(defaults))
}

// PathFor returns the resolved path of source as an asset of kind.
func (h *Helper) PathFor(kind Kind, source string, opts Options) (string, error) {
	res, err := h.ResolveKind(kind, source, opts)
	if err != nil {
		return "", err
	}
	return res.Path, nil
}

// AudioPath resolves an audio file, by default under /audios.
func (h *Helper) AudioPath(source string, opts Options) (string, error) {
	return h.PathFor(KindAudio, source, opts)
}

// FontPath resolves a font, by default under /fonts.
func (h *Helper) FontPath(source string, opts Options) (string, error) {
	return h.PathFor(KindFont, source, opts)
}

// ImagePath resolves an image, by default under /images.
func (h *Helper) ImagePath(source string, opts Options) (string, error) {
	return h.PathFor(KindImage, source, opts)
}

// JavascriptPath resolves a script, by default /javascripts/<source>.js.
func (h *Helper) JavascriptPath(source string, opts Options) (string, error) {
	return h.PathFor(KindJavascript, source, opts)
}

// StylesheetPath resolves a stylesheet, by default /stylesheets/<source>.css.
func (h *Helper) StylesheetPath(source string, opts Options) (string, error) {
	return h.PathFor(KindStylesheet, source, opts)
}

// VideoPath resolves a video, by default under /videos.
func (h *Helper) VideoPath(source string, opts Options) (string, error) {
	return h.PathFor(KindVideo, source, opts)
}

func (h *Helper) run(s Settings, source string, opts Options) (*Result, error) {
	start := time.Now()
	res, err := resolve(s, source, opts)
	if err != nil {
		h.reject(source, err)
		return nil, err
	}

	elapsed := time.Since(start)
	h.observer.ObserveResolution(res.Strategy, source, len(res.All()), elapsed)
	h.logger.Debug("asset resolved",
		"source", source,
		"strategy", res.Strategy,
		"path", res.Path,
		"paths", len(res.All()),
		"elapsed", elapsed,
	)
	return res, nil
}

func (h *Helper) reject(source string, err error) {
	h.observer.ObserveError(err)
	h.logger.Warn("asset resolution rejected", "source", source, "error", err)
}

// resolve is the resolution flow proper: validation, external
// short-circuit, extension inference, debug override and strategy
// selection.
func resolve(s Settings, source string, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if source == "" {
		return nil, errors.New("E004")
	}

	if uripath.IsExternal(source) {
		return &Result{Source: source, Strategy: StrategyExternal, Path: source}, nil
	}

	u := uripath.Parse(source)
	if opts.Ext != "" && !u.HasExtension(opts.Ext) {
		u.AppendExtension(opts.Ext)
	}

	digest := boolOr(opts.Digest, s.Digest)
	useManifest := boolOr(opts.Manifest, true)
	host := opts.Host.or(s.Host)
	expand := boolOr(opts.Expand, s.Expand)
	if boolOr(opts.Debug, s.Debug) {
		digest = false
		useManifest = false
		host = Disabled()
		// Bundles are served as their parts unless the call says otherwise.
		expand = boolOr(opts.Expand, true)
	}

	protocol := opts.Protocol
	explicit := protocol != ""
	if !explicit {
		protocol = s.Protocol
	}
	hosts := hostSelector{host: host, protocol: protocol, explicitProtocol: explicit}
	managed := managedPath{
		hostSelector: hosts,
		prefix:       opts.Prefix.or(s.Prefix),
		body:         boolOr(opts.Body, false),
	}

	res := &Result{Source: source}

	if useManifest && s.Manifest != nil {
		if digestPath, ok := s.Manifest.Lookup(u.Path); ok {
			res.Strategy = StrategyManifest
			res.Path = manifestPath{managedPath: managed, digestPath: digestPath}.render(u)
			return res, nil
		}
	}

	if s.Environment != nil {
		if asset, ok := s.Environment.Resolve(u.Path); ok && asset != nil {
			a := assetPath{managedPath: managed, asset: asset, env: s.Environment, digest: digest}
			res.Strategy = StrategyAsset
			res.Path = a.render(u)
			if expand {
				res.Paths = a.expand(u)
			}
			return res, nil
		}
	}

	f := filePath{hostSelector: hosts, dir: opts.Dir, publicPath: s.PublicPath, fs: s.FileSystem}
	res.Strategy = StrategyFile
	res.Path = rewrite(f, u)
	return res, nil
}
