package precompile

import (
	"bytes"
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/vango-dev/assetpath/internal/config"
	"github.com/vango-dev/assetpath/internal/errors"
	"github.com/vango-dev/assetpath/pkg/assets"
)

// ManifestName is the file the manifest is written to, next to the assets.
const ManifestName = "manifest.json"

// Source is the asset environment a Precompiler reads from.
// *catalog.Catalog implements it.
type Source interface {
	Walk(fn func(logical string) error) error
	Resolve(logical string) (*assets.Asset, bool)
	Concat(logical string) ([]byte, error)
}

// Result contains the precompile output.
type Result struct {
	// Duration is how long the run took.
	Duration time.Duration

	// Dir is the directory assets were written to.
	Dir string

	// ManifestPath is where the manifest was written.
	ManifestPath string

	// Manifest maps logical paths to digest paths.
	Manifest *assets.Manifest

	// Files is the number of assets written, not counting gzip variants.
	Files int

	// Bytes is the total size of the assets written.
	Bytes int64
}

// Options configures the precompiler.
type Options struct {
	// Output overrides the configured output directory.
	Output string

	// Gzip also writes a .gz variant of text assets.
	Gzip bool

	// OnProgress is called with progress updates.
	OnProgress func(step string)
}

// Precompiler writes every asset of a Source under its digest path.
type Precompiler struct {
	config  *config.Config
	source  Source
	options Options
}

// New creates a new precompiler.
func New(cfg *config.Config, source Source, options Options) *Precompiler {
	if options.Output == "" {
		options.Output = cfg.OutputPath()
	}
	return &Precompiler{
		config:  cfg,
		source:  source,
		options: options,
	}
}

// Dir returns the directory assets are written to: the output directory
// joined with the configured mount prefix.
func (p *Precompiler) Dir() string {
	return filepath.Join(p.options.Output, filepath.FromSlash(strings.TrimPrefix(p.config.MountPrefix(), "/")))
}

// Run precompiles all assets and writes the manifest.
func (p *Precompiler) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	dir := p.Dir()
	result := &Result{
		Dir:          dir,
		ManifestPath: filepath.Join(dir, ManifestName),
		Manifest:     assets.NewManifest(),
	}

	p.progress("Creating " + dir + "...")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.New("E140").Wrap(err)
	}

	p.progress("Writing assets...")
	err := p.source.Walk(func(logical string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := p.writeAsset(dir, logical, result.Manifest)
		if err != nil {
			return err
		}
		if n >= 0 {
			result.Files++
			result.Bytes += n
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if _, ok := err.(*errors.AssetError); ok {
			return nil, err
		}
		return nil, errors.New("E140").Wrap(err)
	}

	p.progress("Writing manifest...")
	if err := result.Manifest.WriteFile(result.ManifestPath); err != nil {
		return nil, errors.New("E140").
			WithDetail("Failed to write " + result.ManifestPath).
			Wrap(err)
	}

	result.Duration = time.Since(start)
	return result, nil
}

// writeAsset writes one asset and records it in m. It returns -1 for
// logical paths the source no longer resolves.
func (p *Precompiler) writeAsset(dir, logical string, m *assets.Manifest) (int64, error) {
	asset, ok := p.source.Resolve(logical)
	if !ok || asset.DigestPath == "" {
		return -1, nil
	}

	body, err := p.source.Concat(logical)
	if err != nil {
		return 0, errors.New("E140").
			WithDetail("Failed to read " + logical).
			Wrap(err)
	}

	dest := filepath.Join(dir, filepath.FromSlash(asset.DigestPath))
	if err := writeFile(dest, body); err != nil {
		return 0, errors.New("E140").Wrap(err)
	}
	if p.options.Gzip && compressible(logical) {
		if err := writeGzip(dest+".gz", body); err != nil {
			return 0, errors.New("E140").Wrap(err)
		}
	}

	m.Set(logical, asset.DigestPath)
	return int64(len(body)), nil
}

// progress reports precompile progress.
func (p *Precompiler) progress(step string) {
	if p.options.OnProgress != nil {
		p.options.OnProgress(step)
	}
}

// Clean removes the precompiled assets directory.
func (p *Precompiler) Clean() error {
	return os.RemoveAll(p.Dir())
}

var compressibleExts = map[string]bool{
	".js":   true,
	".mjs":  true,
	".css":  true,
	".svg":  true,
	".json": true,
	".map":  true,
	".html": true,
	".txt":  true,
	".xml":  true,
}

func compressible(logical string) bool {
	return compressibleExts[strings.ToLower(path.Ext(logical))]
}

func writeFile(dest string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0644)
}

func writeGzip(dest string, data []byte) error {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return err
	}
	if _, err := zw.Write(data); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return writeFile(dest, buf.Bytes())
}
