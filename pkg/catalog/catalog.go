// Package catalog is a directory-backed asset environment.
//
// A Catalog maps logical paths ("application.js", "fonts/icons.eot") onto
// files under one or more search paths and names each one by its content:
// "application-<blake3 hex>.js". Bundles are declared logical paths whose
// body is the concatenation of their members.
//
//	c := catalog.New("app/assets",
//		catalog.WithPaths("javascripts", "stylesheets", "."),
//		catalog.WithBundles(map[string][]string{
//			"application.js": {"jquery.js", "app.js"},
//		}),
//	)
//	settings.Environment = c
package catalog

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vango-dev/assetpath/pkg/assets"
)

// URIScheme prefixes catalog URIs accepted by Lookup.
const URIScheme = "catalog:"

// digestLen is the number of hex characters of the digest kept in names.
const digestLen = 32

var digestPattern = regexp.MustCompile(`^(.*)-([0-9a-f]{32})(\.[^./]*)?$`)

// Catalog resolves logical paths against a directory tree.
// It is safe for concurrent use.
type Catalog struct {
	root    string
	paths   []string
	bundles map[string][]string
	logger  *slog.Logger

	mu    sync.RWMutex
	cache map[string]digestEntry
}

type digestEntry struct {
	modTime time.Time
	size    int64
	digest  string
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithPaths sets the search paths, relative to the root, in priority order.
func WithPaths(paths ...string) Option {
	return func(c *Catalog) {
		if len(paths) > 0 {
			c.paths = append([]string(nil), paths...)
		}
	}
}

// WithBundles declares bundles by logical path and member list.
func WithBundles(bundles map[string][]string) Option {
	return func(c *Catalog) {
		for name, members := range bundles {
			c.bundles[name] = append([]string(nil), members...)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Catalog rooted at root.
func New(root string, opts ...Option) *Catalog {
	c := &Catalog{
		root:    root,
		paths:   []string{"."},
		bundles: make(map[string][]string),
		logger:  slog.Default().With("component", "catalog"),
		cache:   make(map[string]digestEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Root returns the catalog root directory.
func (c *Catalog) Root() string {
	return c.root
}

// Resolve returns the asset for a logical path, or false when the path is
// neither a file in a search path nor a declared bundle.
func (c *Catalog) Resolve(logical string) (*assets.Asset, bool) {
	if !validLogical(logical) {
		return nil, false
	}
	return c.resolve(logical, map[string]bool{})
}

// Lookup resolves a catalog URI ("catalog:fonts/icons.eot") or a plain
// logical path.
func (c *Catalog) Lookup(uri string) (*assets.Asset, bool) {
	return c.Resolve(strings.TrimPrefix(uri, URIScheme))
}

// URI returns the catalog URI of a logical path.
func URI(logical string) string {
	return URIScheme + logical
}

// ResolveDigest finds the asset whose digest path is digestPath.
func (c *Catalog) ResolveDigest(digestPath string) (*assets.Asset, bool) {
	m := digestPattern.FindStringSubmatch(digestPath)
	if m == nil {
		return nil, false
	}
	a, ok := c.Resolve(m[1] + m[3])
	if !ok || a.DigestPath != digestPath {
		return nil, false
	}
	return a, true
}

// IsBundle reports whether logical is a declared bundle.
func (c *Catalog) IsBundle(logical string) bool {
	_, ok := c.bundles[logical]
	return ok
}

func (c *Catalog) resolve(logical string, visiting map[string]bool) (*assets.Asset, bool) {
	members, isBundle := c.bundles[logical]
	if !isBundle {
		file, ok := c.find(logical)
		if !ok {
			return nil, false
		}
		digest, err := c.digestFile(file)
		if err != nil {
			c.logger.Warn("digest failed", "path", logical, "error", err)
			return nil, false
		}
		return &assets.Asset{LogicalPath: logical, DigestPath: digestName(logical, digest)}, true
	}

	if visiting[logical] {
		c.logger.Warn("bundle cycle", "bundle", logical)
		return nil, false
	}
	visiting[logical] = true
	defer delete(visiting, logical)

	a := &assets.Asset{LogicalPath: logical}
	var digests []string
	for _, member := range members {
		dep, ok := c.resolve(member, visiting)
		if !ok {
			c.logger.Warn("bundle member not found", "bundle", logical, "member", member)
			continue
		}
		a.Dependencies = append(a.Dependencies, dep)
		digests = append(digests, dep.DigestPath)
	}

	// A file with the bundle's own name is appended after its members.
	if file, ok := c.find(logical); ok {
		if digest, err := c.digestFile(file); err == nil {
			self := &assets.Asset{LogicalPath: logical, DigestPath: digestName(logical, digest)}
			a.Dependencies = append(a.Dependencies, self)
			digests = append(digests, self.DigestPath)
		}
	}

	a.DigestPath = digestName(logical, digestStrings(digests))
	return a, true
}

// find returns the file backing logical in the first search path that has
// it.
func (c *Catalog) find(logical string) (string, bool) {
	for _, p := range c.paths {
		file := filepath.Join(c.root, filepath.FromSlash(p), filepath.FromSlash(logical))
		info, err := os.Stat(file)
		if err == nil && info.Mode().IsRegular() {
			return file, true
		}
	}
	return "", false
}

// Open returns the body of a single asset. For a bundle that is the file
// with the bundle's own name, if any.
func (c *Catalog) Open(logical string) (io.ReadCloser, error) {
	if !validLogical(logical) {
		return nil, fmt.Errorf("catalog: open %s: %w", logical, fs.ErrInvalid)
	}
	file, ok := c.find(logical)
	if !ok {
		return nil, fmt.Errorf("catalog: open %s: %w", logical, fs.ErrNotExist)
	}
	return os.Open(file)
}

// Concat returns the full body of logical: the members of a bundle in
// order followed by its own file, or the file itself for a plain asset.
// Parts are separated by a newline when they do not end in one.
func (c *Catalog) Concat(logical string) ([]byte, error) {
	if !validLogical(logical) {
		return nil, fmt.Errorf("catalog: concat %s: %w", logical, fs.ErrInvalid)
	}
	var out []byte
	if err := c.concat(logical, &out, map[string]bool{}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Catalog) concat(logical string, out *[]byte, visiting map[string]bool) error {
	members, isBundle := c.bundles[logical]
	if !isBundle {
		return c.appendFile(logical, out)
	}
	if visiting[logical] {
		return nil
	}
	visiting[logical] = true
	defer delete(visiting, logical)

	for _, member := range members {
		err := c.concat(member, out, visiting)
		if err != nil && !isNotExist(err) {
			return err
		}
	}
	if err := c.appendFile(logical, out); err != nil && !(isNotExist(err) && len(members) > 0) {
		return err
	}
	return nil
}

func (c *Catalog) appendFile(logical string, out *[]byte) error {
	f, err := c.Open(logical)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("catalog: read %s: %w", logical, err)
	}
	if len(*out) > 0 && (*out)[len(*out)-1] != '\n' {
		*out = append(*out, '\n')
	}
	*out = append(*out, data...)
	return nil
}

// Walk calls fn for every logical path in the catalog, in sorted order.
// Files shadowed by an earlier search path are reported once.
func (c *Catalog) Walk(fn func(logical string) error) error {
	seen := make(map[string]bool)
	for name := range c.bundles {
		seen[name] = true
	}

	for _, p := range c.paths {
		dir := filepath.Join(c.root, filepath.FromSlash(p))
		err := filepath.WalkDir(dir, func(file string, d fs.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) && file == dir {
					return filepath.SkipDir
				}
				return err
			}
			if d.IsDir() {
				if file != dir && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || strings.HasPrefix(d.Name(), ".") {
				return nil
			}
			rel, err := filepath.Rel(dir, file)
			if err != nil {
				return err
			}
			seen[filepath.ToSlash(rel)] = true
			return nil
		})
		if err != nil {
			return fmt.Errorf("catalog: walk %s: %w", dir, err)
		}
	}

	logicals := make([]string, 0, len(seen))
	for name := range seen {
		logicals = append(logicals, name)
	}
	sort.Strings(logicals)

	for _, logical := range logicals {
		if err := fn(logical); err != nil {
			return err
		}
	}
	return nil
}

func validLogical(logical string) bool {
	if logical == "" || strings.HasPrefix(logical, "/") {
		return false
	}
	return path.Clean(logical) == logical && !strings.HasPrefix(logical, "../") && logical != ".."
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// digestName inserts digest before the extension of logical.
func digestName(logical, digest string) string {
	ext := path.Ext(logical)
	return strings.TrimSuffix(logical, ext) + "-" + digest + ext
}
