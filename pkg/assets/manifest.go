package assets

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/jsonc"

	"github.com/vango-dev/assetpath/internal/errors"
)

// Manifest holds the mapping from logical asset paths to digest paths.
// It is safe for concurrent use.
//
// Two on-disk shapes are accepted, and comments are allowed in both:
//
//	{"main.js": "main-a1b2c3d4.js"}
//	{"assets": {"main.js": "main-a1b2c3d4.js"}}
type Manifest struct {
	entries map[string]string
	mu      sync.RWMutex
}

// NewManifest creates an empty manifest.
// Use LoadManifest() to create a manifest from a file.
func NewManifest() *Manifest {
	return &Manifest{
		entries: make(map[string]string),
	}
}

// LoadManifest reads a manifest file and returns a Manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E120").
			WithDetail("Could not read " + path).
			Wrap(err)
	}

	m, err := ParseManifest(data)
	if err != nil {
		if ae, ok := err.(*errors.AssetError); ok {
			ae.Detail = path + ": " + ae.Detail
		}
		return nil, err
	}
	return m, nil
}

// ParseManifest decodes manifest JSON (comments and trailing commas allowed).
func ParseManifest(data []byte) (*Manifest, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &top); err != nil {
		return nil, errors.New("E121").Wrap(err)
	}

	entries := make(map[string]string, len(top))

	if nested, ok := top["assets"]; ok && len(nested) > 0 && nested[0] == '{' {
		if err := json.Unmarshal(nested, &entries); err != nil {
			return nil, errors.New("E121").Wrap(err)
		}
		return &Manifest{entries: entries}, nil
	}

	for logical, raw := range top {
		var digest string
		if err := json.Unmarshal(raw, &digest); err != nil {
			return nil, errors.New("E121").
				WithDetail("entry " + logical + " is not a string").
				Wrap(err)
		}
		entries[logical] = digest
	}
	return &Manifest{entries: entries}, nil
}

// Lookup returns the digest path recorded for a logical path.
func (m *Manifest) Lookup(logical string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	digest, ok := m.entries[logical]
	return digest, ok
}

// Resolve returns the digest path for the given logical path.
// If not found, returns the logical path unchanged.
func (m *Manifest) Resolve(logical string) string {
	if digest, ok := m.Lookup(logical); ok {
		return digest
	}
	return logical
}

// Has returns true if the manifest contains the given logical path.
func (m *Manifest) Has(logical string) bool {
	_, ok := m.Lookup(logical)
	return ok
}

// Set adds or updates an entry in the manifest.
func (m *Manifest) Set(logical, digest string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[logical] = digest
}

// Len returns the number of entries in the manifest.
func (m *Manifest) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

// All returns a copy of all manifest entries.
func (m *Manifest) All() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]string, len(m.entries))
	for k, v := range m.entries {
		result[k] = v
	}
	return result
}

// WriteFile writes the manifest in the nested {"assets": {...}} shape.
func (m *Manifest) WriteFile(path string) error {
	data, err := json.MarshalIndent(struct {
		Assets map[string]string `json:"assets"`
	}{Assets: m.All()}, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
