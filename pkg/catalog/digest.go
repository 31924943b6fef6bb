package catalog

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// digestFile returns the content digest of file, reusing the cached value
// while the file's size and modification time are unchanged.
func (c *Catalog) digestFile(file string) (string, error) {
	info, err := os.Stat(file)
	if err != nil {
		return "", err
	}

	c.mu.RLock()
	entry, ok := c.cache[file]
	c.mu.RUnlock()
	if ok && entry.size == info.Size() && entry.modTime.Equal(info.ModTime()) {
		return entry.digest, nil
	}

	digest, err := hashFile(file)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.cache[file] = digestEntry{modTime: info.ModTime(), size: info.Size(), digest: digest}
	c.mu.Unlock()
	return digest, nil
}

// hashFile returns the truncated BLAKE3 hex digest of a file's content.
func hashFile(file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("catalog: hash %s: %w", file, err)
	}
	return hex.EncodeToString(h.Sum(nil))[:digestLen], nil
}

// digestStrings hashes a sequence of member digests into a bundle digest.
func digestStrings(parts []string) string {
	h := blake3.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))[:digestLen]
}

// Digest returns the truncated BLAKE3 hex digest of data, as used in
// digest paths.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])[:digestLen]
}
