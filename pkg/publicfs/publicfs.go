// Package publicfs answers modification-time queries for files in a public
// directory, either on local disk or in an S3 bucket.
//
// Both implementations satisfy assets.FileSystem:
//
//	settings.FileSystem = publicfs.Dir("/srv/app")
//
//	client := s3.NewFromConfig(cfg)
//	settings.FileSystem = publicfs.NewBucket(client, "static-bucket", publicfs.WithKeyPrefix("site/"))
package publicfs

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Disk resolves names against the local filesystem.
type Disk struct {
	root string
}

// OS returns a Disk that resolves names relative to the working directory.
func OS() *Disk {
	return &Disk{}
}

// Dir returns a Disk rooted at root. Names are joined onto root; ".."
// segments cannot climb above it.
func Dir(root string) *Disk {
	return &Disk{root: root}
}

// Root returns the directory names are resolved against.
func (d *Disk) Root() string {
	return d.root
}

// Stat returns the modification time of a regular file. Directories and
// missing files report ok=false.
func (d *Disk) Stat(name string) (time.Time, bool) {
	info, err := os.Stat(d.path(name))
	if err != nil || info.IsDir() {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

func (d *Disk) path(name string) string {
	p := filepath.FromSlash(name)
	if d.root == "" {
		return p
	}
	// Clean as if rooted so that the result stays under root.
	rel := filepath.Clean(string(filepath.Separator) + strings.TrimPrefix(p, string(filepath.Separator)))
	return filepath.Join(d.root, rel)
}
