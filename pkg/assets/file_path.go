package assets

import (
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/assetpath/pkg/uripath"
)

// filePath resolves a regular file in the public directory, complete with
// a modification-time token when the file exists.
type filePath struct {
	hostSelector
	dir        string
	publicPath string
	fs         FileSystem
}

func (f filePath) rewriteBase(u *uripath.URI) {
	if u.Rooted() {
		return
	}
	u.PrependPath(uripath.Join("/", f.dir))
}

func (f filePath) rewriteQuery(u *uripath.URI) {
	if modTime, ok := f.mtime(u.Path); ok {
		u.AppendQuery(strconv.FormatInt(modTime.Unix(), 10))
	}
}

// mtime returns the modification time of urlPath under the public
// directory. A missing file is not an error; the path simply goes out
// without a token. Paths that climb out of the public directory are never
// looked up.
func (f filePath) mtime(urlPath string) (time.Time, bool) {
	if f.fs == nil || !insidePublic(urlPath) {
		return time.Time{}, false
	}
	return f.fs.Stat(path.Join(f.publicPath, urlPath))
}

// insidePublic reports whether urlPath stays below the public directory.
func insidePublic(urlPath string) bool {
	if strings.ContainsAny(urlPath, "\\\x00") {
		return false
	}
	for _, seg := range strings.Split(urlPath, "/") {
		if seg == ".." {
			return false
		}
	}
	return true
}
