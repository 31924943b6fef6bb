package server

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/assetpath/pkg/assets"
)

const (
	cacheImmutable   = "public, max-age=31536000, immutable"
	cacheRevalidate  = "public, max-age=3600, must-revalidate"
	cacheDevelopment = "no-store, no-cache, must-revalidate"
)

// serveAsset serves a managed asset by digest or logical path, falling
// back to the public directory where precompiled copies live.
func (s *Server) serveAsset(w http.ResponseWriter, r *http.Request) {
	rel, ok := cleanRelPath(strings.TrimPrefix(r.URL.Path, s.prefix+"/"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	if s.source != nil {
		if asset, ok := s.source.ResolveDigest(rel); ok {
			s.writeAsset(w, r, asset, true)
			return
		}
		if asset, ok := s.source.Resolve(rel); ok {
			s.writeAsset(w, r, asset, false)
			return
		}
	}

	s.servePublic(w, r)
}

// writeAsset writes the body of asset. body=1 selects the single file;
// otherwise bundles are concatenated.
func (s *Server) writeAsset(w http.ResponseWriter, r *http.Request, asset *assets.Asset, digested bool) {
	single := r.URL.Query().Get("body") == "1"

	var data []byte
	var err error
	if single {
		var f io.ReadCloser
		f, err = s.source.Open(asset.LogicalPath)
		if err == nil {
			data, err = io.ReadAll(f)
			f.Close()
		}
	} else {
		data, err = s.source.Concat(asset.LogicalPath)
	}
	if err != nil {
		if isNotExist(err) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("asset read failed", "logical", asset.LogicalPath, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	switch {
	case s.debug():
		w.Header().Set("Cache-Control", cacheDevelopment)
	case digested:
		w.Header().Set("Cache-Control", cacheImmutable)
	default:
		w.Header().Set("Cache-Control", cacheRevalidate)
	}
	if !single && asset.DigestPath != "" {
		w.Header().Set("ETag", `"`+asset.DigestPath+`"`)
	}

	http.ServeContent(w, r, asset.LogicalPath, time.Time{}, bytes.NewReader(data))
}

// servePublic serves a file from the public directory. A precompressed
// .gz sibling is preferred when the client accepts gzip.
func (s *Server) servePublic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.publicFS == nil {
		http.NotFound(w, r)
		return
	}

	rel, ok := staticRelPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if acceptsGzip(r) {
		if f, info, ok := s.openPublic(rel + ".gz"); ok {
			defer f.Close()
			w.Header().Set("Content-Encoding", "gzip")
			w.Header().Add("Vary", "Accept-Encoding")
			s.applyCacheHeaders(w, rel)
			http.ServeContent(w, r, rel, info.ModTime(), f)
			return
		}
	}

	f, info, ok := s.openPublic(rel)
	if !ok {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	s.applyCacheHeaders(w, rel)
	http.ServeContent(w, r, rel, info.ModTime(), f)
}

func (s *Server) openPublic(rel string) (http.File, fs.FileInfo, bool) {
	f, err := s.publicFS.Open("/" + rel)
	if err != nil {
		return nil, nil, false
	}
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		f.Close()
		return nil, nil, false
	}
	return f, info, true
}

func (s *Server) debug() bool {
	return s.config.Debug != nil && *s.config.Debug
}

// staticRelPath returns a sanitized relative path for a static file request.
// It rejects traversal and absolute-path tricks to ensure static serving cannot
// escape the public directory.
func staticRelPath(urlPath string) (string, bool) {
	return cleanRelPath(strings.TrimPrefix(urlPath, "/"))
}

func cleanRelPath(rel string) (string, bool) {
	if rel == "" {
		return "", false
	}

	// Reject NUL early (can appear via %00).
	if strings.IndexByte(rel, 0) != -1 {
		return "", false
	}

	// Reject platform-dependent separators.
	if strings.Contains(rel, "\\") {
		return "", false
	}

	// A leading "/" after prefix stripping is an absolute-path attempt
	// (e.g. "/assets//etc/passwd" => "/etc/passwd").
	if strings.HasPrefix(rel, "/") {
		return "", false
	}

	// Reject dot-segments before cleaning so traversal attempts are not
	// cleaned away.
	for _, seg := range strings.Split(rel, "/") {
		if seg == "." || seg == ".." {
			return "", false
		}
	}

	clean := path.Clean(rel)
	if clean == "." || clean == "" || clean == ".." || strings.HasPrefix(clean, "../") || strings.HasPrefix(clean, "/") {
		return "", false
	}

	osPath := filepath.FromSlash(clean)
	if filepath.IsAbs(osPath) || filepath.VolumeName(osPath) != "" {
		return "", false
	}

	return clean, true
}

// applyCacheHeaders sets Cache-Control for a public file.
func (s *Server) applyCacheHeaders(w http.ResponseWriter, filePath string) {
	switch {
	case s.debug():
		w.Header().Set("Cache-Control", cacheDevelopment)
	case isFingerprinted(filePath):
		w.Header().Set("Cache-Control", cacheImmutable)
	default:
		w.Header().Set("Cache-Control", cacheRevalidate)
	}
}

// isFingerprinted reports whether the file name carries a content hash,
// either "app-<hex>.css" or "app.<hex>.css". Hashes are 8+ hex characters.
func isFingerprinted(filePath string) bool {
	base := path.Base(filePath)
	base = strings.TrimSuffix(base, path.Ext(base))

	i := strings.LastIndexAny(base, "-.")
	if i < 0 {
		return false
	}
	hash := base[i+1:]
	if len(hash) < 8 {
		return false
	}
	for _, c := range hash {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

func acceptsGzip(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		enc, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if strings.TrimSpace(enc) != "gzip" {
			continue
		}
		if q, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			weight, err := strconv.ParseFloat(q, 64)
			return err == nil && weight > 0
		}
		return true
	}
	return false
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
