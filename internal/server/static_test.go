package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vango-dev/assetpath/internal/config"
)

func TestServeAsset(t *testing.T) {
	f := newFixture(t, nil)
	appDigest := f.digest(t, "app.js")
	bundleDigest := f.digest(t, "application.js")

	tests := []struct {
		name   string
		target string
		status int
		body   string
		cache  string
		etag   string
	}{
		{"logical", "/assets/app.js", 200, "console.log(1)\n", cacheRevalidate, `"` + appDigest + `"`},
		{"digest", "/assets/" + bundleDigest, 200, "var v\nconsole.log(1)\n", cacheImmutable, `"` + bundleDigest + `"`},
		{"bundle concat", "/assets/application.js", 200, "var v\nconsole.log(1)\n", cacheRevalidate, `"` + bundleDigest + `"`},
		{"single body", "/assets/vendor.js?body=1", 200, "var v", cacheRevalidate, ""},
		{"bundle without own file", "/assets/application.js?body=1", 404, "", "", ""},
		{"precompiled in public", "/assets/old-0123456789abcdef.js", 200, "old()", cacheImmutable, ""},
		{"missing", "/assets/missing.js", 404, "", "", ""},
		{"traversal", "/assets/..%2f..%2fetc%2fpasswd", 404, "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.get(t, tt.target)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status != http.StatusOK {
				return
			}
			if rec.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.body)
			}
			if got := rec.Header().Get("Cache-Control"); got != tt.cache {
				t.Errorf("Cache-Control = %q, want %q", got, tt.cache)
			}
			if got := rec.Header().Get("ETag"); got != tt.etag {
				t.Errorf("ETag = %q, want %q", got, tt.etag)
			}
		})
	}
}

func TestServeAssetNotModified(t *testing.T) {
	f := newFixture(t, nil)
	etag := `"` + f.digest(t, "app.js") + `"`

	rec := f.get(t, "/assets/app.js", "If-None-Match", etag)
	if rec.Code != http.StatusNotModified {
		t.Errorf("status = %d, want 304", rec.Code)
	}
}

func TestServePublic(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		name   string
		target string
		status int
		body   string
		cache  string
	}{
		{"plain file", "/robots.txt", 200, "User-agent: *\n", cacheRevalidate},
		{"fingerprinted", "/css/site-0123abcd.css", 200, "body{}", cacheImmutable},
		{"nested", "/images/logo.png", 200, "\x89PNG", cacheRevalidate},
		{"directory", "/images", 404, "", ""},
		{"missing", "/nope.txt", 404, "", ""},
		{"traversal", "/..%2f..%2fetc%2fpasswd", 404, "", ""},
		{"backslash", "/images%5clogo.png", 404, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.get(t, tt.target)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status != http.StatusOK {
				return
			}
			if rec.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.body)
			}
			if got := rec.Header().Get("Cache-Control"); got != tt.cache {
				t.Errorf("Cache-Control = %q, want %q", got, tt.cache)
			}
		})
	}
}

func TestServePublicHead(t *testing.T) {
	f := newFixture(t, nil)

	req := httptest.NewRequest(http.MethodHead, "/robots.txt", nil)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("HEAD body = %q, want empty", rec.Body.String())
	}
}

func TestServePrecompressed(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		off := false
		c.Server.Compress = &off
	})

	rec := f.get(t, "/precompressed.js", "Accept-Encoding", "gzip, deflate")
	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", rec.Header().Get("Content-Encoding"))
	}
	if rec.Body.String() != "gzip-bytes" {
		t.Errorf("body = %q, want the .gz sibling", rec.Body.String())
	}

	rec = f.get(t, "/precompressed.js")
	if rec.Header().Get("Content-Encoding") != "" || rec.Body.String() != "plain()" {
		t.Errorf("without gzip: encoding %q body %q", rec.Header().Get("Content-Encoding"), rec.Body.String())
	}

	rec = f.get(t, "/precompressed.js", "Accept-Encoding", "gzip;q=0")
	if rec.Body.String() != "plain()" {
		t.Errorf("gzip;q=0 body = %q", rec.Body.String())
	}
}

func TestServeDebugCache(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		on := true
		c.Debug = &on
	})

	for _, target := range []string{"/assets/app.js", "/css/site-0123abcd.css"} {
		rec := f.get(t, target)
		if got := rec.Header().Get("Cache-Control"); got != cacheDevelopment {
			t.Errorf("%s Cache-Control = %q, want %q", target, got, cacheDevelopment)
		}
	}
}

func TestServeRootMount(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.Prefix = config.ValueConfig{Disabled: true}
	})

	rec := f.get(t, "/app.js")
	if rec.Code != http.StatusOK || rec.Body.String() != "console.log(1)\n" {
		t.Errorf("/app.js = %d %q", rec.Code, rec.Body.String())
	}
	rec = f.get(t, "/robots.txt")
	if rec.Code != http.StatusOK || rec.Body.String() != "User-agent: *\n" {
		t.Errorf("/robots.txt = %d %q", rec.Code, rec.Body.String())
	}
}

func TestStaticRelPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"/robots.txt", "robots.txt", true},
		{"/images/logo.png", "images/logo.png", true},
		{"/", "", false},
		{"//etc/passwd", "", false},
		{"/../secret", "", false},
		{"/images/./logo.png", "", false},
		{"/a\\b", "", false},
		{"/a\x00b", "", false},
	}
	for _, tt := range tests {
		got, ok := staticRelPath(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("staticRelPath(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestIsFingerprinted(t *testing.T) {
	tests := map[string]bool{
		"application-1f0e3dad99908345f7439f8ffabdffc4.js": true,
		"css/site-0123abcd.css":                           true,
		"app.a1b2c3d4.css":                                true,
		"robots.txt":                                      false,
		"jquery-ui.js":                                    false,
		"logo-2024.png":                                   false,
		"report-final-draft.pdf":                          false,
	}
	for name, want := range tests {
		if got := isFingerprinted(name); got != want {
			t.Errorf("isFingerprinted(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestAcceptsGzip(t *testing.T) {
	tests := map[string]bool{
		"":                  false,
		"gzip":              true,
		"deflate, gzip":     true,
		"gzip;q=0":          false,
		"gzip; q=0.5":       true,
		"br":                false,
		"x-gzip, identity":  false,
	}
	for header, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Encoding", header)
		if got := acceptsGzip(req); got != want {
			t.Errorf("acceptsGzip(%q) = %v, want %v", header, got, want)
		}
	}
}
