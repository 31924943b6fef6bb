package catalog

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/assetpath/pkg/assets"
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func newTestCatalog(t *testing.T) (*Catalog, string) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "javascripts/jquery.js", "var jQuery;")
	writeFile(t, root, "javascripts/app.js", "app();\n")
	writeFile(t, root, "javascripts/application.js", "boot();")
	writeFile(t, root, "vendor/app.js", "vendored();")
	writeFile(t, root, "vendor/lib/chart.js", "chart();")
	writeFile(t, root, "javascripts/.hidden.js", "secret")
	writeFile(t, root, "stylesheets/site.css", "body{}")

	c := New(root,
		WithPaths("javascripts", "stylesheets", "vendor"),
		WithBundles(map[string][]string{
			"application.js": {"jquery.js", "app.js", "missing.js"},
			"all.css":        {"site.css"},
		}),
	)
	return c, root
}

func TestResolveFile(t *testing.T) {
	c, _ := newTestCatalog(t)

	tests := []struct {
		logical string
		content string
	}{
		{"jquery.js", "var jQuery;"},
		{"app.js", "app();\n"},
		{"lib/chart.js", "chart();"},
		{"site.css", "body{}"},
	}

	for _, tt := range tests {
		t.Run(tt.logical, func(t *testing.T) {
			a, ok := c.Resolve(tt.logical)
			if !ok {
				t.Fatalf("Resolve(%q) = false", tt.logical)
			}
			if a.LogicalPath != tt.logical {
				t.Errorf("LogicalPath = %q", a.LogicalPath)
			}
			ext := filepath.Ext(tt.logical)
			want := strings.TrimSuffix(tt.logical, ext) + "-" + Digest([]byte(tt.content)) + ext
			if a.DigestPath != want {
				t.Errorf("DigestPath = %q, want %q", a.DigestPath, want)
			}
			if a.IsBundle() {
				t.Error("plain file reported as bundle")
			}
		})
	}
}

func TestResolveRejects(t *testing.T) {
	c, _ := newTestCatalog(t)

	for _, logical := range []string{"", "missing.js", "/app.js", "../vendor/app.js", "lib/../app.js", ".", "lib"} {
		if _, ok := c.Resolve(logical); ok {
			t.Errorf("Resolve(%q) = true, want false", logical)
		}
	}
}

func TestResolveBundle(t *testing.T) {
	c, root := newTestCatalog(t)

	a, ok := c.Resolve("application.js")
	if !ok {
		t.Fatal("Resolve(application.js) = false")
	}
	if !a.IsBundle() {
		t.Fatal("bundle has no dependencies")
	}

	var got []string
	for _, dep := range a.Dependencies {
		got = append(got, dep.LogicalPath)
	}
	want := []string{"jquery.js", "app.js", "application.js"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("dependencies = %v, want %v", got, want)
	}
	if self := a.Dependencies[2]; self.DigestPath != "application-"+Digest([]byte("boot();"))+".js" {
		t.Errorf("own file digest = %q", self.DigestPath)
	}
	if !strings.HasPrefix(a.DigestPath, "application-") || a.DigestPath == a.Dependencies[2].DigestPath {
		t.Errorf("bundle DigestPath = %q", a.DigestPath)
	}

	writeFile(t, root, "javascripts/app.js", "app(); changed();\n")
	b, _ := c.Resolve("application.js")
	if b.DigestPath == a.DigestPath {
		t.Error("bundle digest did not change with a member")
	}
}

func TestBundleCycle(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.js", "a")
	c := New(root, WithBundles(map[string][]string{
		"one.js": {"two.js", "a.js"},
		"two.js": {"one.js"},
	}))

	a, ok := c.Resolve("one.js")
	if !ok {
		t.Fatal("Resolve(one.js) = false")
	}
	if len(a.Dependencies) != 2 {
		t.Errorf("dependencies = %d, want 2", len(a.Dependencies))
	}

	body, err := c.Concat("one.js")
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "a" {
		t.Errorf("Concat(one.js) = %q", body)
	}
}

func TestLookup(t *testing.T) {
	c, _ := newTestCatalog(t)

	a, ok := c.Lookup(URI("lib/chart.js"))
	if !ok || a.LogicalPath != "lib/chart.js" {
		t.Errorf("Lookup(catalog:lib/chart.js) = %v, %v", a, ok)
	}
	if _, ok := c.Lookup("jquery.js"); !ok {
		t.Error("Lookup(jquery.js) = false")
	}
	if _, ok := c.Lookup(URI("nope.js")); ok {
		t.Error("Lookup(catalog:nope.js) = true")
	}
}

func TestResolveDigest(t *testing.T) {
	c, _ := newTestCatalog(t)

	a, _ := c.Resolve("lib/chart.js")
	got, ok := c.ResolveDigest(a.DigestPath)
	if !ok || got.LogicalPath != "lib/chart.js" {
		t.Errorf("ResolveDigest(%q) = %v, %v", a.DigestPath, got, ok)
	}

	stale := "lib/chart-" + strings.Repeat("0", digestLen) + ".js"
	if _, ok := c.ResolveDigest(stale); ok {
		t.Errorf("ResolveDigest(%q) = true for stale digest", stale)
	}
	if _, ok := c.ResolveDigest("lib/chart.js"); ok {
		t.Error("ResolveDigest() accepted a logical path")
	}
}

func TestOpenAndConcat(t *testing.T) {
	c, _ := newTestCatalog(t)

	r, err := c.Open("application.js")
	if err != nil {
		t.Fatal(err)
	}
	data, _ := io.ReadAll(r)
	r.Close()
	if string(data) != "boot();" {
		t.Errorf("Open(application.js) = %q", data)
	}

	body, err := c.Concat("application.js")
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "var jQuery;\napp();\nboot();" {
		t.Errorf("Concat(application.js) = %q", body)
	}

	body, err = c.Concat("all.css")
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "body{}" {
		t.Errorf("Concat(all.css) = %q", body)
	}

	if _, err := c.Open("missing.js"); err == nil {
		t.Error("Open(missing.js) should fail")
	}
	if _, err := c.Concat("../etc/passwd"); err == nil {
		t.Error("Concat() accepted a path outside the catalog")
	}
}

func TestWalk(t *testing.T) {
	c, _ := newTestCatalog(t)

	var got []string
	if err := c.Walk(func(logical string) error {
		got = append(got, logical)
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	want := []string{"all.css", "app.js", "application.js", "jquery.js", "lib/chart.js", "site.css"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Walk() = %v, want %v", got, want)
	}
}

func TestWalkMissingPath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.js", "a")
	c := New(root, WithPaths("missing", "."))

	var got []string
	if err := c.Walk(func(logical string) error {
		got = append(got, logical)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "a.js" {
		t.Errorf("Walk() = %v", got)
	}
}

func TestCatalogAsEnvironment(t *testing.T) {
	c, _ := newTestCatalog(t)

	s := assets.DefaultSettings()
	s.Environment = c
	s.Digest = true
	h, err := assets.New(s)
	if err != nil {
		t.Fatal(err)
	}

	jquery, _ := c.Resolve("jquery.js")
	app, _ := c.Resolve("app.js")
	bundle, _ := c.Resolve("application.js")

	paths, err := h.AssetPaths("application", assets.Options{Ext: "js", Expand: assets.Bool(true)})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"/assets/" + jquery.DigestPath + "?body=1",
		"/assets/" + app.DigestPath + "?body=1",
		"/assets/" + bundle.Dependencies[2].DigestPath + "?body=1",
	}
	if strings.Join(paths, " ") != strings.Join(want, " ") {
		t.Errorf("AssetPaths() = %v, want %v", paths, want)
	}

	got, err := h.JavascriptPath("application", assets.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "/assets/"+bundle.DigestPath {
		t.Errorf("JavascriptPath() = %q", got)
	}
}
