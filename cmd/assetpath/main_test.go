package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/vango-dev/assetpath/internal/errors"
	"github.com/vango-dev/assetpath/pkg/assets"
	"github.com/vango-dev/assetpath/pkg/catalog"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, logs bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&logs)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// newProject writes a config, a catalog and a public directory.
func newProject(t *testing.T) (dir, configPath string) {
	t.Helper()
	dir = t.TempDir()
	files := map[string]string{
		"src/javascripts/app.js":    "console.log(1)\n",
		"src/javascripts/vendor.js": "var v\n",
		"public/images/logo.png":    "\x89PNG",
		"assetpath.json": `{
  "catalog": {
    "root": "src",
    "paths": ["javascripts"],
    "bundles": {"application.js": ["vendor.js", "app.js"]}
  }
}`,
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir, filepath.Join(dir, "assetpath.json")
}

func digestOf(t *testing.T, dir, logical string) string {
	t.Helper()
	cat := catalog.New(filepath.Join(dir, "src"), catalog.WithPaths("javascripts"),
		catalog.WithBundles(map[string][]string{"application.js": {"vendor.js", "app.js"}}))
	asset, ok := cat.Resolve(logical)
	if !ok {
		t.Fatalf("cannot resolve %s", logical)
	}
	return asset.DigestPath
}

func TestVersionShort(t *testing.T) {
	out, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if out != version+"\n" {
		t.Errorf("output = %q, want %q", out, version+"\n")
	}
}

func TestResolveCommand(t *testing.T) {
	dir, cfg := newProject(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"logical", []string{"app.js"}, "/assets/app.js\n"},
		{"digest", []string{"--digest", "app.js"}, "/assets/" + digestOf(t, dir, "app.js") + "\n"},
		{"kind", []string{"--kind=javascript", "app"}, "/assets/app.js\n"},
		{"expand", []string{"--expand", "application.js"}, "/assets/vendor.js?body=1\n/assets/app.js?body=1\n"},
		{"prefix", []string{"--prefix=/packs", "app.js"}, "/packs/app.js\n"},
		{"host", []string{"--host=cdn.example.com", "--protocol=https", "app.js"}, "https://cdn.example.com/assets/app.js\n"},
		{"external", []string{"https://example.com/x.js"}, "https://example.com/x.js\n"},
		{"several", []string{"app.js", "vendor.js"}, "/assets/app.js\n/assets/vendor.js\n"},
		{"debug wins", []string{"--debug", "--digest", "--host=cdn.example.com", "app.js"}, "/assets/app.js?body=1\n"},
		{"debug expands", []string{"--debug", "application.js"}, "/assets/vendor.js?body=1\n/assets/app.js?body=1\n"},
		{"debug without expand", []string{"--debug", "--expand=false", "application.js"}, "/assets/application.js\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", cfg, "resolve"}, tt.args...)
			out, err := execute(t, args...)
			if err != nil {
				t.Fatalf("resolve error: %v", err)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestResolveCommandFile(t *testing.T) {
	dir, cfg := newProject(t)
	info, err := os.Stat(filepath.Join(dir, "public", "images", "logo.png"))
	if err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--config", cfg, "resolve", "--kind=image", "logo.png")
	if err != nil {
		t.Fatal(err)
	}
	want := "/images/logo.png?" + strconv.FormatInt(info.ModTime().Unix(), 10) + "\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestResolveCommandJSON(t *testing.T) {
	_, cfg := newProject(t)

	out, err := execute(t, "--config", cfg, "resolve", "--json", "--expand", "application.js", "")
	if !errors.HasCode(err, "E004") {
		t.Errorf("error = %v, want E004 for the empty source", err)
	}

	var results []resolveOutput
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Strategy != assets.StrategyAsset || len(results[0].Paths) != 2 {
		t.Errorf("bundle result = %+v", results[0])
	}
	if results[1].Error == "" {
		t.Errorf("empty source result = %+v, want an error", results[1])
	}
}

func TestResolveCommandErrors(t *testing.T) {
	_, cfg := newProject(t)

	if _, err := execute(t, "--config", cfg, "resolve", "--kind=document", "x"); !errors.HasCode(err, "E003") {
		t.Errorf("unknown kind error = %v, want E003", err)
	}
	if _, err := execute(t, "--config", cfg, "resolve"); err == nil {
		t.Error("resolve without sources should fail")
	}
	if _, err := execute(t, "--config", filepath.Join(t.TempDir(), "none.json"), "resolve", "a.js"); !errors.HasCode(err, "E100") {
		t.Errorf("missing config error = %v, want E100", err)
	}
	if _, err := execute(t, "--log-level=loud", "version"); err == nil {
		t.Error("invalid log level should fail")
	}
}

func TestPrecompileAndManifest(t *testing.T) {
	dir, cfg := newProject(t)

	out, err := execute(t, "--config", cfg, "precompile", "--gzip")
	if err != nil {
		t.Fatalf("precompile error: %v", err)
	}
	if !strings.Contains(out, "Precompiled 3 assets") {
		t.Errorf("precompile output = %q", out)
	}

	appDigest := digestOf(t, dir, "app.js")
	for _, name := range []string{appDigest, appDigest + ".gz", "manifest.json"} {
		if _, err := os.Stat(filepath.Join(dir, "public", "assets", name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}

	out, err = execute(t, "--config", cfg, "manifest")
	if err != nil {
		t.Fatalf("manifest error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "app.js") || !strings.HasSuffix(lines[0], appDigest) {
		t.Errorf("manifest output = %q", out)
	}

	out, err = execute(t, "--config", cfg, "manifest", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var entries map[string]string
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatal(err)
	}
	if entries["app.js"] != appDigest {
		t.Errorf("manifest --json app.js = %q", entries["app.js"])
	}

	out, err = execute(t, "--config", cfg, "manifest", "app.js", "vendor.js")
	if err != nil {
		t.Fatal(err)
	}
	if want := appDigest + "\n" + digestOf(t, dir, "vendor.js") + "\n"; out != want {
		t.Errorf("manifest app.js vendor.js = %q, want %q", out, want)
	}

	if _, err := execute(t, "--config", cfg, "manifest", "app.js", "missing.js"); !errors.HasCode(err, "E122") {
		t.Errorf("manifest missing.js error = %v, want E122", err)
	}

	// The manifest now wins over the catalog.
	out, err = execute(t, "--config", cfg, "resolve", "--json", "app.js")
	if err != nil {
		t.Fatal(err)
	}
	var results []resolveOutput
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatal(err)
	}
	if results[0].Strategy != assets.StrategyManifest || results[0].Path != "/assets/"+appDigest {
		t.Errorf("resolve after precompile = %+v", results[0])
	}

	out, err = execute(t, "--config", cfg, "resolve", "--manifest=false", "app.js")
	if err != nil {
		t.Fatal(err)
	}
	if out != "/assets/app.js\n" {
		t.Errorf("--manifest=false output = %q", out)
	}
}

func TestManifestMissing(t *testing.T) {
	_, cfg := newProject(t)
	if _, err := execute(t, "--config", cfg, "manifest"); !errors.HasCode(err, "E120") {
		t.Errorf("error = %v, want E120", err)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := loadConfig(&globalFlags{})
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Path() != "" {
		t.Errorf("Path() = %q, want defaults without a file", cfg.Path())
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, errors.New("E004"))
	if !strings.Contains(buf.String(), "E004") {
		t.Errorf("coded error output = %q", buf.String())
	}

	buf.Reset()
	printError(&buf, os.ErrPermission)
	if !strings.Contains(buf.String(), "permission denied") {
		t.Errorf("plain error output = %q", buf.String())
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		0:       "0 B",
		512:     "512 B",
		2048:    "2.0 KB",
		1572864: "1.5 MB",
	}
	for in, want := range tests {
		if got := formatBytes(in); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
