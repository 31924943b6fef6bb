package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "contract error",
			code:    "E001",
			wantMsg: "Invalid prefix value",
			wantCat: CategoryContract,
		},
		{
			name:    "config error",
			code:    "E101",
			wantMsg: "Invalid config file",
			wantCat: CategoryConfig,
		},
		{
			name:    "manifest error",
			code:    "E121",
			wantMsg: "Invalid manifest",
			wantCat: CategoryManifest,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "source %q not resolvable", "main")
	if err.Message != `source "main" not resolvable` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
}

func TestAssetError_Error(t *testing.T) {
	if got := New("E002").Error(); got != "E002: Invalid host value" {
		t.Errorf("Error() = %q", got)
	}

	plain := &AssetError{Message: "plain"}
	if plain.Error() != "plain" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "plain")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("resolving main.js: %w", New("E001").WithDetail("nil function"))

	if !HasCode(err, "E001") {
		t.Error("HasCode(E001) = false through fmt wrapping")
	}
	if HasCode(err, "E002") {
		t.Error("HasCode(E002) = true for E001 error")
	}
	if HasCode(stderrors.New("plain"), "E001") {
		t.Error("HasCode on plain error = true")
	}
	if !IsCategory(err, CategoryContract) {
		t.Error("IsCategory(contract) = false")
	}
}

func TestWrapAndFromError(t *testing.T) {
	if FromError(nil, "E120") != nil {
		t.Error("FromError(nil) should return nil")
	}

	ae := New("E121")
	if FromError(ae, "E120") != ae {
		t.Error("FromError should return AssetError as-is")
	}

	cause := os.ErrNotExist
	wrapped := FromError(cause, "E120")
	if wrapped.Code != "E120" || !stderrors.Is(wrapped, os.ErrNotExist) {
		t.Errorf("FromError(ErrNotExist) = %+v", wrapped)
	}
}

func TestWithLocation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assetpath.yaml")
	content := "prefix: /assets\ndigest: maybe\nhost: cdn%d.example.com\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	err := New("E101").WithLocation(path, 2, 9)
	if err.Location == nil || err.Location.Line != 2 {
		t.Fatalf("Location = %+v", err.Location)
	}
	if len(err.Context) == 0 {
		t.Fatal("Context should not be empty")
	}

	DisableColors()
	defer EnableColors()

	formatted := err.Format()
	for _, want := range []string{"E101", "Invalid config file", path, "digest: maybe", "^", "Learn more:"} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format() missing %q:\n%s", want, formatted)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E102").WithDetail("protocol must be http, https or relative")
	want := "E102: Invalid config value (protocol must be http, https or relative)"
	if got := err.FormatCompact(); got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestMarshalJSON(t *testing.T) {
	data, err := json.Marshal(New("E002").WithSuggestion("use a literal"))
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["code"] != "E002" || decoded["category"] != "contract" || decoded["suggestion"] != "use a literal" {
		t.Errorf("MarshalJSON = %s", data)
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, New("E140").Wrap(stderrors.New("disk full")))
	if !strings.Contains(buf.String(), "Cause: disk full") {
		t.Errorf("Fprint = %q", buf.String())
	}

	buf.Reset()
	Fprint(&buf, stderrors.New("boom"))
	if !strings.Contains(buf.String(), "ERROR: boom") {
		t.Errorf("Fprint plain = %q", buf.String())
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 || codes[0] != "E001" {
		t.Errorf("GetAllCodes() = %v", codes)
	}
}

func TestRegister(t *testing.T) {
	Register("E999", ErrorTemplate{
		Category: CategoryServer,
		Message:  "Custom test error",
	})
	defer delete(registry, "E999")

	if got := New("E999").Message; got != "Custom test error" {
		t.Errorf("Message = %q", got)
	}
	if _, ok := GetTemplate("E999"); !ok {
		t.Error("GetTemplate(E999) not found after Register")
	}
}

func TestWrapText(t *testing.T) {
	if got := wrapText("short text", 100); len(got) != 1 {
		t.Errorf("wrapText short: %v", got)
	}
	if got := wrapText("this is a longer text that should be wrapped", 20); len(got) != 3 {
		t.Errorf("wrapText long: %v", got)
	}
	if got := wrapText("", 10); len(got) != 0 {
		t.Errorf("wrapText empty: %v", got)
	}
}
