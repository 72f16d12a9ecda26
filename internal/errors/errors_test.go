package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/vango-dev/routegen/pkg/routes"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "pages root",
			code:    CodePagesRootNotFound,
			wantMsg: "Pages directory not found",
			wantCat: CategoryConfig,
		},
		{
			name:    "write failure",
			code:    CodeWriteFailed,
			wantMsg: "Could not write the generated routes file",
			wantCat: CategoryFS,
		},
		{
			name:    "drift",
			code:    CodeOutOfDate,
			wantMsg: "Generated routes file is out of date",
			wantCat: CategoryCheck,
		},
		{
			name:    "unknown error code",
			code:    "R999",
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

func TestRegistryIsComplete(t *testing.T) {
	for _, code := range Codes() {
		tmpl, ok := Lookup(code)
		if !ok {
			t.Fatalf("Lookup(%q) failed", code)
		}
		if tmpl.Message == "" || tmpl.Category == "" || tmpl.DocURL == "" {
			t.Errorf("template %s is incomplete: %+v", code, tmpl)
		}
		if !strings.HasSuffix(tmpl.DocURL, code) {
			t.Errorf("template %s doc URL %q does not end with the code", code, tmpl.DocURL)
		}
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "unknown format %q", "xml")
	if err.Message != `unknown format "xml"` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
}

func TestError_Error(t *testing.T) {
	err := New(CodeOutOfDate)
	if got, want := err.Error(), "R010: Generated routes file is out of date"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := New(CodeWriteFailed).Wrap(fmt.Errorf("disk full"))
	if got := wrapped.Error(); !strings.HasSuffix(got, ": disk full") {
		t.Errorf("Error() = %q, want cause appended", got)
	}

	plain := &Error{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"pages root", fmt.Errorf("%w: src/pages", routes.ErrPagesRootNotFound), CodePagesRootNotFound},
		{"probe", fmt.Errorf("%w: x", routes.ErrProbe), CodeProbeFailed},
		{"write", fmt.Errorf("%w: x", routes.ErrWrite), CodeWriteFailed},
		{"pattern", fmt.Errorf("%w %q", routes.ErrInvalidPattern, "[x"), CodeInvalidPattern},
		{"discover", fmt.Errorf("%w: walk src/pages: %w", routes.ErrDiscover, fs.ErrPermission), CodeDiscoverFailed},
		{"other", fmt.Errorf("boom"), CodeDevServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromError(tt.err, CodeDevServer)
			if got.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", got.Code, tt.wantCode)
			}
			if !stderrors.Is(got, tt.err) {
				t.Error("FromError should wrap the original error")
			}
		})
	}
}

func TestFromErrorKeepsCodedErrors(t *testing.T) {
	orig := New(CodeOutOfDate)
	if got := FromError(fmt.Errorf("check: %w", orig), CodeWriteFailed); got != orig {
		t.Errorf("FromError returned %v, want the original *Error", got)
	}
	if FromError(nil, CodeWriteFailed) != nil {
		t.Error("FromError(nil) should be nil")
	}
}

func TestFromErrorExtractsPath(t *testing.T) {
	cause := &fs.PathError{Op: "open", Path: "src/generated/routes.jsx", Err: fs.ErrPermission}
	got := FromError(fmt.Errorf("%w: %w", routes.ErrWrite, cause), CodeDevServer)
	if got.Path != "src/generated/routes.jsx" {
		t.Errorf("Path = %q", got.Path)
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(fmt.Errorf("x: %w", New(CodeWatcher))); got != CodeWatcher {
		t.Errorf("CodeOf() = %q, want %q", got, CodeWatcher)
	}
	if got := CodeOf(fmt.Errorf("plain")); got != "" {
		t.Errorf("CodeOf() = %q, want empty", got)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New(CodePagesRootNotFound).WithPath("src/pages")
	out := err.Format()

	for _, want := range []string{
		"ERROR R001: Pages directory not found",
		"  src/pages\n",
		"Hint: Create the folder",
		"Learn more: https://routegen.dev/docs/errors/R001",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("Format() contains ANSI codes with colors disabled")
	}
}

func TestFormatWithColors(t *testing.T) {
	EnableColors()
	out := New(CodeWriteFailed).Format()
	if !strings.Contains(out, colorRed) {
		t.Error("Format() should use colors when enabled")
	}
}

func TestFormatCompact(t *testing.T) {
	err := New(CodeWriteFailed).WithPath("out.jsx")
	if got, want := err.FormatCompact(), "out.jsx: R003: Could not write the generated routes file"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New(CodeInvalidPattern).WithPath("routegen.yaml").Wrap(fmt.Errorf("unexpected end"))

	var decoded map[string]any
	if jerr := json.Unmarshal([]byte(err.FormatJSON()), &decoded); jerr != nil {
		t.Fatalf("FormatJSON() is not valid JSON: %v", jerr)
	}
	if decoded["code"] != "R004" {
		t.Errorf("code = %v", decoded["code"])
	}
	if decoded["category"] != string(CategoryConfig) {
		t.Errorf("category = %v", decoded["category"])
	}
	if decoded["cause"] != "unexpected end" {
		t.Errorf("cause = %v", decoded["cause"])
	}
}

func TestPrint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Print(&buf, New(CodeOutOfDate))
	if !strings.Contains(buf.String(), "ERROR R010") {
		t.Errorf("Print() = %q", buf.String())
	}

	buf.Reset()
	Print(&buf, fmt.Errorf("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("Print() = %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 40), 20)
	for _, line := range lines {
		if len(line) > 20 {
			t.Errorf("line %q exceeds width", line)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("wrapText(\"\") should be nil")
	}
}
