package templates

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/vango-dev/routegen/internal/errors"
	"github.com/vango-dev/routegen/pkg/routes"
)

func TestGet(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"minimal", false},
		{"app", false},
		{"nonexistent", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := Get(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tmpl.Name != tt.name {
				t.Errorf("Name = %q, want %q", tmpl.Name, tt.name)
			}
		})
	}
}

func TestList(t *testing.T) {
	names := List()
	if strings.Join(names, ",") != "app,minimal" {
		t.Errorf("List() = %v, want [app minimal]", names)
	}
}

func TestGetUnknownListsTemplates(t *testing.T) {
	_, err := Get("blog")
	var coded *errors.Error
	if !stderrors.As(err, &coded) {
		t.Fatalf("Get() error = %v, want *errors.Error", err)
	}
	if coded.Code != errors.CodeInvalidConfig {
		t.Errorf("Code = %q, want %q", coded.Code, errors.CodeInvalidConfig)
	}
	if want := "Available templates: app, minimal"; coded.Suggestion != want {
		t.Errorf("Suggestion = %q, want %q", coded.Suggestion, want)
	}
}

func TestCreate(t *testing.T) {
	tmpl, _ := Get("app")
	fsys := afero.NewMemMapFs()

	created, err := tmpl.Create(fsys, "src/pages", Config{AppName: "Acme", Extension: ".tsx"})
	if err != nil {
		t.Fatal(err)
	}
	if len(created) != len(tmpl.Files) {
		t.Fatalf("created %d files, want %d: %v", len(created), len(tmpl.Files), created)
	}

	data, err := afero.ReadFile(fsys, "src/pages/index.tsx")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Welcome to Acme") {
		t.Errorf("index.tsx = %q, want the app name", data)
	}

	post, err := afero.ReadFile(fsys, "src/pages/blog/[slug].tsx")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(post), "const { slug } = useParams();") {
		t.Errorf("[slug].tsx lost its JSX: %q", post)
	}
}

func TestCreateKeepsExistingFiles(t *testing.T) {
	tmpl, _ := Get("minimal")
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "src/pages/index.jsx", []byte("mine"), 0o644); err != nil {
		t.Fatal(err)
	}

	created, err := tmpl.Create(fsys, "src/pages", Config{})
	if err != nil {
		t.Fatal(err)
	}
	if len(created) != 0 {
		t.Errorf("created = %v, want none", created)
	}
	data, _ := afero.ReadFile(fsys, "src/pages/index.jsx")
	if string(data) != "mine" {
		t.Errorf("index.jsx was overwritten: %q", data)
	}
}

// The app starter exercises every convention, so it must compile to the
// expected route table.
func TestAppTemplateCompiles(t *testing.T) {
	tmpl, _ := Get("app")
	fsys := afero.NewMemMapFs()
	if _, err := tmpl.Create(fsys, routes.DefaultPagesDir, Config{}); err != nil {
		t.Fatal(err)
	}

	compiler := routes.NewCompiler(fsys, routes.Options{DryRun: true},
		routes.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	result, err := compiler.Compile(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	var paths []string
	for _, p := range result.Tree.Pages() {
		paths = append(paths, p.URLPath)
	}
	got := strings.Join(paths, " ")
	for _, want := range []string{"/", "/about", "/404", "/blog/:slug", "/pricing"} {
		if !strings.Contains(" "+got+" ", " "+want+" ") {
			t.Errorf("routes %q missing %s", got, want)
		}
	}
	if strings.Contains(got, "Card") || len(paths) != 5 {
		t.Errorf("routes = %q, want exactly 5 pages", got)
	}
	if len(result.Collisions) != 0 {
		t.Errorf("collisions = %v", result.Collisions)
	}
}
