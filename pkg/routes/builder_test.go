package routes

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func buildTree(t *testing.T, fsys afero.Fs, root string) *Tree {
	t.Helper()
	files, err := Discover(fsys, root, DiscoverOptions{})
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	b := NewBuilder(fsys, root, BuilderOptions{Logger: quietLogger})
	for _, f := range files {
		b.Insert(Classify(f, DefaultExtensions))
	}
	if err := b.Augment(context.Background()); err != nil {
		t.Fatalf("Augment() error: %v", err)
	}
	return b.Tree()
}

func findPage(t *testing.T, tree *Tree, urlPath string) *RouteNode {
	t.Helper()
	for _, p := range tree.Pages() {
		if p.URLPath == urlPath {
			return p
		}
	}
	t.Fatalf("no page for %s", urlPath)
	return nil
}

func TestBuilderMergesFolders(t *testing.T) {
	fsys := newPages(t,
		"pages/users/index.jsx",
		"pages/users/[id].jsx",
		"pages/users/new.jsx",
	)
	tree := buildTree(t, fsys, "pages")

	if len(tree.Root.Children) != 1 {
		t.Fatalf("root has %d children, want 1", len(tree.Root.Children))
	}
	users, ok := tree.Root.Child("users").(*GroupNode)
	if !ok {
		t.Fatal("users group missing")
	}
	if len(users.Children) != 3 {
		t.Errorf("users has %d children, want 3", len(users.Children))
	}
	if users.URLPath != "/users" {
		t.Errorf("users URLPath = %q, want /users", users.URLPath)
	}
	findPage(t, tree, "/users/:id")
}

func TestBuilderLoadingInheritance(t *testing.T) {
	fsys := newPages(t,
		"pages/loading.jsx",
		"pages/a/page.jsx",
		"pages/a/b/loading.tsx",
		"pages/a/b/deep.jsx",
		"pages/a/b/c/deeper.jsx",
	)
	tree := buildTree(t, fsys, "pages")

	if got := findPage(t, tree, "/a/page").Loading; got == nil || got.Ident != "RootLoading" {
		t.Errorf("/a/page loading = %+v, want RootLoading", got)
	}
	if got := findPage(t, tree, "/a/b/deep").Loading; got == nil || got.Ident != "Loading_a_b" {
		t.Errorf("/a/b/deep loading = %+v, want Loading_a_b", got)
	}
	if got := findPage(t, tree, "/a/b/c/deeper").Loading; got == nil || got.Source != "a/b/loading.tsx" {
		t.Errorf("/a/b/c/deeper loading = %+v, want a/b/loading.tsx", got)
	}
}

func TestBuilderLayoutsAreNotInherited(t *testing.T) {
	fsys := newPages(t,
		"pages/a/layout.jsx",
		"pages/a/error.jsx",
		"pages/a/b/x.jsx",
	)
	tree := buildTree(t, fsys, "pages")

	a := tree.Root.Child("a").(*GroupNode)
	if a.Layout == nil || a.Layout.Ident != "Layout_a" {
		t.Fatalf("a layout = %+v, want Layout_a", a.Layout)
	}
	if a.Error == nil || a.Error.Ident != "Error_a" {
		t.Fatalf("a error = %+v, want Error_a", a.Error)
	}
	b := a.Child("b").(*GroupNode)
	if b.Layout != nil || b.Error != nil {
		t.Errorf("b inherited layout %+v or error %+v", b.Layout, b.Error)
	}
}

func TestBuilderExtensionPrecedence(t *testing.T) {
	fsys := newPages(t,
		"pages/index.jsx",
		"pages/layout.tsx",
		"pages/layout.jsx",
	)
	tree := buildTree(t, fsys, "pages")

	if tree.Root.Layout == nil || tree.Root.Layout.Source != "layout.jsx" {
		t.Errorf("root layout = %+v, want layout.jsx", tree.Root.Layout)
	}
}

func TestBuilderCollisionLaterWins(t *testing.T) {
	fsys := newPages(t,
		"pages/(marketing)/about.jsx",
		"pages/about.jsx",
	)
	tree := buildTree(t, fsys, "pages")

	if len(tree.Collisions) != 1 {
		t.Fatalf("got %d collisions, want 1", len(tree.Collisions))
	}
	c := tree.Collisions[0]
	if c.Path != "/about" || c.Kept != "about.jsx" || c.Dropped != "(marketing)/about.jsx" {
		t.Errorf("collision = %+v", c)
	}
	if page := findPage(t, tree, "/about"); page.Module.Source != "about.jsx" {
		t.Errorf("/about source = %q, want about.jsx", page.Module.Source)
	}
	if len(tree.Pages()) != 1 {
		t.Errorf("got %d pages, want 1", len(tree.Pages()))
	}
	if g := tree.Root.Child("(marketing)").(*GroupNode); !g.Empty() {
		t.Errorf("(marketing) group should be empty after collision")
	}
}

func TestBuilderCollisionFileAndIndex(t *testing.T) {
	fsys := newPages(t,
		"pages/users.jsx",
		"pages/users/index.jsx",
	)
	tree := buildTree(t, fsys, "pages")

	if len(tree.Collisions) != 1 {
		t.Fatalf("got %d collisions, want 1", len(tree.Collisions))
	}
	// The folder sorts before users.jsx, so the file is discovered last.
	if got := findPage(t, tree, "/users").Module.Source; got != "users.jsx" {
		t.Errorf("/users source = %q, want users.jsx", got)
	}
}

func TestBuilderCollisionParamNames(t *testing.T) {
	fsys := newPages(t,
		"pages/blog/[id].jsx",
		"pages/blog/[slug].jsx",
		"pages/blog/new.jsx",
	)
	tree := buildTree(t, fsys, "pages")

	if len(tree.Collisions) != 1 {
		t.Fatalf("got %d collisions, want 1", len(tree.Collisions))
	}
	c := tree.Collisions[0]
	if c.Path != "/blog/:slug" || c.Kept != "blog/[slug].jsx" || c.Dropped != "blog/[id].jsx" {
		t.Errorf("collision = %+v", c)
	}
	if len(tree.Pages()) != 2 {
		t.Errorf("got %d pages, want 2", len(tree.Pages()))
	}
	findPage(t, tree, "/blog/new")
}

func TestBuilderIdentifierClash(t *testing.T) {
	fsys := newPages(t,
		"pages/a-b.jsx",
		"pages/a_b.jsx",
	)
	tree := buildTree(t, fsys, "pages")

	pages := tree.Pages()
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	first, second := pages[0].Module.Ident, pages[1].Module.Ident
	if first != "Page_a_b" {
		t.Errorf("first ident = %q, want Page_a_b", first)
	}
	if !strings.HasPrefix(second, "Page_a_b_") || len(second) != len("Page_a_b_")+8 {
		t.Errorf("second ident = %q, want Page_a_b_ plus 8 hex digits", second)
	}
}

func TestBuilderPreloadMap(t *testing.T) {
	fsys := newPages(t,
		"pages/layout.jsx",
		"pages/index.jsx",
		"pages/(admin)/users/index.jsx",
		"pages/blog/[slug].jsx",
	)
	tree := buildTree(t, fsys, "pages")

	want := []string{"/users", "/blog/:slug", "/"}
	keys := tree.Preload.Keys()
	if len(keys) != len(want) {
		t.Fatalf("preload keys = %v, want %v", keys, want)
	}
	for _, k := range want {
		if len(tree.Preload.Imports(k)) == 0 {
			t.Errorf("preload key %s missing", k)
		}
	}
	if got := tree.Preload.Imports("/"); len(got) != 2 || got[0] != "./layout.jsx" || got[1] != "./index.jsx" {
		t.Errorf("preload / = %v, want layout then index", got)
	}
}

type statFailFs struct {
	afero.Fs
	fail string
}

func (f statFailFs) Stat(name string) (os.FileInfo, error) {
	if filepath.ToSlash(name) == f.fail {
		return nil, &os.PathError{Op: "stat", Path: name, Err: os.ErrPermission}
	}
	return f.Fs.Stat(name)
}

func TestBuilderProbeErrorPropagates(t *testing.T) {
	base := newPages(t, "pages/secret/index.jsx")
	fsys := statFailFs{Fs: base, fail: "pages/secret/loading.tsx"}

	b := NewBuilder(fsys, "pages", BuilderOptions{Logger: quietLogger})
	b.Insert(Classify("secret/index.jsx", DefaultExtensions))

	err := b.Augment(context.Background())
	if !errors.Is(err, ErrProbe) {
		t.Fatalf("Augment() error = %v, want ErrProbe", err)
	}
	if !errors.Is(err, os.ErrPermission) {
		t.Errorf("Augment() error = %v, want wrapped permission error", err)
	}
}

func TestBuilderSequentialConcurrency(t *testing.T) {
	fsys := newPages(t,
		"pages/layout.jsx",
		"pages/error.jsx",
		"pages/loading.jsx",
		"pages/x/index.jsx",
	)

	b := NewBuilder(fsys, "pages", BuilderOptions{Concurrency: 1, Logger: quietLogger})
	b.Insert(Classify("x/index.jsx", DefaultExtensions))
	if err := b.Augment(context.Background()); err != nil {
		t.Fatal(err)
	}

	root := b.Tree().Root
	if root.Layout == nil || root.Error == nil || root.LocalLoading == nil {
		t.Fatalf("root specials not found: %+v %+v %+v", root.Layout, root.Error, root.LocalLoading)
	}
	if root.Layout.Ident != "RootLayout" || root.Error.Ident != "RootError" || root.LocalLoading.Ident != "RootLoading" {
		t.Errorf("root idents = %s %s %s", root.Layout.Ident, root.Error.Ident, root.LocalLoading.Ident)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct{ in, want string }{
		{"(admin)", "admin"},
		{"(auth)/seguranca/usuarios/[id]", "auth_seguranca_usuarios_id"},
		{"blog/[slug]", "blog_slug"},
		{"form-example", "form_example"},
		{"index", "index"},
	}
	for _, tt := range tests {
		if got := slug(tt.in); got != tt.want {
			t.Errorf("slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
