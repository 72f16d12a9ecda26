package routes

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/afero"
)

// newPages creates an in-memory filesystem holding the given files.
func newPages(t *testing.T, files ...string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for _, name := range files {
		if err := afero.WriteFile(fsys, name, []byte("export default function Page() {}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return fsys
}

func TestDiscover(t *testing.T) {
	fsys := newPages(t,
		"src/pages/index.jsx",
		"src/pages/about.jsx",
		"src/pages/layout.jsx",
		"src/pages/loading.jsx",
		"src/pages/error.tsx",
		"src/pages/_hidden.jsx",
		"src/pages/__tests__/a.jsx",
		"src/pages/_private/b.jsx",
		"src/pages/components/Button.jsx",
		"src/pages/blog/[slug].jsx",
		"src/pages/blog/layout.jsx",
		"src/pages/(admin)/users/index.tsx",
		"src/pages/notes.md",
	)

	got, err := Discover(fsys, "src/pages", DiscoverOptions{
		Exclude: []string{"**/components/*.jsx", ""},
	})
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}

	want := []string{
		"(admin)/users/index.tsx",
		"about.jsx",
		"blog/[slug].jsx",
		"index.jsx",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Discover() = %v, want %v", got, want)
	}
}

func TestDiscoverExcludeDeepGlob(t *testing.T) {
	fsys := newPages(t,
		"pages/index.jsx",
		"pages/admin/components/Table.jsx",
		"pages/admin/index.jsx",
		"pages/drafts/one.jsx",
		"pages/drafts/two/three.jsx",
	)

	got, err := Discover(fsys, "pages", DiscoverOptions{
		Exclude: []string{"**/components/*.jsx", "drafts/**"},
	})
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}

	want := []string{"admin/index.jsx", "index.jsx"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Discover() = %v, want %v", got, want)
	}
}

func TestDiscoverCustomExtensions(t *testing.T) {
	fsys := newPages(t, "pages/index.jsx", "pages/about.vue")

	got, err := Discover(fsys, "pages", DiscoverOptions{Extensions: []string{".vue"}})
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"about.vue"}) {
		t.Errorf("Discover() = %v, want [about.vue]", got)
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	_, err := Discover(afero.NewMemMapFs(), "src/pages", DiscoverOptions{})
	if !errors.Is(err, ErrPagesRootNotFound) {
		t.Fatalf("Discover() error = %v, want ErrPagesRootNotFound", err)
	}
}

func TestDiscoverRootIsFile(t *testing.T) {
	fsys := newPages(t, "src/pages")
	_, err := Discover(fsys, "src/pages", DiscoverOptions{})
	if !errors.Is(err, ErrPagesRootNotFound) {
		t.Fatalf("Discover() error = %v, want ErrPagesRootNotFound", err)
	}
}

// deniedFs fails op on one path with a permission error.
type deniedFs struct {
	afero.Fs
	op, path string
}

func (d deniedFs) Stat(name string) (os.FileInfo, error) {
	if d.op == "stat" && name == d.path {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrPermission}
	}
	return d.Fs.Stat(name)
}

func (d deniedFs) Open(name string) (afero.File, error) {
	if d.op == "open" && name == d.path {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
	}
	return d.Fs.Open(name)
}

func TestDiscoverUnreadable(t *testing.T) {
	tests := []struct {
		name string
		op   string
		path string
	}{
		{"root stat", "stat", "src/pages"},
		{"folder listing", "open", filepath.Join("src", "pages", "blog")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := deniedFs{Fs: newPages(t, "src/pages/index.jsx", "src/pages/blog/[slug].jsx"), op: tt.op, path: tt.path}
			_, err := Discover(fsys, "src/pages", DiscoverOptions{})
			if !errors.Is(err, ErrDiscover) {
				t.Fatalf("Discover() error = %v, want ErrDiscover", err)
			}
			if errors.Is(err, ErrPagesRootNotFound) {
				t.Error("a permission error is not a missing root")
			}
			if !errors.Is(err, fs.ErrPermission) {
				t.Error("the cause should stay reachable")
			}
		})
	}
}

func TestDiscoverInvalidPattern(t *testing.T) {
	fsys := newPages(t, "pages/index.jsx")
	_, err := Discover(fsys, "pages", DiscoverOptions{Exclude: []string{"[abc"}})
	if !errors.Is(err, ErrInvalidPattern) {
		t.Fatalf("Discover() error = %v, want ErrInvalidPattern", err)
	}
}

func TestDiscoverIsDeterministic(t *testing.T) {
	fsys := newPages(t,
		"pages/z.jsx",
		"pages/a.jsx",
		"pages/m/index.jsx",
		"pages/(g)/x.jsx",
	)

	first, err := Discover(fsys, "pages", DiscoverOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := Discover(fsys, "pages", DiscoverOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Discover() run %d = %v, want %v", i, again, first)
		}
	}
}
