package routes

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Manifest is a serializable summary of a routing tree.
type Manifest struct {
	PagesDir   string          `yaml:"pages_dir" json:"pagesDir"`
	Routes     []ManifestRoute `yaml:"routes" json:"routes"`
	Collisions []Collision     `yaml:"collisions,omitempty" json:"collisions,omitempty"`
}

// ManifestRoute describes one page as the router will see it.
type ManifestRoute struct {
	Path    string   `yaml:"path" json:"path"`
	Source  string   `yaml:"source" json:"source"`
	Ident   string   `yaml:"ident" json:"ident"`
	Index   bool     `yaml:"index,omitempty" json:"index,omitempty"`
	Layouts []string `yaml:"layouts,omitempty" json:"layouts,omitempty"`
	Error   string   `yaml:"error,omitempty" json:"error,omitempty"`
	Loading string   `yaml:"loading,omitempty" json:"loading,omitempty"`
}

// BuildManifest summarizes t. Layouts are listed outermost first; Error is the
// nearest enclosing error boundary.
func BuildManifest(t *Tree, pagesDir string) Manifest {
	m := Manifest{PagesDir: pagesDir}
	if t == nil {
		return m
	}
	for _, page := range t.Pages() {
		r := ManifestRoute{
			Path:   page.URLPath,
			Source: page.Module.Source,
			Ident:  page.Module.Ident,
			Index:  page.IsIndex,
		}
		if page.Loading != nil {
			r.Loading = page.Loading.Source
		}
		for g := page.parent; g != nil; g = g.parent {
			if g.Layout != nil {
				r.Layouts = append([]string{g.Layout.Source}, r.Layouts...)
			}
			if r.Error == "" && g.Error != nil {
				r.Error = g.Error.Source
			}
		}
		m.Routes = append(m.Routes, r)
	}
	m.Collisions = append(m.Collisions, t.Collisions...)
	return m
}

// Manifest summarizes the result's tree.
func (r *Result) Manifest(pagesDir string) Manifest {
	return BuildManifest(r.Tree, pagesDir)
}

// YAML encodes the manifest.
func (m Manifest) YAML() ([]byte, error) {
	out, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return out, nil
}

// WriteManifest encodes m to path on fsys. The file is left untouched when its
// content is already current; the returned flag reports whether it was written.
func WriteManifest(fsys afero.Fs, path string, m Manifest) (bool, error) {
	out, err := m.YAML()
	if err != nil {
		return false, err
	}
	if previous, err := afero.ReadFile(fsys, path); err == nil && bytes.Equal(previous, out) {
		return false, nil
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("%w: create %s: %w", ErrWrite, filepath.Dir(path), err)
	}
	if err := afero.WriteFile(fsys, path, out, 0o644); err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	return true, nil
}
