package routes

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"
)

// DefaultExtensions are the page file extensions used when none are configured.
var DefaultExtensions = []string{".jsx", ".tsx"}

// Special per-folder file stems. They are excluded from discovery and resolved
// by the tree builder with a direct existence check.
const (
	layoutStem  = "layout"
	errorStem   = "error"
	loadingStem = "loading"
)

// DiscoverOptions configures file discovery.
type DiscoverOptions struct {
	// Extensions are the page file extensions (default DefaultExtensions).
	Extensions []string

	// Exclude are additional glob patterns matched against the relative path.
	Exclude []string
}

// Discover enumerates page files under root and returns their slash-separated
// relative paths in walk order.
//
// Baseline exclusions always apply: any segment starting with "_" (which also
// covers "__*" folders) and the special stems layout, error and loading.
func Discover(fsys afero.Fs, root string, opts DiscoverOptions) ([]string, error) {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	matcher, err := compileExcludes(opts.Exclude)
	if err != nil {
		return nil, err
	}

	info, err := fsys.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPagesRootNotFound, root)
		}
		return nil, fmt.Errorf("%w: stat %s: %w", ErrDiscover, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrPagesRootNotFound, root)
	}

	var files []string
	err = afero.Walk(fsys, root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		name := info.Name()
		if info.IsDir() {
			if strings.HasPrefix(name, "_") {
				return filepath.SkipDir
			}
			return nil
		}

		if !hasExt(name, exts) || strings.HasPrefix(name, "_") {
			return nil
		}
		switch stemOf(name, exts) {
		case layoutStem, errorStem, loadingStem:
			return nil
		}
		if matcher.match(rel) {
			return nil
		}

		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walk %s: %w", ErrDiscover, root, err)
	}

	return files, nil
}

func hasExt(name string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) && len(name) > len(ext) {
			return true
		}
	}
	return false
}

type excludeMatcher []glob.Glob

// compileExcludes compiles caller patterns with "/" as the separator, so "*"
// stays within a segment and "**" crosses segments. A leading "**/" also
// matches zero folders, the way shell-style globbing tools treat it.
func compileExcludes(patterns []string) (excludeMatcher, error) {
	var m excludeMatcher
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(filepath.ToSlash(pattern))
		if pattern == "" {
			continue
		}
		variants := []string{pattern}
		if rest, ok := strings.CutPrefix(pattern, "**/"); ok && rest != "" {
			variants = append(variants, rest)
		}
		for _, v := range variants {
			g, err := glob.Compile(v, '/')
			if err != nil {
				return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, pattern, err)
			}
			m = append(m, g)
		}
	}
	return m, nil
}

func (m excludeMatcher) match(rel string) bool {
	for _, g := range m {
		if g.Match(rel) {
			return true
		}
	}
	return false
}
