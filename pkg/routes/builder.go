package routes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the special file probes run at once per folder.
const DefaultConcurrency = 4

// BuilderOptions configures a Builder.
type BuilderOptions struct {
	// Extensions are the page and special file extensions, in lookup order.
	Extensions []string

	// Concurrency bounds the existence checks in flight per folder.
	Concurrency int

	// ImportPath maps a path relative to the pages root to the import
	// specifier used in generated code. Defaults to "./" + rel.
	ImportPath func(rel string) string

	// Logger receives collision warnings. Defaults to slog.Default().
	Logger *slog.Logger
}

// Builder assembles the routing tree for one compilation pass.
// A Builder is not safe for concurrent use and must not be reused across passes.
type Builder struct {
	fs         afero.Fs
	root       string
	exts       []string
	limit      int
	importPath func(string) string
	logger     *slog.Logger

	tree    *Tree
	idents  *identTable
	byShape map[string]*RouteNode
	seq     int
}

// NewBuilder creates a builder for the pages rooted at root.
func NewBuilder(fsys afero.Fs, root string, opts BuilderOptions) *Builder {
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.ImportPath == nil {
		opts.ImportPath = func(rel string) string { return "./" + rel }
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Builder{
		fs:         fsys,
		root:       root,
		exts:       opts.Extensions,
		limit:      opts.Concurrency,
		importPath: opts.ImportPath,
		logger:     opts.Logger,
		tree: &Tree{
			Root:    newGroupNode(nil, Segment{}),
			Preload: NewPreloadMap(),
		},
		idents:  newIdentTable(),
		byShape: make(map[string]*RouteNode),
	}
}

// Insert adds one classified page file, creating the folder groups along its
// path. Files sharing a folder merge into the same group.
func (b *Builder) Insert(f RouteFile) {
	cur := b.tree.Root
	for _, seg := range f.Dir() {
		next, ok := cur.Child(seg.Physical).(*GroupNode)
		if !ok {
			next = newGroupNode(cur, seg)
			cur.add(next)
		}
		cur = next
	}

	leaf := f.Leaf()
	page := &RouteNode{
		Physical: leaf.Physical,
		Fragment: leaf.Fragment,
		IsIndex:  f.IsIndex,
		URLPath:  JoinRoutePath(cur.URLPath, leaf.Fragment),
		Module: ModuleRef{
			Ident:  b.idents.alloc("Page_", f.Path, b.exts),
			Source: f.Path,
			Import: b.importPath(f.Path),
		},
		Seq:    b.seq,
		parent: cur,
	}
	b.seq++

	shape := routeShape(page.URLPath)
	if prev, ok := b.byShape[shape]; ok {
		prev.parent.remove(prev.Physical)
		b.tree.Collisions = append(b.tree.Collisions, Collision{
			Path:    page.URLPath,
			Kept:    page.Module.Source,
			Dropped: prev.Module.Source,
		})
		b.logger.Warn("route collision: later file wins",
			"path", page.URLPath,
			"kept", page.Module.Source,
			"dropped", prev.Module.Source,
		)
	}

	cur.add(page)
	b.byShape[shape] = page
}

// Augment resolves layout, error and loading files for every group and
// threads the effective loading fallback down to the pages. It also fills the
// preload map in tree order.
func (b *Builder) Augment(ctx context.Context) error {
	root := b.tree.Root
	found, err := b.probe(ctx, root)
	if err != nil {
		return err
	}
	b.attach(root, found, nil)
	return b.augment(ctx, root)
}

func (b *Builder) augment(ctx context.Context, g *GroupNode) error {
	if g.Layout != nil {
		b.tree.Preload.Add(g.URLPath, g.Layout.Import)
	}

	for _, child := range g.Children {
		switch n := child.(type) {
		case *RouteNode:
			n.Loading = g.Loading
			b.tree.Preload.Add(n.URLPath, n.Module.Import)
		case *GroupNode:
			found, err := b.probe(ctx, n)
			if err != nil {
				return err
			}
			b.attach(n, found, g.Loading)
			if err := b.augment(ctx, n); err != nil {
				return err
			}
		}
	}
	return nil
}

// Tree returns the tree built so far.
func (b *Builder) Tree() *Tree {
	return b.tree
}

var specialStems = [...]string{layoutStem, errorStem, loadingStem}

// specialFiles holds the relative paths of the special files found in one
// folder, indexed like specialStems. Empty means absent.
type specialFiles [len(specialStems)]string

// probe checks every special stem and extension in g's folder. Checks run
// concurrently up to the builder's limit; the first extension in configured
// order wins.
func (b *Builder) probe(ctx context.Context, g *GroupNode) (specialFiles, error) {
	hits := make([][]bool, len(specialStems))
	for i := range hits {
		hits[i] = make([]bool, len(b.exts))
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(b.limit)
	for i, stem := range specialStems {
		for j, ext := range b.exts {
			i, j := i, j
			name := filepath.Join(b.root, filepath.FromSlash(g.Dir), stem+ext)
			eg.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				ok, err := b.exists(name)
				if err != nil {
					return err
				}
				hits[i][j] = ok
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return specialFiles{}, err
	}

	var found specialFiles
	for i, stem := range specialStems {
		for j, ext := range b.exts {
			if hits[i][j] {
				found[i] = joinSlash(g.Dir, stem+ext)
				break
			}
		}
	}
	return found, nil
}

func (b *Builder) exists(name string) (bool, error) {
	info, err := b.fs.Stat(name)
	if err == nil {
		return !info.IsDir(), nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %s: %w", ErrProbe, name, err)
}

// attach records the special files of g. Identifiers are allocated here,
// sequentially, so naming never depends on probe scheduling.
func (b *Builder) attach(g *GroupNode, found specialFiles, inherited *ModuleRef) {
	layout, errBoundary, loading := found[0], found[1], found[2]
	if layout != "" {
		g.Layout = b.ref("Layout_", "RootLayout", g, layout)
	}
	if errBoundary != "" {
		g.Error = b.ref("Error_", "RootError", g, errBoundary)
	}
	if loading != "" {
		g.LocalLoading = b.ref("Loading_", "RootLoading", g, loading)
	}

	g.Loading = inherited
	if g.LocalLoading != nil {
		g.Loading = g.LocalLoading
	}
}

func (b *Builder) ref(prefix, rootName string, g *GroupNode, rel string) *ModuleRef {
	var ident string
	if g.IsRoot() {
		ident = b.idents.claim(rootName, rel)
	} else {
		ident = b.idents.alloc(prefix, g.Dir, nil)
	}
	return &ModuleRef{
		Ident:  ident,
		Source: rel,
		Import: b.importPath(rel),
	}
}

// identTable hands out deterministic, collision-free identifiers for one pass.
type identTable struct {
	owners map[string]string
}

func newIdentTable() *identTable {
	return &identTable{owners: make(map[string]string)}
}

// alloc derives an identifier from prefix and the slug of source. When the
// slug is taken by another source, a hash of the source path is appended.
func (t *identTable) alloc(prefix, source string, exts []string) string {
	stem := source
	if exts != nil {
		stem = path.Join(path.Dir(source), stemOf(source, exts))
	}
	return t.claim(prefix+slug(stem), source)
}

func (t *identTable) claim(ident, source string) string {
	if owner, ok := t.owners[ident]; !ok || owner == source {
		t.owners[ident] = source
		return ident
	}
	hashed := fmt.Sprintf("%s_%016x", ident, xxhash.Sum64String(source))[:len(ident)+9]
	t.owners[hashed] = source
	return hashed
}

// slug turns a path into an identifier fragment: runs of characters outside
// [A-Za-z0-9] become a single underscore.
func slug(p string) string {
	var sb strings.Builder
	pending := false
	for _, r := range p {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pending && sb.Len() > 0 {
				sb.WriteByte('_')
			}
			pending = false
			sb.WriteRune(r)
			continue
		}
		pending = true
	}
	return sb.String()
}
