package routes

import "strings"

// SegmentKind classifies one segment of a page file path.
type SegmentKind int

const (
	// SegmentStatic is a literal path component taken from a file stem.
	SegmentStatic SegmentKind = iota

	// SegmentDynamic is a bracketed stem such as [id], routed as :id.
	SegmentDynamic

	// SegmentGroupVisible is a folder that contributes a path segment.
	SegmentGroupVisible

	// SegmentGroupInvisible is a folder wrapped in parentheses such as (admin).
	// It contributes no path segment but can own layout, error and loading files.
	SegmentGroupInvisible
)

// String returns a readable name for the kind.
func (k SegmentKind) String() string {
	switch k {
	case SegmentStatic:
		return "static"
	case SegmentDynamic:
		return "dynamic"
	case SegmentGroupVisible:
		return "group"
	case SegmentGroupInvisible:
		return "invisible-group"
	default:
		return "unknown"
	}
}

// Segment is one classified path segment.
type Segment struct {
	// Kind is the classification of the segment.
	Kind SegmentKind

	// Physical is the name on disk (e.g. "[id].jsx", "(admin)").
	Physical string

	// Fragment is the routing path fragment ("" for invisible groups and index files).
	Fragment string

	// Param is the parameter name for dynamic segments.
	Param string
}

// RouteFile is one discovered page file.
type RouteFile struct {
	// Path is the slash-separated path relative to the pages root.
	Path string

	// Segments are the classified segments; the last one is the file itself.
	Segments []Segment

	// IsIndex reports whether the file stem is "index".
	IsIndex bool
}

// Dir returns the folder segments of the file.
func (f RouteFile) Dir() []Segment {
	if len(f.Segments) == 0 {
		return nil
	}
	return f.Segments[:len(f.Segments)-1]
}

// Leaf returns the file segment.
func (f RouteFile) Leaf() Segment {
	if len(f.Segments) == 0 {
		return Segment{}
	}
	return f.Segments[len(f.Segments)-1]
}

// ModuleRef references a source module from generated code.
type ModuleRef struct {
	// Ident is the binding name used in generated code.
	Ident string

	// Source is the path relative to the pages root.
	Source string

	// Import is the import specifier relative to the output file.
	Import string
}

// Node is either a *RouteNode or a *GroupNode.
type Node interface {
	node()

	// Name returns the physical name used to key the node within its parent.
	Name() string
}

// RouteNode is a leaf that renders one page.
type RouteNode struct {
	// Physical is the file name on disk.
	Physical string

	// Fragment is the routing fragment ("" for index pages).
	Fragment string

	// IsIndex marks index pages.
	IsIndex bool

	// URLPath is the normalized absolute route path of the page.
	URLPath string

	// Module is the lazily loaded page module.
	Module ModuleRef

	// Loading is the effective loading fallback, inherited from the parent group.
	Loading *ModuleRef

	// Seq is the discovery sequence number of the source file.
	Seq int

	parent *GroupNode
}

func (*RouteNode) node() {}

// Name implements Node.
func (r *RouteNode) Name() string { return r.Physical }

// GroupNode is an interior node representing one folder.
type GroupNode struct {
	// Physical is the folder name on disk ("" for the pages root).
	Physical string

	// Dir is the folder path relative to the pages root ("" for the root).
	Dir string

	// Fragment is the routing fragment ("" for invisible groups and the root).
	Fragment string

	// Invisible marks parenthesized folders.
	Invisible bool

	// URLPath is the normalized absolute route path of the folder.
	URLPath string

	// Children are kept in insertion (discovery) order.
	Children []Node

	// Layout wraps every descendant when present. Never inherited.
	Layout *ModuleRef

	// Error is the error boundary of this level. Never inherited.
	Error *ModuleRef

	// LocalLoading is the loading file found in this folder.
	LocalLoading *ModuleRef

	// Loading is the effective loading fallback: LocalLoading, else the parent's.
	Loading *ModuleRef

	parent *GroupNode
	index  map[string]int
}

func (*GroupNode) node() {}

// Name implements Node.
func (g *GroupNode) Name() string { return g.Physical }

// IsRoot reports whether g is the pages root.
func (g *GroupNode) IsRoot() bool { return g.parent == nil }

// Empty reports whether the group would produce nothing in the route table.
func (g *GroupNode) Empty() bool {
	return len(g.Children) == 0 && g.Layout == nil && g.Error == nil && g.LocalLoading == nil
}

// Child returns the child keyed by physical name.
func (g *GroupNode) Child(name string) Node {
	i, ok := g.index[name]
	if !ok {
		return nil
	}
	return g.Children[i]
}

func newGroupNode(parent *GroupNode, seg Segment) *GroupNode {
	g := &GroupNode{
		Physical:  seg.Physical,
		Fragment:  seg.Fragment,
		Invisible: seg.Kind == SegmentGroupInvisible,
		parent:    parent,
		index:     make(map[string]int),
	}
	if parent != nil {
		g.Dir = joinSlash(parent.Dir, seg.Physical)
		g.URLPath = JoinRoutePath(parent.URLPath, seg.Fragment)
	} else {
		g.URLPath = "/"
	}
	return g
}

func (g *GroupNode) add(n Node) {
	if i, ok := g.index[n.Name()]; ok {
		g.Children[i] = n
		return
	}
	g.index[n.Name()] = len(g.Children)
	g.Children = append(g.Children, n)
}

func (g *GroupNode) remove(name string) {
	i, ok := g.index[name]
	if !ok {
		return
	}
	g.Children = append(g.Children[:i], g.Children[i+1:]...)
	delete(g.index, name)
	for j := i; j < len(g.Children); j++ {
		g.index[g.Children[j].Name()] = j
	}
}

// Tree is the routing tree produced by one compilation pass.
type Tree struct {
	// Root is the pages root group.
	Root *GroupNode

	// Preload maps route paths to the modules that warm them.
	Preload *PreloadMap

	// Collisions lists pages shadowed by a later page with the same route path.
	Collisions []Collision
}

// Walk visits every node depth first in child order.
func (t *Tree) Walk(fn func(n Node, depth int)) {
	if t == nil || t.Root == nil {
		return
	}
	var walk func(g *GroupNode, depth int)
	walk = func(g *GroupNode, depth int) {
		for _, child := range g.Children {
			fn(child, depth)
			if sub, ok := child.(*GroupNode); ok {
				walk(sub, depth+1)
			}
		}
	}
	walk(t.Root, 0)
}

// Pages returns every page in tree order.
func (t *Tree) Pages() []*RouteNode {
	var pages []*RouteNode
	t.Walk(func(n Node, _ int) {
		if r, ok := n.(*RouteNode); ok {
			pages = append(pages, r)
		}
	})
	return pages
}

// Collision records two page files resolving to the same route path.
type Collision struct {
	// Path is the shared route path.
	Path string `yaml:"path" json:"path"`

	// Kept is the source file that stays in the route table.
	Kept string `yaml:"kept" json:"kept"`

	// Dropped is the source file that was shadowed.
	Dropped string `yaml:"dropped" json:"dropped"`
}

// PreloadMap is an insertion-ordered map from route path to module imports.
type PreloadMap struct {
	keys    []string
	entries map[string][]string
}

// NewPreloadMap returns an empty preload map.
func NewPreloadMap() *PreloadMap {
	return &PreloadMap{entries: make(map[string][]string)}
}

// Add registers an import for a route path. The path is normalized first.
func (m *PreloadMap) Add(routePath, importPath string) {
	key := NormalizeRoutePath(routePath)
	imports, ok := m.entries[key]
	if !ok {
		m.keys = append(m.keys, key)
	}
	for _, existing := range imports {
		if existing == importPath {
			return
		}
	}
	m.entries[key] = append(imports, importPath)
}

// Keys returns the route paths in insertion order.
func (m *PreloadMap) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Imports returns the imports registered for a route path.
func (m *PreloadMap) Imports(routePath string) []string {
	return m.entries[NormalizeRoutePath(routePath)]
}

// Len returns the number of route paths.
func (m *PreloadMap) Len() int { return len(m.keys) }

func joinSlash(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "/" + b
	}
}

func trimExt(name string, exts []string) string {
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}
