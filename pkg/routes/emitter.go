package routes

import (
	"bytes"
	"fmt"
	"strings"
)

// DefaultNotFoundPath is where the catch-all route redirects.
const DefaultNotFoundPath = "/404"

// EmitOptions configures an Emitter.
type EmitOptions struct {
	// SourceRoot is recorded in the generated header.
	SourceRoot string

	// NotFoundPath is the redirect target of the catch-all route.
	NotFoundPath string
}

// Emitter serializes a routing tree into a JSX module for react-router.
type Emitter struct {
	opts EmitOptions
}

// NewEmitter creates an emitter.
func NewEmitter(opts EmitOptions) *Emitter {
	if opts.NotFoundPath == "" {
		opts.NotFoundPath = DefaultNotFoundPath
	}
	return &Emitter{opts: opts}
}

// emitState is the per-call accumulator threaded through the tree walk.
type emitState struct {
	direct []*ModuleRef
	lazy   []*ModuleRef
	seen   map[string]bool
}

func (s *emitState) useDirect(ref *ModuleRef) string {
	if !s.seen[ref.Ident] {
		s.seen[ref.Ident] = true
		s.direct = append(s.direct, ref)
	}
	return ref.Ident
}

func (s *emitState) useLazy(ref *ModuleRef) string {
	if !s.seen[ref.Ident] {
		s.seen[ref.Ident] = true
		s.lazy = append(s.lazy, ref)
	}
	return ref.Ident
}

// entry is one object of the generated route table.
type entry struct {
	path         string
	hasPath      bool
	index        bool
	element      string
	errorElement string
	children     []entry
}

// Emit renders the generated module. The output only depends on the tree, so
// emitting an unchanged tree twice yields identical bytes.
func (e *Emitter) Emit(t *Tree) ([]byte, error) {
	if t == nil || t.Root == nil {
		return nil, fmt.Errorf("emit: empty tree")
	}

	st := &emitState{seen: make(map[string]bool)}
	root := t.Root

	// Root specials are resolved before descending so their imports lead.
	if root.Layout != nil {
		st.useDirect(root.Layout)
	}
	if root.LocalLoading != nil {
		st.useDirect(root.LocalLoading)
	}

	top := e.children(st, root)
	if root.Layout != nil || root.Error != nil {
		wrapper := entry{path: "/", hasPath: true, children: top}
		wrapper.element = e.layoutElement(st, root)
		if root.Error != nil {
			wrapper.errorElement = "<" + st.useLazy(root.Error) + " />"
		}
		top = []entry{wrapper}
	}
	top = append(top, entry{
		path:    "*",
		hasPath: true,
		element: fmt.Sprintf("<Navigate to=%s replace />", jsString(e.opts.NotFoundPath)),
	})

	var buf bytes.Buffer
	buf.WriteString("// Code generated by routegen. DO NOT EDIT.\n")
	if e.opts.SourceRoot != "" {
		fmt.Fprintf(&buf, "// Source: %s\n", e.opts.SourceRoot)
	}
	buf.WriteString("\n")
	buf.WriteString("import { lazy, Suspense } from 'react';\n")
	buf.WriteString("import { createBrowserRouter, Navigate } from 'react-router';\n")

	if len(st.direct) > 0 {
		buf.WriteString("\n")
		for _, ref := range st.direct {
			fmt.Fprintf(&buf, "import %s from %s;\n", ref.Ident, jsString(ref.Import))
		}
	}
	if len(st.lazy) > 0 {
		buf.WriteString("\n")
		for _, ref := range st.lazy {
			fmt.Fprintf(&buf, "const %s = lazy(() => import(%s));\n", ref.Ident, jsString(ref.Import))
		}
	}

	buf.WriteString("\nexport const routePreloadMap = {\n")
	if t.Preload != nil {
		for _, key := range t.Preload.Keys() {
			fmt.Fprintf(&buf, "  %s: %s,\n", jsString(key), loaderThunk(t.Preload.Imports(key)))
		}
	}
	buf.WriteString("};\n")

	buf.WriteString("\nexport const routes = createBrowserRouter([\n")
	for _, en := range top {
		writeEntry(&buf, en, 1)
	}
	buf.WriteString("]);\n")

	buf.WriteString(preloadRuntime)
	buf.WriteString("\nexport default routes;\n")

	return buf.Bytes(), nil
}

// children renders the entries for g's children. Invisible groups without
// their own layout or error boundary are spliced into the parent list.
func (e *Emitter) children(st *emitState, g *GroupNode) []entry {
	var out []entry
	for _, child := range g.Children {
		switch n := child.(type) {
		case *RouteNode:
			en := entry{element: e.pageElement(st, n)}
			if n.IsIndex {
				en.index = true
			} else {
				en.path, en.hasPath = n.Fragment, true
			}
			out = append(out, en)

		case *GroupNode:
			if n.Empty() {
				continue
			}
			kids := e.children(st, n)
			if n.Layout == nil && n.Error == nil {
				if n.Invisible {
					out = append(out, kids...)
					continue
				}
				if len(kids) == 0 {
					continue
				}
			}

			en := entry{children: kids}
			if !n.Invisible {
				en.path, en.hasPath = n.Fragment, true
			}
			en.element = e.layoutElement(st, n)
			if n.Error != nil {
				en.errorElement = "<" + st.useLazy(n.Error) + " />"
			}
			out = append(out, en)
		}
	}
	return out
}

func (e *Emitter) pageElement(st *emitState, r *RouteNode) string {
	page := "<" + st.useLazy(&r.Module) + " />"
	return suspense(st, r.Loading, page)
}

func (e *Emitter) layoutElement(st *emitState, g *GroupNode) string {
	if g.Layout == nil {
		return ""
	}
	layout := "<" + st.useDirect(g.Layout) + " />"
	return suspense(st, g.Loading, layout)
}

func suspense(st *emitState, loading *ModuleRef, inner string) string {
	if loading == nil {
		return inner
	}
	return fmt.Sprintf("<Suspense fallback={<%s />}>%s</Suspense>", st.useDirect(loading), inner)
}

func writeEntry(buf *bytes.Buffer, en entry, depth int) {
	indent := strings.Repeat("  ", depth)

	if en.children == nil && en.errorElement == "" {
		var fields []string
		if en.index {
			fields = append(fields, "index: true")
		}
		if en.hasPath {
			fields = append(fields, "path: "+jsString(en.path))
		}
		if en.element != "" {
			fields = append(fields, "element: "+en.element)
		}
		fmt.Fprintf(buf, "%s{ %s },\n", indent, strings.Join(fields, ", "))
		return
	}

	buf.WriteString(indent + "{\n")
	if en.hasPath {
		fmt.Fprintf(buf, "%s  path: %s,\n", indent, jsString(en.path))
	}
	if en.element != "" {
		fmt.Fprintf(buf, "%s  element: %s,\n", indent, en.element)
	}
	if en.errorElement != "" {
		fmt.Fprintf(buf, "%s  errorElement: %s,\n", indent, en.errorElement)
	}
	if len(en.children) > 0 {
		buf.WriteString(indent + "  children: [\n")
		for _, child := range en.children {
			writeEntry(buf, child, depth+2)
		}
		buf.WriteString(indent + "  ],\n")
	}
	buf.WriteString(indent + "},\n")
}

func loaderThunk(imports []string) string {
	if len(imports) == 1 {
		return "() => import(" + jsString(imports[0]) + ")"
	}
	calls := make([]string, len(imports))
	for i, imp := range imports {
		calls[i] = "import(" + jsString(imp) + ")"
	}
	return "() => Promise.all([" + strings.Join(calls, ", ") + "])"
}

// jsString quotes s as a single-quoted JavaScript string literal.
func jsString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)
	return "'" + r.Replace(s) + "'"
}

const preloadRuntime = `
export function preloadRoute(path) {
  const connection = typeof navigator !== 'undefined' ? navigator.connection : undefined;
  if (connection?.saveData || connection?.effectiveType === 'slow-2g') return;

  const preloader = routePreloadMap[normalizeRoutePath(path)];
  if (!preloader) return;

  preloader().catch((error) => {
    console.error('Route preload failed:', error);
  });
}

function normalizeRoutePath(path) {
  let normalized = String(path).split('?')[0].split('#')[0];
  normalized = '/' + normalized.replace(/^\/+/, '');
  normalized = normalized.replace(/\/+$/, '');
  return normalized || '/';
}
`
