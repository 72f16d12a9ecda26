package routes

import (
	"regexp"
	"strings"
)

// bracketParam matches [name] placeholders; the name is word characters only.
var bracketParam = regexp.MustCompile(`\[(\w+)\]`)

// NormalizeRoutePath returns the canonical form of a route path used as a
// preload key: query and fragment stripped, exactly one leading slash, and no
// trailing slash except for the root.
func NormalizeRoutePath(p string) string {
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if i := strings.IndexByte(p, '#'); i >= 0 {
		p = p[:i]
	}
	p = strings.Trim(p, "/")
	if p == "" {
		return "/"
	}
	return "/" + p
}

// JoinRoutePath appends a routing fragment to an absolute route path.
// Empty fragments (index pages, invisible groups) leave the path unchanged.
func JoinRoutePath(base, fragment string) string {
	base = NormalizeRoutePath(base)
	fragment = strings.Trim(fragment, "/")
	if fragment == "" {
		return base
	}
	if base == "/" {
		return "/" + fragment
	}
	return base + "/" + fragment
}

// routeShape erases parameter names, so /blog/:id and /blog/:slug share a
// shape. The router cannot tell such paths apart.
func routeShape(p string) string {
	segs := strings.Split(p, "/")
	for i, seg := range segs {
		if strings.HasPrefix(seg, ":") {
			segs[i] = ":"
		}
	}
	return strings.Join(segs, "/")
}

// convertParams rewrites every [name] placeholder to :name.
func convertParams(s string) string {
	return bracketParam.ReplaceAllString(s, ":$1")
}
