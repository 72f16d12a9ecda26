package routes

import (
	"path"
	"strings"
)

const indexStem = "index"

// Classify maps a slash-separated path relative to the pages root into a
// RouteFile. exts lists the page extensions to strip from the last segment.
//
//	index.jsx               → index page, fragment ""
//	about.jsx               → static "about"
//	blog/[slug].jsx         → group "blog", dynamic ":slug"
//	(admin)/users/index.jsx → invisible "(admin)", group "users", index page
func Classify(rel string, exts []string) RouteFile {
	rel = strings.Trim(path.Clean(strings.ReplaceAll(rel, "\\", "/")), "/")
	parts := strings.Split(rel, "/")

	file := RouteFile{
		Path:     rel,
		Segments: make([]Segment, 0, len(parts)),
	}

	for i, part := range parts {
		if i < len(parts)-1 {
			file.Segments = append(file.Segments, classifyFolder(part))
			continue
		}

		stem := trimExt(part, exts)
		seg := Segment{Kind: SegmentStatic, Physical: part}
		switch {
		case stem == indexStem:
			file.IsIndex = true
		case isParam(stem):
			seg.Kind = SegmentDynamic
			seg.Param = stem[1 : len(stem)-1]
			seg.Fragment = ":" + seg.Param
		default:
			seg.Fragment = convertParams(stem)
		}
		file.Segments = append(file.Segments, seg)
	}

	return file
}

func classifyFolder(name string) Segment {
	if isInvisible(name) {
		// Groups are never parameterized; brackets inside parentheses stay literal.
		return Segment{Kind: SegmentGroupInvisible, Physical: name}
	}
	seg := Segment{
		Kind:     SegmentGroupVisible,
		Physical: name,
		Fragment: convertParams(name),
	}
	if isParam(name) {
		seg.Param = name[1 : len(name)-1]
	}
	return seg
}

func isInvisible(name string) bool {
	return len(name) > 2 && strings.HasPrefix(name, "(") && strings.HasSuffix(name, ")")
}

func isParam(name string) bool {
	m := bracketParam.FindStringSubmatchIndex(name)
	return m != nil && m[0] == 0 && m[1] == len(name)
}

// stemOf returns the file name without any of the given extensions.
func stemOf(name string, exts []string) string {
	return trimExt(path.Base(name), exts)
}
