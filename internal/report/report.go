// Package report renders compilation results for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/ddddddO/gtree"
	"github.com/olekukonko/tablewriter"
	difflib "github.com/pmezard/go-difflib/difflib"

	"github.com/vango-dev/routegen/internal/errors"
	"github.com/vango-dev/routegen/pkg/routes"
)

// Table writes one row per route of m.
func Table(w io.Writer, m routes.Manifest) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Path", "Source", "Layouts", "Loading"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	for _, r := range m.Routes {
		table.Append([]string{r.Path, r.Source, strings.Join(r.Layouts, " > "), r.Loading})
	}

	table.SetFooter([]string{fmt.Sprintf("%d routes", len(m.Routes)), "", "", ""})
	table.Render()
}

// Codes writes one row per registered error code.
func Codes(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Code", "Category", "Message"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	for _, code := range errors.Codes() {
		tmpl, _ := errors.Lookup(code)
		table.Append([]string{code, string(tmpl.Category), tmpl.Message})
	}
	table.Render()
}

// Tree draws the routing tree as folders and files, annotated with the route
// path of each page and the special files of each folder.
func Tree(w io.Writer, t *routes.Tree, rootName string) error {
	if t == nil || t.Root == nil {
		return fmt.Errorf("report: empty tree")
	}
	root := gtree.NewRoot(rootName + groupNotes(t.Root))
	addChildren(root, t.Root)
	if err := gtree.OutputProgrammably(w, root); err != nil {
		return fmt.Errorf("report: draw tree: %w", err)
	}
	return nil
}

func addChildren(parent *gtree.Node, g *routes.GroupNode) {
	for _, child := range g.Children {
		switch n := child.(type) {
		case *routes.GroupNode:
			addChildren(parent.Add(n.Physical+"/"+groupNotes(n)), n)
		case *routes.RouteNode:
			parent.Add(n.Physical + "  " + n.URLPath)
		}
	}
}

func groupNotes(g *routes.GroupNode) string {
	var notes []string
	if g.Layout != nil {
		notes = append(notes, "layout")
	}
	if g.Error != nil {
		notes = append(notes, "error")
	}
	if g.LocalLoading != nil {
		notes = append(notes, "loading")
	}
	if len(notes) == 0 {
		return ""
	}
	return " [" + strings.Join(notes, ", ") + "]"
}

// Diff returns a unified diff turning current into next, or "" when they are
// equal.
func Diff(name string, current, next []byte) (string, error) {
	if string(current) == string(next) {
		return "", nil
	}
	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(current)),
		B:        difflib.SplitLines(string(next)),
		FromFile: name + " (on disk)",
		ToFile:   name + " (generated)",
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("report: diff %s: %w", name, err)
	}
	return out, nil
}
