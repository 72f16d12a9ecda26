package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/routegen/internal/errors"
	"github.com/vango-dev/routegen/internal/report"
)

func (a *app) listCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the routes the pages folder produces",
		Long: `List every page route with its source file, layouts and loading fallback.

Formats:
  table   aligned columns (default)
  yaml    the route manifest

Examples:
  routegen list
  routegen list --format yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.compile(cmd.Context(), true)
			if err != nil {
				return err
			}
			manifest := result.Manifest(a.cfg.PagesDir)

			switch format {
			case "table":
				report.Table(a.out, manifest)
				return nil
			case "yaml":
				out, err := manifest.YAML()
				if err != nil {
					return err
				}
				_, err = a.out.Write(out)
				return err
			default:
				return errors.New(errors.CodeInvalidConfig).
					WithDetail(fmt.Sprintf("unknown format %q", format)).
					WithSuggestion("Use --format table or --format yaml.")
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table or yaml")

	return cmd
}

func (a *app) treeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Draw the routing tree",
		Long: `Draw the pages folder as the route compiler sees it.

Folders are annotated with their layout, error and loading files; pages show
the route path they resolve to.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.compile(cmd.Context(), true)
			if err != nil {
				return err
			}
			return report.Tree(a.out, result.Tree, a.cfg.PagesDir)
		},
	}
}
