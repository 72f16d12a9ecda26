package main

import (
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/vango-dev/routegen/internal/config"
	"github.com/vango-dev/routegen/internal/templates"
	"github.com/vango-dev/routegen/pkg/routes"
)

func (a *app) initCmd() *cobra.Command {
	var (
		template string
		appName  string
		ext      string
		noPages  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a routegen.yaml and starter pages",
		Long: `Write a routegen.yaml with default settings.

When the pages folder does not exist yet, it is created from a starter
template. Existing pages are never touched.

Templates:
  app       layout, loading and error files, a dynamic route and a group
  minimal   a single home page

Examples:
  routegen init
  routegen init --template minimal --ext .tsx
  routegen init --no-pages`,
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configFile
			if path == "" {
				path = config.ConfigFileName
			}

			var tmpl *templates.Template
			if !noPages {
				var err error
				if tmpl, err = templates.Get(template); err != nil {
					return err
				}
			}

			if err := config.WriteDefault(a.fs, path); err != nil {
				return err
			}
			a.success("Created %s", path)

			if tmpl == nil {
				return nil
			}
			pagesDir, _ := cmd.Flags().GetString(pagesDirFlagName)
			if pagesDir == "" {
				pagesDir = routes.DefaultPagesDir
			}
			if ok, _ := afero.DirExists(a.fs, pagesDir); ok {
				a.info("Keeping existing pages in %s", pagesDir)
				return nil
			}

			created, err := tmpl.Create(a.fs, pagesDir, templates.Config{AppName: appName, Extension: ext})
			if err != nil {
				return err
			}
			a.success("Created %d starter pages in %s", len(created), pagesDir)
			for _, p := range created {
				a.info("%s", p)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "app",
		"Starter pages template: "+strings.Join(templates.List(), ", "))
	cmd.Flags().StringVar(&appName, "name", "My App", "Application name used in the starter pages")
	cmd.Flags().StringVar(&ext, "ext", ".jsx", "Extension of the starter pages")
	cmd.Flags().BoolVar(&noPages, "no-pages", false, "Only write routegen.yaml")

	return cmd
}
