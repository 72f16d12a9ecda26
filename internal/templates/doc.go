// Package templates provides starter pages for new routegen projects.
//
// # Available Templates
//
//   - minimal: a single home page
//   - app: root layout, loading and error files, a 404 page, a dynamic blog
//     route and an invisible (marketing) group
//
// # Usage
//
//	tmpl, err := templates.Get("app")
//	if err != nil {
//	    return err
//	}
//	created, err := tmpl.Create(afero.NewOsFs(), "src/pages", templates.Config{
//	    AppName:   "Acme",
//	    Extension: ".tsx",
//	})
//
// # Template Variables
//
// File names and contents use [[ ]] delimiters so JSX braces stay literal:
//
//	[[.AppName]]  - application name
//	[[.Ext]]      - page extension
package templates
