// Package routes compiles a convention-based pages directory into a
// react-router route table.
//
// The compiler runs four stages on every pass:
//   - Discovery walks the pages root and collects page files
//   - Classification maps each file path to routing segments
//   - The Builder merges files into one tree of groups and pages and resolves
//     per-folder layout, error and loading files
//   - The Emitter writes the generated JSX module
//
// # File Structure Convention
//
//	src/pages/
//	├── layout.jsx          → root layout, wraps everything at "/"
//	├── loading.jsx         → Suspense fallback inherited by every page below
//	├── index.jsx           → { index: true }
//	├── about.jsx           → { path: 'about' }
//	├── _helpers.jsx        → ignored (leading underscore)
//	├── __fixtures__/       → ignored
//	├── blog/
//	│   └── [slug].jsx      → { path: 'blog', children: [{ path: ':slug' }] }
//	└── (admin)/
//	    ├── layout.jsx      → pathless layout route
//	    └── users/
//	        └── index.jsx   → /users, rendered inside the admin layout
//
// Folders wrapped in parentheses never add a path segment. Layouts and error
// boundaries apply to their own folder only; loading fallbacks are inherited
// by every descendant that has none of its own.
//
// # Usage
//
//	c := routes.NewCompiler(afero.NewOsFs(), routes.Options{
//	    PagesDir:   "src/pages",
//	    OutputFile: "src/generated/routes.jsx",
//	})
//	result, err := c.Compile(ctx)
//
// Every pass is a full rebuild, and identical input produces byte-identical
// output.
package routes
