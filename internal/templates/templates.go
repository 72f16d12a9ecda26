package templates

import (
	"bytes"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/spf13/afero"

	"github.com/vango-dev/routegen/internal/errors"
)

// Config contains template configuration.
type Config struct {
	// AppName is shown in the starter layout and pages.
	AppName string

	// Extension is the page extension, ".jsx" or ".tsx".
	Extension string
}

// Template represents a starter pages tree.
type Template struct {
	// Name is the template name.
	Name string

	// Description describes the template.
	Description string

	// Files maps page-root relative paths to file contents. Paths use the
	// extension placeholder {{.Ext}}.
	Files map[string]string
}

// Available templates.
var templates = map[string]*Template{
	"minimal": minimalTemplate(),
	"app":     appTemplate(),
}

// Get returns a template by name.
func Get(name string) (*Template, error) {
	tmpl, ok := templates[name]
	if !ok {
		return nil, errors.New(errors.CodeInvalidConfig).
			WithDetail("Template '" + name + "' not found").
			WithSuggestion("Available templates: " + strings.Join(List(), ", "))
	}
	return tmpl, nil
}

// List returns all available template names, sorted.
func List() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type data struct {
	Config
	Ext string
}

// Create writes the starter pages below pagesDir on fsys. Existing files are
// left alone. It returns the page-root relative paths it created, sorted.
func (t *Template) Create(fsys afero.Fs, pagesDir string, cfg Config) ([]string, error) {
	if cfg.AppName == "" {
		cfg.AppName = "My App"
	}
	if cfg.Extension == "" {
		cfg.Extension = ".jsx"
	}
	d := data{Config: cfg, Ext: cfg.Extension}

	paths := make([]string, 0, len(t.Files))
	for p := range t.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var created []string
	for _, p := range paths {
		relPath, err := render(p+"#path", p, d)
		if err != nil {
			return created, err
		}
		content, err := render(relPath, t.Files[p], d)
		if err != nil {
			return created, err
		}

		fullPath := filepath.Join(pagesDir, filepath.FromSlash(relPath))
		if ok, _ := afero.Exists(fsys, fullPath); ok {
			continue
		}
		if err := fsys.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			return created, errors.New(errors.CodeWriteFailed).WithPath(fullPath).Wrap(err)
		}
		if err := afero.WriteFile(fsys, fullPath, []byte(content), 0o644); err != nil {
			return created, errors.New(errors.CodeWriteFailed).WithPath(fullPath).Wrap(err)
		}
		created = append(created, relPath)
	}
	sort.Strings(created)
	return created, nil
}

func render(name, text string, d data) (string, error) {
	tmpl, err := template.New(name).Delims("[[", "]]").Parse(text)
	if err != nil {
		return "", errors.Newf(errors.CategoryCLI, "invalid template %s: %v", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, d); err != nil {
		return "", errors.Newf(errors.CategoryCLI, "template execute error %s: %v", name, err)
	}
	return buf.String(), nil
}

// minimalTemplate returns the minimal template.
func minimalTemplate() *Template {
	return &Template{
		Name:        "minimal",
		Description: "A single home page",
		Files: map[string]string{
			"index[[.Ext]]": `export default function Home() {
  return <h1>[[.AppName]]</h1>;
}
`,
		},
	}
}

// appTemplate returns a starter showing every convention.
func appTemplate() *Template {
	return &Template{
		Name:        "app",
		Description: "Layout, loading and error files with nested and dynamic routes",
		Files: map[string]string{
			"layout[[.Ext]]": `import { Link, Outlet } from 'react-router-dom';

export default function RootLayout() {
  return (
    <>
      <header>
        <Link to="/">[[.AppName]]</Link>
        <nav>
          <Link to="/about">About</Link>
          <Link to="/blog/hello-world">Blog</Link>
          <Link to="/pricing">Pricing</Link>
        </nav>
      </header>
      <main>
        <Outlet />
      </main>
    </>
  );
}
`,
			"loading[[.Ext]]": `export default function Loading() {
  return <p>Loading...</p>;
}
`,
			"error[[.Ext]]": `import { useRouteError } from 'react-router-dom';

export default function ErrorBoundary() {
  const error = useRouteError();
  return (
    <section>
      <h1>Something went wrong</h1>
      <pre>{String(error?.message ?? error)}</pre>
    </section>
  );
}
`,
			"index[[.Ext]]": `export default function Home() {
  return <h1>Welcome to [[.AppName]]</h1>;
}
`,
			"about[[.Ext]]": `export default function About() {
  return <h1>About [[.AppName]]</h1>;
}
`,
			"404[[.Ext]]": `import { Link } from 'react-router-dom';

export default function NotFound() {
  return (
    <section>
      <h1>Page not found</h1>
      <Link to="/">Back home</Link>
    </section>
  );
}
`,
			"blog/[slug][[.Ext]]": `import { useParams } from 'react-router-dom';

export default function Post() {
  const { slug } = useParams();
  return <article><h1>{slug}</h1></article>;
}
`,
			"(marketing)/layout[[.Ext]]": `import { Outlet } from 'react-router-dom';

export default function MarketingLayout() {
  return (
    <div className="marketing">
      <Outlet />
    </div>
  );
}
`,
			"(marketing)/pricing[[.Ext]]": `export default function Pricing() {
  return <h1>Pricing</h1>;
}
`,
			"_components/Card[[.Ext]]": `export default function Card({ children }) {
  return <div className="card">{children}</div>;
}
`,
		},
	}
}
