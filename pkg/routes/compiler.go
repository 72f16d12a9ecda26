package routes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/vango-dev/routegen/pkg/routes"

// Default locations, relative to the project directory.
const (
	DefaultPagesDir   = "src/pages"
	DefaultOutputFile = "src/generated/routes.jsx"
)

// Options configures a Compiler.
type Options struct {
	// PagesDir is the pages root (default "src/pages").
	PagesDir string

	// OutputFile is the generated module path (default "src/generated/routes.jsx").
	OutputFile string

	// Exclude are additional glob patterns for discovery.
	Exclude []string

	// Extensions are the page extensions (default ".jsx", ".tsx").
	Extensions []string

	// NotFoundPath is the catch-all redirect target (default "/404").
	NotFoundPath string

	// Concurrency bounds special file probes per folder (default 4).
	Concurrency int

	// DryRun renders the output without writing it.
	DryRun bool
}

// Option configures optional collaborators of a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) { c.logger = l }
}

// WithTracer sets the tracer. Defaults to the global otel provider.
func WithTracer(t trace.Tracer) Option {
	return func(c *Compiler) { c.tracer = t }
}

// WithObserver registers a callback invoked after every pass, successful or not.
func WithObserver(fn func(*Result, error)) Option {
	return func(c *Compiler) { c.observers = append(c.observers, fn) }
}

// Compiler runs the discovery, classification, tree building and emission
// pipeline. Each Compile call is a full rebuild; callers must serialize calls
// that share an output file.
type Compiler struct {
	fs        afero.Fs
	opts      Options
	logger    *slog.Logger
	tracer    trace.Tracer
	observers []func(*Result, error)
}

// Result describes one compilation pass.
type Result struct {
	// Tree is the routing tree of the pass.
	Tree *Tree

	// Output is the generated module.
	Output []byte

	// OutputFile is where Output was (or would be) written.
	OutputFile string

	// Files is the number of discovered page files.
	Files int

	// Collisions lists shadowed pages.
	Collisions []Collision

	// Changed reports whether Output differs from the previous file content.
	Changed bool

	// Written reports whether Output was written to disk.
	Written bool

	// Duration is the wall time of the pass.
	Duration time.Duration
}

// NewCompiler creates a compiler over fsys. Pass afero.NewOsFs() for the real
// filesystem.
func NewCompiler(fsys afero.Fs, opts Options, options ...Option) *Compiler {
	if opts.PagesDir == "" {
		opts.PagesDir = DefaultPagesDir
	}
	if opts.OutputFile == "" {
		opts.OutputFile = DefaultOutputFile
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}

	c := &Compiler{
		fs:     fsys,
		opts:   opts,
		logger: slog.Default(),
	}
	for _, o := range options {
		o(c)
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	return c
}

// Options returns the effective options.
func (c *Compiler) Options() Options {
	return c.opts
}

// Compile runs one full pass.
func (c *Compiler) Compile(ctx context.Context) (result *Result, err error) {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "routes.Compile", trace.WithAttributes(
		attribute.String("routes.pages_dir", c.opts.PagesDir),
		attribute.String("routes.output", c.opts.OutputFile),
	))
	defer func() {
		if result != nil {
			result.Duration = time.Since(start)
			span.SetAttributes(
				attribute.Int("routes.files", result.Files),
				attribute.Int("routes.collisions", len(result.Collisions)),
				attribute.Bool("routes.changed", result.Changed),
			)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		for _, fn := range c.observers {
			fn(result, err)
		}
	}()

	files, err := c.discover(ctx)
	if err != nil {
		return nil, err
	}

	tree, err := c.build(ctx, files)
	if err != nil {
		return nil, err
	}

	output, err := c.emit(ctx, tree)
	if err != nil {
		return nil, err
	}

	result = &Result{
		Tree:       tree,
		Output:     output,
		OutputFile: c.opts.OutputFile,
		Files:      len(files),
		Collisions: tree.Collisions,
	}

	previous, err := afero.ReadFile(c.fs, c.opts.OutputFile)
	switch {
	case err == nil:
		result.Changed = !bytes.Equal(previous, output)
	case errors.Is(err, os.ErrNotExist):
		result.Changed = true
	default:
		return nil, fmt.Errorf("%w: read %s: %w", ErrWrite, c.opts.OutputFile, err)
	}

	if c.opts.DryRun {
		return result, nil
	}
	if err := c.write(ctx, output); err != nil {
		return nil, err
	}
	result.Written = true

	c.logger.Debug("routes generated",
		"output", c.opts.OutputFile,
		"files", result.Files,
		"changed", result.Changed,
	)
	return result, nil
}

func (c *Compiler) discover(ctx context.Context) ([]string, error) {
	_, span := c.tracer.Start(ctx, "routes.Discover")
	defer span.End()

	files, err := Discover(c.fs, c.opts.PagesDir, DiscoverOptions{
		Extensions: c.opts.Extensions,
		Exclude:    c.opts.Exclude,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("routes.files", len(files)))
	return files, nil
}

func (c *Compiler) build(ctx context.Context, files []string) (*Tree, error) {
	ctx, span := c.tracer.Start(ctx, "routes.Build")
	defer span.End()

	b := NewBuilder(c.fs, c.opts.PagesDir, BuilderOptions{
		Extensions:  c.opts.Extensions,
		Concurrency: c.opts.Concurrency,
		ImportPath:  c.importPath,
		Logger:      c.logger,
	})
	for _, f := range files {
		b.Insert(Classify(f, c.opts.Extensions))
	}
	if err := b.Augment(ctx); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return b.Tree(), nil
}

func (c *Compiler) emit(ctx context.Context, tree *Tree) ([]byte, error) {
	_, span := c.tracer.Start(ctx, "routes.Emit")
	defer span.End()

	out, err := NewEmitter(EmitOptions{
		SourceRoot:   filepath.ToSlash(c.opts.PagesDir),
		NotFoundPath: c.opts.NotFoundPath,
	}).Emit(tree)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("routes.bytes", len(out)))
	return out, nil
}

func (c *Compiler) write(ctx context.Context, output []byte) error {
	_, span := c.tracer.Start(ctx, "routes.Write")
	defer span.End()

	dir := filepath.Dir(c.opts.OutputFile)
	if err := c.fs.MkdirAll(dir, 0o755); err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: create %s: %w", ErrWrite, dir, err)
	}
	if err := afero.WriteFile(c.fs, c.opts.OutputFile, output, 0o644); err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: %s: %w", ErrWrite, c.opts.OutputFile, err)
	}
	return nil
}

// importPath returns the specifier for a page-root relative file, relative to
// the output file's folder.
func (c *Compiler) importPath(rel string) string {
	target := filepath.Join(c.opts.PagesDir, filepath.FromSlash(rel))
	from := filepath.Dir(c.opts.OutputFile)

	p, err := filepath.Rel(from, target)
	if err != nil {
		return filepath.ToSlash(target)
	}
	p = filepath.ToSlash(p)
	if !strings.HasPrefix(p, "../") {
		p = "./" + p
	}
	return p
}
