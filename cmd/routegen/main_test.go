package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/routegen/internal/config"
	"github.com/vango-dev/routegen/internal/errors"
	"github.com/vango-dev/routegen/internal/publish"
)

func init() {
	errors.DisableColors()
}

type recordingS3 struct {
	keys []string
}

func (r *recordingS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	r.keys = append(r.keys, aws.ToString(in.Key))
	return &s3.PutObjectOutput{}, nil
}

func newTestApp(t *testing.T, pages ...string) (*app, *bytes.Buffer) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for _, p := range pages {
		require.NoError(t, afero.WriteFile(fsys, "src/pages/"+p, []byte("export default () => null\n"), 0o644))
	}
	var out bytes.Buffer
	return newApp(fsys, &out, io.Discard), &out
}

func run(a *app, args ...string) error {
	cmd := a.rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(a.out)
	cmd.SetErr(a.errOut)
	return cmd.ExecuteContext(context.Background())
}

func TestGen(t *testing.T) {
	a, out := newTestApp(t, "index.jsx", "about.jsx", "blog/[slug].jsx")

	require.NoError(t, run(a, "gen"))
	assert.Contains(t, out.String(), "Generated src/generated/routes.jsx (3 routes)")

	generated, err := afero.ReadFile(a.fs, "src/generated/routes.jsx")
	require.NoError(t, err)
	assert.Contains(t, string(generated), "{ path: ':slug', element: <Page_blog_slug /> }")

	out.Reset()
	require.NoError(t, run(a, "gen"))
	assert.Contains(t, out.String(), "is up to date (3 routes)")
}

func TestGenFlagsOverrideConfig(t *testing.T) {
	a, _ := newTestApp(t)
	require.NoError(t, afero.WriteFile(a.fs, "app/pages/index.tsx", []byte("x"), 0o644))

	require.NoError(t, run(a, "gen", "--pages-dir", "app/pages", "--output", "app/routes.jsx"))

	generated, err := afero.ReadFile(a.fs, "app/routes.jsx")
	require.NoError(t, err)
	assert.Contains(t, string(generated), "import('./pages/index.tsx')")
}

func TestGenMissingPages(t *testing.T) {
	a, _ := newTestApp(t)

	err := run(a, "gen")
	require.Error(t, err)
	assert.Equal(t, errors.CodePagesRootNotFound, errors.CodeOf(err))
}

func TestGenPublish(t *testing.T) {
	a, out := newTestApp(t, "index.jsx")
	client := &recordingS3{}
	var gotBucket string
	a.newPublisher = func(ctx context.Context, cfg config.S3Config, logger *slog.Logger) (*publish.Publisher, error) {
		gotBucket = cfg.Bucket
		return publish.NewWithClient(client, cfg.Bucket, cfg.Prefix), nil
	}
	t.Setenv("ROUTEGEN_PUBLISH_S3_BUCKET", "assets")
	t.Setenv("ROUTEGEN_PUBLISH_S3_PREFIX", "web")

	require.NoError(t, run(a, "gen", "--publish"))
	assert.Equal(t, "assets", gotBucket)
	assert.Equal(t, []string{"web/routes.jsx", "web/routes.yaml"}, client.keys)
	assert.Contains(t, out.String(), "Published s3://assets/web/routes.jsx")
}

func TestGenPublishWithoutBucket(t *testing.T) {
	a, _ := newTestApp(t, "index.jsx")

	err := run(a, "gen", "--publish")
	require.Error(t, err)
	assert.Equal(t, errors.CodePublishFailed, errors.CodeOf(err))
}

func TestCheck(t *testing.T) {
	a, out := newTestApp(t, "index.jsx")

	err := run(a, "check")
	require.Error(t, err)
	assert.Equal(t, errors.CodeOutOfDate, errors.CodeOf(err))
	assert.Contains(t, out.String(), "+++ src/generated/routes.jsx (generated)")
	exists, _ := afero.Exists(a.fs, "src/generated/routes.jsx")
	assert.False(t, exists, "check must not write")

	require.NoError(t, run(a, "gen"))
	out.Reset()
	require.NoError(t, run(a, "check"))
	assert.Contains(t, out.String(), "is up to date")

	require.NoError(t, afero.WriteFile(a.fs, "src/pages/about.jsx", []byte("x"), 0o644))
	out.Reset()
	err = run(a, "check")
	require.Error(t, err)
	assert.Contains(t, out.String(), "+  '/about': () => import('../pages/about.jsx'),")
}

func TestCheckQuiet(t *testing.T) {
	a, out := newTestApp(t, "index.jsx")

	err := run(a, "check", "--quiet")
	require.Error(t, err)
	assert.Empty(t, out.String())
}

func TestList(t *testing.T) {
	a, out := newTestApp(t, "index.jsx", "users/[id].jsx")

	require.NoError(t, run(a, "list"))
	assert.Contains(t, out.String(), "/users/:id")
	assert.Contains(t, out.String(), "users/[id].jsx")

	out.Reset()
	require.NoError(t, run(a, "list", "--format", "yaml"))
	assert.Contains(t, out.String(), "path: /users/:id\n")

	err := run(a, "list", "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidConfig, errors.CodeOf(err))
}

func TestTree(t *testing.T) {
	a, out := newTestApp(t, "layout.jsx", "index.jsx")

	require.NoError(t, run(a, "tree"))
	assert.Contains(t, out.String(), "src/pages [layout]")
	assert.Contains(t, out.String(), "index.jsx  /")
}

func TestInit(t *testing.T) {
	a, out := newTestApp(t)

	require.NoError(t, run(a, "init", "--name", "Acme"))
	assert.Contains(t, out.String(), "Created routegen.yaml")
	assert.Contains(t, out.String(), "starter pages in src/pages")

	data, err := afero.ReadFile(a.fs, "routegen.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "pages_dir: src/pages")

	index, err := afero.ReadFile(a.fs, "src/pages/index.jsx")
	require.NoError(t, err)
	assert.Contains(t, string(index), "Welcome to Acme")

	// The starter compiles.
	out.Reset()
	require.NoError(t, run(a, "gen"))
	assert.Contains(t, out.String(), "(5 routes)")

	err = run(a, "init")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidConfig, errors.CodeOf(err))
}

func TestInitKeepsExistingPages(t *testing.T) {
	a, out := newTestApp(t, "index.jsx")

	require.NoError(t, run(a, "init", "--template", "minimal"))
	assert.Contains(t, out.String(), "Keeping existing pages in src/pages")
}

func TestInitUnknownTemplate(t *testing.T) {
	a, _ := newTestApp(t)

	require.Error(t, run(a, "init", "--template", "nope"))
	exists, _ := afero.Exists(a.fs, "routegen.yaml")
	assert.False(t, exists)
}

func TestInvalidConfigFile(t *testing.T) {
	a, _ := newTestApp(t, "index.jsx")
	require.NoError(t, afero.WriteFile(a.fs, "/proj/routegen.yaml", []byte("concurrency: 0\n"), 0o644))

	err := run(a, "--config", "/proj/routegen.yaml", "gen")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidConfig, errors.CodeOf(err))
}

func TestVersion(t *testing.T) {
	a, out := newTestApp(t)

	require.NoError(t, run(a, "version", "--short"))
	assert.Equal(t, "dev\n", out.String())
}

func TestExplain(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		a, out := newTestApp(t)
		require.NoError(t, run(a, "explain"))
		for _, code := range errors.Codes() {
			assert.Contains(t, out.String(), code)
		}
	})

	t.Run("one code", func(t *testing.T) {
		a, out := newTestApp(t)
		require.NoError(t, run(a, "explain", "r006"))
		assert.Contains(t, out.String(), "R006: Could not read the pages folder")
		assert.Contains(t, out.String(), "https://routegen.dev/docs/errors/R006")
	})

	t.Run("unknown code", func(t *testing.T) {
		a, _ := newTestApp(t)
		err := run(a, "explain", "R999")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown error code "R999"`)
	})
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseSlogLevel(tt.in, slog.LevelInfo), tt.in)
	}
}
