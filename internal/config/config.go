package config

import (
	stderrors "errors"
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/routegen/internal/errors"
	"github.com/vango-dev/routegen/pkg/routes"
)

const (
	// ConfigBaseName is the configuration file name without extension.
	ConfigBaseName = "routegen"

	// ConfigFileName is the name of the configuration file.
	ConfigFileName = ConfigBaseName + ".yaml"

	// EnvPrefix prefixes environment overrides, e.g. ROUTEGEN_PAGES_DIR.
	EnvPrefix = "ROUTEGEN"

	// DefaultPort is the default dev server port.
	DefaultPort = 3100

	// DefaultHost is the default dev server host.
	DefaultHost = "localhost"

	// DefaultLogLevel is the default slog level name.
	DefaultLogLevel = "info"
)

// Configuration keys, shared by the file, the environment and flag bindings.
const (
	KeyPagesDir    = "pages_dir"
	KeyOutput      = "output"
	KeyExclude     = "exclude"
	KeyExtensions  = "extensions"
	KeyNotFound    = "not_found"
	KeyConcurrency = "concurrency"
	KeyManifest    = "manifest"

	KeyDevHost   = "dev.host"
	KeyDevPort   = "dev.port"
	KeyDevReload = "dev.reload"

	KeyLogLevel      = "log.level"
	KeyLogFilename   = "log.filename"
	KeyLogMaxSize    = "log.max_size"
	KeyLogMaxBackups = "log.max_backups"
	KeyLogMaxAge     = "log.max_age"
	KeyLogCompress   = "log.compress"

	KeyS3Bucket = "publish.s3.bucket"
	KeyS3Prefix = "publish.s3.prefix"
	KeyS3Region = "publish.s3.region"
)

// Config represents the complete routegen.yaml configuration.
type Config struct {
	// PagesDir is the pages root.
	PagesDir string `mapstructure:"pages_dir" yaml:"pages_dir"`

	// Output is the generated routes module.
	Output string `mapstructure:"output" yaml:"output"`

	// Exclude are extra glob patterns skipped during discovery.
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`

	// Extensions are the page file extensions, in lookup order.
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`

	// NotFound is the catch-all redirect target.
	NotFound string `mapstructure:"not_found" yaml:"not_found"`

	// Concurrency bounds special file checks per folder.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`

	// Manifest, when set, is where the YAML route manifest is written.
	Manifest string `mapstructure:"manifest" yaml:"manifest,omitempty"`

	// Dev contains dev server settings.
	Dev DevConfig `mapstructure:"dev" yaml:"dev"`

	// Log contains logging settings.
	Log LogConfig `mapstructure:"log" yaml:"log"`

	// Publish contains artifact publishing settings.
	Publish PublishConfig `mapstructure:"publish" yaml:"publish,omitempty"`

	// dir is the folder paths are resolved against.
	dir string
}

// DevConfig contains dev server settings.
type DevConfig struct {
	Host   string `mapstructure:"host" yaml:"host"`
	Port   int    `mapstructure:"port" yaml:"port"`
	Reload bool   `mapstructure:"reload" yaml:"reload"`
}

// LogConfig contains logging settings. An empty Filename logs to stderr only.
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Filename   string `mapstructure:"filename" yaml:"filename,omitempty"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// PublishConfig contains artifact publishing settings.
type PublishConfig struct {
	S3 S3Config `mapstructure:"s3" yaml:"s3,omitempty"`
}

// S3Config locates the bucket generated files are uploaded to.
type S3Config struct {
	Bucket string `mapstructure:"bucket" yaml:"bucket,omitempty"`
	Prefix string `mapstructure:"prefix" yaml:"prefix,omitempty"`
	Region string `mapstructure:"region" yaml:"region,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		PagesDir:    routes.DefaultPagesDir,
		Output:      routes.DefaultOutputFile,
		Exclude:     []string{},
		Extensions:  append([]string(nil), routes.DefaultExtensions...),
		NotFound:    routes.DefaultNotFoundPath,
		Concurrency: routes.DefaultConcurrency,
		Dev: DevConfig{
			Host:   DefaultHost,
			Port:   DefaultPort,
			Reload: true,
		},
		Log: LogConfig{
			Level:      DefaultLogLevel,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		},
		dir: ".",
	}
}

// SetDefaults registers every key with its default on v.
func SetDefaults(v *viper.Viper) {
	d := New()
	v.SetDefault(KeyPagesDir, d.PagesDir)
	v.SetDefault(KeyOutput, d.Output)
	v.SetDefault(KeyExclude, d.Exclude)
	v.SetDefault(KeyExtensions, d.Extensions)
	v.SetDefault(KeyNotFound, d.NotFound)
	v.SetDefault(KeyConcurrency, d.Concurrency)
	v.SetDefault(KeyManifest, "")

	v.SetDefault(KeyDevHost, d.Dev.Host)
	v.SetDefault(KeyDevPort, d.Dev.Port)
	v.SetDefault(KeyDevReload, d.Dev.Reload)

	v.SetDefault(KeyLogLevel, d.Log.Level)
	v.SetDefault(KeyLogFilename, "")
	v.SetDefault(KeyLogMaxSize, d.Log.MaxSize)
	v.SetDefault(KeyLogMaxBackups, d.Log.MaxBackups)
	v.SetDefault(KeyLogMaxAge, d.Log.MaxAge)
	v.SetDefault(KeyLogCompress, d.Log.Compress)

	v.SetDefault(KeyS3Bucket, "")
	v.SetDefault(KeyS3Prefix, "")
	v.SetDefault(KeyS3Region, "")
}

// NewViper returns a viper instance with defaults and environment overrides
// registered. When configFile is empty, routegen.yaml is searched for in dir
// and a missing file is not an error; an explicit configFile must exist.
func NewViper(fsys afero.Fs, dir, configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetFs(fsys)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.New(errors.CodeInvalidConfig).WithPath(configFile).Wrap(err)
		}
		return v, nil
	}

	v.SetConfigName(ConfigBaseName)
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if stderrors.As(err, &notFound) {
			return v, nil
		}
		return nil, errors.New(errors.CodeInvalidConfig).WithPath(filepath.Join(dir, ConfigFileName)).Wrap(err)
	}
	return v, nil
}

// Load decodes the effective configuration from v. Relative paths resolve
// against the folder of the config file that was read, or dir when none was.
func Load(v *viper.Viper, dir string) (*Config, error) {
	cfg := New()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.New(errors.CodeInvalidConfig).Wrap(err)
	}
	cfg.dir = dir
	if used := v.ConfigFileUsed(); used != "" {
		cfg.dir = relativeTo(dir, filepath.Dir(used))
	}
	if cfg.dir == "" {
		cfg.dir = "."
	}
	return cfg, nil
}

// relativeTo expresses target in terms of base when target lies below it, so
// generated headers do not embed machine-specific absolute paths.
func relativeTo(base, target string) string {
	if !filepath.IsAbs(target) {
		return target
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return target
	}
	rel, err := filepath.Rel(absBase, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return target
	}
	return filepath.Join(base, rel)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New(errors.CodeInvalidConfig).WithDetail(fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(c.PagesDir) == "" {
		return invalid("pages_dir must not be empty")
	}
	if strings.TrimSpace(c.Output) == "" {
		return invalid("output must not be empty")
	}
	if len(c.Extensions) == 0 {
		return invalid("extensions must list at least one extension")
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return invalid("extension %q must start with a dot", ext)
		}
	}
	if c.Concurrency <= 0 {
		return invalid("concurrency must be positive, got %d", c.Concurrency)
	}
	if !strings.HasPrefix(c.NotFound, "/") {
		return invalid("not_found must be an absolute route path, got %q", c.NotFound)
	}
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return invalid("dev.port %d is out of range", c.Dev.Port)
	}
	return nil
}

// Dir returns the folder relative paths are resolved against.
func (c *Config) Dir() string {
	return c.dir
}

// PagesPath returns the pages root resolved against Dir.
func (c *Config) PagesPath() string {
	return c.resolve(c.PagesDir)
}

// OutputPath returns the generated file path resolved against Dir.
func (c *Config) OutputPath() string {
	return c.resolve(c.Output)
}

// ManifestPath returns the manifest path resolved against Dir, or "" when no
// manifest is configured.
func (c *Config) ManifestPath() string {
	if c.Manifest == "" {
		return ""
	}
	return c.resolve(c.Manifest)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) || c.dir == "" || c.dir == "." {
		return filepath.Clean(p)
	}
	return filepath.Join(c.dir, p)
}

// DevAddress returns the listen address of the dev server.
func (c *Config) DevAddress() string {
	return net.JoinHostPort(c.Dev.Host, strconv.Itoa(c.Dev.Port))
}

// DevURL returns the base URL of the dev server.
func (c *Config) DevURL() string {
	return "http://" + c.DevAddress()
}

// CompilerOptions maps the configuration onto compiler options.
func (c *Config) CompilerOptions() routes.Options {
	return routes.Options{
		PagesDir:     c.PagesPath(),
		OutputFile:   c.OutputPath(),
		Exclude:      c.Exclude,
		Extensions:   c.Extensions,
		NotFoundPath: c.NotFound,
		Concurrency:  c.Concurrency,
	}
}

// PublishEnabled reports whether a publish bucket is configured.
func (c *Config) PublishEnabled() bool {
	return c.Publish.S3.Bucket != ""
}

// WriteDefault writes a routegen.yaml with default values to path. It refuses
// to overwrite an existing file.
func WriteDefault(fsys afero.Fs, path string) error {
	if ok, _ := afero.Exists(fsys, path); ok {
		return errors.New(errors.CodeInvalidConfig).
			WithPath(path).
			WithDetail("a configuration file already exists")
	}
	out, err := yaml.Marshal(New())
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return afero.WriteFile(fsys, path, out, 0o644)
}
