package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/vango-dev/routegen/internal/config"
	"github.com/vango-dev/routegen/internal/errors"
	"github.com/vango-dev/routegen/internal/publish"
	"github.com/vango-dev/routegen/pkg/routes"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┬─┐┌─┐┬ ┬┌┬┐┌─┐┌─┐┌─┐┌┐┌
  ├┬┘│ ││ │ │ ├┤ │ ┬├┤ │││
  ┴└─└─┘└─┘ ┴ └─┘└─┘└─┘┘└┘
`

// skipConfig marks commands that run without loading routegen.yaml.
const skipConfig = "routegen/skip-config"

// Flag names shared by several commands.
const (
	configFlagName   = "config"
	verboseFlagName  = "verbose"
	pagesDirFlagName = "pages-dir"
	outputFlagName   = "output"
	excludeFlagName  = "exclude"
	logFileFlagName  = "log-file"
)

// app carries what every command needs. Tests swap fs, out and newPublisher.
type app struct {
	fs     afero.Fs
	dir    string
	out    io.Writer
	errOut io.Writer

	configFile string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger

	newPublisher func(ctx context.Context, cfg config.S3Config, logger *slog.Logger) (*publish.Publisher, error)
}

func newApp(fsys afero.Fs, out, errOut io.Writer) *app {
	return &app{
		fs:     fsys,
		dir:    ".",
		out:    out,
		errOut: errOut,
		logger: slog.New(slog.NewTextHandler(errOut, nil)),
		newPublisher: func(ctx context.Context, cfg config.S3Config, logger *slog.Logger) (*publish.Publisher, error) {
			return publish.New(ctx, cfg, publish.WithLogger(logger))
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(afero.NewOsFs(), os.Stdout, os.Stderr)
	if err := a.rootCmd().ExecuteContext(ctx); err != nil {
		errors.Print(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "routegen",
		Short: "Generate a React Router route table from a pages folder",
		Long: `routegen turns a folder of page files into a react-router route table.

Conventions:

  • index.jsx maps to its folder's path
  • [id].jsx becomes a :id parameter
  • (group) folders add layouts without adding a path segment
  • layout, error and loading files wrap everything below them
  • files and folders starting with _ are ignored`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipConfig] == "true" {
				return nil
			}
			return a.load(cmd.Flags())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configFile, configFlagName, "c", "", "Config file (default: ./routegen.yaml)")
	flags.BoolVarP(&a.verbose, verboseFlagName, "v", false, "Log at debug level")
	flags.String(pagesDirFlagName, "", "Pages root (default: src/pages)")
	flags.StringP(outputFlagName, "o", "", "Generated module (default: src/generated/routes.jsx)")
	flags.StringSlice(excludeFlagName, nil, "Extra glob patterns to skip during discovery")
	flags.String(logFileFlagName, "", "Also write logs to this rotating file")

	rootCmd.AddCommand(
		a.genCmd(),
		a.devCmd(),
		a.checkCmd(),
		a.listCmd(),
		a.treeCmd(),
		a.initCmd(),
		a.explainCmd(),
		a.versionCmd(),
	)
	return rootCmd
}

// load reads the configuration, applies flags bound through viper and sets up
// logging.
func (a *app) load(flags *pflag.FlagSet) error {
	v, err := config.NewViper(a.fs, a.dir, a.configFile)
	if err != nil {
		return err
	}

	for _, b := range flagBindings {
		f := flags.Lookup(b.flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(b.key, f); err != nil {
			return errors.New(errors.CodeInvalidConfig).WithDetail("bind --" + b.flag).Wrap(err)
		}
	}

	cfg, err := config.Load(v, a.dir)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = a.configureLogger(v)
	slog.SetDefault(a.logger)
	return nil
}

// flagBindings maps config keys to flags. Flags only some commands define are
// skipped where absent.
var flagBindings = []struct{ key, flag string }{
	{config.KeyPagesDir, pagesDirFlagName},
	{config.KeyOutput, outputFlagName},
	{config.KeyExclude, excludeFlagName},
	{config.KeyLogFilename, logFileFlagName},
	{config.KeyDevHost, "host"},
	{config.KeyDevPort, "port"},
}

func (a *app) configureLogger(v *viper.Viper) *slog.Logger {
	level := parseSlogLevel(v.GetString(config.KeyLogLevel), slog.LevelInfo)
	if a.verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = a.errOut
	if filename := strings.TrimSpace(a.cfg.Log.Filename); filename != "" {
		w = io.MultiWriter(a.errOut, &lumberjack.Logger{
			Filename:   filename,
			MaxSize:    a.cfg.Log.MaxSize,
			MaxBackups: a.cfg.Log.MaxBackups,
			MaxAge:     a.cfg.Log.MaxAge,
			Compress:   a.cfg.Log.Compress,
		})
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Numeric slog levels are accepted too (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// compiler returns a compiler over the configured project.
func (a *app) compiler(dryRun bool, opts ...routes.Option) *routes.Compiler {
	options := a.cfg.CompilerOptions()
	options.DryRun = dryRun
	return routes.NewCompiler(a.fs, options, append([]routes.Option{routes.WithLogger(a.logger)}, opts...)...)
}

// compile runs one pass and converts failures to coded errors.
func (a *app) compile(ctx context.Context, dryRun bool) (*routes.Result, error) {
	result, err := a.compiler(dryRun).Compile(ctx)
	if err != nil {
		return nil, errors.FromError(err, errors.CodeCompileFailed)
	}
	for _, c := range result.Collisions {
		a.warn("%s is shadowed by %s (both route to %s)", c.Dropped, c.Kept, c.Path)
	}
	return result, nil
}

// printBanner prints the routegen banner.
func (a *app) printBanner() {
	fmt.Fprint(a.out, banner)
}

// success prints a success message.
func (a *app) success(format string, args ...any) {
	fmt.Fprintf(a.out, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func (a *app) info(format string, args ...any) {
	fmt.Fprintf(a.out, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func (a *app) warn(format string, args ...any) {
	fmt.Fprintf(a.out, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
