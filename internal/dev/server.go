package dev

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"

	"github.com/vango-dev/routegen/internal/config"
	"github.com/vango-dev/routegen/internal/errors"
	"github.com/vango-dev/routegen/internal/metrics"
	"github.com/vango-dev/routegen/pkg/routes"
)

const (
	reloadEndpoint = "/_routegen/reload"
	statusEndpoint = "/_routegen/status"
	clientEndpoint = "/_routegen/client.js"
	metricsPath    = "/metrics"

	shutdownTimeout = 5 * time.Second
)

// ServerOptions configures the development server.
type ServerOptions struct {
	// Config is the project configuration.
	Config *config.Config

	// FS is the filesystem the compiler reads and writes. Defaults to the OS.
	FS afero.Fs

	// Metrics, when set, observes every pass and the reload server.
	Metrics *metrics.Collector

	// Gatherer backs /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Settle is the quiet period before a pass starts (default 50ms).
	Settle time.Duration

	// OnPass is called after every pass.
	OnPass func(*routes.Result, error)
}

// Status summarizes the last pass. It is served at /_routegen/status.
type Status struct {
	Passes     int64     `json:"passes"`
	OK         bool      `json:"ok"`
	Routes     int       `json:"routes"`
	Files      int       `json:"files"`
	Collisions int       `json:"collisions"`
	Output     string    `json:"output"`
	Changed    bool      `json:"changed"`
	DurationMS int64     `json:"durationMs"`
	Code       string    `json:"code,omitempty"`
	Error      string    `json:"error,omitempty"`
	At         time.Time `json:"at"`
	Clients    int       `json:"clients"`

	// Detail is the coded error of a failed pass, as errors.Error.FormatJSON.
	Detail json.RawMessage `json:"detail,omitempty"`
}

// Server is the development server. It regenerates the route table whenever
// the pages tree changes and tells connected browsers to reload.
type Server struct {
	config      *config.Config
	options     ServerOptions
	fs          afero.Fs
	logger      *slog.Logger
	compiler    *routes.Compiler
	watcher     *Watcher
	coordinator *Coordinator
	reload      *ReloadServer
	httpServer  *http.Server

	mu       sync.Mutex
	running  bool
	status   Status
	addr     net.Addr
	hasError bool
}

// NewServer creates a new development server.
func NewServer(options ServerOptions) *Server {
	cfg := options.Config
	if cfg == nil {
		cfg = config.New()
	}
	fsys := options.FS
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if options.Gatherer == nil {
		options.Gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		config:  cfg,
		options: options,
		fs:      fsys,
		logger:  logger,
	}

	compilerOpts := []routes.Option{routes.WithLogger(logger)}
	var recorder Recorder
	if options.Metrics != nil {
		compilerOpts = append(compilerOpts, routes.WithObserver(options.Metrics.Observe))
		recorder = options.Metrics
	}
	s.compiler = routes.NewCompiler(fsys, cfg.CompilerOptions(), compilerOpts...)

	s.watcher = NewWatcher(WatchConfig(cfg), WithWatchLogger(logger))

	coordOpts := []CoordinatorOption{WithCoordinatorLogger(logger)}
	if options.Settle > 0 {
		coordOpts = append(coordOpts, WithSettle(options.Settle))
	}
	s.coordinator = NewCoordinator(s.pass, coordOpts...)

	if cfg.Dev.Reload {
		s.reload = NewReloadServer(recorder, logger)
	}
	return s
}

// Handler returns the HTTP surface of the dev server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	if s.reload != nil {
		r.Get(reloadEndpoint, s.reload.HandleWebSocket)
	}
	r.With(middleware.NoCache).Get(statusEndpoint, s.handleStatus)
	r.With(middleware.NoCache).Get(clientEndpoint, s.handleClient)
	r.Handle(metricsPath, promhttp.HandlerFor(s.options.Gatherer, promhttp.HandlerOpts{}))
	return r
}

// Start runs an initial pass, then watches the pages tree and serves the dev
// endpoints until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// A failing first pass is reported like any other; the watcher still
	// starts so fixing the tree recovers.
	_ = s.pass(ctx)

	s.watcher.OnChange(func(change Change) {
		s.logger.Debug("pages changed", "path", change.Path, "kind", change.Kind.String())
		s.coordinator.Trigger()
	})
	if err := s.watcher.Start(ctx); err != nil {
		return errors.New(errors.CodeWatcher).WithPath(s.config.PagesPath()).Wrap(err)
	}
	defer s.watcher.Stop()

	ln, err := net.Listen("tcp", s.config.DevAddress())
	if err != nil {
		return errors.New(errors.CodeDevServer).WithDetail(s.config.DevAddress()).Wrap(err)
	}
	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.coordinator.Run(ctx)
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	s.logger.Info("dev server running", "url", "http://"+ln.Addr().String(), "pages", s.config.PagesPath())

	select {
	case <-ctx.Done():
		err = nil
	case err = <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	}

	cancel()
	s.shutdown()
	wg.Wait()

	if err != nil {
		return errors.New(errors.CodeDevServer).Wrap(err)
	}
	return nil
}

// Addr returns the listening address once Start has bound it.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Status returns a copy of the last pass summary.
func (s *Server) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.status
	if s.reload != nil {
		st.Clients = s.reload.ClientCount()
	}
	return st
}

// Trigger schedules a pass as if the pages tree had changed.
func (s *Server) Trigger() {
	s.coordinator.Trigger()
}

func (s *Server) shutdown() {
	if s.reload != nil {
		s.reload.Close()
	}
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = s.httpServer.Shutdown(ctx)
	}
}

// pass compiles once and reports the outcome to the log, the status endpoint
// and the browsers.
func (s *Server) pass(ctx context.Context) error {
	result, err := s.compiler.Compile(ctx)
	if err == nil {
		err = s.writeManifest(result)
	}
	s.record(result, err)
	if s.options.OnPass != nil {
		s.options.OnPass(result, err)
	}

	if err != nil {
		coded := errors.FromError(err, errors.CodeCompileFailed)
		s.logger.Error("route generation failed", "code", coded.Code, "err", err)
		if s.reload != nil {
			s.reload.NotifyError(coded.Code, coded.FormatCompact())
		}
		return err
	}

	for _, c := range result.Collisions {
		s.logger.Warn("route collision", "path", c.Path, "kept", c.Kept, "dropped", c.Dropped)
	}
	s.logger.Info("routes generated",
		"routes", len(result.Tree.Pages()),
		"changed", result.Changed,
		"duration", result.Duration.Round(time.Millisecond),
	)

	if s.reload == nil {
		return nil
	}
	s.mu.Lock()
	recovered := s.hasError
	s.hasError = false
	s.mu.Unlock()
	if recovered {
		s.reload.ClearError()
	}
	// An edited page keeps the table unchanged but still has to be reloaded.
	s.reload.NotifyReload()
	return nil
}

func (s *Server) writeManifest(result *routes.Result) error {
	path := s.config.ManifestPath()
	if path == "" {
		return nil
	}
	_, err := routes.WriteManifest(s.fs, path, result.Manifest(s.config.PagesDir))
	return err
}

func (s *Server) record(result *routes.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Passes: s.status.Passes + 1,
		OK:     err == nil,
		Output: s.config.OutputPath(),
		At:     time.Now(),
	}
	if result != nil {
		st.Files = result.Files
		st.Collisions = len(result.Collisions)
		st.Changed = result.Changed
		st.DurationMS = result.Duration.Milliseconds()
		if result.Tree != nil {
			st.Routes = len(result.Tree.Pages())
		}
	}
	if err != nil {
		coded := errors.FromError(err, errors.CodeCompileFailed)
		st.Code = coded.Code
		st.Error = err.Error()
		st.Detail = json.RawMessage(coded.FormatJSON())
		s.hasError = true
	}
	s.status = st
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.Status())
}

func (s *Server) handleClient(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	_, _ = w.Write([]byte(ClientScript))
}
