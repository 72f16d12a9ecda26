// Package metrics exposes Prometheus collectors for compilation passes and
// the dev reload server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/routegen/internal/errors"
	"github.com/vango-dev/routegen/pkg/routes"
)

// DefaultBuckets covers passes from one millisecond to a few seconds.
var DefaultBuckets = []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5}

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "routegen").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for pass duration.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "routegen",
		Buckets:   DefaultBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector records compilation and reload metrics.
type Collector struct {
	passesTotal   *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	passDuration  prometheus.Histogram
	routes        prometheus.Gauge
	files         prometheus.Gauge
	collisions    prometheus.Counter
	writesTotal   prometheus.Counter
	lastSuccess   prometheus.Gauge
	reloadClients prometheus.Gauge
	broadcasts    *prometheus.CounterVec
}

// New registers the collectors on the configured registry.
func New(options ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range options {
		opt(&config)
	}
	if len(config.Buckets) == 0 {
		config.Buckets = DefaultBuckets
	}
	factory := promauto.With(config.Registry)

	return &Collector{
		passesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "passes_total",
			Help:        "Total number of compilation passes by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		errorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pass_errors_total",
			Help:        "Total number of failed passes by error code",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),

		passDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pass_duration_seconds",
			Help:        "Compilation pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		routes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "routes",
			Help:        "Number of page routes in the last successful pass",
			ConstLabels: config.ConstLabels,
		}),

		files: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "discovered_files",
			Help:        "Number of page files discovered in the last successful pass",
			ConstLabels: config.ConstLabels,
		}),

		collisions: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "collisions_total",
			Help:        "Total number of shadowed pages across passes",
			ConstLabels: config.ConstLabels,
		}),

		writesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "writes_total",
			Help:        "Total number of passes that changed the generated file",
			ConstLabels: config.ConstLabels,
		}),

		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "last_success_timestamp_seconds",
			Help:        "Unix time of the last successful pass",
			ConstLabels: config.ConstLabels,
		}),

		reloadClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "reload_clients",
			Help:        "Number of connected reload clients",
			ConstLabels: config.ConstLabels,
		}),

		broadcasts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "reload_broadcasts_total",
			Help:        "Total number of messages broadcast to reload clients",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// Observe records one compilation pass. Its signature matches
// routes.WithObserver.
func (c *Collector) Observe(result *routes.Result, err error) {
	if err != nil {
		c.passesTotal.WithLabelValues("error").Inc()
		code := errors.CodeOf(err)
		if code == "" {
			code = errors.FromError(err, "unknown").Code
		}
		c.errorsTotal.WithLabelValues(code).Inc()
		if result != nil {
			c.passDuration.Observe(result.Duration.Seconds())
		}
		return
	}
	if result == nil {
		return
	}

	c.passesTotal.WithLabelValues("ok").Inc()
	c.passDuration.Observe(result.Duration.Seconds())
	c.routes.Set(float64(len(result.Tree.Pages())))
	c.files.Set(float64(result.Files))
	c.collisions.Add(float64(len(result.Collisions)))
	if result.Written && result.Changed {
		c.writesTotal.Inc()
	}
	c.lastSuccess.SetToCurrentTime()
}

// SetReloadClients records the number of connected reload clients.
func (c *Collector) SetReloadClients(n int) {
	c.reloadClients.Set(float64(n))
}

// Broadcast counts one message of the given type sent to reload clients.
func (c *Collector) Broadcast(msgType string) {
	c.broadcasts.WithLabelValues(msgType).Inc()
}
