package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openfroyo/inventory/pkg/engine"
)

// Metrics provides Prometheus metrics for inventory runs. It implements
// engine.Recorder; a disabled instance discards everything.
type Metrics struct {
	config MetricsConfig

	// Run metrics
	runsCompleted *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec

	// Type metrics
	typesReported *prometheus.CounterVec
	typeDuration  *prometheus.HistogramVec
	instances     *prometheus.GaugeVec

	// Remote service metrics
	remoteCalls    *prometheus.CounterVec
	remoteDuration *prometheus.HistogramVec
	remoteErrors   *prometheus.CounterVec
	getDisabled    *prometheus.CounterVec

	registry *prometheus.Registry
	server   *http.Server
}

var _ engine.Recorder = (*Metrics)(nil)

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		runsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_completed_total",
				Help:      "Total number of inventory runs completed",
			},
			[]string{"status"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of inventory runs in seconds",
				Buckets:   buckets,
			},
			[]string{"status"},
		),

		typesReported: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "types_reported_total",
				Help:      "Total number of resource types reported, by outcome",
			},
			[]string{"status"},
		),
		typeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "type_duration_seconds",
				Help:      "Time spent enumerating one resource type in seconds",
				Buckets:   buckets,
			},
			[]string{"status"},
		),
		instances: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "type_instances",
				Help:      "Number of instances found for a resource type in the last run",
			},
			[]string{"resource_type"},
		),

		remoteCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "remote_calls_total",
				Help:      "Total number of remote list and get calls",
			},
			[]string{"operation"},
		),
		remoteDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "remote_call_duration_seconds",
				Help:      "Duration of remote calls in seconds",
				Buckets:   buckets,
			},
			[]string{"operation"},
		),
		remoteErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "remote_errors_total",
				Help:      "Total number of failed remote calls",
			},
			[]string{"operation", "class", "code"},
		),
		getDisabled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "get_disabled_total",
				Help:      "Resource types whose detail fetches were found redundant",
			},
			[]string{"resource_type"},
		),
	}

	collectors := []prometheus.Collector{
		m.runsCompleted,
		m.runDuration,
		m.typesReported,
		m.typeDuration,
		m.instances,
		m.remoteCalls,
		m.remoteDuration,
		m.remoteErrors,
		m.getDisabled,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}

	return m, nil
}

// Registry returns the metrics registry, or nil when metrics are disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRemoteCall implements engine.Recorder.
func (m *Metrics) RecordRemoteCall(_ engine.ResourceType, operation string, duration time.Duration, err error) {
	if m.registry == nil {
		return
	}
	m.remoteCalls.WithLabelValues(operation).Inc()
	m.remoteDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.remoteErrors.WithLabelValues(operation, string(engine.ClassOf(err)), engine.CodeOf(err)).Inc()
	}
}

// RecordGetDisabled implements engine.Recorder.
func (m *Metrics) RecordGetDisabled(t engine.ResourceType) {
	if m.registry == nil {
		return
	}
	m.getDisabled.WithLabelValues(string(t)).Inc()
}

// RecordTypeResult implements engine.Recorder.
func (m *Metrics) RecordTypeResult(result *engine.TypeResult) {
	if m.registry == nil {
		return
	}
	status := string(result.Status)
	m.typesReported.WithLabelValues(status).Inc()
	m.typeDuration.WithLabelValues(status).Observe(result.Duration.Seconds())
	if result.Status == engine.TypeStatusEnumerated {
		m.instances.WithLabelValues(string(result.Type)).Set(float64(result.Count()))
	}
}

// RecordRun implements engine.Recorder.
func (m *Metrics) RecordRun(run *engine.Run) {
	if m.registry == nil {
		return
	}
	status := string(run.Status)
	m.runsCompleted.WithLabelValues(status).Inc()
	m.runDuration.WithLabelValues(status).Observe(run.Duration.Seconds())
}

// Handler returns the HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StartMetricsServer serves the metrics endpoint in the background. It is a
// no-op when metrics are disabled or no listen address is configured.
func (m *Metrics) StartMetricsServer() error {
	if m.registry == nil || m.config.ListenAddress == "" {
		return nil
	}

	path := m.config.Path
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())

	listener, err := net.Listen("tcp", m.config.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", m.config.ListenAddress, err)
	}

	m.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := m.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Printf("metrics server error: %v\n", err)
		}
	}()

	return nil
}

// Shutdown stops the metrics server, if it was started.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}
