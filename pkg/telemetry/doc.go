// Package telemetry provides the observability stack of the inventory tool.
//
// It combines structured logging (zerolog), distributed tracing
// (OpenTelemetry) and metrics (Prometheus).
//
// # Usage
//
// Initialize telemetry at startup and hand its parts to the engine:
//
//	cfg := telemetry.DefaultConfig()
//	cfg.Metrics.ListenAddress = ":9090"
//
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
//	if err := tel.StartMetricsServer(); err != nil {
//	    log.Fatal(err)
//	}
//
//	orch := engine.NewOrchestrator(cat, service, caps, sink, engine.Options{
//	    Logger:   tel.Logger.Zerolog(),
//	    Recorder: tel.Metrics,
//	    Tracer:   tel.Tracer.Tracer(),
//	})
//
// # Structured Logging
//
// Log lines go to stderr by default; standard output is left to command
// results. Levels: trace, debug, info, warn, error.
//
//	logger := tel.Logger.NewComponentLogger("cli").WithRunID(run.ID)
//
// # Distributed Tracing
//
// An enabled tracer is installed as the global tracer provider. Supported
// exporters are "otlp" (gRPC), "stdout" (pretty printed to stderr) and
// "none" (spans are sampled but dropped).
//
// # Metrics
//
// Metrics implements engine.Recorder. Exposed series:
//
//   - inventory_runs_completed_total{status}
//   - inventory_run_duration_seconds{status}
//   - inventory_types_reported_total{status}
//   - inventory_type_duration_seconds{status}
//   - inventory_type_instances{resource_type}
//   - inventory_remote_calls_total{operation}
//   - inventory_remote_call_duration_seconds{operation}
//   - inventory_remote_errors_total{operation,class,code}
//   - inventory_get_disabled_total{resource_type}
//
// The endpoint is served only while a command is running and only when
// MetricsConfig.ListenAddress is set.
package telemetry
