// Package observability bundles the logger, tracer and metrics registry that
// every module receives at construction time.
package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Config selects log format and level.
type Config struct {
	ServiceName string
	Environment string
	LogLevel    string
}

// Observability is passed to modules in place of individual collaborators.
type Observability struct {
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Registry *prometheus.Registry
	Metrics  OperationMetrics
}

// New builds the logger, a tracer from the global OpenTelemetry provider and
// a fresh Prometheus registry with Go runtime collectors.
func New(cfg Config) (Observability, error) {
	logger := NewLogger(os.Stdout, cfg.Environment, cfg.LogLevel).
		With(slog.String("service", cfg.ServiceName))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics, err := NewPrometheusMetrics(registry, "")
	if err != nil {
		return Observability{}, err
	}

	return Observability{
		Logger:   logger,
		Tracer:   otel.Tracer(cfg.ServiceName),
		Registry: registry,
		Metrics:  metrics,
	}, nil
}

// NewLogger returns a text logger in development and a JSON logger otherwise.
func NewLogger(w io.Writer, environment, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if environment == "development" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
