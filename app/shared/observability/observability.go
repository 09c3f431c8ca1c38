package observability

import (
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/Black-And-White-Club/flag-hunt"

// Config selects log format and level.
type Config struct {
	Environment string
	LogLevel    string
}

// Observability bundles the logger, tracer and metrics handed to every module.
type Observability struct {
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Registry *prometheus.Registry
	Metrics  HuntMetrics
}

// New builds the production observability stack. Logs are JSON except in
// development, where the text handler is easier to read.
func New(cfg Config) Observability {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}

	var handler slog.Handler
	if cfg.Environment == "development" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	logger := slog.New(handler).With(slog.String("service", "flag-hunt"))
	if cfg.Environment != "" {
		logger = logger.With(slog.String("env", cfg.Environment))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return Observability{
		Logger:   logger,
		Tracer:   otel.GetTracerProvider().Tracer(instrumentationName),
		Registry: registry,
		Metrics:  NewPrometheusMetrics(registry),
	}
}

// NewNoop returns an Observability that discards everything.
func NewNoop() Observability {
	return Observability{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tracer:  noop.NewTracerProvider().Tracer("noop"),
		Metrics: NoopMetrics{},
	}
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
