// Package telemetry wires structured logging, tracing and metrics.
// Everything lands in rotated files under logs/ so the terminal stays
// free for conversation output.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const logDir = "logs"

// Telemetry bundles the logger, tracer and meter handed to the rest
// of the application.
type Telemetry struct {
	Logger *slog.Logger
	Tracer trace.Tracer
	Meter  metric.Meter

	tp         *sdktrace.TracerProvider
	mp         *sdkmetric.MeterProvider
	traceFile  *lumberjack.Logger
	metricFile *lumberjack.Logger
}

func rotatedFile(name string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(logDir, name),
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
}

// Init sets up file-backed logging plus OTel tracing and metrics with
// stdout exporters writing to rotated files under logs/.
func Init(ctx context.Context, debug bool) (*Telemetry, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(rotatedFile("aivsai.log"), &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName("aivsai"),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	traceFile := rotatedFile("aivsai_traces.log")
	traceExporter, err := stdouttrace.New(
		stdouttrace.WithWriter(traceFile),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	metricFile := rotatedFile("aivsai_metrics.log")
	metricExporter, err := stdoutmetric.New(
		stdoutmetric.WithWriter(metricFile),
		stdoutmetric.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(10*time.Second)),
		),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	return &Telemetry{
		Logger:     logger,
		Tracer:     tp.Tracer("aivsai"),
		Meter:      mp.Meter("aivsai"),
		tp:         tp,
		mp:         mp,
		traceFile:  traceFile,
		metricFile: metricFile,
	}, nil
}

// Shutdown flushes pending spans and metrics and closes the exporter
// files.
func (t *Telemetry) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := t.tp.Shutdown(ctx); err != nil {
		t.Logger.Error("failed to shutdown tracer provider", "error", err)
	}
	if err := t.mp.Shutdown(ctx); err != nil {
		t.Logger.Error("failed to shutdown meter provider", "error", err)
	}
	if err := t.traceFile.Close(); err != nil {
		t.Logger.Error("failed to close trace file", "error", err)
	}
	if err := t.metricFile.Close(); err != nil {
		t.Logger.Error("failed to close metrics file", "error", err)
	}
}
