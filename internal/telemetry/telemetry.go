// Package telemetry sets up tracing and the Prometheus metrics recorded while
// assembling results.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/agenthands/creative/internal/config"
)

const instrumentationName = "github.com/agenthands/creative"

// Tracer returns the tracer used for assembly spans. Until Init installs a
// provider, spans are no-ops.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// Init installs a tracer provider. With stdout tracing enabled, spans are
// written to w; otherwise the global no-op provider is kept. The returned
// shutdown flushes pending spans and must be called on exit.
func Init(ctx context.Context, cfg config.TelemetryConfig, w io.Writer) (shutdown func(context.Context) error, err error) {
	if !cfg.StdoutTrace {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("create stdout exporter: %w", err)
	}

	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", cfg.ServiceName),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		return errors.Join(tp.ForceFlush(ctx), tp.Shutdown(ctx))
	}, nil
}
