package main

import (
	"context"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// initTracing wires a global TracerProvider when OTEL_EXPORTER_OTLP_ENDPOINT
// is set, so internal/mdf's otel.Tracer("mdf") spans actually export
// somewhere; otherwise tracing is a no-op. Grounded on the otel SDK wiring
// already present in internal/mdf/engine.go.
func initTracing() (func(context.Context) error, error) {
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		return func(context.Context) error { return nil }, nil
	}
	exporter, err := otlptracehttp.New(context.Background())
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
