package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// Options configures Setup.
type Options struct {
	ServiceName string
	// Writer receives exported spans. Defaults to stderr so command output
	// on stdout stays parseable.
	Writer io.Writer
	// PrettyPrint indents exported spans.
	PrettyPrint bool
}

// Setup installs a global tracer provider that exports to a writer. The
// returned function flushes and stops it.
func Setup(opts Options, logger *slog.Logger) (*sdktrace.TracerProvider, func(context.Context) error, error) {
	if opts.Writer == nil {
		opts.Writer = os.Stderr
	}

	exporterOpts := []stdouttrace.Option{stdouttrace.WithWriter(opts.Writer)}
	if opts.PrettyPrint {
		exporterOpts = append(exporterOpts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(exporterOpts...)
	if err != nil {
		return nil, nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(opts.ServiceName),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	logger.Info("OpenTelemetry initialized", slog.String("service", opts.ServiceName))

	return tp, tp.Shutdown, nil
}
