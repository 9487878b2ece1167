package observability

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/yungbote/vitality-backend/internal/pkg/logger"
)

// SetupTracing installs a tracer provider when tracing is configured via
// env. Returns a shutdown func and whether tracing is active.
//
// OTEL_EXPORTER_OTLP_ENDPOINT selects the OTLP HTTP exporter;
// OTEL_TRACES_STDOUT=true selects the stdout exporter for local debugging.
func SetupTracing(ctx context.Context, log *logger.Logger, serviceName string) (func(context.Context) error, bool, error) {
	noop := func(context.Context) error { return nil }

	otlpEndpoint := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	stdoutTraces := strings.EqualFold(os.Getenv("OTEL_TRACES_STDOUT"), "true")
	if otlpEndpoint == "" && !stdoutTraces {
		return noop, false, nil
	}

	var exporter sdktrace.SpanExporter
	var err error
	if otlpEndpoint != "" {
		exporter, err = otlptracehttp.New(ctx)
		if err != nil {
			return noop, false, fmt.Errorf("otlp exporter: %w", err)
		}
		log.Info("tracing enabled", "exporter", "otlp_http", "endpoint", otlpEndpoint)
	} else {
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return noop, false, fmt.Errorf("stdout exporter: %w", err)
		}
		log.Info("tracing enabled", "exporter", "stdout")
	}

	res, err := sdkresource.Merge(sdkresource.Default(), sdkresource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
	))
	if err != nil {
		return noop, false, fmt.Errorf("otel resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, true, nil
}
