// Package telemetry wires structured logging and the OpenTelemetry SDK.
//
// Call SetupTracer once at the top of main() and defer the returned shutdown
// function; spans created anywhere in the process are then exported.
//
//	shutdown, err := telemetry.SetupTracer(ctx, "shop", cfg.OTLPEndpoint)
//	if err != nil { ... }
//	defer shutdown(context.Background())
package telemetry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ShutdownFunc flushes buffered spans and closes the exporter connection.
type ShutdownFunc func(ctx context.Context) error

// SetupTracer installs the global TracerProvider and the W3C propagators.
// With an empty endpoint only the propagators are installed, spans stay
// no-ops and the shutdown function does nothing.
func SetupTracer(ctx context.Context, serviceName, endpoint string) (ShutdownFunc, error) {
	// W3C traceparent and baggage headers. otelhttp injects them on the shop's
	// outbound requests and extracts them in the storefront API, which is what
	// puts both processes in one trace.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	// grpc.NewClient expects host:port.
	endpoint = stripScheme(endpoint)

	// ── 1. OTLP gRPC exporter ───────────────────────────────────────────────
	// NewClient does not dial; the connection is made on the first export, so
	// an unreachable collector never blocks startup.
	conn, err := grpc.NewClient(
		endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: failed to dial OTel Collector at %s: %w", endpoint, err)
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("telemetry: failed to create OTLP trace exporter: %w", err)
	}

	// ── 2. Resource: names the process in the tracing backend ───────────────
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("telemetry: failed to build resource: %w", err)
	}

	// ── 3. TracerProvider with a batching span processor ────────────────────
	// Every span is sampled. The CLI exits right after a command, so Close
	// flushes the batch through shutdown.
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(5*time.Second),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	// ── 4. Global provider, read by otel.Tracer and both otelhttp wrappers ──
	otel.SetTracerProvider(tp)

	shutdown := func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("telemetry: error shutting down TracerProvider: %w", err)
		}
		return conn.Close()
	}

	return shutdown, nil
}

// stripScheme turns "http://collector:4317" into "collector:4317".
func stripScheme(endpoint string) string {
	for _, prefix := range []string{"http://", "https://"} {
		if rest, ok := strings.CutPrefix(endpoint, prefix); ok && rest != "" {
			return rest
		}
	}
	return endpoint
}
