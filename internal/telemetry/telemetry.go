package telemetry

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	serviceName = "jira-issue-flow"
	tracerName  = "github.com/cchalm/jira-issue-flow"
)

// TelemetryConfig holds the configuration for telemetry
type TelemetryConfig struct {
	Enabled bool
	// OTLP/HTTP collector base URL, e.g. http://collector:4318. Empty uses the exporter's default
	Endpoint string
	Version  string
}

// Provider manages the tracer provider for a single run
type Provider struct {
	tracerProvider trace.TracerProvider
	shutdown       func(context.Context) error
}

// NewProvider creates a new telemetry provider. A disabled provider hands out no-op tracers
func NewProvider(ctx context.Context, config TelemetryConfig) (*Provider, error) {
	if !config.Enabled {
		log.Printf("Telemetry disabled")
		return &Provider{
			tracerProvider: noop.NewTracerProvider(),
			shutdown:       func(context.Context) error { return nil },
		}, nil
	}

	opts := []otlptracehttp.Option{}
	if config.Endpoint != "" {
		// The endpoint is a base URL; its scheme selects TLS
		opts = append(opts, otlptracehttp.WithEndpointURL(strings.TrimSuffix(config.Endpoint, "/")+"/v1/traces"))
	}

	var exporter *otlptrace.Exporter
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", config.Version),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	log.Printf("Telemetry enabled, exporting traces to %s", endpointOrDefault(config.Endpoint))

	return NewProviderFrom(tp, tp.Shutdown), nil
}

// NewProviderFrom wraps an existing tracer provider, e.g. one backed by an in-memory recorder in tests
func NewProviderFrom(tp trace.TracerProvider, shutdown func(context.Context) error) *Provider {
	if shutdown == nil {
		shutdown = func(context.Context) error { return nil }
	}
	return &Provider{tracerProvider: tp, shutdown: shutdown}
}

// Tracer returns the tracer used for all spans emitted by this program
func (p *Provider) Tracer() trace.Tracer {
	return p.tracerProvider.Tracer(tracerName)
}

// Shutdown flushes pending spans and shuts down the telemetry provider
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.shutdown(ctx)
}

// NewRunID generates a new run UUID
func NewRunID() string {
	return uuid.New().String()
}

func endpointOrDefault(endpoint string) string {
	if endpoint == "" {
		return "http://localhost:4318"
	}
	return endpoint
}
