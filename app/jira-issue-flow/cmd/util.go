package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/cchalm/jira-issue-flow/internal/telemetry"
	"github.com/cchalm/jira-issue-flow/internal/tracker"
	"github.com/cchalm/jira-issue-flow/internal/transport"
	"go.opentelemetry.io/otel/trace"
)

func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	// Setup graceful shutdown
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		select {
		case <-interrupt:
		case <-ctx.Done():
			signal.Stop(interrupt)
			return
		}
		log.Println("Interrupt signal detected, shutting down gracefully...")
		cancel()
		<-interrupt
		log.Fatal("Forcing shutdown")
	}()

	return ctx, cancel
}

func createJiraClient(ctx context.Context, tracer trace.Tracer) (*tracker.Jira, error) {
	rateLimited := transport.WithRateLimiting(nil, config.RateLimitRetries)
	return tracker.NewJira(ctx, config.Jira, rateLimited, tracer)
}

func createTelemetryProvider(ctx context.Context) (*telemetry.Provider, error) {
	telemetryConfig := telemetry.TelemetryConfig{
		Enabled:  config.Jira.TelemetryEnabled,
		Endpoint: config.Jira.OTLPEndpoint,
		Version:  version,
	}
	return telemetry.NewProvider(ctx, telemetryConfig)
}
