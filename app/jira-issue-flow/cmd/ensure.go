package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/cchalm/jira-issue-flow/internal/backlog"
	"github.com/cchalm/jira-issue-flow/internal/telemetry"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func runEnsure(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := setupContext()
	defer cancel()

	runID := telemetry.NewRunID()
	log.Printf("Starting jira-issue-flow run %s", runID)
	log.Printf("Project: %s, epic: %s", config.Jira.Project, config.Jira.EpicKey)

	telemetryProvider, err := createTelemetryProvider(ctx)
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	defer func() {
		// The run context may already be cancelled; spans still need flushing
		if shutdownErr := telemetryProvider.Shutdown(context.Background()); shutdownErr != nil {
			log.Printf("Failed to shut down telemetry: %v", shutdownErr)
		}
	}()

	ctx, span := telemetryProvider.Tracer().Start(ctx, "ensure", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.String("jira.project", config.Jira.Project),
		attribute.String("jira.epic", config.Jira.EpicKey),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	jiraClient, err := createJiraClient(ctx, telemetryProvider.Tracer())
	if err != nil {
		return err
	}
	b := backlog.New(jiraClient, config.Jira.Project, config.Jira.EpicLinkField)

	story, _, err := b.EnsureStory(ctx, config.StorySummary, config.Jira.EpicKey, config.StoryDescription)
	if err != nil {
		return fmt.Errorf("failed to ensure story: %w", err)
	}

	// A story created above is left in place if this fails; the next run will find it
	subtask, _, err := b.EnsureSubtask(ctx, config.SubtaskSummary, story.Key, config.SubtaskDescription)
	if err != nil {
		return fmt.Errorf("failed to ensure sub-task under %s: %w", story.Key, err)
	}

	log.Printf("Done: story %s, sub-task %s", story.Key, subtask.Key)
	return nil
}
