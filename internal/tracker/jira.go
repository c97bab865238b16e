package tracker

import (
	"context"
	"fmt"
	"net/http"

	"github.com/andygrunwald/go-jira"
	"github.com/cchalm/jira-issue-flow/internal/config"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
)

// Jira implements Tracker on top of the Jira REST API
type Jira struct {
	client *jira.Client
	tracer trace.Tracer
}

// NewJira creates an authenticated Jira client. base is the round tripper requests are sent through once credentials
// have been attached; nil means http.DefaultTransport
func NewJira(ctx context.Context, cfg config.Config, base http.RoundTripper, tracer trace.Tracer) (*Jira, error) {
	var httpClient *http.Client
	switch cfg.Auth {
	case config.AuthBasic:
		tp := jira.BasicAuthTransport{
			Username:  cfg.Email,
			Password:  cfg.Token,
			Transport: base,
		}
		httpClient = tp.Client()
	case config.AuthBearer:
		if base != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Transport: base})
		}
		tokenSource := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: cfg.Token},
		)
		httpClient = oauth2.NewClient(ctx, tokenSource)
	default:
		return nil, fmt.Errorf("unsupported auth mode '%s'", cfg.Auth)
	}

	client, err := jira.NewClient(httpClient, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %w", err)
	}

	return &Jira{client: client, tracer: tracer}, nil
}

func (j *Jira) Search(ctx context.Context, jql string, maxResults int) ([]Issue, error) {
	ctx, span := j.tracer.Start(ctx, "jira.search", trace.WithAttributes(
		attribute.String("jira.jql", jql),
		attribute.Int("jira.max_results", maxResults),
	))
	defer span.End()

	opts := &jira.SearchOptions{
		MaxResults: maxResults,
		Fields:     []string{"summary"},
	}
	found, _, err := j.client.Issue.SearchWithContext(ctx, jql, opts)
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to search issues: %w", err)
	}

	issues := make([]Issue, 0, len(found))
	for _, issue := range found {
		issues = append(issues, fromJira(issue))
	}
	span.SetAttributes(attribute.Int("jira.result_count", len(issues)))

	return issues, nil
}

func (j *Jira) Create(ctx context.Context, fields *jira.IssueFields) (Issue, error) {
	ctx, span := j.tracer.Start(ctx, "jira.create", trace.WithAttributes(
		attribute.String("jira.issue_type", fields.Type.Name),
		attribute.String("jira.project", fields.Project.Key),
	))
	defer span.End()

	created, _, err := j.client.Issue.CreateWithContext(ctx, &jira.Issue{Fields: fields})
	if err != nil {
		recordError(span, err)
		return Issue{}, fmt.Errorf("failed to create %s: %w", fields.Type.Name, err)
	}
	span.SetAttributes(attribute.String("jira.key", created.Key))

	// The create response carries only id, key and self
	return Issue{Key: created.Key, Summary: fields.Summary}, nil
}

func fromJira(issue jira.Issue) Issue {
	i := Issue{Key: issue.Key}
	if issue.Fields != nil {
		i.Summary = issue.Fields.Summary
	}
	return i
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
