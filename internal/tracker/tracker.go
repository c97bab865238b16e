// Package tracker provides access to the Jira issue tracker.
package tracker

import (
	"context"

	"github.com/andygrunwald/go-jira"
)

// Issue is the subset of a Jira issue this program reads
type Issue struct {
	Key     string
	Summary string
}

// Tracker searches for and creates issues
type Tracker interface {
	// Search runs a JQL query, returning at most maxResults issues in the order Jira returns them
	Search(ctx context.Context, jql string, maxResults int) ([]Issue, error)
	// Create submits a new issue with the given fields
	Create(ctx context.Context, fields *jira.IssueFields) (Issue, error)
}
