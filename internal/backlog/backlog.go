// Package backlog places Stories and Sub-tasks in a Jira project without creating duplicates.
package backlog

import (
	"context"
	"fmt"
	"log"

	"github.com/andygrunwald/go-jira"
	"github.com/cchalm/jira-issue-flow/internal/tracker"
)

// IssueType is the Jira issue type name
type IssueType string

const (
	Story   IssueType = "Story"
	SubTask IssueType = "Sub-task"
)

// SearchLimit caps how many search results are inspected for an exact summary match
const SearchLimit = 10

// Backlog finds or creates issues in a single Jira project
type Backlog struct {
	tracker       tracker.Tracker
	project       string
	epicLinkField string
}

// New creates a Backlog for the given project. epicLinkField is the id of the custom field linking a Story to its
// Epic, e.g. "customfield_10014"
func New(t tracker.Tracker, project string, epicLinkField string) *Backlog {
	return &Backlog{
		tracker:       t,
		project:       project,
		epicLinkField: epicLinkField,
	}
}

// Find runs jql and returns the first result whose summary equals summary exactly
func (b *Backlog) Find(ctx context.Context, jql string, summary string) (tracker.Issue, bool, error) {
	issues, err := b.tracker.Search(ctx, jql, SearchLimit)
	if err != nil {
		return tracker.Issue{}, false, err
	}
	for _, issue := range issues {
		if issue.Summary == summary {
			return issue, true, nil
		}
	}
	return tracker.Issue{}, false, nil
}

// Fields builds the fields of a new issue. A Story is linked to its Epic through the epic link field, a Sub-task to
// its Story through parent
func (b *Backlog) Fields(summary string, issueType IssueType, parentKey string, description string) *jira.IssueFields {
	fields := &jira.IssueFields{
		Project:     jira.Project{Key: b.project},
		Summary:     summary,
		Type:        jira.IssueType{Name: string(issueType)},
		Description: description,
	}

	// IssueFields drops an empty description; unknown fields are always sent
	fields.Unknowns = map[string]interface{}{}
	if description == "" {
		fields.Unknowns["description"] = ""
	}

	switch issueType {
	case Story:
		fields.Unknowns[b.epicLinkField] = parentKey
	case SubTask:
		fields.Parent = &jira.Parent{Key: parentKey}
	}

	return fields
}

// Create creates a new issue
func (b *Backlog) Create(ctx context.Context, summary string, issueType IssueType, parentKey string, description string) (tracker.Issue, error) {
	return b.tracker.Create(ctx, b.Fields(summary, issueType, parentKey, description))
}

// GetOrCreate returns the issue matching summary, creating it if jql finds none. The returned bool reports whether
// the issue was created. Two concurrent callers may both create the issue
func (b *Backlog) GetOrCreate(ctx context.Context, summary string, jql string, issueType IssueType, parentKey string, description string) (tracker.Issue, bool, error) {
	issue, found, err := b.Find(ctx, jql, summary)
	if err != nil {
		return tracker.Issue{}, false, fmt.Errorf("failed to look up %s '%s': %w", issueType, summary, err)
	}
	if found {
		log.Printf("Found existing %s %s: %s", issueType, issue.Key, summary)
		return issue, false, nil
	}

	issue, err = b.Create(ctx, summary, issueType, parentKey, description)
	if err != nil {
		return tracker.Issue{}, false, fmt.Errorf("failed to create %s '%s': %w", issueType, summary, err)
	}
	log.Printf("Created %s %s: %s", issueType, issue.Key, summary)
	return issue, true, nil
}

// EnsureStory finds or creates a Story under the given Epic
func (b *Backlog) EnsureStory(ctx context.Context, summary string, epicKey string, description string) (tracker.Issue, bool, error) {
	return b.GetOrCreate(ctx, summary, StoryJQL(b.project, summary, epicKey), Story, epicKey, description)
}

// EnsureSubtask finds or creates a Sub-task under the given Story
func (b *Backlog) EnsureSubtask(ctx context.Context, summary string, storyKey string, description string) (tracker.Issue, bool, error) {
	return b.GetOrCreate(ctx, summary, SubtaskJQL(b.project, summary, storyKey), SubTask, storyKey, description)
}
