package cmd

import (
	jiraconfig "github.com/cchalm/jira-issue-flow/internal/config"
)

var config = Config{}

type Config struct {
	// Environment config, loaded before the command runs
	Jira jiraconfig.Config

	// Story and sub-task to ensure
	StorySummary       string
	StoryDescription   string
	SubtaskSummary     string
	SubtaskDescription string

	// Transport options
	RateLimitRetries int
}
