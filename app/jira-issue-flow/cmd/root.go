package cmd

import (
	"fmt"
	"log"

	jiraconfig "github.com/cchalm/jira-issue-flow/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jira-issue-flow",
	Short: "Create a Jira Story and Sub-task if not present",
	Long: `jira-issue-flow makes sure a Story exists under the configured Epic and a
Sub-task exists under that Story, creating whichever is missing. Issues are
matched by exact summary, so running it again with the same arguments changes
nothing.

Jira credentials and project settings are read from MIGRATION_BACKLOG_JIRA_*
environment variables, or from a .env file in the working directory.`,
	PreRunE:       loadRootConfig,
	RunE:          runEnsure,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	return rootCmd.Execute()
}

func loadRootConfig(_ *cobra.Command, _ []string) error {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config.Jira = jiraconfig.Load()
	if err := config.Jira.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func init() {
	rootCmd.Flags().StringVar(&config.StorySummary, "story-summary", "", "Summary for the story")
	rootCmd.Flags().StringVar(&config.StoryDescription, "story-description", "", "Description for the story")
	rootCmd.Flags().StringVar(&config.SubtaskSummary, "subtask-summary", "", "Summary for the sub-task")
	rootCmd.Flags().StringVar(&config.SubtaskDescription, "subtask-description", "", "Description for the sub-task")
	rootCmd.Flags().IntVar(&config.RateLimitRetries, "rate-limit-retries", 0, "How many times to wait out a Jira rate limit (HTTP 429) before failing")

	_ = rootCmd.MarkFlagRequired("story-summary")
	_ = rootCmd.MarkFlagRequired("subtask-summary")
}
