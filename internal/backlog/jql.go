package backlog

import "fmt"

// Summaries are matched with "~" (contains) and interpolated unescaped. Find discards results whose summary is not an
// exact match.

// StoryJQL selects Stories in project linked to epicKey whose summary contains summary
func StoryJQL(project string, summary string, epicKey string) string {
	return fmt.Sprintf(`project = %s AND summary ~ "%s" AND issuetype = Story AND "Epic Link" = "%s"`, project, summary, epicKey)
}

// SubtaskJQL selects Sub-tasks in project under storyKey whose summary contains summary
func SubtaskJQL(project string, summary string, storyKey string) string {
	return fmt.Sprintf(`project = %s AND summary ~ "%s" AND issuetype = Sub-task AND parent = "%s"`, project, summary, storyKey)
}
