package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andywolf/ghreport/internal/markdown"
)

// placeholder is rendered for fields that are absent upstream.
const placeholder = "None"

// IssuesToMarkdown renders issues as a markdown report headed by the repository name.
// Comments are fetched per issue while rendering; a failed fetch aborts the report.
func (r *Reporter) IssuesToMarkdown(ctx context.Context, owner, repo string, issues []Issue) (string, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s Issues\n", repo))

	for _, issue := range issues {
		sb.WriteString(fmt.Sprintf("### %s\n", issue.Title))
		sb.WriteString(fmt.Sprintf("Milestone: %s\n\n", r.milestoneText(issue.Milestone)))
		sb.WriteString(fmt.Sprintf("Labels: %s\n\n", joinOrNone(issue.Labels)))
		sb.WriteString(fmt.Sprintf("Assignees: %s\n\n", joinOrNone(issue.Assignees)))

		comments, err := r.client.ListComments(ctx, owner, repo, issue.Number)
		if err != nil {
			return "", fmt.Errorf("failed to list comments for issue #%d: %w", issue.Number, err)
		}

		if issue.Body != nil {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", issue.Author, markdown.Strip(*issue.Body)))
		}
		for _, comment := range comments {
			if comment.Body == nil {
				continue
			}
			sb.WriteString(fmt.Sprintf("- %s: %s\n", comment.Author, markdown.Strip(*comment.Body)))
		}
	}

	return sb.String(), nil
}

// MilestonesToMarkdown renders milestones as a markdown report headed by the repository
// name. Each milestone lists its open issues, fetched while rendering.
func (r *Reporter) MilestonesToMarkdown(ctx context.Context, owner, repo string, milestones []Milestone) (string, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s Milestones\n", repo))

	for i := range milestones {
		m := &milestones[i]
		sb.WriteString(fmt.Sprintf("### %s\n", m.Title))

		if m.DueOn != nil {
			sb.WriteString(r.formatDate(*m.DueOn) + "\n")
		}
		if m.Description != nil && *m.Description != "" {
			sb.WriteString(*m.Description + "\n")
		}

		issues, err := r.FetchIssues(ctx, owner, repo, m)
		if err != nil {
			return "", fmt.Errorf("failed to fetch issues for milestone %q: %w", m.Title, err)
		}

		for _, issue := range issues {
			sb.WriteString(fmt.Sprintf("- %s\n", issue.Title))
			sb.WriteString(fmt.Sprintf("\t- Labels: %s\n\n", joinOrNone(issue.Labels)))
			sb.WriteString(fmt.Sprintf("\t- Assignees: %s\n\n", joinOrNone(issue.Assignees)))
		}
	}

	return sb.String(), nil
}

// milestoneText renders an issue's milestone as "title (due date)".
func (r *Reporter) milestoneText(m *Milestone) string {
	if m == nil {
		return placeholder
	}
	due := placeholder
	if m.DueOn != nil {
		due = r.formatDate(*m.DueOn)
	}
	return fmt.Sprintf("%s (%s)", m.Title, due)
}

// formatDate renders the calendar date of t. GitHub reports due dates in UTC.
func (r *Reporter) formatDate(t time.Time) string {
	return t.UTC().Format(r.dateFormat)
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return placeholder
	}
	return strings.Join(values, ", ")
}
