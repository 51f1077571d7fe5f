package report

import (
	"context"
	"fmt"
	"strconv"
)

// FetchIssues returns the open issues of owner/repo in API order, excluding pull requests.
// A non-nil milestone scopes the result to issues in that milestone.
func (r *Reporter) FetchIssues(ctx context.Context, owner, repo string, milestone *Milestone) ([]Issue, error) {
	scope := ""
	if milestone != nil {
		scope = strconv.Itoa(milestone.Number)
		r.logInfo("Fetching repository issues for milestone %q:", milestone.Title)
	} else {
		r.logInfo("Fetching repository issues:")
	}

	issues, err := r.client.ListIssues(ctx, owner, repo, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues for %s/%s: %w", owner, repo, err)
	}

	result := make([]Issue, 0, len(issues))
	for _, issue := range issues {
		if issue.PullRequest {
			continue
		}
		if milestone != nil && (issue.Milestone == nil || issue.Milestone.Title != milestone.Title) {
			r.logWarning("skipping issue #%d: not in milestone %q", issue.Number, milestone.Title)
			continue
		}
		r.logInfo("- %s", issue.Title)
		result = append(result, issue)
	}

	return result, nil
}

// FetchMilestones returns the open milestones of owner/repo in API order.
func (r *Reporter) FetchMilestones(ctx context.Context, owner, repo string) ([]Milestone, error) {
	r.logInfo("Fetching repository milestones:")

	milestones, err := r.client.ListMilestones(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones for %s/%s: %w", owner, repo, err)
	}

	for _, m := range milestones {
		r.logInfo("- %s", m.Title)
	}

	return milestones, nil
}

// FindMilestone returns the open milestone of owner/repo with the given title.
func (r *Reporter) FindMilestone(ctx context.Context, owner, repo, title string) (*Milestone, error) {
	milestones, err := r.client.ListMilestones(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones for %s/%s: %w", owner, repo, err)
	}

	for i := range milestones {
		if milestones[i].Title == title {
			return &milestones[i], nil
		}
	}

	return nil, fmt.Errorf("no open milestone titled %q in %s/%s", title, owner, repo)
}
