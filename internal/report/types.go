// Package report fetches open issues and milestones through a Client and renders them
// as markdown reports.
package report

import (
	"context"
	"time"
)

// Issue is a read-only projection of a repository issue.
type Issue struct {
	Number    int
	Title     string
	Body      *string
	Author    string
	Milestone *Milestone
	Labels    []string
	Assignees []string

	// PullRequest is true when the API returned a pull request under the issues endpoint.
	PullRequest bool
}

// Milestone is a read-only projection of a repository milestone.
type Milestone struct {
	Number      int
	Title       string
	DueOn       *time.Time
	Description *string
}

// Comment is a single comment on an issue.
type Comment struct {
	IssueNumber int
	Author      string
	Body        *string
}

// Client is the subset of the hosting API used to build reports.
// Implementations return items in API order and do not cache.
type Client interface {
	// ListIssues returns open issues and pull requests for the repository.
	// milestone is the milestone number to scope by, or "" for no scope.
	ListIssues(ctx context.Context, owner, repo, milestone string) ([]Issue, error)

	// ListMilestones returns open milestones for the repository.
	ListMilestones(ctx context.Context, owner, repo string) ([]Milestone, error)

	// ListComments returns the comments on an issue, oldest first.
	ListComments(ctx context.Context, owner, repo string, number int) ([]Comment, error)
}
