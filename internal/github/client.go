// Package github implements report.Client on the GitHub REST API and provides
// GitHub App authentication for it.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v72/github"

	"github.com/andywolf/ghreport/internal/report"
)

// DefaultBaseURL is the public GitHub REST endpoint.
const DefaultBaseURL = "https://api.github.com/"

// pageSize is the largest page GitHub serves for the list endpoints used here.
const pageSize = 100

// Client lists issues, milestones and comments through go-github.
type Client struct {
	gh         *gh.Client
	httpClient *http.Client
	baseURL    string
	token      string
	userAgent  string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientHTTPClient sets the HTTP client used for API calls, e.g. one carrying a
// TokenTransport for GitHub App authentication.
func WithClientHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithAPIBaseURL points the client at a GitHub Enterprise or test server.
func WithAPIBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithToken authenticates requests with a personal access or installation token.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithUserAgent sets the User-Agent sent with every request.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// NewClient creates a GitHub API client. Without WithToken or a TokenTransport the client
// is anonymous and can only read public repositories.
func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    DefaultBaseURL,
	}

	for _, opt := range opts {
		opt(c)
	}

	base, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub API base URL %q: %w", c.baseURL, err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	c.gh = gh.NewClient(c.httpClient)
	if c.token != "" {
		c.gh = c.gh.WithAuthToken(c.token)
	}
	c.gh.BaseURL = base
	if c.userAgent != "" {
		c.gh.UserAgent = c.userAgent
	}

	return c, nil
}

// ListIssues returns every open issue and pull request of owner/repo, following pagination.
// milestone is a milestone number, "*", "none" or "" for no filter.
func (c *Client) ListIssues(ctx context.Context, owner, repo, milestone string) ([]report.Issue, error) {
	opts := &gh.IssueListByRepoOptions{
		State:       "open",
		Milestone:   milestone,
		ListOptions: gh.ListOptions{PerPage: pageSize},
	}

	var issues []report.Issue
	for {
		page, resp, err := c.gh.Issues.ListByRepo(ctx, owner, repo, opts)
		if err != nil {
			return nil, wrapAPIError("list issues", err)
		}
		for _, issue := range page {
			issues = append(issues, convertIssue(issue))
		}
		if resp.NextPage == 0 && resp.After == "" {
			break
		}
		opts.ListOptions.Page = resp.NextPage
		opts.ListCursorOptions.After = resp.After
	}

	return issues, nil
}

// ListMilestones returns every open milestone of owner/repo.
func (c *Client) ListMilestones(ctx context.Context, owner, repo string) ([]report.Milestone, error) {
	opts := &gh.MilestoneListOptions{
		State:       "open",
		ListOptions: gh.ListOptions{PerPage: pageSize},
	}

	var milestones []report.Milestone
	for {
		page, resp, err := c.gh.Issues.ListMilestones(ctx, owner, repo, opts)
		if err != nil {
			return nil, wrapAPIError("list milestones", err)
		}
		for _, m := range page {
			milestones = append(milestones, *convertMilestone(m))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return milestones, nil
}

// ListComments returns every comment on issue number of owner/repo.
func (c *Client) ListComments(ctx context.Context, owner, repo string, number int) ([]report.Comment, error) {
	opts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: pageSize},
	}

	var comments []report.Comment
	for {
		page, resp, err := c.gh.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, wrapAPIError(fmt.Sprintf("list comments for #%d", number), err)
		}
		for _, comment := range page {
			comments = append(comments, report.Comment{
				IssueNumber: number,
				Author:      comment.GetUser().GetLogin(),
				Body:        comment.Body,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return comments, nil
}

// convertIssue converts a go-github issue to the report model.
func convertIssue(issue *gh.Issue) report.Issue {
	labels := make([]string, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		labels = append(labels, label.GetName())
	}

	assignees := make([]string, 0, len(issue.Assignees))
	for _, user := range issue.Assignees {
		assignees = append(assignees, user.GetLogin())
	}

	var milestone *report.Milestone
	if issue.Milestone != nil {
		milestone = convertMilestone(issue.Milestone)
	}

	return report.Issue{
		Number:      issue.GetNumber(),
		Title:       issue.GetTitle(),
		Body:        issue.Body,
		Author:      issue.GetUser().GetLogin(),
		Milestone:   milestone,
		Labels:      labels,
		Assignees:   assignees,
		PullRequest: issue.IsPullRequest(),
	}
}

// convertMilestone converts a go-github milestone to the report model.
func convertMilestone(m *gh.Milestone) *report.Milestone {
	var dueOn *time.Time
	if m.DueOn != nil {
		t := m.DueOn.Time
		dueOn = &t
	}

	return &report.Milestone{
		Number:      m.GetNumber(),
		Title:       m.GetTitle(),
		DueOn:       dueOn,
		Description: m.Description,
	}
}

// wrapAPIError adds a hint for common GitHub API failures.
func wrapAPIError(op string, err error) error {
	var ghErr *gh.ErrorResponse
	if !errors.As(err, &ghErr) || ghErr.Response == nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}

	switch ghErr.Response.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("failed to %s: unauthorized (check token validity): %w", op, err)
	case http.StatusForbidden:
		return fmt.Errorf("failed to %s: forbidden (check token scopes or App permissions): %w", op, err)
	case http.StatusNotFound:
		return fmt.Errorf("failed to %s: not found (check owner/repo and access): %w", op, err)
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}
