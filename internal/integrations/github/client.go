package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v60/github"

	"github.com/shepherdly/shepherd-bot/internal/event"
)

// Client wraps the GitHub API client. Every call goes through the retry
// helper, so transient rate-limit and server errors are absorbed up to the
// configured budget.
type Client struct {
	client *github.Client
	retry  RetryConfig
}

// WithRetryConfig overrides the retry budget.
func (c *Client) WithRetryConfig(cfg RetryConfig) *Client {
	c.retry = cfg
	return c
}

// GetIssue fetches an issue snapshot.
func (c *Client) GetIssue(ctx context.Context, org, repo string, number int) (*event.Issue, error) {
	issue, err := withRetry(ctx, c.retry, "get issue", func() (*github.Issue, error) {
		is, _, err := c.client.Issues.Get(ctx, org, repo, number)
		return is, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issue: %w", err)
	}
	return event.FromIssue(issue), nil
}

// ListComments fetches the full comment history for an issue, paginated.
func (c *Client) ListComments(ctx context.Context, org, repo string, number int) ([]event.Comment, error) {
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	comments := []event.Comment{}
	for {
		page, resp, err := withRetryResp(ctx, c.retry, "list comments", func() ([]*github.IssueComment, *github.Response, error) {
			return c.client.Issues.ListComments(ctx, org, repo, number, opts)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list comments: %w", err)
		}
		for _, gc := range page {
			comments = append(comments, *event.FromComment(gc))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return comments, nil
}

// ListIssuesByState lists the repository's issues for a sweep, filtered by
// state ("all", "open" or "closed"). Pull requests are excluded.
func (c *Client) ListIssuesByState(ctx context.Context, org, repo, state string) ([]*github.Issue, error) {
	opts := &github.IssueListByRepoOptions{
		State:       state,
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var issues []*github.Issue
	for {
		page, resp, err := withRetryResp(ctx, c.retry, "list issues", func() ([]*github.Issue, *github.Response, error) {
			return c.client.Issues.ListByRepo(ctx, org, repo, opts)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list issues: %w", err)
		}
		for _, is := range page {
			if is.IsPullRequest() {
				continue
			}
			issues = append(issues, is)
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return issues, nil
}

// AddLabels adds labels to an issue.
func (c *Client) AddLabels(ctx context.Context, org, repo string, number int, labels []string) error {
	if len(labels) == 0 {
		return fmt.Errorf("labels cannot be empty")
	}

	_, err := withRetry(ctx, c.retry, "add labels", func() ([]*github.Label, error) {
		ls, _, err := c.client.Issues.AddLabelsToIssue(ctx, org, repo, number, labels)
		return ls, err
	})
	if err != nil {
		return fmt.Errorf("failed to add labels: %w", err)
	}
	return nil
}

// RemoveLabel removes a label from an issue. A 404 response means the
// label was already absent (a concurrent run got there first) and is
// treated as success.
func (c *Client) RemoveLabel(ctx context.Context, org, repo string, number int, name string) error {
	_, err := withRetry(ctx, c.retry, "remove label", func() (struct{}, error) {
		_, err := c.client.Issues.RemoveLabelForIssue(ctx, org, repo, number, name)
		return struct{}{}, err
	})
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to remove label: %w", err)
	}
	return nil
}

// SetState transitions an issue to "open" or "closed".
func (c *Client) SetState(ctx context.Context, org, repo string, number int, state string) error {
	if state != "open" && state != "closed" {
		return fmt.Errorf("invalid issue state %q", state)
	}

	_, err := withRetry(ctx, c.retry, "set state", func() (*github.Issue, error) {
		is, _, err := c.client.Issues.Edit(ctx, org, repo, number, &github.IssueRequest{
			State: github.String(state),
		})
		return is, err
	})
	if err != nil {
		return fmt.Errorf("failed to set issue state: %w", err)
	}
	return nil
}

// AddAssignees assigns users to an issue.
func (c *Client) AddAssignees(ctx context.Context, org, repo string, number int, users []string) error {
	if len(users) == 0 {
		return fmt.Errorf("assignees cannot be empty")
	}

	_, err := withRetry(ctx, c.retry, "add assignees", func() (*github.Issue, error) {
		is, _, err := c.client.Issues.AddAssignees(ctx, org, repo, number, users)
		return is, err
	})
	if err != nil {
		return fmt.Errorf("failed to add assignees: %w", err)
	}
	return nil
}

// RemoveAssignees unassigns users from an issue. A 404 is treated as
// success, matching label removal.
func (c *Client) RemoveAssignees(ctx context.Context, org, repo string, number int, users []string) error {
	if len(users) == 0 {
		return fmt.Errorf("assignees cannot be empty")
	}

	_, err := withRetry(ctx, c.retry, "remove assignees", func() (*github.Issue, error) {
		is, _, err := c.client.Issues.RemoveAssignees(ctx, org, repo, number, users)
		return is, err
	})
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to remove assignees: %w", err)
	}
	return nil
}

// CreateComment posts a comment on an issue.
func (c *Client) CreateComment(ctx context.Context, org, repo string, number int, body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("comment body cannot be empty")
	}

	_, err := withRetry(ctx, c.retry, "create comment", func() (*github.IssueComment, error) {
		cm, _, err := c.client.Issues.CreateComment(ctx, org, repo, number, &github.IssueComment{
			Body: github.String(body),
		})
		return cm, err
	})
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// UpdateComment replaces a comment's body.
func (c *Client) UpdateComment(ctx context.Context, org, repo string, commentID int64, body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("comment body cannot be empty")
	}

	_, err := withRetry(ctx, c.retry, "update comment", func() (*github.IssueComment, error) {
		cm, _, err := c.client.Issues.EditComment(ctx, org, repo, commentID, &github.IssueComment{
			Body: github.String(body),
		})
		return cm, err
	})
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return nil
}

// UpdateIssueBody replaces an issue's body.
func (c *Client) UpdateIssueBody(ctx context.Context, org, repo string, number int, body string) error {
	_, err := withRetry(ctx, c.retry, "update issue body", func() (*github.Issue, error) {
		is, _, err := c.client.Issues.Edit(ctx, org, repo, number, &github.IssueRequest{
			Body: github.String(body),
		})
		return is, err
	})
	if err != nil {
		return fmt.Errorf("failed to update issue body: %w", err)
	}
	return nil
}

// PermissionLevel resolves a user's collaborator permission level. Users
// who are not collaborators resolve to "none" with no error; the lookup
// failing with not-found is expected for external reporters.
func (c *Client) PermissionLevel(ctx context.Context, org, repo, username string) (string, error) {
	level, err := withRetry(ctx, c.retry, "permission level", func() (*github.RepositoryPermissionLevel, error) {
		pl, _, err := c.client.Repositories.GetPermissionLevel(ctx, org, repo, username)
		return pl, err
	})
	if err != nil {
		if isNotFound(err) {
			return "none", nil
		}
		return "", fmt.Errorf("failed to resolve permission for %s: %w", username, err)
	}
	return level.GetPermission(), nil
}

// withRetryResp adapts paginated list calls, which need the response for
// the next-page cursor, to the retry helper.
func withRetryResp[T any](ctx context.Context, cfg RetryConfig, operation string, fn func() (T, *github.Response, error)) (T, *github.Response, error) {
	type pair struct {
		val  T
		resp *github.Response
	}
	p, err := withRetry(ctx, cfg, operation, func() (pair, error) {
		val, resp, err := fn()
		return pair{val, resp}, err
	})
	return p.val, p.resp, err
}
