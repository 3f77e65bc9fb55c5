// Package github wraps the GitHub API operations the labeler needs:
// fetching issues, applying labels, and reading files for remote
// configuration.
package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v60/github"

	"github.com/glideinwms/issue-labeler/internal/core/pipeline"
)

// Client wraps the GitHub API client.
type Client struct {
	client *github.Client
}

// GetIssue fetches issue details and converts them to the pipeline form.
func (c *Client) GetIssue(ctx context.Context, org, repo string, number int) (*pipeline.Issue, error) {
	issue, _, err := c.client.Issues.Get(ctx, org, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issue: %w", err)
	}

	out := &pipeline.Issue{
		Org:    org,
		Repo:   repo,
		Number: number,
		Title:  issue.GetTitle(),
		Body:   issue.GetBody(),
		State:  issue.GetState(),
		Author: issue.GetUser().GetLogin(),
		URL:    issue.GetHTMLURL(),
	}
	for _, l := range issue.Labels {
		out.Labels = append(out.Labels, l.GetName())
	}
	return out, nil
}

// AddLabels adds labels to an issue.
func (c *Client) AddLabels(ctx context.Context, org, repo string, number int, labels []string) error {
	if len(labels) == 0 {
		return fmt.Errorf("labels cannot be empty")
	}

	_, _, err := c.client.Issues.AddLabelsToIssue(ctx, org, repo, number, labels)
	if err != nil {
		return fmt.Errorf("failed to add labels: %w", err)
	}
	return nil
}

// ListLabels lists the label names defined on a repository.
func (c *Client) ListLabels(ctx context.Context, org, repo string) ([]string, error) {
	var names []string
	opts := &github.ListOptions{PerPage: 100}
	for {
		labels, resp, err := c.client.Issues.ListLabels(ctx, org, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list labels: %w", err)
		}
		for _, l := range labels {
			names = append(names, l.GetName())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return names, nil
}

// GetFileContent fetches a file from a repository at the given ref.
// Used for remote rule files and 'extends' configuration.
func (c *Client) GetFileContent(ctx context.Context, org, repo, path, ref string) ([]byte, error) {
	opts := &github.RepositoryContentGetOptions{Ref: ref}
	content, _, _, err := c.client.Repositories.GetContents(ctx, org, repo, path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s/%s:%s: %w", org, repo, path, err)
	}
	if content == nil {
		return nil, fmt.Errorf("%s/%s:%s is not a file", org, repo, path)
	}

	decoded, err := content.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s/%s:%s: %w", org, repo, path, err)
	}
	return []byte(decoded), nil
}
