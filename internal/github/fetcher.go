// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"time"

	"github.com/google/go-github/v41/github"

	"github.com/termlink/issuemirror/internal/githubapp"
	"github.com/termlink/issuemirror/internal/logging"
	"github.com/termlink/issuemirror/pkg/models"
)

// pageSize is the number of issues requested per page (GitHub's maximum).
const pageSize = 100

// IssueFetcher retrieves the complete issue set of a repository, following
// the pagination cursor across pages. Pages are fetched in strict order and
// concatenated; an error on any page aborts the whole fetch with no partial
// result. Each page request is authenticated with a currently valid
// installation token, so tokens may be refreshed mid-pagination.
type IssueFetcher struct {
	factory  *githubapp.ClientFactory
	resolver *githubapp.InstallationResolver
	tokens   *githubapp.TokenCache
}

// NewIssueFetcher creates an IssueFetcher.
func NewIssueFetcher(factory *githubapp.ClientFactory, resolver *githubapp.InstallationResolver, tokens *githubapp.TokenCache) *IssueFetcher {
	return &IssueFetcher{factory: factory, resolver: resolver, tokens: tokens}
}

// FetchAllIssues retrieves all issues (open and closed) from the repository.
// Pull requests, which the issues endpoint also returns, are filtered out.
// A fresh call always re-executes from page one.
func (f *IssueFetcher) FetchAllIssues(ctx context.Context, coords models.RepoCoordinates) ([]models.GitHubIssue, error) {
	installationID, err := f.resolver.Resolve(ctx, coords)
	if err != nil {
		return nil, err
	}

	client := f.factory.InstallationClient(ctx, f.tokens, installationID)

	opts := &github.IssueListByRepoOptions{
		State: "all",
		ListOptions: github.ListOptions{
			PerPage: pageSize,
		},
	}

	var allIssues []models.GitHubIssue
	for {
		issues, resp, err := client.Issues.ListByRepo(ctx, coords.Owner, coords.Name, opts)
		if err != nil {
			logging.Error("failed to fetch github issues",
				"repository", coords.FullName(),
				"page", opts.Page,
				"error", err)
			return nil, githubapp.ClassifyError("issue listing", resp, err)
		}

		for _, issue := range issues {
			// Skip pull requests (they're also returned by the Issues API)
			if issue.PullRequestLinks != nil {
				continue
			}
			allIssues = append(allIssues, convertIssue(issue))
		}

		logging.Debug("fetched issue page",
			"repository", coords.FullName(),
			"page", opts.Page,
			"issues", len(issues),
			"next_page", resp.NextPage)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	logging.Info("fetched all issues",
		"repository", coords.FullName(),
		"total", len(allIssues))
	return allIssues, nil
}

// convertIssue maps a GitHub API issue to the internal model.
func convertIssue(issue *github.Issue) models.GitHubIssue {
	labelNames := make([]string, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		labelNames = append(labelNames, label.GetName())
	}

	var closedAt *time.Time
	if issue.ClosedAt != nil {
		t := *issue.ClosedAt
		closedAt = &t
	}

	return models.GitHubIssue{
		NodeID:    issue.GetNodeID(),
		Number:    issue.GetNumber(),
		Title:     issue.GetTitle(),
		Body:      issue.GetBody(),
		State:     issue.GetState(),
		HTMLURL:   issue.GetHTMLURL(),
		CreatedAt: issue.GetCreatedAt(),
		UpdatedAt: issue.GetUpdatedAt(),
		ClosedAt:  closedAt,
		Labels:    labelNames,
	}
}
