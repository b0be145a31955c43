package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v80/github"
	"github.com/qudus4l/portfolio-chat/pkg/models"
)

// Config holds GitHub source configuration.
type Config struct {
	Username string
	BaseURL  string // API base URL override, used by tests
}

// Client collects profile, repository, and README documents from the
// public GitHub API. No authentication: only public data is read.
type Client struct {
	gh       *gh.Client
	username string
}

// New creates a new GitHub client.
func New(config Config) (*Client, error) {
	if config.Username == "" {
		return nil, fmt.Errorf("username is required")
	}

	client := gh.NewClient(nil)
	if config.BaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(config.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid base URL: %w", err)
		}
		client.BaseURL = base
	}

	return &Client{gh: client, username: config.Username}, nil
}

// ProfileDocuments fetches the user profile, every public repository,
// and each repository's README. Returns whatever was collected before
// the first hard failure; per-README failures are logged and skipped.
func (c *Client) ProfileDocuments(ctx context.Context) ([]models.Document, error) {
	var docs []models.Document

	user, _, err := c.gh.Users.Get(ctx, c.username)
	if err != nil {
		return docs, fmt.Errorf("failed to fetch GitHub profile: %w", err)
	}
	docs = append(docs, profileDocument(c.username, user))

	repos, err := c.listRepos(ctx)
	if err != nil {
		return docs, err
	}

	for _, repo := range repos {
		docs = append(docs, repoDocument(repo))

		readme, _, err := c.gh.Repositories.GetReadme(ctx, c.username, repo.GetName(), nil)
		if err != nil {
			slog.Debug("no README for repository", "repo", repo.GetName(), "error", err)
			continue
		}
		content, err := readme.GetContent()
		if err != nil {
			slog.Warn("failed to decode README", "repo", repo.GetName(), "error", err)
			continue
		}
		docs = append(docs, models.Document{
			Content: fmt.Sprintf("README for %s:\n%s", repo.GetName(), content),
			Metadata: models.Metadata{
				Source: "github_readme_" + repo.GetName(),
				URL:    repo.GetHTMLURL(),
			},
		})
	}

	slog.Debug("collected GitHub documents", "count", len(docs), "repos", len(repos))
	return docs, nil
}

func (c *Client) listRepos(ctx context.Context) ([]*gh.Repository, error) {
	var all []*gh.Repository
	opts := &gh.RepositoryListByUserOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	for {
		repos, resp, err := c.gh.Repositories.ListByUser(ctx, c.username, opts)
		if err != nil {
			return all, fmt.Errorf("failed to list repositories: %w", err)
		}
		all = append(all, repos...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

func profileDocument(username string, user *gh.User) models.Document {
	var b strings.Builder
	fmt.Fprintf(&b, "GitHub Profile: %s\n", username)
	fmt.Fprintf(&b, "Name: %s\n", user.GetName())
	fmt.Fprintf(&b, "Bio: %s\n", user.GetBio())
	fmt.Fprintf(&b, "Location: %s\n", user.GetLocation())
	fmt.Fprintf(&b, "Public Repositories: %d\n", user.GetPublicRepos())

	return models.Document{
		Content: b.String(),
		Metadata: models.Metadata{
			Source: "github_profile",
			URL:    user.GetHTMLURL(),
		},
	}
}

func repoDocument(repo *gh.Repository) models.Document {
	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s\n", repo.GetName())
	fmt.Fprintf(&b, "Description: %s\n", repo.GetDescription())
	fmt.Fprintf(&b, "Language: %s\n", repo.GetLanguage())
	fmt.Fprintf(&b, "Stars: %d\n", repo.GetStargazersCount())
	fmt.Fprintf(&b, "Forks: %d\n", repo.GetForksCount())
	fmt.Fprintf(&b, "URL: %s\n", repo.GetHTMLURL())

	return models.Document{
		Content: b.String(),
		Metadata: models.Metadata{
			Source: "github_repo_" + repo.GetName(),
			URL:    repo.GetHTMLURL(),
		},
	}
}
