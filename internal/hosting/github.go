package hosting

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/google/go-github/v57/github"
	"github.com/huangsam/gitgrade/internal/contract"
	"github.com/huangsam/gitgrade/schema"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/oauth2"
)

// maxPerPage is the largest page size the commits API accepts.
const maxPerPage = 100

// GitHubClient fetches repository metadata and commits from the GitHub REST API.
type GitHubClient struct {
	client  *github.Client
	workers int
}

var _ contract.HostingClient = &GitHubClient{} // Compile-time check

// NewGitHubClient creates a client. An empty token uses anonymous access and
// a non-empty apiURL points the client at a GitHub Enterprise server.
func NewGitHubClient(token, apiURL string, workers int) (*GitHubClient, error) {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	client := github.NewClient(httpClient)

	if apiURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(apiURL, apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", apiURL, err)
		}
	}
	if workers <= 0 {
		workers = contract.DefaultWorkers
	}
	return &GitHubClient{client: client, workers: workers}, nil
}

// FetchRepository implements the HostingClient interface.
func (c *GitHubClient) FetchRepository(ctx context.Context, owner, repo string) (schema.RepositoryMetadata, error) {
	r, _, err := c.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return schema.RepositoryMetadata{}, mapError("fetch repository", err)
	}
	return schema.RepositoryMetadata{
		Owner:         r.GetOwner().GetLogin(),
		Name:          r.GetName(),
		FullName:      r.GetFullName(),
		Description:   r.GetDescription(),
		DefaultBranch: r.GetDefaultBranch(),
		Language:      r.GetLanguage(),
		Stars:         r.GetStargazersCount(),
		Forks:         r.GetForksCount(),
		Private:       r.GetPrivate(),
		URL:           r.GetHTMLURL(),
	}, nil
}

// FetchCommits implements the HostingClient interface. The list endpoint
// omits stats and files, so each commit is fetched again through a bounded
// worker pool. The API order is preserved.
func (c *GitHubClient) FetchCommits(ctx context.Context, owner, repo string, limit int) ([]schema.Commit, error) {
	if limit <= 0 {
		return nil, nil
	}
	shas, err := c.listCommitSHAs(ctx, owner, repo, limit)
	if err != nil {
		return nil, err
	}
	if len(shas) == 0 {
		return nil, nil
	}

	pool, err := ants.NewPool(min(c.workers, len(shas)))
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	commits := make([]schema.Commit, len(shas))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i, sha := range shas {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			rc, _, err := c.client.Repositories.GetCommit(ctx, owner, repo, sha, nil)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = mapError("fetch commit "+sha, err)
				}
				mu.Unlock()
				return
			}
			commits[i] = toCommit(rc)
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			return nil, fmt.Errorf("failed to schedule commit fetch: %w", err)
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, contract.NewHostingError(contract.NetworkError, "fetch commits", err)
	}
	return commits, nil
}

// listCommitSHAs pages through the commit list until limit shas are collected.
func (c *GitHubClient) listCommitSHAs(ctx context.Context, owner, repo string, limit int) ([]string, error) {
	opts := &github.CommitsListOptions{ListOptions: github.ListOptions{PerPage: min(limit, maxPerPage)}}
	shas := make([]string, 0, limit)
	for len(shas) < limit {
		page, resp, err := c.client.Repositories.ListCommits(ctx, owner, repo, opts)
		if err != nil {
			return nil, mapError("list commits", err)
		}
		for _, rc := range page {
			if len(shas) == limit {
				break
			}
			shas = append(shas, rc.GetSHA())
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return shas, nil
}

func toCommit(rc *github.RepositoryCommit) schema.Commit {
	gc := rc.GetCommit()
	stats := rc.GetStats()
	c := schema.Commit{
		SHA:     rc.GetSHA(),
		Message: gc.GetMessage(),
		Author: schema.Author{
			Name:     gc.GetAuthor().GetName(),
			Email:    gc.GetAuthor().GetEmail(),
			Username: rc.GetAuthor().GetLogin(),
		},
		Timestamp: gc.GetAuthor().GetDate().Time,
		Stats: schema.CommitStats{
			Additions:    stats.GetAdditions(),
			Deletions:    stats.GetDeletions(),
			Total:        stats.GetTotal(),
			FilesChanged: len(rc.Files),
		},
	}
	for _, p := range rc.Parents {
		c.ParentSHAs = append(c.ParentSHAs, p.GetSHA())
	}
	for _, f := range rc.Files {
		c.Files = append(c.Files, f.GetFilename())
	}
	return c
}

// mapError classifies a go-github failure as a HostingError.
func mapError(op string, err error) error {
	var (
		rateErr  *github.RateLimitError
		abuseErr *github.AbuseRateLimitError
		respErr  *github.ErrorResponse
		urlErr   *url.Error
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return contract.NewHostingError(contract.NetworkError, op, err)
	case errors.As(err, &rateErr), errors.As(err, &abuseErr):
		return contract.NewHostingError(contract.RateLimitedError, op, err)
	case errors.As(err, &respErr) && respErr.Response != nil:
		return contract.NewHostingError(kindForStatus(respErr.Response), op, err)
	case errors.As(err, &urlErr):
		return contract.NewHostingError(contract.NetworkError, op, err)
	default:
		return contract.NewHostingError(contract.UnknownError, op, err)
	}
}

func kindForStatus(resp *http.Response) contract.HostingErrorKind {
	switch resp.StatusCode {
	case http.StatusNotFound:
		return contract.NotFoundError
	case http.StatusUnauthorized:
		return contract.UnauthenticatedError
	case http.StatusTooManyRequests:
		return contract.RateLimitedError
	case http.StatusForbidden:
		if resp.Header.Get("X-RateLimit-Remaining") == "0" {
			return contract.RateLimitedError
		}
		return contract.ForbiddenError
	default:
		return contract.UnknownError
	}
}
