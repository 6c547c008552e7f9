// Package github implements the RepoMetadataProvider port using the
// go-github library.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/repotrend/internal/domain/model"
	"github.com/ericfisherdev/repotrend/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RepoMetadataProvider = (*Client)(nil)

// Client fetches live repository metadata from the GitHub REST API.
type Client struct {
	gh *gh.Client
}

// NewClient creates a GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client, token auth when token is set)
//
// An empty token runs unauthenticated at the much lower anonymous limit.
func NewClient(token string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient)
	if token != "" {
		client = client.WithAuthToken(token)
	} else {
		slog.Warn("no github token configured, metadata calls are unauthenticated")
	}

	return &Client{gh: client}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	client := gh.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// Fetch returns the metadata of repoFullName. A missing repository maps to
// driven.ErrNotFound and an exhausted quota to driven.ErrRateLimited.
func (c *Client) Fetch(ctx context.Context, repoFullName string) (*model.RepoMetadata, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", driven.ErrNotFound, err)
	}

	r, resp, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("getting repository %s: %w", repoFullName, classify(err, resp))
	}

	logRateLimit(resp, repoFullName)

	return mapRepository(r), nil
}

// classify maps go-github failures onto the port's sentinel errors while
// keeping the original error in the chain.
func classify(err error, resp *gh.Response) error {
	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return fmt.Errorf("%w: %w", driven.ErrRateLimited, err)
	}

	if resp != nil {
		switch resp.StatusCode {
		case http.StatusNotFound, http.StatusGone, http.StatusUnavailableForLegalReasons:
			return fmt.Errorf("%w: %w", driven.ErrNotFound, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %w", driven.ErrRateLimited, err)
		case http.StatusForbidden:
			// A 403 is a quota refusal only when the quota is spent; other
			// 403s (blocked or private repositories) are not worth retrying.
			if quotaExhausted(resp) {
				return fmt.Errorf("%w: %w", driven.ErrRateLimited, err)
			}
		}
	}

	return err
}

func quotaExhausted(resp *gh.Response) bool {
	return resp.Header.Get("X-RateLimit-Remaining") == "0"
}

func mapRepository(r *gh.Repository) *model.RepoMetadata {
	meta := &model.RepoMetadata{
		FullName:   r.GetFullName(),
		StarsTotal: r.GetStargazersCount(),
		ForksTotal: r.GetForksCount(),
		Language:   r.GetLanguage(),
	}
	if r.CreatedAt != nil {
		meta.CreatedAt = r.CreatedAt.UTC()
	}
	return meta
}

func logRateLimit(resp *gh.Response, endpoint string) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}
