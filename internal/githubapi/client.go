// Package githubapi is a thin issue-comment client over the GitHub REST API.
package githubapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

const (
	// DefaultTimeout bounds every REST round trip.
	DefaultTimeout = 30 * time.Second

	commentsPerPage = 100
)

// Client lists, creates and edits issue comments of a single repository.
type Client struct {
	logger *slog.Logger
	gh     *github.Client
	repo   string
	owner  string
	name   string
}

// Option customizes a Client.
type Option func(*clientOptions)

type clientOptions struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// WithBaseURL points the client at a different REST root, e.g. a GitHub Enterprise
// "https://ghe.example.com/api/v3/" endpoint or a test server.
func WithBaseURL(raw string) Option {
	return func(o *clientOptions) { o.baseURL = raw }
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

// WithHTTPClient replaces the oauth2 transport. The token is then not attached by the client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = hc }
}

// NewClient builds a client for the owner/name repository slug authenticated with token.
func NewClient(logger *slog.Logger, token, repo string, opts ...Option) (*Client, error) {
	owner, name, err := SplitRepo(repo)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	o := clientOptions{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	hc := o.httpClient
	if hc == nil {
		if strings.TrimSpace(token) == "" {
			return nil, fmt.Errorf("github token is empty")
		}
		hc = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}
	if o.timeout > 0 {
		hc.Timeout = o.timeout
	}

	gh := github.NewClient(hc)
	if o.baseURL != "" {
		base := o.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse api base url %q: %w", o.baseURL, err)
		}
		gh.BaseURL = u
	}

	return &Client{
		logger: logger,
		gh:     gh,
		repo:   owner + "/" + name,
		owner:  owner,
		name:   name,
	}, nil
}

// SplitRepo validates an owner/name slug and returns its parts.
func SplitRepo(repo string) (string, string, error) {
	repo = strings.TrimSpace(repo)
	if repo == "" {
		return "", "", fmt.Errorf("repository is empty")
	}
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return "", "", fmt.Errorf("invalid repository slug %q, expected owner/repo", repo)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

// Repo returns the owner/name slug the client is bound to.
func (c *Client) Repo() string { return c.repo }

// ListComments returns every comment on an issue or pull request in API order.
func (c *Client) ListComments(ctx context.Context, number int) ([]IssueComment, error) {
	if number <= 0 {
		return nil, fmt.Errorf("pull request number must be positive")
	}

	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: commentsPerPage},
	}

	var out []IssueComment
	for {
		page, resp, err := c.gh.Issues.ListComments(ctx, c.owner, c.name, number, opts)
		if err != nil {
			return nil, fmt.Errorf("list comments on %s#%d: %w", c.repo, number, describe(err))
		}
		for _, comment := range page {
			out = append(out, fromGitHub(comment))
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	c.logger.Debug("listed issue comments", "repo", c.repo, "number", number, "count", len(out))
	return out, nil
}

// CreateComment posts a new comment and returns it as stored by GitHub.
func (c *Client) CreateComment(ctx context.Context, number int, body string) (IssueComment, error) {
	if number <= 0 {
		return IssueComment{}, fmt.Errorf("pull request number must be positive")
	}
	created, _, err := c.gh.Issues.CreateComment(ctx, c.owner, c.name, number, &github.IssueComment{
		Body: github.String(body),
	})
	if err != nil {
		return IssueComment{}, fmt.Errorf("create comment on %s#%d: %w", c.repo, number, describe(err))
	}
	return fromGitHub(created), nil
}

// UpdateComment overwrites the body of an existing comment in place.
func (c *Client) UpdateComment(ctx context.Context, id int64, body string) (IssueComment, error) {
	if id <= 0 {
		return IssueComment{}, fmt.Errorf("comment id must be positive")
	}
	edited, _, err := c.gh.Issues.EditComment(ctx, c.owner, c.name, id, &github.IssueComment{
		Body: github.String(body),
	})
	if err != nil {
		return IssueComment{}, fmt.Errorf("update comment %d in %s: %w", id, c.repo, describe(err))
	}
	return fromGitHub(edited), nil
}

// StatusCode extracts the HTTP status of a failed GitHub call, or 0 when the failure
// happened below HTTP (timeout, DNS, connection reset).
func StatusCode(err error) int {
	var apiErr *github.ErrorResponse
	if errors.As(err, &apiErr) && apiErr.Response != nil {
		return apiErr.Response.StatusCode
	}
	return 0
}

// describe keeps go-github's error in the chain but avoids echoing request URLs twice.
func describe(err error) error {
	var apiErr *github.ErrorResponse
	if errors.As(err, &apiErr) && apiErr.Response != nil {
		return fmt.Errorf("github api status %d (%s): %w", apiErr.Response.StatusCode, apiErr.Message, err)
	}
	return err
}
