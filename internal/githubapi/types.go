package githubapi

import (
	"time"

	"github.com/google/go-github/v66/github"
)

// IssueComment is the subset of a GitHub issue comment used by managed comments.
type IssueComment struct {
	// ID is the GitHub comment database ID.
	ID int64
	// Author is the GitHub login of the comment author.
	Author string
	// URL is the canonical HTML URL of the comment.
	URL string
	// Body is the raw markdown body of the comment.
	Body string
	// CreatedAt is the creation time reported by GitHub.
	CreatedAt time.Time
	// UpdatedAt is the last edit time reported by GitHub.
	UpdatedAt time.Time
}

func fromGitHub(c *github.IssueComment) IssueComment {
	if c == nil {
		return IssueComment{}
	}
	return IssueComment{
		ID:        c.GetID(),
		Author:    c.GetUser().GetLogin(),
		URL:       c.GetHTMLURL(),
		Body:      c.GetBody(),
		CreatedAt: c.GetCreatedAt().Time,
		UpdatedAt: c.GetUpdatedAt().Time,
	}
}
