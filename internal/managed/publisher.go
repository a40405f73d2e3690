package managed

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sgex-ci/prcomment/internal/githubapi"
)

// CommentService is the slice of the issue-comment API a managed comment needs.
// *githubapi.Client implements it.
type CommentService interface {
	ListComments(ctx context.Context, number int) ([]githubapi.IssueComment, error)
	CreateComment(ctx context.Context, number int, body string) (githubapi.IssueComment, error)
	UpdateComment(ctx context.Context, id int64, body string) (githubapi.IssueComment, error)
}

// Action describes what a publish did to the remote comment.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionSkipped Action = "skipped"
)

// Find returns the first comment, in API order, whose body contains marker.
func Find(comments []githubapi.IssueComment, marker string) (githubapi.IssueComment, bool) {
	if marker == "" {
		return githubapi.IssueComment{}, false
	}
	for _, c := range comments {
		if strings.Contains(c.Body, marker) {
			return c, true
		}
	}
	return githubapi.IssueComment{}, false
}

// FindReferencing returns the first comment of a marker family (bodies containing
// familyPrefix, whatever their identity token) that also mentions needle.
// It is a best-effort heuristic used to avoid two workflows commenting on one commit.
func FindReferencing(comments []githubapi.IssueComment, familyPrefix, needle string) (githubapi.IssueComment, bool) {
	if familyPrefix == "" || needle == "" {
		return githubapi.IssueComment{}, false
	}
	for _, c := range comments {
		if strings.Contains(c.Body, familyPrefix) && strings.Contains(c.Body, needle) {
			return c, true
		}
	}
	return githubapi.IssueComment{}, false
}

// Published is the outcome of a successful publish.
type Published struct {
	Action    Action
	CommentID int64
	URL       string
}

// Publisher writes a fully rendered body to the managed comment of one pull request.
type Publisher struct {
	svc    CommentService
	logger *slog.Logger
}

// NewPublisher constructs a Publisher on top of svc.
func NewPublisher(svc CommentService, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{svc: svc, logger: logger}
}

// Lookup lists the comments on a pull request and returns them together with the
// managed comment for marker, if any.
func (p *Publisher) Lookup(ctx context.Context, number int, marker string) ([]githubapi.IssueComment, *githubapi.IssueComment, error) {
	comments, err := p.svc.ListComments(ctx, number)
	if err != nil {
		return nil, nil, &TransportError{Op: "list", Err: err}
	}
	p.logger.Debug("searching comments for marker", "pr", number, "count", len(comments), "marker", marker)

	existing, ok := Find(comments, marker)
	if !ok {
		return comments, nil, nil
	}
	p.logger.Debug("found managed comment", "pr", number, "comment_id", existing.ID)
	return comments, &existing, nil
}

// Write updates existing in place, or creates a new comment when existing is nil.
// The body must start with marker; otherwise nothing is sent.
func (p *Publisher) Write(ctx context.Context, number int, marker, body string, existing *githubapi.IssueComment) (Published, error) {
	if err := CheckMarker(marker, body); err != nil {
		return Published{}, err
	}

	if existing != nil {
		updated, err := p.svc.UpdateComment(ctx, existing.ID, body)
		if err != nil {
			return Published{}, &TransportError{Op: "update", Err: err}
		}
		url := updated.URL
		if url == "" {
			url = existing.URL
		}
		return Published{Action: ActionUpdated, CommentID: existing.ID, URL: url}, nil
	}

	created, err := p.svc.CreateComment(ctx, number, body)
	if err != nil {
		return Published{}, &TransportError{Op: "create", Err: err}
	}
	return Published{Action: ActionCreated, CommentID: created.ID, URL: created.URL}, nil
}

// Publish is Lookup followed by Write for comments that carry no history.
func (p *Publisher) Publish(ctx context.Context, number int, marker, body string) (Published, error) {
	if err := CheckMarker(marker, body); err != nil {
		return Published{}, err
	}
	_, existing, err := p.Lookup(ctx, number, marker)
	if err != nil {
		return Published{}, err
	}
	return p.Write(ctx, number, marker, body, existing)
}
