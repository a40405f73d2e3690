package status

import (
	"context"
	"log/slog"
	"time"

	"github.com/sgex-ci/prcomment/internal/githubapi"
	"github.com/sgex-ci/prcomment/internal/managed"
)

// Options configure a Synchronizer. The zero value is usable.
type Options struct {
	// BaseMarker defaults to DefaultMarker.
	BaseMarker string
	// Identity overrides the action_id payload key as the marker discriminator.
	Identity string
	Policy   managed.URLPolicy
	Footer   string
	Now      func() time.Time
	Logger   *slog.Logger
}

// Result describes one Sync call.
type Result struct {
	OK        bool
	Action    managed.Action
	Stage     Stage
	Marker    string
	CommentID int64
	URL       string
	Body      string
	// Entries is the number of timeline entries in the published body.
	Entries int
}

// Synchronizer keeps the deployment-status comment of one pull request in sync.
type Synchronizer struct {
	publisher *managed.Publisher
	number    int
	base      string
	identity  string
	policy    managed.URLPolicy
	footer    string
	now       func() time.Time
	logger    *slog.Logger
}

// NewSynchronizer binds a Synchronizer to pull request number on svc.
func NewSynchronizer(svc managed.CommentService, number int, opts Options) *Synchronizer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	base := opts.BaseMarker
	if base == "" {
		base = DefaultMarker
	}
	policy := opts.Policy
	if policy.IsZero() {
		policy = managed.DefaultURLPolicy()
	}
	return &Synchronizer{
		publisher: managed.NewPublisher(svc, logger),
		number:    number,
		base:      base,
		identity:  opts.Identity,
		policy:    policy,
		footer:    opts.Footer,
		now:       now,
		logger:    logger,
	}
}

// MarkerFor returns the marker a Sync with payload would look for.
func (s *Synchronizer) MarkerFor(payload Payload) string {
	identity := s.identity
	if identity == "" {
		identity = payload.String(KeyActionID, "")
	}
	return managed.Marker(s.base, identity)
}

// Sync records stage on the pull request: it finds the managed comment (or decides to
// create one), carries its timeline forward, appends an entry for stage and publishes
// the result. An invalid stage fails before any API call.
func (s *Synchronizer) Sync(ctx context.Context, rawStage string, payload Payload) (Result, error) {
	stage, err := ParseStage(rawStage)
	if err != nil {
		s.logger.Error("invalid stage", "pr", s.number, "stage", rawStage, "error", err)
		return Result{}, err
	}
	if payload == nil {
		payload = Payload{}
	}

	marker := s.MarkerFor(payload)
	res := Result{Stage: stage, Marker: marker}
	logger := s.logger.With("pr", s.number, "stage", string(stage), "marker", marker)

	comments, existing, err := s.publisher.Lookup(ctx, s.number, marker)
	if err != nil {
		logger.Error("failed to fetch comments", "error", err)
		return res, err
	}

	if existing == nil && stage == StageStarted {
		if dup, ok := s.findDuplicate(comments, payload); ok {
			logger.Info("status comment for this commit already exists, skipping", "comment_id", dup.ID)
			res.OK = true
			res.Action = managed.ActionSkipped
			res.CommentID = dup.ID
			res.URL = dup.URL
			return res, nil
		}
	}

	var prior []string
	if existing != nil {
		prior = CompleteInProgress(ExtractTimeline(existing.Body))
	}

	body, err := Render(RenderInput{
		Marker:  marker,
		Stage:   stage,
		Payload: payload,
		Prior:   prior,
		Now:     s.now(),
		Policy:  s.policy,
		Footer:  s.footer,
	})
	if err != nil {
		logger.Error("failed to render comment", "error", err)
		return res, err
	}
	if err := managed.CheckMarker(marker, body); err != nil {
		logger.Error("rendered comment is missing its marker", "error", err)
		return res, err
	}
	res.Body = body
	res.Entries = len(prior) + 1

	pub, err := s.publisher.Write(ctx, s.number, marker, body, existing)
	if err != nil {
		logger.Error("failed to publish comment", "error", err)
		return res, err
	}

	res.OK = true
	res.Action = pub.Action
	res.CommentID = pub.CommentID
	res.URL = pub.URL
	logger.Info("status comment "+string(pub.Action), "comment_id", pub.CommentID, "entries", res.Entries)
	return res, nil
}

// findDuplicate looks for a status comment of any identity that already mentions the
// commit named by dedup_commit_sha.
func (s *Synchronizer) findDuplicate(comments []githubapi.IssueComment, payload Payload) (githubapi.IssueComment, bool) {
	sha := managed.SanitizeInline(payload.String(KeyDedupCommitSHA, ""), managed.MaxSHALength)
	if sha == "" {
		return githubapi.IssueComment{}, false
	}
	return managed.FindReferencing(comments, managed.FamilyPrefix(s.base), shortSHA(sha))
}
