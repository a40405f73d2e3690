package compliance

import (
	"context"
	"log/slog"
	"time"

	"github.com/sgex-ci/prcomment/internal/managed"
)

// Options configure a Manager. The zero value is usable.
type Options struct {
	Marker string
	Footer string
	Policy managed.URLPolicy
	Now    func() time.Time
	Logger *slog.Logger
}

// Manager renders and publishes compliance report comments.
type Manager struct {
	publisher *managed.Publisher
	marker    string
	footer    string
	policy    managed.URLPolicy
	now       func() time.Time
	logger    *slog.Logger
}

// NewManager constructs a Manager publishing through svc.
func NewManager(svc managed.CommentService, opts Options) *Manager {
	m := &Manager{
		marker: opts.Marker,
		footer: opts.Footer,
		policy: opts.Policy,
		now:    opts.Now,
		logger: opts.Logger,
	}
	if m.marker == "" {
		m.marker = DefaultMarker
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	m.publisher = managed.NewPublisher(svc, m.logger)
	return m
}

// Marker returns the marker the manager tags comments with.
func (m *Manager) Marker() string { return m.marker }

// Publish renders the report and creates or updates the compliance comment on pull
// request number.
func (m *Manager) Publish(ctx context.Context, number int, in Input) (managed.Published, error) {
	logger := m.logger.With("pr", number, "marker", m.marker)

	body, err := Render(RenderInput{
		Input:  in,
		Marker: m.marker,
		Now:    m.now(),
		Policy: m.policy,
		Footer: m.footer,
	})
	if err != nil {
		logger.Error("failed to render compliance report", "error", err)
		return managed.Published{}, err
	}

	pub, err := m.publisher.Publish(ctx, number, m.marker, body)
	if err != nil {
		logger.Error("failed to publish compliance report", "error", err)
		return managed.Published{}, err
	}
	logger.Info("compliance comment "+string(pub.Action), "comment_id", pub.CommentID,
		"compliance", in.Report.Summary.OverallCompliance)
	return pub, nil
}
