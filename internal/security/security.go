// Package security publishes the pre-formatted output of the security checks as a
// managed pull-request comment.
package security

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/sgex-ci/prcomment/internal/managed"
)

// DefaultMarker tags the security check comment.
const DefaultMarker = "<!-- sgex-security-check-comment -->"

// DefaultFooter closes every security check comment.
const DefaultFooter = "*This security check is automatically run on every PR build. " +
	"[Learn more about our security checks](../blob/main/docs/security.md)*"

// DefaultCommentFile is where the formatter writes the comment markdown.
const DefaultCommentFile = "security-comment.md"

// ReadCommentFile loads the formatted markdown. A missing file is reported with a hint
// to run the formatter first.
func ReadCommentFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("security comment file %s not found, run the security checks and formatter first: %w", path, err)
	}
	if err != nil {
		return "", fmt.Errorf("read security comment file %s: %w", path, err)
	}
	return string(data), nil
}

// Render wraps content with marker and footer.
func Render(marker, content, footer string) string {
	if footer == "" {
		footer = DefaultFooter
	}
	content = strings.TrimRight(managed.StripControl(content), "\n")
	// HTML comments in the formatter output could read as another comment's marker.
	content = strings.ReplaceAll(content, "<!--", "&lt;!--")
	return marker + "\n" + content + "\n\n---\n\n" + footer + "\n"
}

// Options configure a Manager.
type Options struct {
	Marker string
	Footer string
	Logger *slog.Logger
}

// Manager publishes security check comments.
type Manager struct {
	publisher *managed.Publisher
	marker    string
	footer    string
	logger    *slog.Logger
}

// NewManager constructs a Manager publishing through svc.
func NewManager(svc managed.CommentService, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	marker := opts.Marker
	if marker == "" {
		marker = DefaultMarker
	}
	return &Manager{
		publisher: managed.NewPublisher(svc, logger),
		marker:    marker,
		footer:    opts.Footer,
		logger:    logger,
	}
}

// Marker returns the marker the manager tags comments with.
func (m *Manager) Marker() string { return m.marker }

// Publish creates or updates the security check comment with content.
func (m *Manager) Publish(ctx context.Context, number int, content string) (managed.Published, error) {
	body := Render(m.marker, content, m.footer)
	pub, err := m.publisher.Publish(ctx, number, m.marker, body)
	if err != nil {
		m.logger.Error("failed to publish security check comment", "pr", number, "marker", m.marker, "error", err)
		return managed.Published{}, err
	}
	m.logger.Info("security check comment "+string(pub.Action), "pr", number, "comment_id", pub.CommentID)
	return pub, nil
}
