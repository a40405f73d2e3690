package status

import (
	"strings"
	"time"
)

// TimelineHeading opens the timeline section of a deployment-status comment.
const TimelineHeading = "### 📋 Deployment Timeline"

// TimelineEnd closes the timeline section in bodies rendered by this package.
const TimelineEnd = "<!-- timeline-end -->"

// Older bodies have no TimelineEnd; their timeline stops at the footer rule or hint.
var timelineEndAnchors = []string{TimelineEnd, "\n---", "\n💡"}

const entryTimeLayout = "2006-01-02 15:04:05 UTC"

// FormatEntry renders one timeline line.
func FormatEntry(glyph string, at time.Time, text string) string {
	return "- " + glyph + " **" + at.UTC().Format(entryTimeLayout) + "** - " + text
}

// ExtractTimeline returns the entry lines of the timeline section in body, in order.
// The heading only counts at the start of a line. A body without it has no timeline.
// The section ends at the first end anchor found, or at the end of the body.
func ExtractTimeline(body string) []string {
	start := headingIndex(body)
	if start < 0 {
		return nil
	}
	section := body[start+len(TimelineHeading):]

	end := len(section)
	for _, anchor := range timelineEndAnchors {
		if i := strings.Index(section, anchor); i >= 0 && i < end {
			end = i
		}
	}

	var entries []string
	for _, line := range strings.Split(section[:end], "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "-") {
			entries = append(entries, line)
		}
	}
	return entries
}

func headingIndex(body string) int {
	if strings.HasPrefix(body, TimelineHeading) {
		return 0
	}
	i := strings.Index(body, "\n"+TimelineHeading)
	if i < 0 {
		return -1
	}
	return i + 1
}

// CompleteInProgress returns a copy of entries with the in-progress glyph of every
// entry rewritten to completed. Nothing else in a line changes.
func CompleteInProgress(entries []string) []string {
	if entries == nil {
		return nil
	}
	out := make([]string, len(entries))
	prefix := "- " + GlyphInProgress
	for i, e := range entries {
		if strings.HasPrefix(e, prefix) {
			e = "- " + GlyphCompleted + strings.TrimPrefix(e, prefix)
		}
		out[i] = e
	}
	return out
}
