// Package compliance publishes the framework compliance report of a pull request as a
// single managed comment.
package compliance

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Summary holds the aggregate counters of a compliance run.
type Summary struct {
	Total              int     `json:"total"`
	Compliant          int     `json:"compliant"`
	PartiallyCompliant int     `json:"partiallyCompliant"`
	NonCompliant       int     `json:"nonCompliant"`
	OverallCompliance  float64 `json:"overallCompliance"`
}

// Component is one checked component and the issues found in it.
type Component struct {
	Name   string   `json:"name"`
	Issues []string `json:"issues"`
}

// Results lists the components that are not fully compliant.
type Results struct {
	PartiallyCompliant []Component `json:"partiallyCompliant"`
	NonCompliant       []Component `json:"nonCompliant"`
}

// Report is the JSON document produced by the compliance checker.
type Report struct {
	Summary Summary `json:"summary"`
	Results Results `json:"results"`
}

// ParseReport decodes a report. Blank input yields an empty report.
func ParseReport(data []byte) (Report, error) {
	var r Report
	if strings.TrimSpace(string(data)) == "" {
		return r, nil
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return Report{}, fmt.Errorf("parse compliance report: %w", err)
	}
	return r, nil
}

var (
	reDigits      = regexp.MustCompile(`\d+`)
	reLayoutFound = regexp.MustCompile(`Found (\d+)`)
)

// LayoutCount extracts the number of nested layouts reported for c: the first run of
// digits in its first issue. Missing issues or digits count as 0.
func LayoutCount(c Component) int {
	if len(c.Issues) == 0 {
		return 0
	}
	m := reDigits.FindString(c.Issues[0])
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// StatusLabel grades an overall compliance percentage.
func StatusLabel(pct float64) string {
	switch {
	case pct >= 90:
		return "Excellent"
	case pct >= 70:
		return "Good"
	case pct >= 50:
		return "Needs Improvement"
	default:
		return "Action Required"
	}
}

func hasIssue(c Component, needle string) bool {
	for _, issue := range c.Issues {
		if strings.Contains(issue, needle) {
			return true
		}
	}
	return false
}

func filter(components []Component, needle string) []Component {
	var out []Component
	for _, c := range components {
		if hasIssue(c, needle) {
			out = append(out, c)
		}
	}
	return out
}
