package status

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Payload keys understood by the renderer.
const (
	KeyCommitSHA      = "commit_sha"
	KeyBranchName     = "branch_name"
	KeyCommitURL      = "commit_url"
	KeyWorkflowURL    = "workflow_url"
	KeyBranchURL      = "branch_url"
	KeyErrorMessage   = "error_message"
	KeyWaitMinutes    = "wait_minutes"
	KeyActionID       = "action_id"
	KeyDedupCommitSHA = "dedup_commit_sha"
	KeyWorkflowName   = "workflow_name"
	KeyTriggerEvent   = "trigger_event"
)

const maxWaitMinutes = 360

// Payload is the free-form stage data supplied by the workflow, decoded from a JSON object.
type Payload map[string]any

// ParsePayload decodes raw as a JSON object. Empty input and "null" yield an empty payload.
func ParsePayload(raw string) (Payload, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Payload{}, nil
	}
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("parse stage data: expected a JSON object: %w", err)
	}
	if p == nil {
		p = Payload{}
	}
	return p, nil
}

// String returns the value at key as text. Missing, null and blank values yield fallback.
func (p Payload) String(key, fallback string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return fallback
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fallback
		}
		s = string(b)
	}
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// Int returns the value at key as a non-negative integer, 0 when absent or not numeric.
func (p Payload) Int(key string) int {
	var f float64
	switch t := p[key].(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}
