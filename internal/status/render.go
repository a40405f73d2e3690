package status

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/sgex-ci/prcomment/internal/managed"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

const bodyTemplate = "templates/deploy_status.md.tmpl"

// DefaultMarker is the base marker of deployment-status comments.
const DefaultMarker = "<!-- sgex-deployment-status-comment -->"

// DefaultFooter is printed at the bottom of every deployment-status comment.
const DefaultFooter = "This comment is updated automatically as the deployment progresses."

const (
	unknownValue = "unknown"
	unknownError = "Unknown error"
	shortSHALen  = 7
)

var bodyTmpl = template.Must(template.ParseFS(templatesFS, bodyTemplate))

// RenderInput is everything a body is rendered from. Rendering is pure: the same input
// always yields the same body.
type RenderInput struct {
	Marker  string
	Stage   Stage
	Payload Payload
	// Prior are carried-forward timeline entries, already rewritten by CompleteInProgress.
	Prior  []string
	Now    time.Time
	Policy managed.URLPolicy
	Footer string
}

type viewLink struct {
	Label string
	URL   string
}

type view struct {
	Marker       string
	Title        string
	Glyph        string
	StatusText   string
	NextStep     string
	Branch       string
	ShortSHA     string
	CommitURL    string
	WorkflowURL  string
	BranchURL    string
	ErrorMessage string
	WorkflowName string
	TriggerEvent string
	WaitMinutes  int
	PreviewLabel string
	PreviewURL   string
	Links        []viewLink

	TimelineHeading string
	Timeline        []string
	TimelineEnd     string
	Footer          string
}

// Render builds the full comment body for a stage: marker, stage section, the timeline
// (prior entries plus one new entry) and the footer.
func Render(in RenderInput) (string, error) {
	def, ok := stageDefs[in.Stage]
	if !ok {
		return "", &InvalidStageError{Value: string(in.Stage), Allowed: StageNames()}
	}
	policy := in.Policy
	if policy.IsZero() {
		policy = managed.DefaultURLPolicy()
	}
	p := in.Payload

	sha := managed.SanitizeInline(p.String(KeyCommitSHA, unknownValue), managed.MaxSHALength)
	v := &view{
		Marker:       in.Marker,
		Title:        def.title,
		Glyph:        def.glyph,
		StatusText:   def.status,
		Branch:       managed.SanitizeInline(p.String(KeyBranchName, unknownValue), managed.MaxBranchLength),
		ShortSHA:     shortSHA(sha),
		CommitURL:    policy.Sanitize(p.String(KeyCommitURL, "")),
		WorkflowURL:  policy.Sanitize(p.String(KeyWorkflowURL, "")),
		BranchURL:    policy.Sanitize(p.String(KeyBranchURL, "")),
		WorkflowName: managed.SanitizeInline(p.String(KeyWorkflowName, ""), managed.MaxLabelLength),
		TriggerEvent: managed.SanitizeInline(p.String(KeyTriggerEvent, ""), managed.MaxLabelLength),
		WaitMinutes:  min(p.Int(KeyWaitMinutes), maxWaitMinutes),
		PreviewLabel: def.previewLabel,

		TimelineHeading: TimelineHeading,
		TimelineEnd:     TimelineEnd,
		Footer:          managed.SanitizeInline(in.Footer, managed.MaxDefaultLength),
	}
	if v.Footer == "" {
		v.Footer = DefaultFooter
	}
	if in.Stage == StageFailure {
		v.ErrorMessage = managed.SanitizeInline(p.String(KeyErrorMessage, unknownError), managed.MaxErrorLength)
	}
	v.PreviewURL = v.BranchURL
	v.NextStep = def.next(v)

	for _, l := range def.links {
		target := v.linkURL(l.target)
		if target == "" {
			continue
		}
		v.Links = append(v.Links, viewLink{Label: l.label, URL: target})
	}

	v.Timeline = make([]string, 0, len(in.Prior)+1)
	v.Timeline = append(v.Timeline, in.Prior...)
	v.Timeline = append(v.Timeline, FormatEntry(def.entryGlyph, in.Now, def.entry(v)))

	var sb strings.Builder
	if err := bodyTmpl.Execute(&sb, v); err != nil {
		return "", fmt.Errorf("execute status template: %w", err)
	}
	return sb.String(), nil
}

func (v *view) linkURL(t linkTarget) string {
	switch t {
	case linkWorkflow:
		return v.WorkflowURL
	case linkBranch:
		return v.BranchURL
	case linkCommit:
		return v.CommitURL
	}
	return ""
}

func shortSHA(sha string) string {
	if sha == unknownValue {
		return sha
	}
	if r := []rune(sha); len(r) > shortSHALen {
		return string(r[:shortSHALen])
	}
	return sha
}
