// Package status keeps the deployment-status comment of a pull request in sync with the
// pipeline: one managed comment per workflow identity with an append-only timeline.
package status

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Stage is a step of the build/deploy pipeline reported on the pull request.
type Stage string

const (
	StageStarted           Stage = "started"
	StageSetup             Stage = "setup"
	StageBuilding          Stage = "building"
	StageDeploying         Stage = "deploying"
	StageVerifying         Stage = "verifying"
	StageSuccess           Stage = "success"
	StageFailure           Stage = "failure"
	StagePagesBuilt        Stage = "pages-built"
	StageSecurityCheck     Stage = "security-check"
	StageRateLimitWaiting  Stage = "rate-limit-waiting"
	StageRateLimitComplete Stage = "rate-limit-complete"
)

// Timeline glyphs. Only GlyphInProgress is ever rewritten, to GlyphCompleted.
const (
	GlyphInProgress = "⏳"
	GlyphCompleted  = "✅"
	GlyphFailed     = "❌"
)

var allStages = []Stage{
	StageStarted,
	StageSetup,
	StageBuilding,
	StageDeploying,
	StageVerifying,
	StageSuccess,
	StageFailure,
	StagePagesBuilt,
	StageSecurityCheck,
	StageRateLimitWaiting,
	StageRateLimitComplete,
}

// Stages returns the allowed stages in pipeline order.
func Stages() []Stage {
	return slices.Clone(allStages)
}

// StageNames returns the allowed stages as strings, e.g. for flag help.
func StageNames() []string {
	out := make([]string, 0, len(allStages))
	for _, s := range allStages {
		out = append(out, string(s))
	}
	return out
}

// ParseStage normalizes raw (trimmed, case-insensitive) and checks it against the
// allowed set.
func ParseStage(raw string) (Stage, error) {
	stage := Stage(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := stageDefs[stage]; !ok {
		return "", &InvalidStageError{Value: raw, Allowed: StageNames()}
	}
	return stage, nil
}

// InvalidStageError is returned for a stage outside the allowed set.
type InvalidStageError struct {
	Value   string
	Allowed []string
}

func (e *InvalidStageError) Error() string {
	if e == nil {
		return "invalid stage"
	}
	return fmt.Sprintf("invalid stage %q, allowed: %s", e.Value, strings.Join(e.Allowed, ", "))
}

// IsInvalidStage reports whether err is an InvalidStageError.
func IsInvalidStage(err error) bool {
	var target *InvalidStageError
	return errors.As(err, &target)
}

type linkTarget int

const (
	linkWorkflow linkTarget = iota
	linkBranch
	linkCommit
)

type stageLink struct {
	label  string
	target linkTarget
}

// stageDef is the fixed rendering contract of one stage.
type stageDef struct {
	title      string
	glyph      string
	status     string
	next       func(v *view) string
	entry      func(v *view) string
	entryGlyph string
	links      []stageLink
	// previewLabel is shown next to the preview URL; empty hides the preview line.
	previewLabel string
}

func fixed(s string) func(*view) string {
	return func(*view) string { return s }
}

var stageDefs = map[Stage]stageDef{
	StageStarted: {
		title:      "Build Started",
		glyph:      "🔵",
		status:     "Initializing build process",
		next:       fixed("Dependencies are installed next"),
		entry:      func(v *view) string { return fmt.Sprintf("Build started for commit `%s`", v.ShortSHA) },
		entryGlyph: GlyphInProgress,
		links:      []stageLink{{"Watch build progress", linkWorkflow}},
	},
	StageSetup: {
		title:      "Setting Up Environment",
		glyph:      "🔵",
		status:     "Installing dependencies and configuring environment",
		next:       fixed("The application build starts once setup finishes"),
		entry:      fixed("Environment setup"),
		entryGlyph: GlyphInProgress,
		links:      []stageLink{{"Watch build progress", linkWorkflow}},
	},
	StageBuilding: {
		title:      "Building Application",
		glyph:      "🔵",
		status:     "Compiling and bundling application code",
		next:       fixed("Build artifacts are deployed to GitHub Pages"),
		entry:      fixed("Building application"),
		entryGlyph: GlyphInProgress,
		links:      []stageLink{{"Watch build progress", linkWorkflow}},
	},
	StageDeploying: {
		title:        "Deploying to GitHub Pages",
		glyph:        "🟡",
		status:       "Pushing build artifacts to gh-pages branch",
		next:         fixed("The deployment is verified once pages are published"),
		entry:        fixed("Deploying to GitHub Pages"),
		entryGlyph:   GlyphInProgress,
		links:        []stageLink{{"Watch deployment progress", linkWorkflow}},
		previewLabel: "Preview URL (pending)",
	},
	StageVerifying: {
		title:      "Verifying Deployment",
		glyph:      "🟡",
		status:     "Checking deployment accessibility",
		next:       fixed("The preview becomes available after verification"),
		entry:      fixed("Verifying deployment"),
		entryGlyph: GlyphInProgress,
		links: []stageLink{
			{"View deployment logs", linkWorkflow},
			{"Preview URL (verifying...)", linkBranch},
		},
		previewLabel: "Preview URL (pending)",
	},
	StageSuccess: {
		title:      "Successfully Deployed",
		glyph:      "🟢",
		status:     "Live and accessible",
		next:       fixed("Open the branch preview to review the changes"),
		entry:      func(v *view) string { return fmt.Sprintf("Deployed commit `%s`", v.ShortSHA) },
		entryGlyph: GlyphCompleted,
		links: []stageLink{
			{"Open branch preview", linkBranch},
			{"View build logs", linkWorkflow},
			{"View commit", linkCommit},
		},
		previewLabel: "Preview URL",
	},
	StageFailure: {
		title:  "Failed",
		glyph:  "🔴",
		status: "Deployment failed",
		next:   fixed("Check the error logs, fix the issue and push a new commit to retry"),
		entry: func(v *view) string {
			return fmt.Sprintf("Deployment failed: %s", v.ErrorMessage)
		},
		entryGlyph: GlyphFailed,
		links:      []stageLink{{"Check error logs", linkWorkflow}},
	},
	StagePagesBuilt: {
		title:      "GitHub Pages Built",
		glyph:      "🟢",
		status:     "GitHub Pages build finished",
		next:       fixed("Changes are live once the Pages CDN refreshes"),
		entry:      fixed("GitHub Pages build completed"),
		entryGlyph: GlyphCompleted,
		links: []stageLink{
			{"Open branch preview", linkBranch},
			{"View workflow run", linkWorkflow},
		},
		previewLabel: "Preview URL",
	},
	StageSecurityCheck: {
		title:      "Running Security Checks",
		glyph:      "🔵",
		status:     "Scanning dependencies and build output",
		next:       fixed("Results are posted in the security check comment"),
		entry:      fixed("Security checks running"),
		entryGlyph: GlyphInProgress,
		links:      []stageLink{{"Watch security checks", linkWorkflow}},
	},
	StageRateLimitWaiting: {
		title:  "Waiting for Rate Limit",
		glyph:  "🟠",
		status: "Paused: API rate limit reached",
		next: func(v *view) string {
			if v.WaitMinutes > 0 {
				return fmt.Sprintf("Work resumes automatically in about %d minutes", v.WaitMinutes)
			}
			return "Work resumes automatically when the rate limit resets"
		},
		entry: func(v *view) string {
			if v.WaitMinutes > 0 {
				return fmt.Sprintf("Rate limit reached, waiting about %d minutes", v.WaitMinutes)
			}
			return "Rate limit reached, waiting"
		},
		entryGlyph: GlyphInProgress,
		links:      []stageLink{{"View workflow run", linkWorkflow}},
	},
	StageRateLimitComplete: {
		title:      "Rate Limit Wait Complete",
		glyph:      "🟢",
		status:     "Rate limit wait finished",
		next:       fixed("The workflow continues with the next step"),
		entry:      fixed("Rate limit wait complete"),
		entryGlyph: GlyphCompleted,
		links:      []stageLink{{"View workflow run", linkWorkflow}},
	},
}
