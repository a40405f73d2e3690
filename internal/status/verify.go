package status

import (
	"time"

	"github.com/sgex-ci/prcomment/internal/managed"
)

// MarkerCheck is the outcome of rendering one stage offline.
type MarkerCheck struct {
	Stage Stage
	// WithPrior is set for the run that carries an existing timeline forward.
	WithPrior bool
	Err       error
}

// OK reports whether the rendered body started with its marker.
func (c MarkerCheck) OK() bool { return c.Err == nil }

var samplePayload = Payload{
	KeyCommitSHA:    "abc1234567890def",
	KeyBranchName:   "feature/test-branch",
	KeyCommitURL:    "https://github.com/owner/repo/commit/abc1234",
	KeyWorkflowURL:  "https://github.com/owner/repo/actions/runs/12345",
	KeyBranchURL:    "https://owner.github.io/repo/branches/feature-test-branch",
	KeyErrorMessage: "Test error message",
	KeyWaitMinutes:  15.0,
}

const sampleTimeline = TimelineHeading + `

- **2024-01-15 10:00:00 UTC** - 🔵 Build started
- ⏳ **2024-01-15 10:01:00 UTC** - Environment setup
`

// VerifyMarkers renders every stage, and the building stage once more with an existing
// timeline, checking that each body starts with the marker for identity.
func VerifyMarkers(base, identity string, now time.Time) []MarkerCheck {
	if base == "" {
		base = DefaultMarker
	}
	marker := managed.Marker(base, identity)

	check := func(stage Stage, prior []string) error {
		body, err := Render(RenderInput{Marker: marker, Stage: stage, Payload: samplePayload, Prior: prior, Now: now})
		if err != nil {
			return err
		}
		return managed.CheckMarker(marker, body)
	}

	checks := make([]MarkerCheck, 0, len(allStages)+1)
	for _, stage := range allStages {
		checks = append(checks, MarkerCheck{Stage: stage, Err: check(stage, nil)})
	}
	prior := CompleteInProgress(ExtractTimeline(sampleTimeline))
	checks = append(checks, MarkerCheck{Stage: StageBuilding, WithPrior: true, Err: check(StageBuilding, prior)})
	return checks
}
