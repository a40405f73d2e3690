package cli

import (
	"strings"

	envparse "github.com/caarlos0/env/v11"

	"github.com/sgex-ci/prcomment/internal/env"
)

// baseEnv defines root CLI defaults sourced from PRCOMMENT_* env vars.
type baseEnv struct {
	// ConfigPath is the .prcomment.yaml path from PRCOMMENT_CONFIG.
	ConfigPath string `env:"PRCOMMENT_CONFIG"`
	// LogLevel is the logging level from PRCOMMENT_LOG_LEVEL.
	LogLevel string `env:"PRCOMMENT_LOG_LEVEL"`
}

// targetEnv identifies the pull request a command writes to.
type targetEnv struct {
	// Token is the GitHub token from PRCOMMENT_TOKEN.
	Token string `env:"PRCOMMENT_TOKEN"`
	// Repo is the owner/name slug from PRCOMMENT_REPO.
	Repo string `env:"PRCOMMENT_REPO"`
	// PR is the pull request number from PRCOMMENT_PR_NUMBER.
	PR int `env:"PRCOMMENT_PR_NUMBER"`
}

// deployStatusEnv captures stage inputs for deploy-status and render.
type deployStatusEnv struct {
	// Stage is the pipeline stage from PRCOMMENT_STAGE.
	Stage string `env:"PRCOMMENT_STAGE"`
	// Data is the JSON stage payload from PRCOMMENT_DATA.
	Data string `env:"PRCOMMENT_DATA"`
	// ActionID is the marker identity from PRCOMMENT_ACTION_ID.
	ActionID string `env:"PRCOMMENT_ACTION_ID"`
	// StepSummary mirrors the body into the job summary from PRCOMMENT_STEP_SUMMARY.
	StepSummary bool `env:"PRCOMMENT_STEP_SUMMARY"`
}

// complianceEnv captures compliance-report inputs.
type complianceEnv struct {
	// CommitSHA is the checked commit from PRCOMMENT_COMMIT_SHA.
	CommitSHA string `env:"PRCOMMENT_COMMIT_SHA"`
	// WorkflowURL links the run from PRCOMMENT_WORKFLOW_URL.
	WorkflowURL string `env:"PRCOMMENT_WORKFLOW_URL"`
	// ReportFile is the JSON report path from PRCOMMENT_REPORT_FILE.
	ReportFile string `env:"PRCOMMENT_REPORT_FILE"`
}

// securityEnv captures security-check inputs.
type securityEnv struct {
	// CommentFile is the formatted markdown path from PRCOMMENT_COMMENT_FILE.
	CommentFile string `env:"PRCOMMENT_COMMENT_FILE"`
}

// actionsEnv holds the variables GitHub Actions sets for every step.
type actionsEnv struct {
	Repository  string `env:"GITHUB_REPOSITORY"`
	SHA         string `env:"GITHUB_SHA"`
	ServerURL   string `env:"GITHUB_SERVER_URL" envDefault:"https://github.com"`
	APIURL      string `env:"GITHUB_API_URL"`
	RunID       string `env:"GITHUB_RUN_ID"`
	Output      string `env:"GITHUB_OUTPUT"`
	StepSummary string `env:"GITHUB_STEP_SUMMARY"`
}

// parseEnv fills target from vars via caarlos0/env.
func parseEnv(vars env.Vars, target any) error {
	return envparse.ParseWithOptions(target, envparse.Options{Environment: vars})
}

// envPresent reports whether a non-empty env var exists.
func envPresent(vars env.Vars, key string) bool {
	val, ok := vars[key]
	if !ok {
		return false
	}
	return strings.TrimSpace(val) != ""
}
