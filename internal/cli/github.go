package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sgex-ci/prcomment/internal/config"
	"github.com/sgex-ci/prcomment/internal/env"
	"github.com/sgex-ci/prcomment/internal/ghoutput"
	"github.com/sgex-ci/prcomment/internal/githubapi"
	"github.com/sgex-ci/prcomment/internal/managed"
)

const publicAPIURL = "https://api.github.com"

// serviceFactory builds the comment API client for one repository.
type serviceFactory func(logger *slog.Logger, token, repo string, opts []githubapi.Option) (managed.CommentService, error)

func newGitHubService(logger *slog.Logger, token, repo string, opts []githubapi.Option) (managed.CommentService, error) {
	return githubapi.NewClient(logger, token, repo, opts...)
}

// targetFlags are the flags shared by every command that writes a comment.
type targetFlags struct {
	repo  string
	pr    int
	token string
}

func (f *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.repo, "repo", "", "Repository as owner/name (defaults to PRCOMMENT_REPO or GITHUB_REPOSITORY)")
	cmd.Flags().IntVar(&f.pr, "pr", 0, "Pull request number (defaults to PRCOMMENT_PR_NUMBER)")
	cmd.Flags().StringVar(&f.token, "token", "", "GitHub token (defaults to PRCOMMENT_TOKEN, GH_TOKEN or GITHUB_TOKEN)")
}

// target is a resolved pull request plus the credentials to reach it.
type target struct {
	repo  string
	pr    int
	token string
}

// resolveTarget applies flag-over-env precedence and validates the result before any I/O.
func resolveTarget(cmd *cobra.Command, vars env.Vars, f *targetFlags) (target, error) {
	envCfg := targetEnv{}
	if err := parseEnv(vars, &envCfg); err != nil {
		return target{}, err
	}
	t := target{repo: f.repo, pr: f.pr, token: f.token}
	if !cmd.Flags().Changed("repo") {
		t.repo = vars.First("PRCOMMENT_REPO", "GITHUB_REPOSITORY")
	}
	if !cmd.Flags().Changed("pr") && envPresent(vars, "PRCOMMENT_PR_NUMBER") {
		t.pr = envCfg.PR
	}
	if !cmd.Flags().Changed("token") {
		t.token = vars.First("PRCOMMENT_TOKEN", "GH_TOKEN", "GITHUB_TOKEN")
	}

	t.repo = strings.TrimSpace(t.repo)
	if t.repo == "" {
		return target{}, fmt.Errorf("%s requires --repo, PRCOMMENT_REPO or GITHUB_REPOSITORY", cmd.Name())
	}
	if _, _, err := githubapi.SplitRepo(t.repo); err != nil {
		return target{}, err
	}
	if err := requirePositive("--pr", t.pr); err != nil {
		return target{}, fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	if strings.TrimSpace(t.token) == "" {
		return target{}, fmt.Errorf("GitHub token is required; set --token, PRCOMMENT_TOKEN, GH_TOKEN or GITHUB_TOKEN")
	}
	return t, nil
}

// clientOptions combines the config file with GITHUB_API_URL, which Actions sets on
// GitHub Enterprise runners.
func clientOptions(cfg *config.Config, vars env.Vars) []githubapi.Option {
	opts := cfg.ClientOptions()
	if cfg.APIBaseURL != "" {
		return opts
	}
	actions := actionsEnv{}
	if err := parseEnv(vars, &actions); err != nil {
		return opts
	}
	apiURL := strings.TrimRight(strings.TrimSpace(actions.APIURL), "/")
	if apiURL != "" && apiURL != publicAPIURL {
		opts = append(opts, githubapi.WithBaseURL(apiURL+"/"))
	}
	return opts
}

// openService resolves the target and builds the comment API client for it.
func openService(cmd *cobra.Command, opts *Options, f *targetFlags) (managed.CommentService, target, error) {
	t, err := resolveTarget(cmd, opts.Vars, f)
	if err != nil {
		return nil, target{}, err
	}
	logger := LoggerFromContext(cmd.Context())
	svc, err := opts.newService(logger, t.token, t.repo, clientOptions(opts.Config, opts.Vars))
	if err != nil {
		return nil, target{}, err
	}
	return svc, t, nil
}

// writeOutputs records the publish result as step outputs when running in Actions.
func writeOutputs(vars env.Vars, marker string, pub managed.Published) error {
	actions := actionsEnv{}
	if err := parseEnv(vars, &actions); err != nil {
		return err
	}
	return ghoutput.Write(actions.Output, map[string]string{
		"action":      string(pub.Action),
		"comment_id":  fmt.Sprintf("%d", pub.CommentID),
		"comment_url": pub.URL,
		"marker":      marker,
	})
}
