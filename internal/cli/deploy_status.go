package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sgex-ci/prcomment/internal/ghoutput"
	"github.com/sgex-ci/prcomment/internal/managed"
	"github.com/sgex-ci/prcomment/internal/status"
)

// stageFlags are shared by deploy-status and render.
type stageFlags struct {
	stage    string
	data     string
	actionID string
}

func (f *stageFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.stage, "stage", "", "Pipeline stage ("+strings.Join(status.StageNames(), ", ")+")")
	cmd.Flags().StringVar(&f.data, "data", "", "Stage payload as a JSON object (defaults to PRCOMMENT_DATA)")
	cmd.Flags().StringVar(&f.actionID, "action-id", "", "Workflow identity that keeps one comment per workflow (defaults to PRCOMMENT_ACTION_ID or data.action_id)")
}

// resolve applies env fallbacks and validates stage and payload before any I/O.
func (f *stageFlags) resolve(cmd *cobra.Command, envCfg deployStatusEnv, opts *Options) (status.Stage, status.Payload, error) {
	if !cmd.Flags().Changed("stage") && envPresent(opts.Vars, "PRCOMMENT_STAGE") {
		f.stage = envCfg.Stage
	}
	if !cmd.Flags().Changed("data") && envPresent(opts.Vars, "PRCOMMENT_DATA") {
		f.data = envCfg.Data
	}
	if !cmd.Flags().Changed("action-id") && envPresent(opts.Vars, "PRCOMMENT_ACTION_ID") {
		f.actionID = envCfg.ActionID
	}

	stage, err := status.ParseStage(f.stage)
	if err != nil {
		return "", nil, err
	}
	payload, err := status.ParsePayload(f.data)
	if err != nil {
		return "", nil, err
	}
	return stage, payload, nil
}

// newDeployStatusCommand creates "deploy-status" that records a pipeline stage in the
// deployment-status comment of a pull request.
func newDeployStatusCommand(opts *Options) *cobra.Command {
	var (
		tf          targetFlags
		sf          stageFlags
		stepSummary bool
	)

	cmd := &cobra.Command{
		Use:   "deploy-status",
		Short: "Create or update the deployment status comment with a new timeline entry",
		Example: `  prcomment deploy-status --repo owner/repo --pr 42 --stage started \
    --data '{"commit_sha":"abc1234","branch_name":"feature/x","workflow_url":"https://github.com/owner/repo/actions/runs/1"}'`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			envCfg := deployStatusEnv{}
			if err := parseEnv(opts.Vars, &envCfg); err != nil {
				return err
			}
			if !cmd.Flags().Changed("step-summary") && envPresent(opts.Vars, "PRCOMMENT_STEP_SUMMARY") {
				stepSummary = envCfg.StepSummary
			}
			stage, payload, err := sf.resolve(cmd, envCfg, opts)
			if err != nil {
				return err
			}

			policy, err := opts.Config.URLPolicy()
			if err != nil {
				return err
			}
			svc, t, err := openService(cmd, opts, &tf)
			if err != nil {
				return err
			}

			sync := status.NewSynchronizer(svc, t.pr, status.Options{
				BaseMarker: opts.Config.Markers.Status,
				Identity:   sf.actionID,
				Policy:     policy,
				Footer:     opts.Config.Footers.Status,
				Now:        opts.now,
				Logger:     logger.With("repo", t.repo),
			})
			res, err := sync.Sync(cmd.Context(), string(stage), payload)
			if err != nil {
				return fmt.Errorf("deploy-status %s on %s#%d: %w", stage, t.repo, t.pr, err)
			}

			pub := managed.Published{Action: res.Action, CommentID: res.CommentID, URL: res.URL}
			if err := writeOutputs(opts.Vars, res.Marker, pub); err != nil {
				return err
			}
			if stepSummary && res.Body != "" {
				actions := actionsEnv{}
				if err := parseEnv(opts.Vars, &actions); err != nil {
					return err
				}
				if err := ghoutput.AppendSummary(actions.StepSummary, res.Body); err != nil {
					return err
				}
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), res.URL)
			return err
		},
	}

	tf.register(cmd)
	sf.register(cmd)
	cmd.Flags().BoolVar(&stepSummary, "step-summary", false, "Also append the rendered body to the job summary")

	return cmd
}
