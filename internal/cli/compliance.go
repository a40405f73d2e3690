package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sgex-ci/prcomment/internal/compliance"
)

// newComplianceReportCommand creates "compliance-report" that publishes the framework
// compliance report comment.
func newComplianceReportCommand(opts *Options) *cobra.Command {
	var (
		tf          targetFlags
		commitSHA   string
		workflowURL string
		reportFile  string
	)

	cmd := &cobra.Command{
		Use:   "compliance-report",
		Short: "Create or update the compliance report comment from a JSON report",
		Example: `  node check-framework-compliance.js --json | prcomment compliance-report --repo owner/repo --pr 42 \
    --commit-sha "$GITHUB_SHA" --workflow-url "$RUN_URL"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			envCfg := complianceEnv{}
			if err := parseEnv(opts.Vars, &envCfg); err != nil {
				return err
			}
			actions := actionsEnv{}
			if err := parseEnv(opts.Vars, &actions); err != nil {
				return err
			}
			if !cmd.Flags().Changed("commit-sha") {
				commitSHA = opts.Vars.First("PRCOMMENT_COMMIT_SHA", "GITHUB_SHA")
			}
			if !cmd.Flags().Changed("workflow-url") {
				workflowURL = envCfg.WorkflowURL
				if strings.TrimSpace(workflowURL) == "" {
					workflowURL = runURL(actions)
				}
			}
			if !cmd.Flags().Changed("report-file") && envPresent(opts.Vars, "PRCOMMENT_REPORT_FILE") {
				reportFile = envCfg.ReportFile
			}

			data, source, err := readReportInput(cmd.InOrStdin(), reportFile)
			if err != nil {
				return err
			}
			report, err := compliance.ParseReport(data)
			if err != nil {
				return err
			}
			if source == "" {
				logger.Warn("no report data provided, publishing an empty report")
			} else {
				logger.Info("loaded compliance report", "source", source)
			}

			policy, err := opts.Config.URLPolicy()
			if err != nil {
				return err
			}
			svc, t, err := openService(cmd, opts, &tf)
			if err != nil {
				return err
			}

			mgr := compliance.NewManager(svc, compliance.Options{
				Marker: opts.Config.Markers.Compliance,
				Footer: opts.Config.Footers.Compliance,
				Policy: policy,
				Now:    opts.now,
				Logger: logger.With("repo", t.repo),
			})
			pub, err := mgr.Publish(cmd.Context(), t.pr, compliance.Input{
				Repo:        t.repo,
				CommitSHA:   commitSHA,
				WorkflowURL: workflowURL,
				Report:      report,
			})
			if err != nil {
				return fmt.Errorf("compliance-report on %s#%d: %w", t.repo, t.pr, err)
			}
			if err := writeOutputs(opts.Vars, mgr.Marker(), pub); err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), pub.URL)
			return err
		},
	}

	tf.register(cmd)
	cmd.Flags().StringVar(&commitSHA, "commit-sha", "", "Commit being checked (defaults to PRCOMMENT_COMMIT_SHA or GITHUB_SHA)")
	cmd.Flags().StringVar(&workflowURL, "workflow-url", "", "Workflow run URL (defaults to PRCOMMENT_WORKFLOW_URL or the current run)")
	cmd.Flags().StringVar(&reportFile, "report-file", "", "JSON report file (reads stdin when omitted)")

	return cmd
}

// readReportInput returns the report bytes and where they came from. Without a file it
// reads stdin unless stdin is an interactive terminal.
func readReportInput(stdin io.Reader, path string) ([]byte, string, error) {
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("read report file: %w", err)
		}
		return data, path, nil
	}
	if f, ok := stdin.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return nil, "", nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, "", fmt.Errorf("read report from stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, "", nil
	}
	return data, "stdin", nil
}

// runURL builds the URL of the current Actions run.
func runURL(actions actionsEnv) string {
	if actions.Repository == "" || actions.RunID == "" {
		return ""
	}
	server := strings.TrimRight(actions.ServerURL, "/")
	if server == "" {
		server = "https://github.com"
	}
	return server + "/" + actions.Repository + "/actions/runs/" + actions.RunID
}
