package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sgex-ci/prcomment/internal/security"
)

// newSecurityCheckCommand creates "security-check" that publishes the formatted security
// check results.
func newSecurityCheckCommand(opts *Options) *cobra.Command {
	var (
		tf          targetFlags
		commentFile string
	)

	cmd := &cobra.Command{
		Use:   "security-check",
		Short: "Create or update the security check comment from a formatted markdown file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			envCfg := securityEnv{}
			if err := parseEnv(opts.Vars, &envCfg); err != nil {
				return err
			}
			if !cmd.Flags().Changed("comment-file") && envPresent(opts.Vars, "PRCOMMENT_COMMENT_FILE") {
				commentFile = envCfg.CommentFile
			}

			content, err := security.ReadCommentFile(commentFile)
			if err != nil {
				return err
			}
			svc, t, err := openService(cmd, opts, &tf)
			if err != nil {
				return err
			}

			mgr := security.NewManager(svc, security.Options{
				Marker: opts.Config.Markers.Security,
				Footer: opts.Config.Footers.Security,
				Logger: logger.With("repo", t.repo),
			})
			pub, err := mgr.Publish(cmd.Context(), t.pr, content)
			if err != nil {
				return fmt.Errorf("security-check on %s#%d: %w", t.repo, t.pr, err)
			}
			if err := writeOutputs(opts.Vars, mgr.Marker(), pub); err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), pub.URL)
			return err
		},
	}

	tf.register(cmd)
	cmd.Flags().StringVar(&commentFile, "comment-file", security.DefaultCommentFile, "Formatted security comment markdown")

	return cmd
}
