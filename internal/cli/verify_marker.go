package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sgex-ci/prcomment/internal/managed"
	"github.com/sgex-ci/prcomment/internal/status"
)

// newVerifyMarkerCommand creates "verify-marker" that renders every stage offline and
// checks the marker sits at the start of each body.
func newVerifyMarkerCommand(opts *Options) *cobra.Command {
	var actionID string

	cmd := &cobra.Command{
		Use:   "verify-marker",
		Short: "Check offline that every stage renders with the marker first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			base := opts.Config.Markers.Status
			if base == "" {
				base = status.DefaultMarker
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "marker: %s\n\n", managed.Marker(base, actionID))

			checks := status.VerifyMarkers(base, actionID, opts.now())
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STAGE\tPRIOR TIMELINE\tRESULT")
			failed := 0
			for _, c := range checks {
				result := "PASS"
				if !c.OK() {
					result = "FAIL: " + c.Err.Error()
					failed++
				}
				fmt.Fprintf(w, "%s\t%t\t%s\n", c.Stage, c.WithPrior, result)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d renders do not start with the marker", failed, len(checks))
			}
			LoggerFromContext(cmd.Context()).Info("marker verification passed", "renders", len(checks))
			return nil
		},
	}

	cmd.Flags().StringVar(&actionID, "action-id", "test-run-12345", "Identity token used for the marker under test")

	return cmd
}

// newStagesCommand creates "stages" that lists the allowed stages.
func newStagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stages",
		Short: "List the allowed deployment stages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, s := range status.StageNames() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), s); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
