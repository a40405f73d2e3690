package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/sgex-ci/prcomment/internal/managed"
	"github.com/sgex-ci/prcomment/internal/status"
)

const previewWrapWidth = 100

// newRenderCommand creates the "render" subcommand that prints a deployment status body
// without talking to GitHub.
func newRenderCommand(opts *Options) *cobra.Command {
	var (
		sf        stageFlags
		priorFile string
		pretty    bool
		output    string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a deployment status comment body offline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			envCfg := deployStatusEnv{}
			if err := parseEnv(opts.Vars, &envCfg); err != nil {
				return err
			}
			stage, payload, err := sf.resolve(cmd, envCfg, opts)
			if err != nil {
				return err
			}
			policy, err := opts.Config.URLPolicy()
			if err != nil {
				return err
			}

			var prior []string
			if priorFile != "" {
				raw, err := os.ReadFile(priorFile)
				if err != nil {
					return fmt.Errorf("read prior comment: %w", err)
				}
				prior = status.CompleteInProgress(status.ExtractTimeline(string(raw)))
				logger.Debug("carried timeline forward", "entries", len(prior))
			}

			base := opts.Config.Markers.Status
			if base == "" {
				base = status.DefaultMarker
			}
			identity := sf.actionID
			if identity == "" {
				identity = payload.String(status.KeyActionID, "")
			}
			marker := managed.Marker(base, identity)

			body, err := status.Render(status.RenderInput{
				Marker:  marker,
				Stage:   stage,
				Payload: payload,
				Prior:   prior,
				Now:     opts.now(),
				Policy:  policy,
				Footer:  opts.Config.Footers.Status,
			})
			if err != nil {
				return err
			}
			if err := managed.CheckMarker(marker, body); err != nil {
				return err
			}

			if pretty {
				body, err = renderPretty(body)
				if err != nil {
					return err
				}
			}

			if output == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}
			if err := os.WriteFile(output, []byte(body), 0o644); err != nil {
				return fmt.Errorf("write rendered body to %q: %w", output, err)
			}
			logger.Info("rendered comment body", "path", output, "stage", string(stage))
			return nil
		},
	}

	sf.register(cmd)
	cmd.Flags().StringVar(&priorFile, "prior-file", "", "Existing comment body whose timeline is carried forward")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Render the markdown for the terminal")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the body to a file instead of stdout")

	return cmd
}

// renderPretty formats markdown for a terminal.
func renderPretty(markdown string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(previewWrapWidth),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimLeft(out, "\n"), nil
}
