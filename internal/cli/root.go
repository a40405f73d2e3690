// Package cli defines the command-line interface for prcomment.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sgex-ci/prcomment/internal/config"
	"github.com/sgex-ci/prcomment/internal/env"
	"github.com/sgex-ci/prcomment/internal/logging"
)

// Options stores global CLI options shared between commands.
type Options struct {
	ConfigPath string
	EnvFiles   []string
	LogLevel   logging.Level

	// Vars is the process environment laid over the --env-file contents.
	Vars env.Vars
	// Config is the loaded .prcomment.yaml, empty when there is none.
	Config *config.Config

	newService serviceFactory
	now        func() time.Time
}

// Execute builds the root command, runs it with the provided args and logger, and returns any error.
func Execute(args []string, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewLogger(os.Stderr, logging.LevelInfo)
	}

	rootOpts := &Options{
		ConfigPath: config.DefaultPath,
		LogLevel:   logging.LevelInfo,
		newService: newGitHubService,
		now:        time.Now,
	}

	rootCmd := newRootCommand(rootOpts, logger)
	rootCmd.SetArgs(args)

	return rootCmd.Execute()
}

// newRootCommand constructs the root cobra.Command with global flags and subcommands.
func newRootCommand(opts *Options, logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "prcomment",
		Short:         "prcomment keeps managed pull request comments in sync with CI",
		Long:          "prcomment posts and updates managed pull request comments: the deployment status timeline, the framework compliance report and the security check results.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			vars, err := env.Resolve(opts.EnvFiles)
			if err != nil {
				return err
			}
			opts.Vars = vars

			base := baseEnv{}
			if err := parseEnv(vars, &base); err != nil {
				return err
			}

			levelValue := cmd.Flag("log-level").Value.String()
			if !cmd.Flags().Changed("log-level") && envPresent(vars, "PRCOMMENT_LOG_LEVEL") {
				levelValue = base.LogLevel
			}
			level := logging.ParseLevel(levelValue)
			opts.LogLevel = level
			logger = logging.NewLogger(os.Stderr, level)
			cmd.SetContext(context.WithValue(cmd.Context(), loggerKey{}, logger))
			logger.Debug("logger initialized", "level", level)

			configRequired := cmd.Flags().Changed("config")
			if !configRequired && envPresent(vars, "PRCOMMENT_CONFIG") {
				opts.ConfigPath = base.ConfigPath
				configRequired = true
			}
			cfg, err := config.Load(strings.TrimSpace(opts.ConfigPath), configRequired)
			if err != nil {
				return err
			}
			opts.Config = cfg
			logger.Debug("config loaded", "path", opts.ConfigPath, "api_base_url", cfg.APIBaseURL)

			if opts.newService == nil {
				opts.newService = newGitHubService
			}
			if opts.now == nil {
				opts.now = time.Now
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", config.DefaultPath, "Path to the .prcomment.yaml configuration file")
	cmd.PersistentFlags().StringArrayVar(&opts.EnvFiles, "env-file", nil, "Load variables from a .env file (repeatable, process env wins)")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newDeployStatusCommand(opts),
		newComplianceReportCommand(opts),
		newSecurityCheckCommand(opts),
		newRenderCommand(opts),
		newVerifyMarkerCommand(opts),
		newStagesCommand(),
	)

	return cmd
}

// loggerKey is a private context key used to store a logger in command contexts.
type loggerKey struct{}

// LoggerFromContext extracts a logger from the context or falls back to a default logger.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return logging.NewLogger(os.Stderr, logging.LevelInfo)
	}
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return logging.NewLogger(os.Stderr, logging.LevelInfo)
}

func requirePositive(name string, value int) error {
	if value <= 0 {
		return fmt.Errorf("%s must be a positive number, got %d", name, value)
	}
	return nil
}
