package cmd

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/secgate/internal/log"
	"github.com/felixgeelhaar/secgate/internal/telemetry"
	"github.com/felixgeelhaar/secgate/internal/ux"
	"github.com/felixgeelhaar/secgate/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "secgate",
	Short: "Policy-driven security gate for CI pipelines",
	Long: `secgate reads the JSON output of Bandit, pip-audit and gitleaks, checks the
blocking findings against the thresholds in a YAML policy, and writes a
Markdown report. The exit code carries the decision: 0 pass, 1 fail.

A separate publish step posts the report as a pull request comment.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	logLevel  string
	logFormat string
	noColor   bool
)

// ExecuteContext runs the root command with ctx attached to every
// subcommand. Tracing is initialized from the environment for the lifetime
// of the call. Flag and argument errors come back as usage errors.
func ExecuteContext(ctx context.Context) error {
	shutdown, err := telemetry.InitProvider(ctx, telemetry.FromEnv(version.Version))
	if err != nil {
		log.DefaultLogger().WithError(err).Warn("tracing disabled")
	} else {
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(sctx)
		}()
	}
	c, err := rootCmd.ExecuteContextC(ctx)
	if err != nil && c != nil {
		return ux.EnhanceError(err, c.CommandPath())
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (env "+log.EnvLevel+")")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json (env "+log.EnvFormat+")")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored console output")
}

// newLogger builds the logger for one invocation. Flags override the
// environment, and every record carries a fresh run_id.
func newLogger(cmd *cobra.Command) *log.Logger {
	cfg := log.FromEnv()
	cfg.ServiceVersion = version.Version
	if logLevel != "" {
		cfg.Level = log.ParseLevel(logLevel)
	}
	if logFormat != "" {
		cfg.Format = log.ParseFormat(logFormat)
	}
	cfg.Output = log.NewOutput(cmd.ErrOrStderr())

	logger := log.New(cfg).With("run_id", uuid.NewString(), "command", cmd.Name())
	log.SetDefaultLogger(logger)
	return logger
}
