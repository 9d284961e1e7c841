package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/secgate/internal/log"
	"github.com/felixgeelhaar/secgate/internal/platform"
	"github.com/felixgeelhaar/secgate/internal/publish"
	"github.com/felixgeelhaar/secgate/internal/telemetry"
	"github.com/felixgeelhaar/secgate/internal/version"
)

// Environment consulted by the publish command.
const (
	EnvToken  = "GITHUB_TOKEN"
	EnvAPIURL = "GITHUB_API_URL"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Post a gate report as a pull request comment",
	Long: `Post the report written by 'secgate evaluate' as a comment on a pull request.

The token is read from ` + EnvToken + `. Without a token the command does
nothing and exits 0, so forks and untrusted contexts never fail the job.
--pr and --repo are only checked when a token is present.
A rejected token exits 5; any other API or network failure exits 4. The
gate decision is not affected either way.

Examples:
  secgate publish --report gate-report.md --repo acme/api --pr 42
  GITHUB_API_URL=https://ghe.example.com/api/v3 secgate publish --report gate-report.md --repo acme/api --pr 42`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := publishOpts
		opts.Token = os.Getenv(EnvToken)
		if !cmd.Flags().Changed("api-url") {
			if v := os.Getenv(EnvAPIURL); v != "" {
				opts.APIURL = v
			}
		}
		return runPublish(cmd.Context(), opts, cmd.OutOrStdout(), newLogger(cmd))
	},
}

var publishOpts = publish.Config{UserAgent: version.GetInfo().UserAgent()}

func init() {
	f := publishCmd.Flags()
	f.StringVar(&publishOpts.ReportPath, "report", "", "path to the Markdown report (required)")
	f.StringVar(&publishOpts.PR, "pr", "", "pull request number (required)")
	f.StringVar(&publishOpts.Repo, "repo", "", "repository as owner/name (required)")
	f.StringVar(&publishOpts.APIURL, "api-url", platform.DefaultBaseURL, "REST API base URL (env "+EnvAPIURL+")")
	f.DurationVar(&publishOpts.Timeout, "timeout", platform.DefaultTimeout, "request timeout")
	_ = publishCmd.MarkFlagRequired("report")
	_ = publishCmd.MarkFlagRequired("pr")
	_ = publishCmd.MarkFlagRequired("repo")

	rootCmd.AddCommand(publishCmd)
}

func runPublish(ctx context.Context, cfg publish.Config, stdout io.Writer, logger *log.Logger) error {
	ctx, span := telemetry.StartCommandSpan(ctx, "publish")
	defer span.End()

	res, err := publish.New(cfg, logger).Publish(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	telemetry.RecordSuccess(span)

	if res.Skipped {
		fmt.Fprintf(stdout, "%s not set; report not published\n", EnvToken)
		return nil
	}
	fmt.Fprintf(stdout, "Published report to %s#%s: %s\n", cfg.Repo, cfg.PR, res.CommentURL)
	if res.Truncated {
		fmt.Fprintf(stdout, "Report truncated to %d bytes\n", publish.MaxCommentBytes)
	}
	return nil
}
