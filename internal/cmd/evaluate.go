package cmd

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	gerrors "github.com/felixgeelhaar/secgate/internal/errors"
	"github.com/felixgeelhaar/secgate/internal/eval"
	"github.com/felixgeelhaar/secgate/internal/log"
	"github.com/felixgeelhaar/secgate/internal/metrics"
	"github.com/felixgeelhaar/secgate/internal/policy"
	"github.com/felixgeelhaar/secgate/internal/report"
	"github.com/felixgeelhaar/secgate/internal/scanner"
	"github.com/felixgeelhaar/secgate/internal/telemetry"
	"github.com/felixgeelhaar/secgate/internal/version"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate scanner output against a policy",
	Long: `Load the policy and the Bandit, pip-audit and gitleaks JSON output, count
blocking findings per scanner, and write the gate report.

A scanner whose output file is missing or unreadable counts zero findings.
The command exits 0 when every scanner is within its max_allowed and 1 when
any scanner exceeds it. Configuration errors exit 2 and write no report.
A report that cannot be written exits 3. Failing to write --summary-json or
--metrics-file only logs a warning; the decision's exit code stands.

Examples:
  secgate evaluate --policy policy.yaml
  secgate evaluate --policy policy.yaml --bandit out/bandit.json --out report.md
  secgate evaluate --policy policy.yaml --summary-json gate.json --metrics-file gate.prom`,
	RunE: func(cmd *cobra.Command, args []string) error {
		evaluateOpts.NoColor = noColor
		_, err := runEvaluate(cmd.Context(), evaluateOpts, cmd.OutOrStdout(), newLogger(cmd))
		return err
	},
}

type evaluateOptions struct {
	PolicyPath  string
	Paths       scanner.Paths
	OutPath     string
	SummaryPath string
	MetricsPath string
	Quiet       bool
	NoColor     bool
}

var evaluateOpts evaluateOptions

func init() {
	defaults := scanner.DefaultPaths()
	f := evaluateCmd.Flags()
	f.StringVar(&evaluateOpts.PolicyPath, "policy", "", "path to the policy YAML (required)")
	f.StringVar(&evaluateOpts.Paths.Bandit, "bandit", defaults.Bandit, "Bandit JSON output")
	f.StringVar(&evaluateOpts.Paths.PipAudit, "pip-audit", defaults.PipAudit, "pip-audit JSON output")
	f.StringVar(&evaluateOpts.Paths.Gitleaks, "gitleaks", defaults.Gitleaks, "gitleaks JSON output")
	f.StringVar(&evaluateOpts.OutPath, "out", report.DefaultPath, "where to write the Markdown report")
	f.StringVar(&evaluateOpts.SummaryPath, "summary-json", "", "also write a machine-readable summary to this path")
	f.StringVar(&evaluateOpts.MetricsPath, "metrics-file", "", "also write Prometheus metrics in textfile format to this path")
	f.BoolVarP(&evaluateOpts.Quiet, "quiet", "q", false, "do not print the results table")
	_ = evaluateCmd.MarkFlagRequired("policy")

	rootCmd.AddCommand(evaluateCmd)
}

// runEvaluate performs one gate evaluation. A FAIL decision is returned as
// a GATE-001 error alongside the result.
func runEvaluate(ctx context.Context, opts evaluateOptions, stdout io.Writer, logger *log.Logger) (*eval.GateResult, error) {
	started := time.Now()
	ctx, span := telemetry.StartCommandSpan(ctx, "evaluate")
	defer span.End()

	if opts.PolicyPath == "" {
		err := gerrors.NewUsageError("--policy is required")
		telemetry.RecordError(span, err)
		return nil, err
	}

	pol, err := policy.LoadPolicy(opts.PolicyPath)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	for _, w := range pol.Warnings {
		logger.WarnContext(ctx, "policy warning", "policy", opts.PolicyPath, "warning", w)
	}

	set := scanner.NewLoader(logger).LoadAll(opts.Paths)
	result, err := eval.RunGate(eval.GateOptions{Policy: pol, Reports: set})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	for _, r := range result.Results {
		logger.DebugContext(ctx, "scanner evaluated",
			"scanner", string(r.Scanner), "count", r.Count, "max_allowed", r.MaxAllowed, "passed", r.Passed)
	}

	var reg *metrics.Registry
	if opts.MetricsPath != "" {
		reg = metrics.NewRegistry()
		reg.RecordInputs(set.Sources)
	}

	content, err := report.Render(result)
	if err == nil {
		err = report.Write(opts.OutPath, content)
	}
	if err != nil {
		if reg != nil {
			reg.RecordError(err, "evaluate")
			if werr := reg.WriteTextfile(opts.MetricsPath); werr != nil {
				logger.WithError(werr).Warn("metrics not written", "path", opts.MetricsPath)
			}
		}
		telemetry.RecordError(span, err)
		return result, err
	}

	// The summary and metrics files never change the exit code.
	if opts.SummaryPath != "" {
		if err := writeSummary(opts, result, set.Sources, content); err != nil {
			logger.WithError(err).Warn("summary not written", "path", opts.SummaryPath)
			if reg != nil {
				reg.RecordError(err, "evaluate")
			}
		}
	}
	if reg != nil {
		reg.RecordGate(result, time.Since(started))
		if err := reg.WriteTextfile(opts.MetricsPath); err != nil {
			logger.WithError(err).Warn("metrics not written", "path", opts.MetricsPath)
		}
	}

	logger.InfoContext(ctx, "gate evaluated",
		"decision", result.Decision(),
		"report", opts.OutPath,
		"failed_scanners", result.TotalFailed,
	)
	if !opts.Quiet {
		if err := report.Console(stdout, result, report.ConsoleOptions{NoColor: opts.NoColor}); err != nil {
			logger.WithError(err).Warn("console summary not printed")
		}
	}

	span.SetAttributes(
		attribute.String("gate.decision", result.Decision()),
		attribute.Int("gate.failed_scanners", result.TotalFailed),
	)
	if !result.Passed {
		err := gerrors.NewGateFailedError(result.Failing())
		telemetry.RecordError(span, err)
		return result, err
	}
	telemetry.RecordSuccess(span)
	return result, nil
}

func writeSummary(opts evaluateOptions, result *eval.GateResult, sources []scanner.Source, content string) error {
	policyData, err := os.ReadFile(opts.PolicyPath)
	if err != nil {
		return gerrors.Wrap(gerrors.ErrCodeFileReadFailed, "read policy for digest", err)
	}
	summary := report.NewSummary(result, report.SummaryInput{
		Version:    version.Version,
		PolicyPath: opts.PolicyPath,
		PolicyData: policyData,
		Sources:    sources,
		ReportPath: opts.OutPath,
		Report:     content,
	})
	return report.WriteSummary(opts.SummaryPath, summary)
}
