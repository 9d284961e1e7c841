package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	gerrors "github.com/felixgeelhaar/secgate/internal/errors"
	"github.com/felixgeelhaar/secgate/internal/log"
	"github.com/felixgeelhaar/secgate/internal/policy"
	"github.com/felixgeelhaar/secgate/internal/ux"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Create and check gate policies",
	Long: `Create and check the YAML policy that 'secgate evaluate' enforces.

Subcommands:
  init      Write a starter policy
  validate  Load a policy and print it normalized

Examples:
  secgate policy init
  secgate policy init --interactive --output .ci/policy.yaml
  secgate policy validate --policy policy.yaml --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var policyInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter policy",
	Long: `Write a policy that blocks any HIGH Bandit issue, any HIGH or CRITICAL
pip-audit vulnerability and any gitleaks finding.

With --interactive, a form asks for the severities and maxima instead.

Examples:
  secgate policy init                        # Creates policy.yaml
  secgate policy init --output ci/gate.yaml  # Creates ci/gate.yaml
  secgate policy init --force                # Overwrites an existing file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pol := policy.DefaultPolicy()
		if policyInitInteractive {
			if err := promptPolicy(pol); err != nil {
				return err
			}
		}
		if err := writeStarterPolicy(pol, policyInitOutput, policyInitForce); err != nil {
			return err
		}
		printPolicyCreated(cmd.OutOrStdout(), pol, policyInitOutput)
		return nil
	},
}

var policyValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a policy and print it normalized",
	Long: `Load and validate a policy without evaluating any scanner output.

Severity labels are printed upper-cased, sorted and de-duplicated, exactly as
'secgate evaluate' will apply them. Warnings about ignored keys go to stderr.
Exits 0 when the policy is valid and 2 otherwise.

Examples:
  secgate policy validate --policy policy.yaml
  secgate policy validate --policy policy.yaml --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPolicyValidate(cmd.OutOrStdout(), newLogger(cmd), policyValidatePath, policyValidateFormat)
	},
}

var (
	policyInitOutput      string
	policyInitForce       bool
	policyInitInteractive bool

	policyValidatePath   string
	policyValidateFormat string
)

func init() {
	policyInitCmd.Flags().StringVarP(&policyInitOutput, "output", "o", "policy.yaml", "where to write the policy")
	policyInitCmd.Flags().BoolVarP(&policyInitForce, "force", "f", false, "overwrite an existing file")
	policyInitCmd.Flags().BoolVarP(&policyInitInteractive, "interactive", "i", false, "choose severities and maxima in a form")

	policyValidateCmd.Flags().StringVar(&policyValidatePath, "policy", "", "path to the policy YAML (required)")
	policyValidateCmd.Flags().StringVar(&policyValidateFormat, "format", "yaml", "output format: yaml or json")
	_ = policyValidateCmd.MarkFlagRequired("policy")

	policyCmd.AddCommand(policyInitCmd)
	policyCmd.AddCommand(policyValidateCmd)
	rootCmd.AddCommand(policyCmd)
}

// writeStarterPolicy saves pol to path, refusing to replace an existing
// file unless force is set.
func writeStarterPolicy(pol *policy.Policy, path string, force bool) error {
	if !force {
		_, err := os.Stat(path)
		if err == nil {
			return gerrors.New(gerrors.ErrCodePolicyExists, fmt.Sprintf("policy file already exists: %s", path)).
				WithSuggestion("Use --force to overwrite it").
				WithSuggestion("Use --output to write somewhere else")
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return gerrors.Wrap(gerrors.ErrCodeFileReadFailed, fmt.Sprintf("check %s", path), err)
		}
	}
	if err := pol.Validate(); err != nil {
		return gerrors.NewPolicyInvalidError(err.Error())
	}
	return policy.SavePolicy(pol, path)
}

func printPolicyCreated(w io.Writer, pol *policy.Policy, path string) {
	fmt.Fprintf(w, "✅ Created policy file: %s\n\n", path)
	fmt.Fprintln(w, "Policy blocks:")
	for _, s := range policy.Scanners {
		r := pol.Rule(s)
		if s.SeverityFiltered() {
			fmt.Fprintf(w, "  %-10s severities %v, max allowed %d\n", s.DisplayName(), r.Severities, r.MaxAllowed)
		} else {
			fmt.Fprintf(w, "  %-10s every finding, max allowed %d\n", s.DisplayName(), r.MaxAllowed)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Run 'secgate evaluate --policy %s' in CI to enforce it.\n", path)
}

func runPolicyValidate(stdout io.Writer, logger *log.Logger, path, format string) error {
	if format != "yaml" && format != "json" {
		return gerrors.NewUsageError(fmt.Sprintf("unsupported format %q", format)).
			WithSuggestion("Use --format yaml or --format json")
	}

	pol, err := policy.LoadPolicy(path)
	if err != nil {
		return err
	}
	for _, w := range pol.Warnings {
		logger.Warn("policy warning", "policy", path, "warning", w)
	}

	formatter, err := ux.NewFormatter(format, &ux.FormatterOptions{Writer: stdout})
	if err != nil {
		return gerrors.NewUsageError(err.Error())
	}
	if err := formatter.Format(pol); err != nil {
		return gerrors.Wrap(gerrors.ErrCodeFileWriteFailed, "print policy", err)
	}
	return nil
}

// severityOptions returns the labels the form offers for a scanner.
// Bandit never reports CRITICAL.
func severityOptions(s policy.Scanner) []string {
	if s == policy.ScannerBandit {
		return slices.DeleteFunc(slices.Clone(policy.KnownSeverities), func(label string) bool {
			return label == policy.SeverityCritical
		})
	}
	return slices.Clone(policy.KnownSeverities)
}

// promptPolicy lets the user adjust pol in a form. The form starts from
// the values already in pol.
func promptPolicy(pol *policy.Policy) error {
	banditMax := strconv.Itoa(pol.FailOn.Bandit.MaxAllowed)
	pipAuditMax := strconv.Itoa(pol.FailOn.PipAudit.MaxAllowed)
	gitleaksMax := strconv.Itoa(pol.FailOn.Gitleaks.MaxAllowed)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Blocking Bandit severities").
				Options(huh.NewOptions(severityOptions(policy.ScannerBandit)...)...).
				Value(&pol.FailOn.Bandit.Severities),
			huh.NewInput().
				Title("Bandit max allowed").
				Value(&banditMax).
				Validate(validateMax),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Blocking pip-audit severities").
				Options(huh.NewOptions(severityOptions(policy.ScannerPipAudit)...)...).
				Value(&pol.FailOn.PipAudit.Severities),
			huh.NewInput().
				Title("pip-audit max allowed").
				Value(&pipAuditMax).
				Validate(validateMax),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("gitleaks max allowed (every finding blocks)").
				Value(&gitleaksMax).
				Validate(validateMax),
		),
	)
	if err := form.Run(); err != nil {
		return gerrors.Wrap(gerrors.ErrCodeUsageInvalid, "policy form not completed", err)
	}

	// validateMax has already accepted these
	pol.FailOn.Bandit.MaxAllowed, _ = strconv.Atoi(banditMax)
	pol.FailOn.PipAudit.MaxAllowed, _ = strconv.Atoi(pipAuditMax)
	pol.FailOn.Gitleaks.MaxAllowed, _ = strconv.Atoi(gitleaksMax)
	return nil
}

func validateMax(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return errors.New("enter a whole number")
	}
	if n < 0 {
		return errors.New("must not be negative")
	}
	return nil
}
