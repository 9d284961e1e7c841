package policy

import (
	"errors"
	"fmt"
	"slices"
)

// Scanner identifies one of the scanners a policy can constrain.
type Scanner string

const (
	ScannerBandit   Scanner = "bandit"
	ScannerPipAudit Scanner = "pip_audit"
	ScannerGitleaks Scanner = "gitleaks"
)

// Scanners is the fixed evaluation and reporting order.
var Scanners = []Scanner{ScannerBandit, ScannerPipAudit, ScannerGitleaks}

// DisplayName returns the name used in reports.
func (s Scanner) DisplayName() string {
	switch s {
	case ScannerBandit:
		return "Bandit"
	case ScannerPipAudit:
		return "pip-audit"
	default:
		return string(s)
	}
}

// SeverityFiltered reports whether the scanner's findings are filtered by
// severity. Every gitleaks finding counts.
func (s Scanner) SeverityFiltered() bool {
	return s != ScannerGitleaks
}

var errBlankSeverity = errors.New("severity labels must not be blank")

// Rule is the per-scanner threshold: findings whose severity is in
// Severities block, and more than MaxAllowed blocking findings fail the gate.
type Rule struct {
	Severities []string `yaml:"severities" json:"severities"`
	MaxAllowed int      `yaml:"max_allowed" json:"max_allowed"`
}

// Blocks reports whether a canonical (upper-case) severity is blocking.
func (r Rule) Blocks(severity string) bool {
	return slices.Contains(r.Severities, severity)
}

// Exceeded reports whether count is strictly above the maximum.
func (r Rule) Exceeded(count int) bool {
	return count > r.MaxAllowed
}

// FailOn holds the rule for each recognized scanner.
type FailOn struct {
	Bandit   Rule `yaml:"bandit" json:"bandit"`
	PipAudit Rule `yaml:"pip_audit" json:"pip_audit"`
	Gitleaks Rule `yaml:"gitleaks" json:"gitleaks"`
}

// Policy is the gate's threshold document.
type Policy struct {
	FailOn FailOn `yaml:"fail_on" json:"fail_on"`

	// Warnings collects non-fatal observations made while loading, such as
	// unrecognized scanner keys.
	Warnings []string `yaml:"-" json:"-"`
}

// Rule returns the rule configured for a scanner.
func (p *Policy) Rule(s Scanner) Rule {
	switch s {
	case ScannerBandit:
		return p.FailOn.Bandit
	case ScannerPipAudit:
		return p.FailOn.PipAudit
	case ScannerGitleaks:
		return p.FailOn.Gitleaks
	default:
		return Rule{}
	}
}

// Validate checks the invariants of an already constructed policy and
// normalizes severity labels in place.
func (p *Policy) Validate() error {
	for _, s := range Scanners {
		r := p.rulePtr(s)
		if r.MaxAllowed < 0 {
			return fmt.Errorf("fail_on.%s.max_allowed must be non-negative, got %d", s, r.MaxAllowed)
		}
		if !s.SeverityFiltered() {
			r.Severities = nil
			continue
		}
		sevs, err := normalizeSet(r.Severities)
		if err != nil {
			return fmt.Errorf("fail_on.%s.severities: %w", s, err)
		}
		r.Severities = sevs
	}
	return nil
}

func (p *Policy) rulePtr(s Scanner) *Rule {
	switch s {
	case ScannerBandit:
		return &p.FailOn.Bandit
	case ScannerPipAudit:
		return &p.FailOn.PipAudit
	default:
		return &p.FailOn.Gitleaks
	}
}

// DefaultPolicy returns the starter policy written by `policy init`:
// nothing HIGH or worse is tolerated and no secrets may leak.
func DefaultPolicy() *Policy {
	return &Policy{
		FailOn: FailOn{
			Bandit:   Rule{Severities: []string{SeverityHigh}, MaxAllowed: 0},
			PipAudit: Rule{Severities: []string{SeverityCritical, SeverityHigh}, MaxAllowed: 0},
			Gitleaks: Rule{MaxAllowed: 0},
		},
	}
}
