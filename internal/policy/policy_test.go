package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSeverity(t *testing.T) {
	for _, in := range []string{"high", "HIGH", "High", "hIgH"} {
		assert.Equal(t, "HIGH", NormalizeSeverity(in), "input %q", in)
	}
	assert.Equal(t, "", NormalizeSeverity(""))
	assert.Equal(t, " HIGH", NormalizeSeverity(" high"))
}

func TestRule(t *testing.T) {
	r := Rule{Severities: []string{"CRITICAL", "HIGH"}, MaxAllowed: 1}

	assert.True(t, r.Blocks("HIGH"))
	assert.False(t, r.Blocks("MEDIUM"))
	assert.False(t, r.Blocks(""))

	assert.False(t, r.Exceeded(0))
	assert.False(t, r.Exceeded(1), "count equal to max passes")
	assert.True(t, r.Exceeded(2))
}

func TestScannerNames(t *testing.T) {
	assert.Equal(t, []Scanner{ScannerBandit, ScannerPipAudit, ScannerGitleaks}, Scanners)
	assert.Equal(t, "Bandit", ScannerBandit.DisplayName())
	assert.Equal(t, "pip-audit", ScannerPipAudit.DisplayName())
	assert.Equal(t, "gitleaks", ScannerGitleaks.DisplayName())
	assert.True(t, ScannerBandit.SeverityFiltered())
	assert.True(t, ScannerPipAudit.SeverityFiltered())
	assert.False(t, ScannerGitleaks.SeverityFiltered())
}

func TestValidate(t *testing.T) {
	p := &Policy{FailOn: FailOn{
		Bandit:   Rule{Severities: []string{"low", "LOW", "high"}, MaxAllowed: 0},
		PipAudit: Rule{Severities: []string{"critical"}, MaxAllowed: 3},
		Gitleaks: Rule{Severities: []string{"anything"}, MaxAllowed: 0},
	}}
	require.NoError(t, p.Validate())
	assert.Equal(t, []string{"HIGH", "LOW"}, p.FailOn.Bandit.Severities)
	assert.Equal(t, []string{"CRITICAL"}, p.FailOn.PipAudit.Severities)
	assert.Nil(t, p.FailOn.Gitleaks.Severities)

	p.FailOn.PipAudit.MaxAllowed = -2
	assert.ErrorContains(t, p.Validate(), "pip_audit.max_allowed")
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	require.NoError(t, p.Validate())
	assert.Equal(t, []string{"HIGH"}, p.Rule(ScannerBandit).Severities)
	assert.Equal(t, []string{"CRITICAL", "HIGH"}, p.Rule(ScannerPipAudit).Severities)
	for _, s := range Scanners {
		assert.Equal(t, 0, p.Rule(s).MaxAllowed, "scanner %s", s)
	}
	assert.Equal(t, Rule{}, p.Rule(Scanner("trivy")))
}
