package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	gerrors "github.com/felixgeelhaar/secgate/internal/errors"
	"github.com/felixgeelhaar/secgate/internal/eval"
	"github.com/felixgeelhaar/secgate/internal/policy"
	"github.com/felixgeelhaar/secgate/internal/scanner"
)

func failingResult() *eval.GateResult {
	return &eval.GateResult{
		Passed: false,
		Results: []eval.ScannerResult{
			{Scanner: policy.ScannerBandit, Count: 1, MaxAllowed: 0, Passed: false},
			{Scanner: policy.ScannerPipAudit, Count: 2, MaxAllowed: 2, Passed: true},
			{Scanner: policy.ScannerGitleaks, Count: 0, MaxAllowed: 1, Passed: true},
		},
	}
}

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	if m == nil {
		t.Fatal("expected metrics, got nil")
	}

	tests := []struct {
		name   string
		metric interface{}
	}{
		{"BlockingFindings", m.BlockingFindings},
		{"MaxAllowed", m.MaxAllowed},
		{"ScannerPassed", m.ScannerPassed},
		{"GatePassed", m.GatePassed},
		{"InputPresent", m.InputPresent},
		{"InputParsed", m.InputParsed},
		{"EvaluationDuration", m.EvaluationDuration},
		{"LastRun", m.LastRun},
		{"Errors", m.Errors},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestRecordGate(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordGate(failingResult(), 250*time.Millisecond)

	cases := []struct {
		scanner string
		count   float64
		max     float64
		passed  float64
	}{
		{"bandit", 1, 0, 0},
		{"pip_audit", 2, 2, 1},
		{"gitleaks", 0, 1, 1},
	}
	for _, c := range cases {
		if got := testutil.ToFloat64(m.BlockingFindings.WithLabelValues(c.scanner)); got != c.count {
			t.Errorf("blocking findings for %s = %v, want %v", c.scanner, got, c.count)
		}
		if got := testutil.ToFloat64(m.MaxAllowed.WithLabelValues(c.scanner)); got != c.max {
			t.Errorf("max allowed for %s = %v, want %v", c.scanner, got, c.max)
		}
		if got := testutil.ToFloat64(m.ScannerPassed.WithLabelValues(c.scanner)); got != c.passed {
			t.Errorf("scanner passed for %s = %v, want %v", c.scanner, got, c.passed)
		}
	}

	if got := testutil.ToFloat64(m.GatePassed); got != 0 {
		t.Errorf("gate passed = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.EvaluationDuration); got != 0.25 {
		t.Errorf("duration = %v, want 0.25", got)
	}
	if got := testutil.ToFloat64(m.LastRun); got <= 0 {
		t.Errorf("expected last run timestamp to be set, got %v", got)
	}
}

func TestRecordInputs(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordInputs([]scanner.Source{
		{Scanner: policy.ScannerBandit, Present: true, Parsed: true},
		{Scanner: policy.ScannerPipAudit, Present: true, Parsed: false},
		{Scanner: policy.ScannerGitleaks},
	})

	if got := testutil.ToFloat64(m.InputParsed.WithLabelValues("bandit")); got != 1 {
		t.Errorf("bandit parsed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.InputParsed.WithLabelValues("pip_audit")); got != 0 {
		t.Errorf("pip_audit parsed = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.InputPresent.WithLabelValues("gitleaks")); got != 0 {
		t.Errorf("gitleaks present = %v, want 0", got)
	}
}

func TestRecordError(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordError(gerrors.NewPolicyInvalidError("bad"), "evaluate")
	m.RecordError(gerrors.NewPolicyInvalidError("worse"), "evaluate")
	m.RecordError(errors.New("plain"), "publish")
	m.RecordError(nil, "publish")

	if got := testutil.ToFloat64(m.Errors.WithLabelValues("POLICY-002", "evaluate")); got != 2 {
		t.Errorf("POLICY-002 errors = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Errors.WithLabelValues("unknown", "publish")); got != 1 {
		t.Errorf("unknown errors = %v, want 1", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := NewRegistry()
	r.RecordGate(failingResult(), time.Second)

	path := filepath.Join(t.TempDir(), "secgate.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	out := string(data)
	for _, want := range []string{
		`secgate_blocking_findings{scanner="bandit"} 1`,
		`secgate_blocking_findings{scanner="pip_audit"} 2`,
		`secgate_max_allowed{scanner="gitleaks"} 1`,
		"secgate_gate_passed 0",
		"# HELP secgate_gate_passed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("textfile missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "go_goroutines") {
		t.Error("textfile should only contain gate metrics")
	}
}

func TestWriteTextfile_Error(t *testing.T) {
	r := NewRegistry()
	err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "secgate.prom"))
	var gerr *gerrors.GateError
	if !errors.As(err, &gerr) || gerr.Code != gerrors.ErrCodeFileWriteFailed {
		t.Errorf("expected IO-003 error, got %v", err)
	}
}

func TestGatherer(t *testing.T) {
	r := NewRegistry()
	r.GatePassed.Set(1)
	if n, err := testutil.GatherAndCount(r.Gatherer(), "secgate_gate_passed"); err != nil || n != 1 {
		t.Errorf("GatherAndCount() = %d, %v; want 1, nil", n, err)
	}
}
