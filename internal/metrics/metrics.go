package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	gerrors "github.com/felixgeelhaar/secgate/internal/errors"
	"github.com/felixgeelhaar/secgate/internal/eval"
	"github.com/felixgeelhaar/secgate/internal/scanner"
)

// Metrics holds the Prometheus metrics describing one gate evaluation
type Metrics struct {
	// Gate decision metrics
	BlockingFindings *prometheus.GaugeVec
	MaxAllowed       *prometheus.GaugeVec
	ScannerPassed    *prometheus.GaugeVec
	GatePassed       prometheus.Gauge

	// Input metrics
	InputPresent *prometheus.GaugeVec
	InputParsed  *prometheus.GaugeVec

	// Run metrics
	EvaluationDuration prometheus.Gauge
	LastRun            prometheus.Gauge

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		BlockingFindings: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "secgate_blocking_findings",
				Help: "Blocking findings counted for each scanner",
			},
			[]string{"scanner"},
		),
		MaxAllowed: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "secgate_max_allowed",
				Help: "Maximum blocking findings allowed by policy for each scanner",
			},
			[]string{"scanner"},
		),
		ScannerPassed: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "secgate_scanner_passed",
				Help: "1 if the scanner is within its threshold, 0 otherwise",
			},
			[]string{"scanner"},
		),
		GatePassed: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "secgate_gate_passed",
				Help: "1 if the gate passed, 0 if it failed",
			},
		),

		InputPresent: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "secgate_input_present",
				Help: "1 if the scanner output file existed",
			},
			[]string{"scanner"},
		),
		InputParsed: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "secgate_input_parsed",
				Help: "1 if the scanner output file parsed into the expected shape",
			},
			[]string{"scanner"},
		),

		EvaluationDuration: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "secgate_evaluation_duration_seconds",
				Help: "Wall time of the last evaluation in seconds",
			},
		),
		LastRun: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "secgate_last_run_timestamp_seconds",
				Help: "Unix time of the last evaluation",
			},
		),

		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secgate_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code", "component"},
		),
	}
}

// RecordGate records the per-scanner counts, thresholds and the decision.
func (m *Metrics) RecordGate(result *eval.GateResult, took time.Duration) {
	for _, r := range result.Results {
		s := string(r.Scanner)
		m.BlockingFindings.WithLabelValues(s).Set(float64(r.Count))
		m.MaxAllowed.WithLabelValues(s).Set(float64(r.MaxAllowed))
		m.ScannerPassed.WithLabelValues(s).Set(boolValue(r.Passed))
	}
	m.GatePassed.Set(boolValue(result.Passed))
	m.EvaluationDuration.Set(took.Seconds())
	m.LastRun.SetToCurrentTime()
}

// RecordInputs records which scanner outputs were found and parsed.
func (m *Metrics) RecordInputs(sources []scanner.Source) {
	for _, src := range sources {
		s := string(src.Scanner)
		m.InputPresent.WithLabelValues(s).Set(boolValue(src.Present))
		m.InputParsed.WithLabelValues(s).Set(boolValue(src.Parsed))
	}
}

// RecordError counts an error by its code. Errors without a code are
// counted as "unknown".
func (m *Metrics) RecordError(err error, component string) {
	if err == nil {
		return
	}
	code := "unknown"
	var gerr *gerrors.GateError
	if errors.As(err, &gerr) {
		code = string(gerr.Code)
	}
	m.Errors.WithLabelValues(code, component).Inc()
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
