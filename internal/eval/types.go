package eval

import "github.com/felixgeelhaar/secgate/internal/policy"

// ScannerResult is the outcome of one scanner's threshold check
type ScannerResult struct {
	Scanner    policy.Scanner `json:"scanner"`
	Count      int            `json:"count"`       // Blocking findings
	MaxAllowed int            `json:"max_allowed"` // Threshold from policy
	Severities []string       `json:"severities"`  // Blocking set, sorted; nil for unfiltered scanners
	Passed     bool           `json:"passed"`      // Count <= MaxAllowed
}

// GateResult is the full gate decision. It is built once by RunGate and
// never modified afterwards.
type GateResult struct {
	Results     []ScannerResult `json:"results"`
	TotalPassed int             `json:"total_passed"`
	TotalFailed int             `json:"total_failed"`
	Passed      bool            `json:"passed"`
}

// Result returns the result for a scanner.
func (g *GateResult) Result(s policy.Scanner) (ScannerResult, bool) {
	for _, r := range g.Results {
		if r.Scanner == s {
			return r, true
		}
	}
	return ScannerResult{}, false
}

// Failing lists the scanners over threshold, in evaluation order.
func (g *GateResult) Failing() []string {
	var out []string
	for _, r := range g.Results {
		if !r.Passed {
			out = append(out, string(r.Scanner))
		}
	}
	return out
}

// Decision returns "PASS" or "FAIL".
func (g *GateResult) Decision() string {
	if g.Passed {
		return "PASS"
	}
	return "FAIL"
}
