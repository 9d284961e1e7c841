package eval

import (
	"fmt"
	"slices"

	"github.com/felixgeelhaar/secgate/internal/policy"
	"github.com/felixgeelhaar/secgate/internal/scanner"
)

// GateOptions configures the gate
type GateOptions struct {
	Policy  *policy.Policy
	Reports scanner.Set
}

// RunGate applies the policy to every scanner report, in the fixed scanner
// order. The gate fails if any scanner's blocking count strictly exceeds its
// maximum; a count equal to the maximum passes.
func RunGate(opts GateOptions) (*GateResult, error) {
	if opts.Policy == nil {
		return nil, fmt.Errorf("policy is required")
	}

	result := &GateResult{
		Results: make([]ScannerResult, 0, len(policy.Scanners)),
	}

	for _, s := range policy.Scanners {
		r := check(s, opts.Policy.Rule(s), opts.Reports.Report(s))
		if r.Passed {
			result.TotalPassed++
		} else {
			result.TotalFailed++
		}
		result.Results = append(result.Results, r)
	}

	result.Passed = result.TotalFailed == 0

	return result, nil
}

func check(s policy.Scanner, rule policy.Rule, report scanner.Report) ScannerResult {
	count := report.Count(rule)

	var sevs []string
	if s.SeverityFiltered() {
		sevs = slices.Sorted(slices.Values(rule.Severities))
		if sevs == nil {
			sevs = []string{}
		}
	}

	return ScannerResult{
		Scanner:    s,
		Count:      count,
		MaxAllowed: rule.MaxAllowed,
		Severities: sevs,
		Passed:     !rule.Exceeded(count),
	}
}
