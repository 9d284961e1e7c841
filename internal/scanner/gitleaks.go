package scanner

import (
	"github.com/go-json-experiment/json/jsontext"

	"github.com/felixgeelhaar/secgate/internal/jsonutil"
	"github.com/felixgeelhaar/secgate/internal/policy"
)

// GitleaksReport counts secret-scan findings. Their content is irrelevant;
// every element of the findings array is one finding.
type GitleaksReport struct {
	Findings int
}

// Scanner implements Report.
func (r *GitleaksReport) Scanner() policy.Scanner { return policy.ScannerGitleaks }

// Count returns every finding; gitleaks output is never severity-filtered.
func (r *GitleaksReport) Count(policy.Rule) int {
	return r.Findings
}

// ParseGitleaks accepts either a bare array of findings or an object with a
// findings array.
func ParseGitleaks(data []byte) (*GitleaksReport, error) {
	var elems []jsontext.Value
	switch jsonutil.Kind(data) {
	case '[':
		if err := jsonutil.Unmarshal(data, &elems); err != nil {
			return nil, err
		}
	case '{':
		var doc struct {
			Findings jsontext.Value `json:"findings"`
		}
		if err := jsonutil.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		if isNull(doc.Findings) {
			return &GitleaksReport{}, nil
		}
		if doc.Findings.Kind() != '[' {
			return nil, errShape("findings", "array")
		}
		if err := jsonutil.Unmarshal(doc.Findings, &elems); err != nil {
			return nil, err
		}
	default:
		var v any
		if err := jsonutil.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return nil, errShape("document", "array or object")
	}
	return &GitleaksReport{Findings: len(elems)}, nil
}

// LoadGitleaks reads gitleaks output from path.
func (l *Loader) LoadGitleaks(path string) (*GitleaksReport, Source) {
	data, src := l.read(policy.ScannerGitleaks, path)
	if data == nil {
		return &GitleaksReport{}, src
	}
	report, err := ParseGitleaks(data)
	if err != nil {
		l.malformed(src, err)
		return &GitleaksReport{}, src
	}
	src.Parsed = true
	l.logger.Debug("loaded scanner output", "scanner", string(src.Scanner), "findings", report.Findings)
	return report, src
}
