package scanner

import (
	"github.com/go-json-experiment/json/jsontext"

	"github.com/felixgeelhaar/secgate/internal/jsonutil"
	"github.com/felixgeelhaar/secgate/internal/policy"
)

// Vulnerability is one advisory attached to a dependency. Severity is
// frequently absent in pip-audit output.
type Vulnerability struct {
	Severity Label `json:"severity"`
}

// Dependency is one audited package.
type Dependency struct {
	Vulns []Vulnerability
}

// PipAuditReport is the relevant part of `pip-audit -f json` output.
type PipAuditReport struct {
	Dependencies []Dependency
}

// Scanner implements Report.
func (r *PipAuditReport) Scanner() policy.Scanner { return policy.ScannerPipAudit }

// Count returns the vulnerabilities with a present, non-empty severity in
// the rule's set. A missing severity never blocks.
func (r *PipAuditReport) Count(rule policy.Rule) int {
	n := 0
	for _, dep := range r.Dependencies {
		for _, v := range dep.Vulns {
			if v.Severity.blocks(rule) {
				n++
			}
		}
	}
	return n
}

type rawDependency struct {
	Vulns jsontext.Value `json:"vulns"`
}

// ParsePipAudit decodes pip-audit output. Dependency and vulnerability
// records that are not objects are skipped, as is a vulns field that is not
// an array.
func ParsePipAudit(data []byte) (*PipAuditReport, int, error) {
	var doc struct {
		Dependencies jsontext.Value `json:"dependencies"`
	}
	if err := jsonutil.Unmarshal(data, &doc); err != nil {
		return nil, 0, err
	}

	report := &PipAuditReport{}
	if isNull(doc.Dependencies) {
		return report, 0, nil
	}
	deps, skipped, ok := records(doc.Dependencies)
	if !ok {
		return nil, 0, errShape("dependencies", "array")
	}
	for _, obj := range deps {
		var raw rawDependency
		if err := jsonutil.Unmarshal(obj, &raw); err != nil {
			skipped++
			continue
		}
		var dep Dependency
		vulns, n, ok := records(raw.Vulns)
		skipped += n
		if !ok && !isNull(raw.Vulns) {
			skipped++
		}
		for _, vobj := range vulns {
			var v Vulnerability
			if err := jsonutil.Unmarshal(vobj, &v); err != nil {
				skipped++
				continue
			}
			dep.Vulns = append(dep.Vulns, v)
		}
		report.Dependencies = append(report.Dependencies, dep)
	}
	return report, skipped, nil
}

// LoadPipAudit reads pip-audit output from path.
func (l *Loader) LoadPipAudit(path string) (*PipAuditReport, Source) {
	data, src := l.read(policy.ScannerPipAudit, path)
	if data == nil {
		return &PipAuditReport{}, src
	}
	report, skipped, err := ParsePipAudit(data)
	if err != nil {
		l.malformed(src, err)
		return &PipAuditReport{}, src
	}
	src.Parsed = true
	l.skippedRecords(src, skipped)
	l.logger.Debug("loaded scanner output", "scanner", string(src.Scanner), "dependencies", len(report.Dependencies))
	return report, src
}
