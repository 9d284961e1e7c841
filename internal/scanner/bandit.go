package scanner

import (
	"github.com/go-json-experiment/json/jsontext"

	"github.com/felixgeelhaar/secgate/internal/jsonutil"
	"github.com/felixgeelhaar/secgate/internal/policy"
)

// BanditIssue is one static-analysis finding.
type BanditIssue struct {
	IssueSeverity Label `json:"issue_severity"`
}

// BanditReport is the relevant part of `bandit -f json` output.
type BanditReport struct {
	Results []BanditIssue
}

// Scanner implements Report.
func (r *BanditReport) Scanner() policy.Scanner { return policy.ScannerBandit }

// Count returns the issues whose severity is in the rule's set.
func (r *BanditReport) Count(rule policy.Rule) int {
	n := 0
	for _, issue := range r.Results {
		if issue.IssueSeverity.blocks(rule) {
			n++
		}
	}
	return n
}

// ParseBandit decodes bandit output. Records that are not objects are
// skipped; a document without a results array is an error.
func ParseBandit(data []byte) (*BanditReport, int, error) {
	var doc struct {
		Results jsontext.Value `json:"results"`
	}
	if err := jsonutil.Unmarshal(data, &doc); err != nil {
		return nil, 0, err
	}

	report := &BanditReport{}
	if isNull(doc.Results) {
		return report, 0, nil
	}
	objs, skipped, ok := records(doc.Results)
	if !ok {
		return nil, 0, errShape("results", "array")
	}
	for _, obj := range objs {
		var issue BanditIssue
		if err := jsonutil.Unmarshal(obj, &issue); err != nil {
			skipped++
			continue
		}
		report.Results = append(report.Results, issue)
	}
	return report, skipped, nil
}

// LoadBandit reads bandit output from path.
func (l *Loader) LoadBandit(path string) (*BanditReport, Source) {
	data, src := l.read(policy.ScannerBandit, path)
	if data == nil {
		return &BanditReport{}, src
	}
	report, skipped, err := ParseBandit(data)
	if err != nil {
		l.malformed(src, err)
		return &BanditReport{}, src
	}
	src.Parsed = true
	l.skippedRecords(src, skipped)
	l.logger.Debug("loaded scanner output", "scanner", string(src.Scanner), "records", len(report.Results))
	return report, src
}
