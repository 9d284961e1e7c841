package policy

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Canonical severity labels emitted by the supported scanners.
const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityMedium   = "MEDIUM"
	SeverityLow      = "LOW"
)

// KnownSeverities lists the labels offered by `policy init --interactive`.
var KnownSeverities = []string{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// NormalizeSeverity upper-cases a severity label so that "high", "High" and
// "HIGH" compare equal. Surrounding whitespace is preserved.
func NormalizeSeverity(s string) string {
	return cases.Upper(language.Und).String(s)
}

// normalizeSet upper-cases, de-duplicates and sorts labels.
func normalizeSet(labels []string) ([]string, error) {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if strings.TrimSpace(l) == "" {
			return nil, errBlankSeverity
		}
		out = append(out, NormalizeSeverity(l))
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}
