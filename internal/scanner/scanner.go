// Package scanner reads the JSON output of the supported security scanners.
//
// Loading is tolerant: a missing file, a document that does not parse, or a
// document of the wrong shape all yield the scanner's empty report. Only the
// policy can make the gate fail; absent scanner output never does.
package scanner

import (
	"errors"
	"io/fs"
	"os"

	"github.com/go-json-experiment/json/jsontext"

	"github.com/felixgeelhaar/secgate/internal/digest"
	"github.com/felixgeelhaar/secgate/internal/jsonutil"
	"github.com/felixgeelhaar/secgate/internal/log"
	"github.com/felixgeelhaar/secgate/internal/policy"
)

// Report is the normalized output of one scanner.
type Report interface {
	// Scanner identifies the producing scanner.
	Scanner() policy.Scanner

	// Count returns the number of findings that block under rule.
	Count(rule policy.Rule) int
}

// Source describes the file a report was loaded from.
type Source struct {
	Scanner policy.Scanner `json:"scanner"`
	Path    string         `json:"path"`
	Present bool           `json:"present"`
	Parsed  bool           `json:"parsed"`
	Digest  string         `json:"digest,omitempty"`
}

// Set holds one report per scanner along with where each came from.
type Set struct {
	Bandit   *BanditReport
	PipAudit *PipAuditReport
	Gitleaks *GitleaksReport
	Sources  []Source
}

// Report returns the report for s. Unknown scanners yield nil.
func (s Set) Report(sc policy.Scanner) Report {
	switch sc {
	case policy.ScannerBandit:
		if s.Bandit == nil {
			return &BanditReport{}
		}
		return s.Bandit
	case policy.ScannerPipAudit:
		if s.PipAudit == nil {
			return &PipAuditReport{}
		}
		return s.PipAudit
	case policy.ScannerGitleaks:
		if s.Gitleaks == nil {
			return &GitleaksReport{}
		}
		return s.Gitleaks
	default:
		return nil
	}
}

// Paths locates the scanner output files.
type Paths struct {
	Bandit   string
	PipAudit string
	Gitleaks string
}

// DefaultPaths returns the conventional file names.
func DefaultPaths() Paths {
	return Paths{
		Bandit:   "bandit.json",
		PipAudit: "pip-audit.json",
		Gitleaks: "gitleaks.json",
	}
}

// Loader reads scanner output files and logs what it had to tolerate.
type Loader struct {
	logger *log.Logger
}

// NewLoader creates a Loader. A nil logger discards everything.
func NewLoader(logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Discard()
	}
	return &Loader{logger: logger}
}

// LoadAll reads all three scanner outputs. It never fails.
func (l *Loader) LoadAll(paths Paths) Set {
	bandit, bs := l.LoadBandit(paths.Bandit)
	pipAudit, ps := l.LoadPipAudit(paths.PipAudit)
	gitleaks, gs := l.LoadGitleaks(paths.Gitleaks)
	return Set{
		Bandit:   bandit,
		PipAudit: pipAudit,
		Gitleaks: gitleaks,
		Sources:  []Source{bs, ps, gs},
	}
}

// read returns the file contents, or nil when the file is missing or
// unreadable.
func (l *Loader) read(sc policy.Scanner, path string) ([]byte, Source) {
	src := Source{Scanner: sc, Path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("scanner output not found; treating as empty",
				"scanner", string(sc), "path", path)
		} else {
			l.logger.WithError(err).Warn("scanner output unreadable; treating as empty",
				"scanner", string(sc), "path", path)
		}
		return nil, src
	}
	src.Present = true
	src.Digest = digest.Bytes(data)
	return data, src
}

func (l *Loader) malformed(src Source, err error) {
	l.logger.WithError(err).Warn("scanner output malformed; treating as empty",
		"scanner", string(src.Scanner), "path", src.Path)
}

// isNull reports whether a field was absent or explicitly null.
func isNull(v jsontext.Value) bool {
	return len(v) == 0 || v.Kind() == 'n'
}

// records decodes a JSON array into its raw elements, keeping only objects.
// Anything that is not an array yields ok=false.
func records(raw jsontext.Value) (objs []jsontext.Value, skipped int, ok bool) {
	if raw.Kind() != '[' {
		return nil, 0, false
	}
	var elems []jsontext.Value
	if err := jsonutil.Unmarshal(raw, &elems); err != nil {
		return nil, 0, false
	}
	for _, e := range elems {
		if e.Kind() != '{' {
			skipped++
			continue
		}
		objs = append(objs, e)
	}
	return objs, skipped, true
}

// Label is an optional severity label. A value that is not a JSON string,
// including null, decodes as absent.
type Label struct {
	Value string
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Label) UnmarshalJSON(b []byte) error {
	*l = Label{}
	if jsontext.Value(b).Kind() != '"' {
		return nil
	}
	var s string
	if err := jsonutil.Unmarshal(b, &s); err != nil {
		return nil
	}
	*l = Label{Value: s, Set: true}
	return nil
}

// Normalized returns the upper-cased label, or "" when absent.
func (l Label) Normalized() string {
	if !l.Set {
		return ""
	}
	return policy.NormalizeSeverity(l.Value)
}

// blocks reports whether the label is present, non-empty and selected by rule.
func (l Label) blocks(rule policy.Rule) bool {
	sev := l.Normalized()
	return sev != "" && rule.Blocks(sev)
}
