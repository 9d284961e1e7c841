package report

import (
	"bytes"
	"os"

	"github.com/felixgeelhaar/secgate/internal/digest"
	gerrors "github.com/felixgeelhaar/secgate/internal/errors"
	"github.com/felixgeelhaar/secgate/internal/eval"
	"github.com/felixgeelhaar/secgate/internal/jsonutil"
	"github.com/felixgeelhaar/secgate/internal/scanner"
)

// SummarySchema identifies the summary document format.
const SummarySchema = "secgate.summary/v1"

// Artifact is a file the gate read or produced.
type Artifact struct {
	Path   string `json:"path"`
	Digest string `json:"digest"`
}

// Summary is the machine-readable record of one evaluation. It carries no
// timestamps or run identifiers so that identical inputs produce identical
// bytes.
type Summary struct {
	Schema   string               `json:"schema"`
	Version  string               `json:"version"`
	Decision string               `json:"decision"`
	Passed   bool                 `json:"passed"`
	Failing  []string             `json:"failing"`
	Results  []eval.ScannerResult `json:"results"`
	Policy   Artifact             `json:"policy"`
	Inputs   []scanner.Source     `json:"inputs"`
	Report   Artifact             `json:"report"`
}

// SummaryInput collects what NewSummary needs beyond the gate result.
type SummaryInput struct {
	Version    string
	PolicyPath string
	PolicyData []byte
	Sources    []scanner.Source
	ReportPath string
	Report     string
}

// NewSummary builds the summary for a gate result.
func NewSummary(result *eval.GateResult, in SummaryInput) *Summary {
	failing := result.Failing()
	if failing == nil {
		failing = []string{}
	}
	sources := in.Sources
	if sources == nil {
		sources = []scanner.Source{}
	}
	return &Summary{
		Schema:   SummarySchema,
		Version:  in.Version,
		Decision: result.Decision(),
		Passed:   result.Passed,
		Failing:  failing,
		Results:  result.Results,
		Policy:   Artifact{Path: in.PolicyPath, Digest: digest.Bytes(in.PolicyData)},
		Inputs:   sources,
		Report:   Artifact{Path: in.ReportPath, Digest: digest.String(in.Report)},
	}
}

// WriteSummary encodes s as indented JSON to path.
func WriteSummary(path string, s *Summary) error {
	var buf bytes.Buffer
	if err := jsonutil.Encode(&buf, s); err != nil {
		return gerrors.Wrap(gerrors.ErrCodeFileWriteFailed, "encode summary", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return gerrors.NewFileWriteError(path, err)
	}
	return nil
}
