// Package report renders a gate decision for people: the Markdown report
// that is written to disk and posted on pull requests, and the console
// summary printed by `secgate evaluate`.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	gerrors "github.com/felixgeelhaar/secgate/internal/errors"
	"github.com/felixgeelhaar/secgate/internal/eval"
)

// DefaultPath is where the report is written when no path is given.
const DefaultPath = "gate-report.md"

//go:embed templates/report.md.tmpl
var templates embed.FS

// row is one scanner as seen by the template.
type row struct {
	Name       string
	Filtered   bool
	Severities []string
	MaxAllowed int
	Count      int
}

type view struct {
	Rows   []row
	Passed bool
}

// Renderer renders GateResults to Markdown.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded report template.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("report.md.tmpl").
		Funcs(sprig.TxtFuncMap()).
		ParseFS(templates, "templates/report.md.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render returns the Markdown report for result. Output depends only on
// result, so identical results render byte-identical reports.
func (r *Renderer) Render(result *eval.GateResult) (string, error) {
	v := view{Passed: result.Passed}
	for _, sr := range result.Results {
		v.Rows = append(v.Rows, row{
			Name:       sr.Scanner.DisplayName(),
			Filtered:   sr.Scanner.SeverityFiltered(),
			Severities: sr.Severities,
			MaxAllowed: sr.MaxAllowed,
			Count:      sr.Count,
		})
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

// Render renders result with the embedded template.
func Render(result *eval.GateResult) (string, error) {
	r, err := NewRenderer()
	if err != nil {
		return "", err
	}
	return r.Render(result)
}

// Write persists a rendered report, replacing any existing file.
func Write(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return gerrors.NewFileWriteError(path, err)
	}
	return nil
}
