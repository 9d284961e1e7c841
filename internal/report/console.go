package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"github.com/felixgeelhaar/secgate/internal/eval"
)

// ConsoleOptions controls the console summary.
type ConsoleOptions struct {
	NoColor bool
}

// Console prints a results table and the decision line to w.
func Console(w io.Writer, result *eval.GateResult, opts ConsoleOptions) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Scanner", "Blocking", "Max Allowed", "Status"})
	for _, r := range result.Results {
		status := "ok"
		if !r.Passed {
			status = "over threshold"
		}
		if err := table.Append([]string{
			r.Scanner.DisplayName(),
			strconv.Itoa(r.Count),
			strconv.Itoa(r.MaxAllowed),
			status,
		}); err != nil {
			return fmt.Errorf("render results table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render results table: %w", err)
	}

	_, err := fmt.Fprintln(w, decisionLine(w, result.Passed, opts.NoColor))
	return err
}

func decisionLine(w io.Writer, passed, noColor bool) string {
	text, color := "Gate decision: FAIL", lipgloss.Color("9")
	if passed {
		text, color = "Gate decision: PASS", lipgloss.Color("10")
	}
	if noColor {
		return text
	}
	style := lipgloss.NewRenderer(w).NewStyle().Bold(true).Foreground(color)
	return style.Render(text)
}
