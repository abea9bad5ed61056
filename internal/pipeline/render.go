package pipeline

import (
	"fmt"
	"io"

	"rankpipe/internal/model"
)

// RenderSummary prints the final human-readable run report.
func RenderSummary(w io.Writer, s *model.RunSummary) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintf(w, "  Run Summary - %s\n", s.Region)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")

	for _, b := range s.Boards {
		switch b.Outcome {
		case model.OutcomeSucceeded:
			line := fmt.Sprintf("  ✓ %-14s %d records", b.Label, b.Records)
			if b.Dropped > 0 {
				line += fmt.Sprintf(" (%d dropped)", b.Dropped)
			}
			if b.Renamed > 0 {
				line += fmt.Sprintf(" (%d renamed)", b.Renamed)
			}
			fmt.Fprintln(w, line)
		case model.OutcomeSkipped:
			fmt.Fprintf(w, "  - %-14s skipped: no data\n", b.Label)
		case model.OutcomeFailed:
			fmt.Fprintf(w, "  ✗ %-14s failed: %s\n", b.Label, b.Err)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Boards: %d succeeded, %d skipped, %d failed\n",
		s.Succeeded(), s.Skipped(), s.Failed())
	fmt.Fprintf(w, "  Records loaded: %d\n", s.Records())
	fmt.Fprintf(w, "  %s\n", s.Verdict())
	fmt.Fprintln(w)
}
