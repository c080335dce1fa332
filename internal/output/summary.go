package output

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/crux-toolkit/cruxcheck/internal/candidates"
	"github.com/crux-toolkit/cruxcheck/internal/model"
)

var titleCaser = cases.Title(language.English)

// Title returns a display form of a mode or tolerance-type name,
// e.g. "unordered" -> "Unordered".
func Title(name string) string {
	return titleCaser.String(name)
}

// RunSummary prints the results of a scenario run.
func (w *Writer) RunSummary(s *model.RunSummary) {
	w.SummaryHeader("Scenario Summary")

	if s.RunID != "" {
		w.SummaryItem("Run", s.RunID)
	}
	w.SummaryPassed("Passed", fmt.Sprintf("%d", s.Passed))
	if s.Failed > 0 {
		w.SummaryFailed("Failed", fmt.Sprintf("%d", s.Failed))
	}
	w.SummaryItem("Duration", formatDuration(s.TotalDuration))

	if len(s.Scenarios) > 0 {
		w.Println("")
		w.SummarySectionLabel("Scenarios:")
		for _, r := range s.Scenarios {
			w.SummaryAction(r.Name, r.Success, formatDuration(r.Duration), r.FailureReason())
		}
	}

	var observed []string
	for _, r := range s.Scenarios {
		observed = append(observed, r.Observed...)
	}
	if len(observed) > 0 {
		w.Println("")
		w.SummarySectionLabel("Observed output:")
		w.List(observed)
	}

	total := s.Passed + s.Failed
	if s.Success() {
		w.FinalSuccess("All %d scenarios passed.", total)
	} else {
		w.FinalFailure("%d of %d scenarios failed.", s.Failed, total)
	}
}

// SweepSummary prints the results of a candidate cross-validation sweep.
func (w *Writer) SweepSummary(rep *candidates.SweepReport, total int) {
	w.SummaryHeader("Cross-Validation Summary")

	rows := make([][]string, 0, len(rep.Results))
	for _, r := range rep.Results {
		c := r.Combination
		status := "pass"
		if !r.Report.Verdict.Success {
			status = "FAIL"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%g", c.Tolerance.Value),
			Title(string(c.Tolerance.Type)),
			c.Database,
			c.Spectra,
			fmt.Sprintf("%d", c.MissedCleavages),
			fmt.Sprintf("%d", r.Report.Baseline),
			fmt.Sprintf("%d", r.Report.Confirmed),
			fmt.Sprintf("%d", r.Report.Excused),
			status,
		})
	}
	if len(rows) > 0 {
		w.Table([]string{"Mass", "Type", "Database", "Spectra", "Missed", "Baseline", "Confirmed", "Excused", "Status"}, rows)
	}

	w.Println("")
	w.SummaryItem("Combinations", fmt.Sprintf("%d of %d checked", len(rep.Results), total))
	if rep.Verdict.Success {
		w.FinalSuccess("Candidate sets agree for all %d combinations.", total)
	} else {
		w.FinalFailure("Candidate sets differ: %s", rep.Verdict.Message)
	}
}

// ReconcileSummary prints the result of reconciling two result files.
func (w *Writer) ReconcileSummary(rep *candidates.Report) {
	w.SummaryHeader("Reconciliation")
	w.SummaryItem("Baseline candidates", fmt.Sprintf("%d", rep.Baseline))
	w.SummaryItem("Compared candidates", fmt.Sprintf("%d", rep.Compared))
	w.SummaryPassed("Confirmed", fmt.Sprintf("%d", rep.Confirmed))
	w.SummaryItem("Excused at tolerance edge", fmt.Sprintf("%d", rep.Excused))
	if rep.Malformed > 0 {
		w.SummaryItem("Skipped rows", fmt.Sprintf("%d", rep.Malformed))
	}
	if rep.Verdict.Success {
		w.FinalSuccess("Candidate sets agree.")
	} else {
		w.FinalFailure("Candidate sets differ: %s", rep.Verdict.Message)
	}
}

// Verdict prints a one-line comparison result.
func (w *Writer) Verdict(label string, v model.Verdict) {
	if v.Success {
		w.Success("%s: match", label)
		return
	}
	line := label + ": mismatch"
	if w.color {
		line = red + line + reset
	}
	if msg := strings.TrimSpace(v.Message); msg != "" {
		line += " " + msg
	}
	w.Println("%s", line)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(10 * time.Millisecond).String()
}
