package cli

import (
	"encoding/json"
	"os"
	"time"

	"github.com/crux-toolkit/cruxcheck/internal/errors"
	"github.com/crux-toolkit/cruxcheck/internal/model"
)

// runReport is the JSON document written by "run --report".
type runReport struct {
	RunID      string           `json:"run_id"`
	Started    time.Time        `json:"started"`
	DurationMs int64            `json:"duration_ms"`
	Passed     int              `json:"passed"`
	Failed     int              `json:"failed"`
	Scenarios  []scenarioReport `json:"scenarios"`
}

type scenarioReport struct {
	Name       string   `json:"name"`
	Path       string   `json:"path"`
	Success    bool     `json:"success"`
	DurationMs int64    `json:"duration_ms"`
	Failure    string   `json:"failure,omitempty"`
	Observed   []string `json:"observed,omitempty"`
}

func newRunReport(s *model.RunSummary, started time.Time) runReport {
	r := runReport{
		RunID:      s.RunID,
		Started:    started.UTC(),
		DurationMs: s.TotalDuration.Milliseconds(),
		Passed:     s.Passed,
		Failed:     s.Failed,
		Scenarios:  make([]scenarioReport, 0, len(s.Scenarios)),
	}
	for _, sc := range s.Scenarios {
		r.Scenarios = append(r.Scenarios, scenarioReport{
			Name:       sc.Name,
			Path:       sc.Path,
			Success:    sc.Success,
			DurationMs: sc.Duration.Milliseconds(),
			Failure:    sc.FailureReason(),
			Observed:   sc.Observed,
		})
	}
	return r
}

func writeReport(path string, r runReport) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode report")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.IO(path, err)
	}
	return nil
}
