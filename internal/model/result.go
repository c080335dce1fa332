// Package model provides shared data types used across multiple internal packages.
// This package exists to break import cycles between scenario, candidates and
// output, which all report verdicts.
package model

import (
	"fmt"
	"time"
)

// Verdict is the outcome of one assertion or reconciliation.
type Verdict struct {
	Success bool
	Message string // Why the verdict failed; may also describe a pass
}

// Pass returns a successful verdict.
func Pass() Verdict {
	return Verdict{Success: true}
}

// Fail returns a failed verdict with a formatted message.
func Fail(format string, args ...interface{}) Verdict {
	return Verdict{Message: fmt.Sprintf(format, args...)}
}

// StepResult records one executed scenario step.
type StepResult struct {
	Index   int    // 1-based step position
	Action  string // e.g. "run", "compare", "stdout"
	Verdict Verdict
}

// ScenarioResult tracks execution result of a single scenario.
type ScenarioResult struct {
	Name     string
	Path     string // Scenario file
	Success  bool
	Duration time.Duration
	Steps    []StepResult
	Error    error // Harness error that aborted the scenario
	Observed []string
}

// FailureReason returns the first reason the scenario failed, if any.
func (r ScenarioResult) FailureReason() string {
	if r.Error != nil {
		return r.Error.Error()
	}
	for _, s := range r.Steps {
		if !s.Verdict.Success {
			return fmt.Sprintf("step %d (%s): %s", s.Index, s.Action, s.Verdict.Message)
		}
	}
	return ""
}

// RunSummary contains aggregated results from running multiple scenarios.
type RunSummary struct {
	RunID         string
	Scenarios     []ScenarioResult
	TotalDuration time.Duration
	Passed        int
	Failed        int
}

// Add appends a scenario result and updates the counters.
func (s *RunSummary) Add(r ScenarioResult) {
	s.Scenarios = append(s.Scenarios, r)
	s.TotalDuration += r.Duration
	if r.Success {
		s.Passed++
	} else {
		s.Failed++
	}
}

// Success reports whether every scenario passed.
func (s *RunSummary) Success() bool {
	return s.Failed == 0
}
