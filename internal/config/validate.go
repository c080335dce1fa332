package config

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/crux-toolkit/cruxcheck/internal/candidates"
	"github.com/crux-toolkit/cruxcheck/internal/process"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a configuration for errors and returns warnings for non-fatal issues.
func Validate(cfg *Config) (warnings []string, err error) {
	if strings.TrimSpace(cfg.Executable) == "" {
		return nil, &ValidationError{Field: "executable", Message: "is required"}
	}

	if _, ok := process.ParseExitPolicy(cfg.ExitCode); !ok {
		return nil, &ValidationError{Field: "exit_code", Message: `must be "synthetic" or "propagate"`}
	}

	if !doublestar.ValidatePattern(cfg.Scenarios) {
		return nil, &ValidationError{Field: "scenarios", Message: fmt.Sprintf("invalid glob pattern %q", cfg.Scenarios)}
	}

	for i, kv := range cfg.Env {
		if k, _, ok := strings.Cut(kv, "="); !ok || k == "" {
			return nil, &ValidationError{Field: fmt.Sprintf("env[%d]", i), Message: "must have the form KEY=VALUE"}
		}
	}

	if cfg.Candidates != nil {
		return validateCandidates(cfg.Candidates)
	}
	return nil, nil
}

func validateCandidates(c *CandidatesConfig) (warnings []string, err error) {
	if err := c.Sweep().Validate(); err != nil {
		return nil, &ValidationError{Field: "candidates", Message: err.Error()}
	}

	engines := []struct {
		field string
		eng   *candidates.Engine
	}{
		{"candidates.engine_a", c.EngineA},
		{"candidates.engine_b", c.EngineB},
	}
	for _, e := range engines {
		if err := validateEngine(e.field, e.eng); err != nil {
			return nil, err
		}
	}

	if c.EngineA.Name == c.EngineB.Name {
		warnings = append(warnings, fmt.Sprintf("candidates: both engines are named %q; the sweep compares an engine with itself", c.EngineA.Name))
	}
	if c.EngineA.Results == c.EngineB.Results {
		warnings = append(warnings, fmt.Sprintf("candidates: both engines write %q; the second run overwrites the first", c.EngineA.Results))
	}
	return warnings, nil
}

func validateEngine(field string, e *candidates.Engine) error {
	if e == nil {
		return &ValidationError{Field: field, Message: "is required"}
	}
	if e.Name == "" {
		return &ValidationError{Field: field + ".name", Message: "is required"}
	}
	if len(e.Steps) == 0 {
		return &ValidationError{Field: field + ".steps", Message: "must not be empty"}
	}
	for i, s := range e.Steps {
		if s.Subcommand == "" {
			return &ValidationError{Field: fmt.Sprintf("%s.steps[%d].subcommand", field, i), Message: "is required"}
		}
	}
	if e.Results == "" {
		return &ValidationError{Field: field + ".results", Message: "is required"}
	}
	if err := e.Layout.Validate(); err != nil {
		return &ValidationError{Field: field + ".layout", Message: err.Error()}
	}
	return nil
}
