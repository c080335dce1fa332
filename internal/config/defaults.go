package config

import (
	"github.com/crux-toolkit/cruxcheck/internal/candidates"
)

// Default configuration values.
const (
	DefaultFileName  = "cruxcheck.yaml"
	DefaultWorkDir   = "."
	DefaultScenarios = "scenarios/**/*.yaml"
	DefaultExitCode  = "synthetic"
	DefaultOutputDir = "crux-output"
)

// applyDefaults fills in default values for unset configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.WorkDir == "" {
		cfg.WorkDir = DefaultWorkDir
	}
	if cfg.Scenarios == "" {
		cfg.Scenarios = DefaultScenarios
	}
	if cfg.ExitCode == "" {
		cfg.ExitCode = DefaultExitCode
	}
	if cfg.Candidates != nil {
		applyCandidatesDefaults(cfg.Candidates)
	}
}

func applyCandidatesDefaults(c *CandidatesConfig) {
	if len(c.ToleranceTypes) == 0 {
		c.ToleranceTypes = []string{string(candidates.PPM)}
	}
	if len(c.MissedCleavages) == 0 {
		c.MissedCleavages = []int{0}
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.EngineA == nil {
		e := candidates.TideEngine()
		c.EngineA = &e
	}
	if c.EngineB == nil {
		e := candidates.CometEngine()
		c.EngineB = &e
	}
}
