// Package config provides loading and validation for cruxcheck.yaml suite files.
package config

import (
	"github.com/crux-toolkit/cruxcheck/internal/candidates"
)

// Config represents a complete cruxcheck.yaml suite file.
type Config struct {
	Executable string            `yaml:"executable"`
	WorkDir    string            `yaml:"workdir,omitempty"`
	Scenarios  string            `yaml:"scenarios,omitempty"` // doublestar glob relative to WorkDir
	ExitCode   string            `yaml:"exit_code,omitempty"` // "synthetic" or "propagate"
	Env        []string          `yaml:"env,omitempty"`       // KEY=VALUE added to every run
	Candidates *CandidatesConfig `yaml:"candidates,omitempty"`

	// BaseDir is the directory of the suite file. Relative paths in the
	// file are resolved against it.
	BaseDir string `yaml:"-"`
}

// CandidatesConfig configures the cross-validation sweep.
type CandidatesConfig struct {
	Masses          []float64          `yaml:"masses"`
	ToleranceTypes  []string           `yaml:"tolerance_types,omitempty"`
	Databases       []string           `yaml:"databases"`
	Spectra         []string           `yaml:"spectra"`
	MissedCleavages []int              `yaml:"missed_cleavages,omitempty"`
	OutputDir       string             `yaml:"output_dir,omitempty"`
	ParamFile       string             `yaml:"param_file,omitempty"` // Base parameter file; built-in defaults if empty
	Parameters      map[string]string  `yaml:"parameters,omitempty"` // Overrides applied on top of the base file
	EngineA         *candidates.Engine `yaml:"engine_a,omitempty"`
	EngineB         *candidates.Engine `yaml:"engine_b,omitempty"`
}
