package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/crux-toolkit/cruxcheck/internal/candidates"
	"github.com/crux-toolkit/cruxcheck/internal/errors"
	"github.com/crux-toolkit/cruxcheck/internal/params"
	"github.com/crux-toolkit/cruxcheck/internal/process"
	"github.com/crux-toolkit/cruxcheck/internal/schema"
)

// Load reads and parses a suite file without applying defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IO(path, err)
	}

	cfg, _, err := parse(path, data)
	return cfg, err
}

// LoadWithDefaults reads a suite file and applies default values.
func LoadWithDefaults(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	return cfg, nil
}

// LoadAndValidate reads a suite file, checks it against the schema, applies
// defaults, validates, and returns warnings.
func LoadAndValidate(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.IO(path, err)
	}

	if err := schema.ValidateSuite(data); err != nil {
		return nil, nil, &errors.CheckError{Kind: errors.KindValidation, Path: path, Message: "invalid suite file", Cause: err}
	}

	cfg, unknownWarnings, err := parse(path, data)
	if err != nil {
		return nil, nil, err
	}

	applyDefaults(cfg)

	validationWarnings, err := Validate(cfg)

	// Combine warnings from both sources.
	allWarnings := make([]string, 0, len(unknownWarnings)+len(validationWarnings))
	allWarnings = append(allWarnings, unknownWarnings...)
	allWarnings = append(allWarnings, validationWarnings...)

	if err != nil {
		return nil, allWarnings, &errors.CheckError{Kind: errors.KindValidation, Path: path, Message: "invalid suite file", Cause: err}
	}

	return cfg, allWarnings, nil
}

func parse(path string, data []byte) (*Config, []string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, errors.ConfigPath(path, fmt.Sprintf("failed to parse suite file: %v", err))
	}

	var cfg Config
	if err := doc.Decode(&cfg); err != nil {
		return nil, nil, errors.ConfigPath(path, fmt.Sprintf("failed to parse suite file: %v", err))
	}

	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, nil, errors.IO(path, err)
	}
	cfg.BaseDir = abs

	return &cfg, detectUnknownFields(&doc), nil
}

// Resolve returns p relative to the suite file's directory unless p is absolute.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// Dir returns the absolute working directory for engine runs.
func (c *Config) Dir() string {
	return c.Resolve(c.WorkDir)
}

// ExecutablePath returns the program under test. Bare names are looked up on
// PATH by the runner, so only paths containing a separator are resolved.
func (c *Config) ExecutablePath() string {
	if filepath.Base(c.Executable) == c.Executable {
		return c.Executable
	}
	return c.Resolve(c.Executable)
}

// ExitPolicy returns the configured exit-code policy. The value has already
// been validated.
func (c *Config) ExitPolicy() process.ExitPolicy {
	p, _ := process.ParseExitPolicy(c.ExitCode)
	return p
}

// Sweep returns the parameter sweep described by the candidates section.
func (c *CandidatesConfig) Sweep() candidates.Sweep {
	types := make([]candidates.ToleranceType, len(c.ToleranceTypes))
	for i, t := range c.ToleranceTypes {
		types[i] = candidates.ToleranceType(t)
	}
	return candidates.Sweep{
		Masses:          c.Masses,
		ToleranceTypes:  types,
		Databases:       c.Databases,
		Spectra:         c.Spectra,
		MissedCleavages: c.MissedCleavages,
	}
}

// BaseParams loads the base parameter file, or the built-in defaults, and
// applies the configured overrides.
func (c *Config) BaseParams() (*params.File, error) {
	cc := c.Candidates
	base := params.Default()
	if cc == nil {
		return base, nil
	}
	if cc.ParamFile != "" {
		loaded, err := params.Load(c.Resolve(cc.ParamFile))
		if err != nil {
			return nil, err
		}
		base = loaded
		if len(base.Enzymes()) == 0 {
			base.SetEnzymes(params.DefaultEnzymes)
		}
	}
	for _, k := range slices.Sorted(maps.Keys(cc.Parameters)) {
		base.Set(k, cc.Parameters[k])
	}
	return base, nil
}
