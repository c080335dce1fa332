package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/crux-toolkit/cruxcheck/internal/errors"
	"github.com/crux-toolkit/cruxcheck/internal/schema"
)

// Scenario is a scripted test loaded from a YAML file.
type Scenario struct {
	Name        string `yaml:"name"`        // Defaults to the file name without extension
	Description string `yaml:"description"` // Free text
	WorkDir     string `yaml:"workdir"`     // Relative to the suite working directory
	Steps       []Step `yaml:"steps"`
	Path        string `yaml:"-"` // Full path to the scenario file
}

// Step is one scenario action. Exactly one field is set.
type Step struct {
	Name     string       `yaml:"name,omitempty"`
	Args     []string     `yaml:"args,omitempty"`
	Ignore   []string     `yaml:"ignore,omitempty"`
	Run      *RunStep     `yaml:"run,omitempty"`
	ExitCode *int         `yaml:"exit_code,omitempty"`
	Compare  *CompareStep `yaml:"compare,omitempty"`
	Stdout   *StdoutStep  `yaml:"stdout,omitempty"`
	Finish   bool         `yaml:"finish,omitempty"`
}

// RunStep executes a subcommand.
type RunStep struct {
	Command      string `yaml:"command"`
	Intermediate bool   `yaml:"intermediate"`
}

// CompareStep compares a fixture with a produced file or directory.
type CompareStep struct {
	Expected  string  `yaml:"expected"`
	Actual    string  `yaml:"actual"`
	Mode      string  `yaml:"mode"`
	Tolerance float64 `yaml:"tolerance"`
}

// StdoutStep compares a fixture with the last run's standard output.
type StdoutStep struct {
	Expected string `yaml:"expected"`
}

// Action names the step for reports.
func (s Step) Action() string {
	switch {
	case s.Run != nil:
		return "run " + s.Run.Command
	case s.ExitCode != nil:
		return "exit_code"
	case s.Compare != nil:
		return "compare"
	case s.Stdout != nil:
		return "stdout"
	case s.Finish:
		return "finish"
	case s.Ignore != nil:
		return "ignore"
	case s.Args != nil:
		return "args"
	case s.Name != "":
		return "name"
	default:
		return "empty"
	}
}

// Load reads a scenario file, validating it against the scenario schema.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IO(path, err)
	}

	if err := schema.ValidateScenario(data); err != nil {
		return nil, &errors.CheckError{Kind: errors.KindValidation, Path: path, Message: "invalid scenario", Cause: err}
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, errors.ConfigPath(path, fmt.Sprintf("invalid YAML: %v", err))
	}
	sc.Path = path
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &sc, nil
}

// Discover returns the scenario files under root matching pattern, sorted.
func Discover(root, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Configf("scenario pattern %q: %v", pattern, err)
	}

	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = filepath.Join(root, filepath.FromSlash(m))
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadAll discovers and loads every scenario under root matching pattern.
func LoadAll(root, pattern string) ([]*Scenario, error) {
	paths, err := Discover(root, pattern)
	if err != nil {
		return nil, err
	}

	scenarios := make([]*Scenario, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		sc, err := Load(p)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[sc.Name]; ok {
			return nil, errors.ConfigPath(p, fmt.Sprintf("scenario name %q already used by %s", sc.Name, prev))
		}
		seen[sc.Name] = p
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}
