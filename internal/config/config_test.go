package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crux-toolkit/cruxcheck/internal/candidates"
	"github.com/crux-toolkit/cruxcheck/internal/errors"
	"github.com/crux-toolkit/cruxcheck/internal/process"
)

func writeSuite(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidMinimal(t *testing.T) {
	t.Parallel()
	path := writeSuite(t, "executable: ../src/crux\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Executable != "../src/crux" {
		t.Errorf("Executable = %q, want %q", cfg.Executable, "../src/crux")
	}
	if cfg.WorkDir != "" {
		t.Errorf("WorkDir = %q, want empty before defaults", cfg.WorkDir)
	}
	if cfg.BaseDir != filepath.Dir(path) {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, filepath.Dir(path))
	}
}

func TestLoad_ValidFull(t *testing.T) {
	t.Parallel()
	path := writeSuite(t, `
executable: crux
workdir: work
scenarios: "features/*.yaml"
exit_code: propagate
env: ["LC_ALL=C"]
candidates:
  masses: [5, 10]
  tolerance_types: [ppm, absolute]
  databases: [small.fasta]
  spectra: [demo.ms2]
  missed_cleavages: [0, 1]
  parameters: {num_threads: 2}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Candidates == nil {
		t.Fatal("Candidates = nil")
	}
	if got := cfg.Candidates.Parameters["num_threads"]; got != "2" {
		t.Errorf("Parameters[num_threads] = %q, want %q", got, "2")
	}
	if len(cfg.Candidates.Sweep().Combinations()) != 8 {
		t.Errorf("combinations = %d, want 8", len(cfg.Candidates.Sweep().Combinations()))
	}
	if cfg.ExitPolicy() != process.ExitPropagate {
		t.Errorf("ExitPolicy() = %v, want propagate", cfg.ExitPolicy())
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.IsIO(err) {
		t.Errorf("Load() error = %v, want IO error", err)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	t.Parallel()
	path := writeSuite(t, "executable: [unterminated\n")

	_, err := Load(path)
	if !errors.IsConfig(err) {
		t.Errorf("Load() error = %v, want config error", err)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	t.Parallel()
	path := writeSuite(t, "executable: crux\ncandidates: {masses: [5], databases: [a.fasta], spectra: [b.ms2]}\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults() error = %v", err)
	}
	if cfg.WorkDir != DefaultWorkDir {
		t.Errorf("WorkDir = %q, want %q", cfg.WorkDir, DefaultWorkDir)
	}
	if cfg.Scenarios != DefaultScenarios {
		t.Errorf("Scenarios = %q, want %q", cfg.Scenarios, DefaultScenarios)
	}
	if cfg.ExitPolicy() != process.ExitSynthetic {
		t.Errorf("ExitPolicy() = %v, want synthetic", cfg.ExitPolicy())
	}
	c := cfg.Candidates
	if c.OutputDir != DefaultOutputDir {
		t.Errorf("OutputDir = %q, want %q", c.OutputDir, DefaultOutputDir)
	}
	if len(c.ToleranceTypes) != 1 || c.ToleranceTypes[0] != "ppm" {
		t.Errorf("ToleranceTypes = %v, want [ppm]", c.ToleranceTypes)
	}
	if len(c.MissedCleavages) != 1 || c.MissedCleavages[0] != 0 {
		t.Errorf("MissedCleavages = %v, want [0]", c.MissedCleavages)
	}
	if c.EngineA.Name != "tide" || c.EngineB.Name != "comet" {
		t.Errorf("engines = %q, %q, want tide, comet", c.EngineA.Name, c.EngineB.Name)
	}
}

func TestLoad_EngineOverride(t *testing.T) {
	t.Parallel()
	path := writeSuite(t, `
executable: crux
candidates:
  masses: [5]
  databases: [a.fasta]
  spectra: [b.ms2]
  engine_b:
    name: comet-standalone
    steps:
      - subcommand: comet
        args: ["${spectra}", "${database}"]
    results: comet.txt
    layout: {scan: 0, charge: 1, spectrum_mass: 3, peptide_mass: 4, sequence: 13}
`)

	cfg, warnings, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
	b := cfg.Candidates.EngineB
	if b.Name != "comet-standalone" || b.Results != "comet.txt" {
		t.Errorf("EngineB = %+v", b)
	}
	if b.Layout != candidates.CometLayout {
		t.Errorf("Layout = %+v, want %+v", b.Layout, candidates.CometLayout)
	}
	if cfg.Candidates.EngineA.Name != "tide" {
		t.Errorf("EngineA.Name = %q, want default tide", cfg.Candidates.EngineA.Name)
	}
}

func TestLoadAndValidate_SchemaViolation(t *testing.T) {
	t.Parallel()
	path := writeSuite(t, "workdir: .\n")

	_, _, err := LoadAndValidate(path)
	if err == nil {
		t.Fatal("LoadAndValidate() expected error for missing executable")
	}
	if errors.GetExitCode(err) != errors.ExitConfigError {
		t.Errorf("exit code = %d, want %d", errors.GetExitCode(err), errors.ExitConfigError)
	}
}

func TestLoadAndValidate_SemanticViolation(t *testing.T) {
	t.Parallel()
	path := writeSuite(t, "executable: crux\nscenarios: \"[unclosed\"\n")

	_, _, err := LoadAndValidate(path)
	if !errors.IsConfig(err) {
		t.Errorf("LoadAndValidate() error = %v, want validation error", err)
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()
	cfg := &Config{BaseDir: "/suite", WorkDir: "work", Executable: "../bin/crux"}

	if got := cfg.Dir(); got != "/suite/work" {
		t.Errorf("Dir() = %q, want /suite/work", got)
	}
	if got := cfg.ExecutablePath(); got != "/bin/crux" {
		t.Errorf("ExecutablePath() = %q, want /bin/crux", got)
	}
	if got := cfg.Resolve("/abs/path"); got != "/abs/path" {
		t.Errorf("Resolve(abs) = %q", got)
	}

	cfg.Executable = "crux"
	if got := cfg.ExecutablePath(); got != "crux" {
		t.Errorf("ExecutablePath() = %q, want bare name kept for PATH lookup", got)
	}
}

func TestBaseParams(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	paramPath := filepath.Join(dir, "base.param")
	if err := os.WriteFile(paramPath, []byte("num_threads=4\nmax_length=50\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := &Config{
		BaseDir: dir,
		Candidates: &CandidatesConfig{
			ParamFile:  "base.param",
			Parameters: map[string]string{"max_length": "30"},
		},
	}

	p, err := cfg.BaseParams()
	if err != nil {
		t.Fatalf("BaseParams() error = %v", err)
	}
	if v, _ := p.Get("num_threads"); v != "4" {
		t.Errorf("num_threads = %q, want 4", v)
	}
	if v, _ := p.Get("max_length"); v != "30" {
		t.Errorf("max_length = %q, want override 30", v)
	}
	if len(p.Enzymes()) == 0 {
		t.Error("Enzymes() empty, want default enzyme table")
	}
}

func TestBaseParams_MissingFile(t *testing.T) {
	t.Parallel()
	cfg := &Config{BaseDir: t.TempDir(), Candidates: &CandidatesConfig{ParamFile: "nope.param"}}

	if _, err := cfg.BaseParams(); !errors.IsIO(err) {
		t.Errorf("BaseParams() error = %v, want IO error", err)
	}
}
