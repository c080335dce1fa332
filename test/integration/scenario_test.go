package integration

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crux-toolkit/cruxcheck/internal/compare"
	"github.com/crux-toolkit/cruxcheck/internal/scenario"
)

func runSuite(t *testing.T, dir string) (passed, failed int, results map[string]string) {
	t.Helper()
	cfg := loadSuite(t, dir)
	all, err := scenario.LoadAll(cfg.Dir(), cfg.Scenarios)
	if err != nil {
		t.Fatalf("load scenarios: %v", err)
	}
	suite := scenario.Suite{
		Executable: cfg.ExecutablePath(),
		WorkDir:    cfg.Dir(),
		Options:    scenario.Options{Policy: cfg.ExitPolicy(), Env: cfg.Env},
	}
	summary := suite.RunAll(context.Background(), all)
	results = make(map[string]string, len(summary.Scenarios))
	for _, r := range summary.Scenarios {
		results[r.Name] = r.FailureReason()
	}
	return summary.Passed, summary.Failed, results
}

func TestFixtureSuitePasses(t *testing.T) {
	dir := copyFixture(t, "demo")

	passed, failed, results := runSuite(t, dir)
	if failed != 0 || passed != 3 {
		t.Fatalf("passed=%d failed=%d, want 3/0: %v", passed, failed, results)
	}
	for _, name := range []string{"version", "tables", "unknown"} {
		if _, ok := results[name]; !ok {
			t.Errorf("scenario %q was not run", name)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "table.txt")); err != nil {
		t.Errorf("emitted table missing: %v", err)
	}
}

func TestFixtureSuiteMismatchWritesObserved(t *testing.T) {
	dir := copyFixture(t, "demo")
	expected := filepath.Join(dir, "expected", "version.txt")
	writeFile(t, expected, "Crux version 3.2\n")

	passed, failed, results := runSuite(t, dir)
	if passed != 2 || failed != 1 {
		t.Fatalf("passed=%d failed=%d, want 2/1: %v", passed, failed, results)
	}
	if !strings.Contains(results["version"], "step 3 (stdout)") {
		t.Errorf("failure reason = %q", results["version"])
	}

	observed, err := os.ReadFile(compare.ObservedPath(expected))
	if err != nil {
		t.Fatalf("observed artifact: %v", err)
	}
	if string(observed) != "Crux version 4.0\n" {
		t.Errorf("observed = %q", observed)
	}

	// Fixing the fixture removes the stale artifact on the next run.
	writeFile(t, expected, "Crux version 4.0\n")
	if _, failed, results := runSuite(t, dir); failed != 0 {
		t.Fatalf("rerun failed: %v", results)
	}
	if _, err := os.Stat(compare.ObservedPath(expected)); !os.IsNotExist(err) {
		t.Errorf("stale observed artifact still present: %v", err)
	}
}

func TestFixtureSuiteToleranceTooTight(t *testing.T) {
	dir := copyFixture(t, "demo")
	path := filepath.Join(dir, "scenarios", "tables.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, path, strings.Replace(string(data), "tolerance: 0.0001", "tolerance: 0.000001", 1))

	_, failed, results := runSuite(t, dir)
	if failed != 1 {
		t.Fatalf("failed=%d, want 1: %v", failed, results)
	}
	if !strings.Contains(results["tables"], "row 2, field 3") {
		t.Errorf("failure reason = %q", results["tables"])
	}
}
