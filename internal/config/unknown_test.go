package config

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func unknownWarnings(t *testing.T, src string) []string {
	t.Helper()
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatal(err)
	}
	return detectUnknownFields(&doc)
}

func containsWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestDetectUnknownFields_Root(t *testing.T) {
	t.Parallel()
	warnings := unknownWarnings(t, "executable: crux\nunknown_field: value\n")

	if !containsWarning(warnings, `"unknown_field" at root level`) {
		t.Errorf("expected warning about unknown_field, got %v", warnings)
	}
}

func TestDetectUnknownFields_Nested(t *testing.T) {
	t.Parallel()
	warnings := unknownWarnings(t, `
executable: crux
candidates:
  masses: [5]
  tolerance: 3
  engine_a:
    name: tide
    colour: blue
    steps:
      - subcommand: tide-index
        flags: [x]
    layout: {scan: 1, column: 2}
`)

	for _, want := range []string{
		`"tolerance" in candidates`,
		`"colour" in candidates.engine_a`,
		`"flags" in candidates.engine_a.steps[0]`,
		`"column" in candidates.engine_a.layout`,
	} {
		if !containsWarning(warnings, want) {
			t.Errorf("missing warning %s, got %v", want, warnings)
		}
	}
}

func TestDetectUnknownFields_ParametersAreFree(t *testing.T) {
	t.Parallel()
	warnings := unknownWarnings(t, "executable: crux\ncandidates:\n  parameters: {anything: 1, goes: here}\n")

	if len(warnings) != 0 {
		t.Errorf("parameters keys are free-form, got %v", warnings)
	}
}

func TestDetectUnknownFields_EmptyDocument(t *testing.T) {
	t.Parallel()
	if warnings := unknownWarnings(t, ""); len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
}
