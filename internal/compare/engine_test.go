package compare

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crux-toolkit/cruxcheck/internal/errors"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCompare_ExactIsReflexive(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	file := writeFile(t, filepath.Join(dir, "tree", "index", "peptides.txt"), "a\tb\n1\t2\n")
	writeFile(t, filepath.Join(dir, "tree", "log.txt"), "INFO: done\n")

	e := NewEngine()
	for _, path := range []string{file, filepath.Join(dir, "tree")} {
		out, err := e.Compare(path, File(path), Exact)
		require.NoError(t, err)
		assert.True(t, out.Equal, "compare(%s, %s) should be equal", path, path)
		assert.Empty(t, out.Observed)
	}
	assert.NoFileExists(t, ObservedPath(file))
}

func TestCompare_ExactDetectsDifference(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	expected := writeFile(t, filepath.Join(dir, "expected.txt"), "alpha\nbeta\n")
	actual := writeFile(t, filepath.Join(dir, "actual.txt"), "alpha\ngamma\n")

	out, err := NewEngine().Compare(expected, File(actual), Exact)
	require.NoError(t, err)
	assert.False(t, out.Equal)
	assert.Contains(t, out.Detail, "line 2")
}

func TestCompare_DirectoryIsAsymmetric(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "expected", "a.txt"), "same\n")
	writeFile(t, filepath.Join(dir, "actual", "a.txt"), "same\n")
	writeFile(t, filepath.Join(dir, "actual", "extra.txt"), "only in actual\n")

	out, err := NewEngine().Compare(filepath.Join(dir, "expected"), File(filepath.Join(dir, "actual")), Exact)
	require.NoError(t, err)
	assert.True(t, out.Equal, "entries only in actual are not checked")
}

func TestCompare_DirectoryWritesPerFileArtifacts(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	expDir, actDir := filepath.Join(dir, "expected"), filepath.Join(dir, "actual")
	writeFile(t, filepath.Join(expDir, "a.txt"), "1\n")
	writeFile(t, filepath.Join(actDir, "a.txt"), "2\n")
	writeFile(t, filepath.Join(expDir, "sub", "b.txt"), "x\n")
	writeFile(t, filepath.Join(actDir, "sub", "b.txt"), "y\n")
	writeFile(t, filepath.Join(expDir, "c.txt"), "same\n")
	writeFile(t, filepath.Join(actDir, "c.txt"), "same\n")

	out, err := NewEngine().Compare(expDir, File(actDir), Exact)
	require.NoError(t, err)
	assert.False(t, out.Equal)
	assert.FileExists(t, ObservedPath(filepath.Join(expDir, "a.txt")))
	assert.FileExists(t, ObservedPath(filepath.Join(expDir, "sub", "b.txt")))
	assert.NoFileExists(t, ObservedPath(filepath.Join(expDir, "c.txt")))

	// A rerun must not treat the artifacts as expected entries.
	writeFile(t, filepath.Join(actDir, "a.txt"), "1\n")
	writeFile(t, filepath.Join(actDir, "sub", "b.txt"), "x\n")
	out, err = NewEngine().Compare(expDir, File(actDir), Exact)
	require.NoError(t, err)
	assert.True(t, out.Equal)
	assert.NoFileExists(t, ObservedPath(filepath.Join(expDir, "a.txt")))
}

func TestCompare_MissingSideIsIOError(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	expected := writeFile(t, filepath.Join(dir, "expected.txt"), "x\n")

	_, err := NewEngine().Compare(expected, File(filepath.Join(dir, "missing.txt")), Exact)
	require.Error(t, err)
	assert.True(t, errors.IsIO(err), "got %v", err)

	_, err = NewEngine().Compare(filepath.Join(dir, "nope.txt"), File(expected), Unordered)
	assert.True(t, errors.IsIO(err), "got %v", err)
}

func TestCompare_MissingEntryInActualDirIsIOError(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "expected", "a.txt"), "x\n")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "actual"), 0o755))

	_, err := NewEngine().Compare(filepath.Join(dir, "expected"), File(filepath.Join(dir, "actual")), Exact)
	assert.True(t, errors.IsIO(err), "got %v", err)
}

func TestCompare_DirectoryVersusFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "expected", "a.txt"), "x\n")
	actual := writeFile(t, filepath.Join(dir, "actual.txt"), "x\n")

	out, err := NewEngine().Compare(filepath.Join(dir, "expected"), File(actual), Exact)
	require.NoError(t, err)
	assert.False(t, out.Equal)
	assert.FileExists(t, ObservedPath(filepath.Join(dir, "expected")))
}

func TestCompare_FileVersusDirectoryRemovesStaleArtifact(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	expected := writeFile(t, filepath.Join(dir, "expected.txt"), "x\n")
	stale := writeFile(t, ObservedPath(expected), "from an earlier run\n")
	writeFile(t, filepath.Join(dir, "actual", "a.txt"), "x\n")

	out, err := NewEngine().Compare(expected, File(filepath.Join(dir, "actual")), Exact)
	require.NoError(t, err)
	assert.False(t, out.Equal)
	assert.Empty(t, out.Observed)
	assert.NoFileExists(t, stale)
}

func TestCompare_IgnorePatternMustMatchBothSides(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	timestamp := regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}`)
	expected := writeFile(t, filepath.Join(dir, "expected.log"), "2024-01-02 10:00:00 start\nsearching\n")

	sameFormat := writeFile(t, filepath.Join(dir, "same.log"), "2025-06-07 11:12:13 start\nsearching\n")
	otherFormat := writeFile(t, filepath.Join(dir, "other.log"), "Jun 7 11:12:13 start\nsearching\n")

	e := NewEngine(WithIgnore(timestamp))

	out, err := e.Compare(expected, File(sameFormat), Exact)
	require.NoError(t, err)
	assert.True(t, out.Equal, "timestamps in the same format should be ignored")

	out, err = e.Compare(expected, File(otherFormat), Exact)
	require.NoError(t, err)
	assert.False(t, out.Equal, "a pattern matching only the expected line must not excuse the difference")
}

func TestCompare_IgnoreRequiresEqualLineCount(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	expected := writeFile(t, filepath.Join(dir, "expected.log"), "INFO a\n")
	actual := writeFile(t, filepath.Join(dir, "actual.log"), "INFO a\nINFO b\n")

	out, err := NewEngine(WithIgnore(regexp.MustCompile(`^INFO`))).Compare(expected, File(actual), Exact)
	require.NoError(t, err)
	assert.False(t, out.Equal)
}

func TestCompare_IgnorePatternsKeepExactBytes(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	expected := writeFile(t, filepath.Join(dir, "expected.txt"), "Crux version 3.2\nresult\n")
	actual := writeFile(t, filepath.Join(dir, "actual.txt"), "Crux version 4.0\nresult\r\n")

	out, err := NewEngine(WithIgnore(regexp.MustCompile(`^Crux version`))).Compare(expected, File(actual), Exact)
	require.NoError(t, err)
	assert.False(t, out.Equal)
	assert.Contains(t, out.Detail, "line 2")
}

func TestCompare_StdoutMatch(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	expected := writeFile(t, filepath.Join(dir, "stdout.txt"), "crux version 4.2\n")

	e := NewEngine()
	out, err := e.Compare(expected, Stdout([]byte("crux version 4.2\n")), StdoutMatch)
	require.NoError(t, err)
	assert.True(t, out.Equal)

	out, err = e.Compare(expected, Stdout([]byte("crux version 4.3\n")), StdoutMatch)
	require.NoError(t, err)
	assert.False(t, out.Equal)
	data, err := os.ReadFile(out.Observed)
	require.NoError(t, err)
	assert.Equal(t, "crux version 4.3\n", string(data))
}

func TestCompare_NilStdoutMatchesEmptyFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	expected := writeFile(t, filepath.Join(dir, "empty.txt"), "")

	out, err := NewEngine().Compare(expected, Stdout(nil), StdoutMatch)
	require.NoError(t, err)
	assert.True(t, out.Equal)
}

func TestCompare_StdoutModeRequiresStdoutSource(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	expected := writeFile(t, filepath.Join(dir, "a.txt"), "x\n")

	_, err := NewEngine().Compare(expected, File(expected), StdoutMatch)
	assert.True(t, errors.IsConfig(err), "got %v", err)
}

func TestCompare_ObservedArtifactLifecycle(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	expected := writeFile(t, filepath.Join(dir, "expected.txt"), "1\n2\n")
	actual := writeFile(t, filepath.Join(dir, "actual.txt"), "1\n3\n")

	e := NewEngine()
	out, err := e.Compare(expected, File(actual), Exact)
	require.NoError(t, err)
	require.False(t, out.Equal)
	assert.Equal(t, ObservedPath(expected), out.Observed)

	data, err := os.ReadFile(ObservedPath(expected))
	require.NoError(t, err)
	assert.Equal(t, "1\n3\n", string(data))

	matches, err := filepath.Glob(filepath.Join(dir, "*"+ObservedSuffix))
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	writeFile(t, actual, "1\n2\n")
	out, err = e.Compare(expected, File(actual), Exact)
	require.NoError(t, err)
	assert.True(t, out.Equal)
	assert.NoFileExists(t, ObservedPath(expected))
}

func TestCompare_UnorderedEndToEnd(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	expected := writeFile(t, filepath.Join(dir, "a.txt"), "1\n2\n3\n")
	actual := writeFile(t, filepath.Join(dir, "a.actual.txt"), "3\n1\n2\n")

	out, err := NewEngine().Compare(expected, File(actual), Unordered)
	require.NoError(t, err)
	assert.True(t, out.Equal)
	assert.NoFileExists(t, ObservedPath(expected))
}

func TestCompare_TolerantEndToEnd(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	expected := writeFile(t, filepath.Join(dir, "psms.txt"), "pep1\t2\t100.00\n")
	actual := writeFile(t, filepath.Join(dir, "psms.actual.txt"), "pep1\t2\t100.05\n")

	e := NewEngine()
	out, err := e.Compare(expected, File(actual), Tolerant(0.001))
	require.NoError(t, err)
	assert.True(t, out.Equal, "0.05/100 = 5e-4 is within 0.001")

	out, err = e.Compare(expected, File(actual), Tolerant(0.0001))
	require.NoError(t, err)
	assert.False(t, out.Equal)
	assert.FileExists(t, out.Observed)
}

func TestParseMode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		tol     float64
		want    Mode
		wantErr bool
	}{
		{"exact", 0, Exact, false},
		{"", 0, Exact, false},
		{"Unordered", 0, Unordered, false},
		{"stdout", 0, StdoutMatch, false},
		{"tolerant", 0.01, Tolerant(0.01), false},
		{"tolerant", -1, Mode{}, true},
		{"fuzzy", 0, Mode{}, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.name, tt.tol)
		if tt.wantErr {
			assert.Error(t, err, "ParseMode(%q)", tt.name)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
	assert.Equal(t, "tolerant(0.01)", Tolerant(0.01).String())
}
