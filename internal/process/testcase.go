// Package process runs the program under test and captures its standard output.
package process

import (
	"regexp"
	"slices"
)

// TestCase describes one invocation of the program under test.
//
// TestCase is a value: the With* methods return modified copies, so a case
// handed to Runner.Execute cannot be changed behind the runner's back.
type TestCase struct {
	Name       string           // Test identity; required before execution
	Executable string           // Path to the program under test
	Subcommand string           // First argument, e.g. "tide-index"
	Args       []string         // Accumulated options and positional arguments
	Ignore     []*regexp.Regexp // Line-ignore patterns for comparisons of this case
}

// WithName returns a copy of tc carrying the given test identity.
func (tc TestCase) WithName(name string) TestCase {
	tc.Name = name
	return tc
}

// WithExecutable returns a copy of tc invoking the given program.
func (tc TestCase) WithExecutable(path string) TestCase {
	tc.Executable = path
	return tc
}

// WithSubcommand returns a copy of tc with the given subcommand.
func (tc TestCase) WithSubcommand(cmd string) TestCase {
	tc.Subcommand = cmd
	return tc
}

// WithArgs returns a copy of tc with args appended to the accumulated list.
func (tc TestCase) WithArgs(args ...string) TestCase {
	tc.Args = append(slices.Clone(tc.Args), args...)
	return tc
}

// WithIgnore returns a copy of tc with additional ignore patterns.
func (tc TestCase) WithIgnore(patterns ...*regexp.Regexp) TestCase {
	tc.Ignore = append(slices.Clone(tc.Ignore), patterns...)
	return tc
}

// Reset clears the accumulated arguments and subcommand after a run.
// The test identity survives so intermediate steps can share it.
func (tc TestCase) Reset() TestCase {
	tc.Subcommand = ""
	tc.Args = nil
	return tc
}

// Finish clears everything scoped to one test, keeping only the executable.
func (tc TestCase) Finish() TestCase {
	return TestCase{Executable: tc.Executable}
}

// Argv returns the argument vector passed to the executable.
func (tc TestCase) Argv() []string {
	argv := make([]string, 0, len(tc.Args)+1)
	if tc.Subcommand != "" {
		argv = append(argv, tc.Subcommand)
	}
	return append(argv, tc.Args...)
}

// CapturedRun is the result of one execution.
type CapturedRun struct {
	Stdout   []byte // nil when the process wrote nothing
	ExitCode int
}

// HasOutput reports whether the process wrote anything to standard output.
func (r CapturedRun) HasOutput() bool {
	return r.Stdout != nil
}

// Text returns the captured standard output as a string.
func (r CapturedRun) Text() string {
	return string(r.Stdout)
}
