// Package scenario drives the program under test through scripted steps
// and asserts on what it produced.
//
// A Session carries one test case through its lifecycle: arguments and
// ignore patterns accumulate, Run executes and clears the arguments, and
// Finish clears everything except the executable. Assertions return a
// model.Verdict for content mismatches and an error only for harness
// problems.
package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/crux-toolkit/cruxcheck/internal/compare"
	"github.com/crux-toolkit/cruxcheck/internal/errors"
	"github.com/crux-toolkit/cruxcheck/internal/logging"
	"github.com/crux-toolkit/cruxcheck/internal/model"
	"github.com/crux-toolkit/cruxcheck/internal/process"
)

// Options configures the runs of a Session.
type Options struct {
	Policy process.ExitPolicy
	Env    []string
	Logger *slog.Logger
}

// Session is the state of one scenario. It is not safe for concurrent use.
type Session struct {
	opts     Options
	log      *slog.Logger
	dir      string
	tc       process.TestCase
	last     *process.CapturedRun
	observed []string
}

// NewSession creates a Session running in the current directory.
func NewSession(opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	return &Session{opts: opts, log: log, dir: "."}
}

// SetWorkDir sets the directory runs execute in and relative paths resolve
// against.
func (s *Session) SetWorkDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return errors.IO(dir, err)
	}
	if !info.IsDir() {
		return errors.ConfigPath(dir, "working directory is not a directory")
	}
	s.dir = dir
	return nil
}

// WorkDir returns the current working directory of the session.
func (s *Session) WorkDir() string { return s.dir }

// SetExecutable sets the program under test. It is checked when a run starts.
func (s *Session) SetExecutable(path string) {
	s.tc = s.tc.WithExecutable(path)
}

// NameTest sets the test identity required by Run.
func (s *Session) NameTest(name string) {
	s.tc = s.tc.WithName(name)
}

// AddArgs appends arguments for the next run.
func (s *Session) AddArgs(args ...string) {
	s.tc = s.tc.WithArgs(args...)
}

// AddIgnore compiles and adds line-ignore patterns for exact comparisons.
func (s *Session) AddIgnore(patterns ...string) error {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return errors.Configf("ignore pattern %q: %v", p, err)
		}
		compiled = append(compiled, re)
	}
	s.tc = s.tc.WithIgnore(compiled...)
	return nil
}

// TestCase returns the current test case.
func (s *Session) TestCase() process.TestCase { return s.tc }

// Run executes cmd with the accumulated arguments. The arguments are cleared
// afterwards. An intermediate run keeps the test identity so further runs
// can follow; a final run clears it. Ignore patterns survive until Finish.
func (s *Session) Run(ctx context.Context, cmd string, intermediate bool) error {
	runner := process.New(
		process.WithDir(s.dir),
		process.WithExitPolicy(s.opts.Policy),
		process.WithEnv(s.opts.Env...),
		process.WithLogger(s.log),
	)
	run, err := runner.Execute(ctx, s.tc.WithSubcommand(cmd))
	if err != nil {
		return err
	}
	s.last = &run

	s.tc = s.tc.Reset()
	if !intermediate {
		s.tc = s.tc.WithName("")
	}
	return nil
}

// Finish ends the test: identity, arguments, ignore patterns and the last
// run are cleared. The executable is kept for the next test.
func (s *Session) Finish() {
	s.tc = s.tc.Finish()
	s.last = nil
}

// Observed returns the observed artifacts written by failed assertions.
func (s *Session) Observed() []string { return s.observed }

func (s *Session) lastRun() (*process.CapturedRun, error) {
	if s.last == nil {
		return nil, errors.Config("no command has been run")
	}
	return s.last, nil
}

// AssertExitCode checks the exit code of the last run.
func (s *Session) AssertExitCode(want int) (model.Verdict, error) {
	run, err := s.lastRun()
	if err != nil {
		return model.Verdict{}, err
	}
	if run.ExitCode != want {
		return model.Fail("exit code %d, want %d", run.ExitCode, want), nil
	}
	return model.Pass(), nil
}

// AssertFiles compares the expected fixture with the actual file or
// directory. Relative paths resolve against the working directory.
func (s *Session) AssertFiles(expected, actual string, mode compare.Mode) (model.Verdict, error) {
	if mode.Kind() == compare.KindStdout {
		return model.Verdict{}, errors.Config("use AssertStdout to compare standard output")
	}
	exp := s.resolve(expected)
	out, err := s.engine().Compare(exp, compare.File(s.resolve(actual)), mode)
	if err != nil {
		return model.Verdict{}, err
	}
	return s.verdict(expected, actual, mode, out), nil
}

// AssertStdout compares the standard output of the last run with the
// contents of the expected file.
func (s *Session) AssertStdout(expected string) (model.Verdict, error) {
	run, err := s.lastRun()
	if err != nil {
		return model.Verdict{}, err
	}
	out, err := s.engine().Compare(s.resolve(expected), compare.Stdout(run.Stdout), compare.StdoutMatch)
	if err != nil {
		return model.Verdict{}, err
	}
	return s.verdict(expected, "standard output", compare.StdoutMatch, out), nil
}

func (s *Session) engine() *compare.Engine {
	return compare.NewEngine(compare.WithIgnore(s.tc.Ignore...), compare.WithLogger(s.log))
}

func (s *Session) verdict(expected, actual string, mode compare.Mode, out compare.Outcome) model.Verdict {
	if out.Equal {
		return model.Pass()
	}
	msg := fmt.Sprintf("%s differs from %s (%s)", actual, expected, mode)
	if out.Detail != "" {
		msg += ": " + out.Detail
	}
	if out.Observed != "" {
		s.observed = append(s.observed, out.Observed)
		msg += "; observed output saved to " + out.Observed
	}
	return model.Verdict{Message: msg}
}

func (s *Session) resolve(p string) string {
	return resolvePath(s.dir, p)
}

func resolvePath(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
