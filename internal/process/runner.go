package process

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/crux-toolkit/cruxcheck/internal/errors"
	"github.com/crux-toolkit/cruxcheck/internal/logging"
)

// ExitPolicy controls which exit code a Runner reports.
type ExitPolicy int

const (
	// ExitSynthetic always reports 0. Existing suites assert on it, so it
	// stays the default until every suite is checked against real statuses.
	ExitSynthetic ExitPolicy = iota
	// ExitPropagate reports the real exit status of the process.
	ExitPropagate
)

// ParseExitPolicy maps a config value to an ExitPolicy.
func ParseExitPolicy(s string) (ExitPolicy, bool) {
	switch s {
	case "", "synthetic":
		return ExitSynthetic, true
	case "propagate":
		return ExitPropagate, true
	default:
		return ExitSynthetic, false
	}
}

func (p ExitPolicy) String() string {
	if p == ExitPropagate {
		return "propagate"
	}
	return "synthetic"
}

// Runner executes test cases one at a time.
type Runner struct {
	dir    string
	policy ExitPolicy
	env    []string
	log    *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithDir sets the working directory of spawned processes. Relative
// executable paths are resolved against it.
func WithDir(dir string) Option {
	return func(r *Runner) { r.dir = dir }
}

// WithExitPolicy selects how exit codes are reported.
func WithExitPolicy(p ExitPolicy) Option {
	return func(r *Runner) { r.policy = p }
}

// WithEnv adds KEY=VALUE pairs to the inherited environment.
func WithEnv(env ...string) Option {
	return func(r *Runner) { r.env = append(r.env, env...) }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{log: logging.Discard()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dir returns the working directory of spawned processes.
func (r *Runner) Dir() string { return r.dir }

// Policy returns the exit policy.
func (r *Runner) Policy() ExitPolicy { return r.policy }

// Execute runs tc and blocks until the process exits and its output is drained.
//
// Standard error is discarded. A missing test name, or an executable that
// does not exist or is not executable, is a configuration error. A non-zero
// exit is not an error: it is reported in CapturedRun.ExitCode according to
// the runner's ExitPolicy.
func (r *Runner) Execute(ctx context.Context, tc TestCase) (CapturedRun, error) {
	if tc.Name == "" {
		return CapturedRun{}, errors.Config("no test name set before execution")
	}

	exe, err := r.resolve(tc.Executable)
	if err != nil {
		return CapturedRun{}, err
	}

	argv := tc.Argv()
	cmd := exec.CommandContext(ctx, exe, argv...)
	cmd.Dir = r.dir
	cmd.Env = append(os.Environ(), r.env...)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = io.Discard

	r.log.Debug("executing", "test", tc.Name, "exe", exe, "args", strings.Join(argv, " "), "dir", r.dir)

	code := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		switch {
		case ctx.Err() != nil:
			return CapturedRun{}, errors.Wrap(ctx.Err(), "execution of "+tc.Name+" interrupted")
		case stderrors.As(err, &exitErr):
			code = exitErr.ExitCode()
		default:
			return CapturedRun{}, &errors.CheckError{
				Kind:    errors.KindConfig,
				Message: "cannot start",
				Path:    exe,
				Cause:   err,
			}
		}
	}

	run := CapturedRun{}
	if stdout.Len() > 0 {
		run.Stdout = stdout.Bytes()
	}
	if r.policy == ExitPropagate {
		run.ExitCode = code
	}

	r.log.Debug("finished", "test", tc.Name, "stdout_bytes", stdout.Len(), "status", code, "reported", run.ExitCode)
	return run, nil
}

// resolve locates the executable and confirms it can be run.
func (r *Runner) resolve(path string) (string, error) {
	if path == "" {
		return "", errors.Config("no executable set")
	}
	if !strings.ContainsRune(path, '/') && !strings.ContainsRune(path, filepath.Separator) {
		found, err := exec.LookPath(path)
		if err != nil {
			return "", errors.ConfigPath(path, "executable not found in PATH")
		}
		path = found
	} else if !filepath.IsAbs(path) && r.dir != "" {
		path = filepath.Join(r.dir, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.ConfigPath(path, "cannot resolve executable path")
	}
	if err := CheckExecutable(abs); err != nil {
		return "", err
	}
	return abs, nil
}

// CheckExecutable returns a configuration error naming path unless it is a
// regular file with an executable permission bit.
func CheckExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.ConfigPath(path, "executable not found")
	}
	if info.IsDir() {
		return errors.ConfigPath(path, "executable is a directory")
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0 {
		return errors.ConfigPath(path, "file is not executable")
	}
	return nil
}
