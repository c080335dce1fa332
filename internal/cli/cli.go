// Package cli provides the cruxcheck command-line interface.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/crux-toolkit/cruxcheck/internal/errors"
	"github.com/crux-toolkit/cruxcheck/internal/logging"
	"github.com/crux-toolkit/cruxcheck/internal/output"
)

// Version is set at build time.
var Version = "dev"

// Options defines the global options and commands.
type Options struct {
	LogLevel string `long:"log-level" description:"diagnostic log level (debug, info, warn, error); defaults to $CRUXCHECK_LOG_LEVEL or warn"`
	Quiet    bool   `short:"q" long:"quiet" description:"suppress informational output"`

	Run      runCommand      `command:"run" description:"run every scenario of a suite"`
	Compare  compareCommand  `command:"compare" description:"compare an expected fixture with actual output"`
	Crossval crossvalCommand `command:"crossval" description:"cross-validate the candidate sets of two search engines"`
	Params   paramsCommand   `command:"params" description:"print a search parameter file"`
	Version  versionCommand  `command:"version" description:"print the cruxcheck version"`
}

// app is the state shared by all commands of one invocation.
type app struct {
	ctx    context.Context
	out    *output.Writer
	stdout io.Writer
	stdin  io.Reader
	log    *slog.Logger
}

// exitError carries the exit code of a failure that has already been
// reported to the user.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

var errMismatch = &exitError{code: errors.ExitMismatch}

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	a := &app{
		ctx:    context.Background(),
		out:    output.New(),
		stdout: os.Stdout,
		stdin:  os.Stdin,
	}
	return a.run(args)
}

func (a *app) run(args []string) int {
	opts := &Options{}
	opts.Run.app = a
	opts.Compare.app = a
	opts.Crossval.app = a
	opts.Params.app = a
	opts.Version.app = a

	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "cruxcheck"
	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		level := opts.LogLevel
		if level == "" {
			level = logging.LevelFromEnv("warn")
		}
		a.log = logging.New(level)
		a.out.SetQuiet(opts.Quiet)
		if cmd == nil {
			return nil
		}
		return cmd.Execute(args)
	}

	_, err := parser.ParseArgs(args)
	if err == nil {
		return errors.ExitSuccess
	}
	if flags.WroteHelp(err) {
		a.out.Println("%s", err)
		return errors.ExitSuccess
	}

	var ee *exitError
	if stderrors.As(err, &ee) {
		return ee.code
	}
	var fe *flags.Error
	if stderrors.As(err, &fe) {
		a.out.ErrorPrefix("%s", fe.Message)
		return errors.ExitConfigError
	}

	a.out.ErrorPrefix("%v", err)
	return errors.GetExitCode(err)
}

// warn prints non-fatal suite problems.
func (a *app) warn(warnings []string) {
	for _, w := range warnings {
		a.out.Warning("%s", w)
	}
}
