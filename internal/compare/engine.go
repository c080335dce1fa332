package compare

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/crux-toolkit/cruxcheck/internal/errors"
	"github.com/crux-toolkit/cruxcheck/internal/logging"
)

// Engine compares expected fixtures against actual output.
type Engine struct {
	ignore []*regexp.Regexp
	log    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithIgnore adds line-ignore patterns. A differing line pair is excused
// when one pattern matches both lines. Patterns only affect exact
// comparisons of files.
func WithIgnore(patterns ...*regexp.Regexp) Option {
	return func(e *Engine) { e.ignore = append(e.ignore, patterns...) }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine creates an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{log: logging.Discard()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compare compares the fixture at expected with actual under mode.
//
// Directories are compared recursively over the entries of the expected
// directory; entries present only on the actual side are not checked.
// A missing or unreadable side is reported as an IO error, never as a
// false verdict.
func (e *Engine) Compare(expected string, actual Source, mode Mode) (Outcome, error) {
	if mode.kind == KindStdout && !actual.isStdout {
		return Outcome{}, errors.Configf("mode %s requires captured standard output, got %s", mode, actual)
	}

	var out Outcome
	var err error
	if actual.isStdout {
		out, err = e.compareStdout(expected, actual.stdout, mode)
	} else {
		out, err = e.comparePaths(expected, actual.path, mode)
	}
	if err != nil {
		return Outcome{}, err
	}
	e.log.Debug("compared", "expected", expected, "actual", actual.String(), "mode", mode.String(), "equal", out.Equal)
	return out, nil
}

func (e *Engine) compareStdout(expected string, stdout []byte, mode Mode) (Outcome, error) {
	want, err := os.ReadFile(expected)
	if err != nil {
		return Outcome{}, errors.IO(expected, err)
	}
	out, err := e.compareContent(want, stdout, mode)
	if err != nil {
		return Outcome{}, err
	}
	return e.recordObserved(expected, stdout, out)
}

func (e *Engine) comparePaths(expected, actual string, mode Mode) (Outcome, error) {
	expInfo, err := os.Stat(expected)
	if err != nil {
		return Outcome{}, errors.IO(expected, err)
	}
	actInfo, err := os.Stat(actual)
	if err != nil {
		return Outcome{}, errors.IO(actual, err)
	}

	switch {
	case expInfo.IsDir() && actInfo.IsDir():
		return e.compareDirs(expected, actual, mode)
	case expInfo.IsDir() != actInfo.IsDir():
		out := Outcome{Detail: fmt.Sprintf("%s and %s are not both directories", expected, actual)}
		if actInfo.IsDir() {
			if err := os.Remove(ObservedPath(expected)); err != nil && !os.IsNotExist(err) {
				return Outcome{}, errors.IO(ObservedPath(expected), err)
			}
			return out, nil
		}
		data, err := os.ReadFile(actual)
		if err != nil {
			return Outcome{}, errors.IO(actual, err)
		}
		return e.recordObserved(expected, data, out)
	}

	want, err := os.ReadFile(expected)
	if err != nil {
		return Outcome{}, errors.IO(expected, err)
	}
	got, err := os.ReadFile(actual)
	if err != nil {
		return Outcome{}, errors.IO(actual, err)
	}
	out, err := e.compareContent(want, got, mode)
	if err != nil {
		return Outcome{}, err
	}
	return e.recordObserved(expected, got, out)
}

// compareDirs visits every entry of expected so each differing file gets
// its own observed artifact.
func (e *Engine) compareDirs(expected, actual string, mode Mode) (Outcome, error) {
	entries, err := os.ReadDir(expected)
	if err != nil {
		return Outcome{}, errors.IO(expected, err)
	}

	var differing []string
	firstDetail := ""
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ObservedSuffix) {
			continue
		}
		sub, err := e.comparePaths(filepath.Join(expected, name), filepath.Join(actual, name), mode)
		if err != nil {
			return Outcome{}, err
		}
		if !sub.Equal {
			differing = append(differing, name)
			if firstDetail == "" {
				firstDetail = sub.Detail
			}
		}
	}

	if len(differing) == 0 {
		return Outcome{Equal: true}, nil
	}
	return Outcome{
		Detail: fmt.Sprintf("%s: %d entries differ (%s): %s", expected, len(differing), strings.Join(differing, ", "), firstDetail),
	}, nil
}

// compareContent applies mode to two in-memory contents.
func (e *Engine) compareContent(want, got []byte, mode Mode) (Outcome, error) {
	var equal bool
	var detail string
	var err error

	switch mode.kind {
	case KindExact, KindStdout:
		if len(e.ignore) == 0 || mode.kind == KindStdout {
			equal = bytes.Equal(want, got)
			if !equal {
				detail = firstDifference(want, got)
			}
		} else {
			equal, detail = linesEqualIgnoring(want, got, e.ignore)
		}
	case KindUnordered:
		equal, detail, err = UnorderedEqual(bytes.NewReader(want), bytes.NewReader(got))
	case KindTolerant:
		equal, detail, err = CompareTables(bytes.NewReader(want), bytes.NewReader(got), mode.tolerance)
	default:
		return Outcome{}, errors.Configf("unsupported comparison mode %s", mode)
	}
	if err != nil {
		return Outcome{}, errors.Wrap(err, "read content")
	}
	return Outcome{Equal: equal, Detail: detail}, nil
}

// firstDifference describes the first line where want and got diverge.
func firstDifference(want, got []byte) string {
	wl := strings.Split(string(want), "\n")
	gl := strings.Split(string(got), "\n")
	for i := 0; i < len(wl) && i < len(gl); i++ {
		if wl[i] != gl[i] {
			return fmt.Sprintf("line %d: expected %q, got %q", i+1, wl[i], gl[i])
		}
	}
	return fmt.Sprintf("expected %d lines, got %d", len(wl), len(gl))
}
