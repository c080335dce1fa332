// Package errors provides structured error types and exit codes for cruxcheck.
//
// Content mismatches are never errors: comparisons report them as boolean
// verdicts. The types here describe harness problems that abort a scenario.
package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/crux-toolkit/cruxcheck/pkg/cruxcheck"
)

// Exit codes returned by the cruxcheck binary.
const (
	ExitSuccess     = cruxcheck.ExitSuccess     // All comparisons passed
	ExitMismatch    = cruxcheck.ExitMismatch    // A comparison failed or a runtime error occurred
	ExitConfigError = cruxcheck.ExitConfigError // Invalid suite file, missing executable, missing test name
	ExitIOError     = cruxcheck.ExitIOError     // Fixture or artifact could not be read or written
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindIO
	KindNotFound
	KindValidation
)

// CheckError is the base error type for cruxcheck.
type CheckError struct {
	Kind    ErrorKind
	Message string
	Path    string // File or executable the error refers to, if any
	Cause   error  // Underlying error
}

func (e *CheckError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *CheckError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *CheckError) ExitCode() int {
	switch e.Kind {
	case KindConfig, KindValidation:
		return ExitConfigError
	case KindIO, KindNotFound:
		return ExitIOError
	default:
		return ExitMismatch
	}
}

// New creates a new runtime error.
func New(message string) *CheckError {
	return &CheckError{
		Kind:    KindRuntime,
		Message: message,
	}
}

// Newf creates a new runtime error with formatting.
func Newf(format string, args ...interface{}) *CheckError {
	return New(fmt.Sprintf(format, args...))
}

// Config creates a new configuration error.
func Config(message string) *CheckError {
	return &CheckError{
		Kind:    KindConfig,
		Message: message,
	}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...interface{}) *CheckError {
	return Config(fmt.Sprintf(format, args...))
}

// ConfigPath creates a configuration error about a specific path,
// such as an executable that is missing or not executable.
func ConfigPath(path, message string) *CheckError {
	return &CheckError{
		Kind:    KindConfig,
		Message: message,
		Path:    path,
	}
}

// IO creates an error for a fixture or artifact that could not be accessed.
func IO(path string, cause error) *CheckError {
	return &CheckError{
		Kind:    KindIO,
		Message: "cannot access",
		Path:    path,
		Cause:   cause,
	}
}

// Validation creates a suite file validation error.
func Validation(message string) *CheckError {
	return &CheckError{
		Kind:    KindValidation,
		Message: message,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *CheckError {
	return &CheckError{
		Kind:    KindRuntime,
		Message: message,
		Cause:   err,
	}
}

// NotFound creates a not found error.
func NotFound(what, name string) *CheckError {
	return &CheckError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %s", what, name),
	}
}

// IsKind reports whether err is or wraps a CheckError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *CheckError
	if stderrors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}

// IsConfig reports whether err is a configuration error.
func IsConfig(err error) bool {
	return IsKind(err, KindConfig) || IsKind(err, KindValidation)
}

// IsIO reports whether err is an IO error.
func IsIO(err error) bool {
	return IsKind(err, KindIO)
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ce *CheckError
	if stderrors.As(err, &ce) {
		return ce.ExitCode()
	}
	return ExitMismatch
}
