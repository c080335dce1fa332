// Package cruxcheck provides public constants for tools that drive the
// cruxcheck binary, such as CI wrappers deciding whether to retry a run.
package cruxcheck

// Exit codes returned by the cruxcheck CLI.
const (
	// ExitSuccess indicates every comparison passed.
	ExitSuccess = 0

	// ExitMismatch indicates a comparison or cross-validation failed, or
	// the executable could not be run.
	ExitMismatch = 1

	// ExitConfigError indicates an invalid suite or scenario file, a bad
	// command line, or a missing executable.
	ExitConfigError = 2

	// ExitIOError indicates a fixture or artifact could not be read or written.
	ExitIOError = 3
)
