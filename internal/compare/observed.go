package compare

import (
	"os"

	"github.com/crux-toolkit/cruxcheck/internal/errors"
)

// ObservedSuffix is appended to an expected path to name its observed artifact.
const ObservedSuffix = ".observed"

// ObservedPath returns the observed artifact path for an expected path.
func ObservedPath(expected string) string {
	return expected + ObservedSuffix
}

// recordObserved finishes an outcome: it writes actual to the observed
// artifact when the verdict is false and removes a stale artifact otherwise.
func (e *Engine) recordObserved(expected string, actual []byte, out Outcome) (Outcome, error) {
	path := ObservedPath(expected)
	if out.Equal {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return out, errors.IO(path, err)
		}
		out.Observed = ""
		return out, nil
	}
	if err := os.WriteFile(path, actual, 0o644); err != nil {
		return out, errors.IO(path, err)
	}
	out.Observed = path
	e.log.Debug("observed artifact written", "path", path, "bytes", len(actual))
	return out, nil
}
