// Package compare decides whether actual output matches a golden fixture.
//
// A comparison yields a boolean verdict. Errors are reserved for harness
// problems such as unreadable fixtures; a content mismatch is never an error.
// Every comparison also manages its observed artifact: a copy of the actual
// content saved as <expected>.observed when the verdict is false, and removed
// when it is true.
package compare

import (
	"fmt"
	"strings"
)

// Kind enumerates the comparison semantics.
type Kind int

const (
	KindExact     Kind = iota // byte-exact, or line-by-line with ignore patterns
	KindStdout                // captured standard output vs file contents
	KindUnordered             // multiset of lines
	KindTolerant              // tab-delimited table with numeric tolerance
)

// Mode selects how expected and actual content are compared.
type Mode struct {
	kind      Kind
	tolerance float64
}

// Fixed modes. Use Tolerant to build a tolerance mode.
var (
	Exact       = Mode{kind: KindExact}
	StdoutMatch = Mode{kind: KindStdout}
	Unordered   = Mode{kind: KindUnordered}
)

// Tolerant returns a table mode accepting numeric fields whose relative
// error does not exceed tolerance.
func Tolerant(tolerance float64) Mode {
	return Mode{kind: KindTolerant, tolerance: tolerance}
}

// Kind returns the comparison semantics of m.
func (m Mode) Kind() Kind { return m.kind }

// Tolerance returns the relative tolerance of a Tolerant mode, 0 otherwise.
func (m Mode) Tolerance() float64 { return m.tolerance }

func (m Mode) String() string {
	switch m.kind {
	case KindExact:
		return "exact"
	case KindStdout:
		return "stdout"
	case KindUnordered:
		return "unordered"
	case KindTolerant:
		return fmt.Sprintf("tolerant(%g)", m.tolerance)
	default:
		return fmt.Sprintf("mode(%d)", int(m.kind))
	}
}

// ModeNames lists the names accepted by ParseMode.
var ModeNames = []string{"exact", "stdout", "unordered", "tolerant"}

// ParseMode maps a mode name to a Mode. The tolerance is only used by
// "tolerant" and must not be negative.
func ParseMode(name string, tolerance float64) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "exact", "":
		return Exact, nil
	case "stdout":
		return StdoutMatch, nil
	case "unordered":
		return Unordered, nil
	case "tolerant":
		if tolerance < 0 {
			return Mode{}, fmt.Errorf("tolerance must not be negative, got %v", tolerance)
		}
		return Tolerant(tolerance), nil
	default:
		return Mode{}, fmt.Errorf("unknown comparison mode %q (valid: %s)", name, strings.Join(ModeNames, ", "))
	}
}

// Source is the actual side of a comparison: a filesystem path or a
// captured standard output buffer.
type Source struct {
	path     string
	stdout   []byte
	isStdout bool
}

// File returns a Source reading the file or directory at path.
func File(path string) Source {
	return Source{path: path}
}

// Stdout returns a Source over captured standard output. A nil buffer
// means the process wrote nothing and compares as empty text.
func Stdout(buf []byte) Source {
	return Source{stdout: buf, isStdout: true}
}

// IsStdout reports whether s is captured standard output.
func (s Source) IsStdout() bool { return s.isStdout }

// Path returns the file path of a file Source.
func (s Source) Path() string { return s.path }

func (s Source) String() string {
	if s.isStdout {
		return "<stdout>"
	}
	return s.path
}

// Outcome is the result of one comparison.
type Outcome struct {
	Equal    bool
	Observed string // Path of the observed artifact written on mismatch
	Detail   string // First difference found, empty when Equal
}
