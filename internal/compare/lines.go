package compare

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"maps"
	"regexp"
	"slices"
)

// maxLineBytes bounds a single line; search result rows can be long.
const maxLineBytes = 16 * 1024 * 1024

func newLineScanner(r io.Reader) *bufio.Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	s.Split(scanRawLines)
	return s
}

// scanRawLines is bufio.ScanLines without the carriage-return stripping.
func scanRawLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// splitLines splits content after each newline, keeping the terminators.
// A missing final newline leaves the last line unterminated.
func splitLines(content []byte) [][]byte {
	lines := bytes.SplitAfter(content, []byte("\n"))
	if len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// linesEqualIgnoring compares line by line, terminators included. A
// differing pair is excused when some pattern matches both the expected and
// the actual line.
func linesEqualIgnoring(expected, actual []byte, ignore []*regexp.Regexp) (bool, string) {
	el, al := splitLines(expected), splitLines(actual)
	for i := 0; i < len(el) && i < len(al); i++ {
		if bytes.Equal(el[i], al[i]) {
			continue
		}
		e, a := trimEOL(el[i]), trimEOL(al[i])
		if excused(e, a, ignore) {
			continue
		}
		return false, fmt.Sprintf("line %d: expected %q, got %q", i+1, el[i], al[i])
	}
	if len(el) != len(al) {
		return false, fmt.Sprintf("line %d: one file ends before the other", min(len(el), len(al))+1)
	}
	return true, ""
}

func trimEOL(line []byte) string {
	return string(bytes.TrimSuffix(bytes.TrimSuffix(line, []byte("\n")), []byte("\r")))
}

func excused(e, a string, ignore []*regexp.Regexp) bool {
	for _, re := range ignore {
		if re.MatchString(e) && re.MatchString(a) {
			return true
		}
	}
	return false
}

// UnorderedEqual reports whether expected and actual hold the same multiset
// of lines.
//
// Both inputs are read once, in lock-step. When the current lines differ,
// each is first matched against the lines seen only on the other side; an
// unmatched line is added to its own side's only-seen set. The inputs are
// equal when both sets end empty. Reading stops as soon as one input ends
// before the other, since unequal line counts can never be equal.
func UnorderedEqual(expected, actual io.Reader) (bool, string, error) {
	es, as := newLineScanner(expected), newLineScanner(actual)
	onlyExpected := make(map[string]int)
	onlyActual := make(map[string]int)
	pending := 0
	count := 0

	for {
		eok, aok := es.Scan(), as.Scan()
		if !eok || !aok {
			if err := scanErr(es, as); err != nil {
				return false, "", err
			}
			if eok != aok {
				return false, fmt.Sprintf("line counts differ after %d lines", count), nil
			}
			break
		}
		count++
		e, a := es.Text(), as.Text()
		if e == a {
			continue
		}
		if onlyActual[e] > 0 {
			release(onlyActual, e)
			pending--
		} else {
			onlyExpected[e]++
			pending++
		}
		if onlyExpected[a] > 0 {
			release(onlyExpected, a)
			pending--
		} else {
			onlyActual[a]++
			pending++
		}
	}

	if pending == 0 {
		return true, "", nil
	}
	return false, fmt.Sprintf("%d lines only in expected, %d only in actual (e.g. %s)",
		total(onlyExpected), total(onlyActual), sample(onlyExpected, onlyActual)), nil
}

func release(m map[string]int, line string) {
	if m[line] <= 1 {
		delete(m, line)
		return
	}
	m[line]--
}

func total(m map[string]int) int {
	n := 0
	for _, c := range m {
		n += c
	}
	return n
}

// sample returns the smallest unmatched line for the detail message.
func sample(onlyExpected, onlyActual map[string]int) string {
	if len(onlyExpected) > 0 {
		return fmt.Sprintf("expected %q", slices.Min(slices.Collect(maps.Keys(onlyExpected))))
	}
	if len(onlyActual) > 0 {
		return fmt.Sprintf("actual %q", slices.Min(slices.Collect(maps.Keys(onlyActual))))
	}
	return ""
}

func scanErr(scanners ...*bufio.Scanner) error {
	for _, s := range scanners {
		if err := s.Err(); err != nil {
			return err
		}
	}
	return nil
}
