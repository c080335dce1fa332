package compare

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// CompareTables compares two tab-delimited tables field by field.
//
// Both tables must have the same number of rows, and corresponding rows the
// same number of fields. Identical fields match. Differing fields match only
// when both parse as numbers and WithinTolerance accepts them; a
// non-numeric differing field is always a mismatch. The first rejected
// field ends the comparison.
func CompareTables(expected, actual io.Reader, tolerance float64) (bool, string, error) {
	want, err := readTable(expected)
	if err != nil {
		return false, "", err
	}
	got, err := readTable(actual)
	if err != nil {
		return false, "", err
	}

	if len(want) != len(got) {
		return false, fmt.Sprintf("expected %d rows, got %d", len(want), len(got)), nil
	}
	for i := range want {
		if len(want[i]) != len(got[i]) {
			return false, fmt.Sprintf("row %d: expected %d fields, got %d", i+1, len(want[i]), len(got[i])), nil
		}
		for j := range want[i] {
			if ok, why := fieldsMatch(want[i][j], got[i][j], tolerance); !ok {
				return false, fmt.Sprintf("row %d, field %d: %s", i+1, j+1, why), nil
			}
		}
	}
	return true, "", nil
}

func fieldsMatch(expected, actual string, tolerance float64) (bool, string) {
	if expected == actual {
		return true, ""
	}
	e, err := strconv.ParseFloat(expected, 64)
	if err != nil {
		return false, fmt.Sprintf("expected %q, got %q", expected, actual)
	}
	a, err := strconv.ParseFloat(actual, 64)
	if err != nil {
		return false, fmt.Sprintf("expected %q, got non-numeric %q", expected, actual)
	}
	if WithinTolerance(e, a, tolerance) {
		return true, ""
	}
	return false, fmt.Sprintf("expected %v, got %v (relative tolerance: %v)", e, a, tolerance)
}

// WithinTolerance reports whether |actual - expected| / |expected| <= tolerance.
// For expected == 0 the absolute difference is compared instead, to avoid
// dividing by zero.
func WithinTolerance(expected, actual, tolerance float64) bool {
	if math.IsNaN(expected) || math.IsNaN(actual) {
		return false
	}
	if expected == actual {
		return true
	}
	if expected == 0 {
		return math.Abs(actual) <= tolerance
	}
	return math.Abs(actual-expected)/math.Abs(expected) <= tolerance
}

// readTable splits every line on tabs.
func readTable(r io.Reader) ([][]string, error) {
	s := newLineScanner(r)
	s.Split(bufio.ScanLines)
	var rows [][]string
	for s.Scan() {
		rows = append(rows, strings.Split(s.Text(), "\t"))
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}
