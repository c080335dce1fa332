package candidates

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/crux-toolkit/cruxcheck/internal/model"
)

// State is the reconciliation state of a baseline candidate.
type State int

const (
	// Unconfirmed candidates were found by engine A and not yet by engine B.
	Unconfirmed State = 1
	// Borderline candidates were found by engine A with a deviation beyond
	// the guard band; engine B may legitimately miss them.
	Borderline State = 2
)

// Table maps candidate keys to their state. Each confirmation by engine B
// increments the state.
type Table map[Key]State

// maxListed bounds the keys quoted in a failure message.
const maxListed = 5

// Report summarizes one reconciliation.
type Report struct {
	Verdict   model.Verdict
	Baseline  int   // candidates read from engine A
	Compared  int   // candidates read from engine B
	Confirmed int   // B candidates found in the table
	Excused   int   // borderline B candidates absent from the table
	OnlyInB   []Key // non-borderline B candidates absent from the table
	Unmatched []Key // table entries still Unconfirmed
	Malformed int   // rows of engine B skipped for having too few fields
}

// BuildBaseline reads engine A's result table. The first line is a header
// and is discarded; rows with fewer than MinFields fields are skipped.
func BuildBaseline(r io.Reader, layout Layout, tol Tolerance) (Table, int, error) {
	table := make(Table)
	skipped, err := eachCandidate(r, layout, func(c Candidate) {
		if tol.Borderline(tol.Deviation(c.SpectrumMass, c.PeptideMass)) {
			table[c.Key] = Borderline
		} else {
			table[c.Key] = Unconfirmed
		}
	})
	return table, skipped, err
}

// Reconcile checks engine B's result table against the baseline built from
// engine A. It fails when B reports a candidate A lacks without the guard
// band explaining it, or when A reports a non-borderline candidate B never
// confirms. table is modified.
func Reconcile(table Table, r io.Reader, layout Layout, tol Tolerance) (Report, error) {
	rep := Report{Baseline: len(table)}
	skipped, err := eachCandidate(r, layout, func(c Candidate) {
		rep.Compared++
		if _, ok := table[c.Key]; ok {
			table[c.Key]++
			rep.Confirmed++
			return
		}
		if tol.Borderline(tol.Deviation(c.SpectrumMass, c.PeptideMass)) {
			rep.Excused++
			return
		}
		rep.OnlyInB = append(rep.OnlyInB, c.Key)
	})
	rep.Malformed = skipped
	if err != nil {
		return rep, err
	}

	for k, st := range table {
		if st == Unconfirmed {
			rep.Unmatched = append(rep.Unmatched, k)
		}
	}
	slices.Sort(rep.OnlyInB)
	slices.Sort(rep.Unmatched)

	switch {
	case len(rep.OnlyInB) > 0:
		rep.Verdict = model.Fail("%d candidates only in second engine within tolerance: %s",
			len(rep.OnlyInB), listKeys(rep.OnlyInB))
	case len(rep.Unmatched) > 0:
		rep.Verdict = model.Fail("%d candidates only in first engine within tolerance: %s",
			len(rep.Unmatched), listKeys(rep.Unmatched))
	default:
		rep.Verdict = model.Pass()
	}
	return rep, nil
}

// ReconcileFiles builds the baseline from engineA and reconciles engineB.
// A result row with unparsable masses fails the verdict rather than
// returning an error.
func ReconcileFiles(engineA io.Reader, layoutA Layout, engineB io.Reader, layoutB Layout, tol Tolerance) (Report, error) {
	table, _, err := BuildBaseline(engineA, layoutA, tol)
	if err != nil {
		var rowErr *RowError
		if errors.As(err, &rowErr) {
			return Report{Verdict: model.Fail("first engine: %v", rowErr)}, nil
		}
		return Report{}, err
	}
	rep, err := Reconcile(table, engineB, layoutB, tol)
	if err != nil {
		var rowErr *RowError
		if errors.As(err, &rowErr) {
			rep.Verdict = model.Fail("second engine: %v", rowErr)
			return rep, nil
		}
		return rep, err
	}
	return rep, nil
}

// RowError reports a result row whose fields could not be interpreted.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// eachCandidate calls fn for every result row after the header and
// returns the number of short rows skipped.
func eachCandidate(r io.Reader, layout Layout, fn func(Candidate)) (int, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line, skipped := 0, 0
	for s.Scan() {
		line++
		if line == 1 {
			continue
		}
		c, ok, err := layout.Parse(strings.Split(s.Text(), "\t"))
		if err != nil {
			return skipped, &RowError{Line: line, Err: err}
		}
		if !ok {
			skipped++
			continue
		}
		fn(c)
	}
	return skipped, s.Err()
}

func listKeys(keys []Key) string {
	parts := make([]string, 0, maxListed+1)
	for i, k := range keys {
		if i == maxListed {
			parts = append(parts, fmt.Sprintf("... (%d more)", len(keys)-maxListed))
			break
		}
		parts = append(parts, string(k))
	}
	return strings.Join(parts, ", ")
}
