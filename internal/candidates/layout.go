package candidates

import (
	"fmt"
	"strconv"
	"strings"
)

// MinFields is the field count below which a row is a header or malformed.
const MinFields = 10

// Layout gives the column positions an engine uses for the fields a
// candidate key and its mass deviation are built from.
type Layout struct {
	Scan         int `yaml:"scan"`
	Charge       int `yaml:"charge"`
	SpectrumMass int `yaml:"spectrum_mass"`
	PeptideMass  int `yaml:"peptide_mass"`
	Sequence     int `yaml:"sequence"`
}

// TideLayout matches tide-search.txt: file, scan, charge, spectrum
// precursor m/z, spectrum neutral mass, peptide mass, delta_cn, xcorr
// score, xcorr rank, distinct matches/spectrum, sequence, ...
var TideLayout = Layout{Scan: 1, Charge: 2, SpectrumMass: 4, PeptideMass: 5, Sequence: 10}

// CometLayout matches comet.target.txt: scan, charge, spectrum precursor
// m/z, spectrum neutral mass, peptide mass, delta_cn, sp score, sp rank,
// xcorr score, xcorr rank, b/y ions matched, b/y ions total, distinct
// matches/spectrum, sequence, ...
var CometLayout = Layout{Scan: 0, Charge: 1, SpectrumMass: 3, PeptideMass: 4, Sequence: 13}

// Validate checks that every index is usable.
func (l Layout) Validate() error {
	cols := []struct {
		name string
		idx  int
	}{
		{"scan", l.Scan}, {"charge", l.Charge}, {"spectrum_mass", l.SpectrumMass},
		{"peptide_mass", l.PeptideMass}, {"sequence", l.Sequence},
	}
	for _, c := range cols {
		if c.idx < 0 {
			return fmt.Errorf("column %s: index %d is negative", c.name, c.idx)
		}
	}
	return nil
}

// width is the number of fields a row needs for l to apply.
func (l Layout) width() int {
	return max(MinFields, l.Scan+1, l.Charge+1, l.SpectrumMass+1, l.PeptideMass+1, l.Sequence+1)
}

// Key identifies one candidate across engines.
type Key string

// Candidate is the part of a result row the reconciliation needs.
type Candidate struct {
	Key          Key
	SpectrumMass float64
	PeptideMass  float64
}

// Parse extracts a candidate from the fields of one row. ok is false when
// the row is too short to be a result row. A result row whose mass fields do
// not parse is an error.
func (l Layout) Parse(fields []string) (c Candidate, ok bool, err error) {
	if len(fields) < l.width() {
		return Candidate{}, false, nil
	}
	c.Key = Key(fields[l.Scan] + "~" + fields[l.Charge] + "~" + fields[l.Sequence])
	if c.SpectrumMass, err = strconv.ParseFloat(strings.TrimSpace(fields[l.SpectrumMass]), 64); err != nil {
		return Candidate{}, false, fmt.Errorf("spectrum mass %q: %w", fields[l.SpectrumMass], err)
	}
	if c.PeptideMass, err = strconv.ParseFloat(strings.TrimSpace(fields[l.PeptideMass]), 64); err != nil {
		return Candidate{}, false, fmt.Errorf("peptide mass %q: %w", fields[l.PeptideMass], err)
	}
	return c, true, nil
}
