// Package params reads and writes Crux parameter files.
//
// A parameter file is a list of "key = value" (or "key=value") lines. Files
// meant for Comet end with an enzyme table introduced by EnzymeHeader; that
// block is kept verbatim and always written last.
package params

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/crux-toolkit/cruxcheck/internal/errors"
)

// EnzymeHeader opens the enzyme table block.
const EnzymeHeader = "[COMET_ENZYME_INFO]"

// File is an ordered set of parameters plus an optional enzyme table.
type File struct {
	keys    []string
	values  map[string]string
	enzymes []string // Lines following EnzymeHeader
}

// New returns an empty parameter file.
func New() *File {
	return &File{values: make(map[string]string)}
}

// Parse reads a parameter file. Blank lines and lines starting with '#'
// are skipped; a later assignment of the same key overrides an earlier one.
func Parse(r io.Reader) (*File, error) {
	f := New()
	s := bufio.NewScanner(r)
	inEnzymes := false
	line := 0
	for s.Scan() {
		line++
		text := s.Text()
		trimmed := strings.TrimSpace(text)
		if inEnzymes {
			if trimmed != "" {
				f.enzymes = append(f.enzymes, text)
			}
			continue
		}
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if trimmed == EnzymeHeader {
			inEnzymes = true
			continue
		}
		key, value, ok := strings.Cut(trimmed, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: expected key = value, got %q", line, text)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("line %d: empty key", line)
		}
		f.Set(key, strings.TrimSpace(value))
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return f, nil
}

// Load reads the parameter file at path.
func Load(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, errors.IO(path, err)
	}
	defer func() { _ = fh.Close() }()

	f, err := Parse(fh)
	if err != nil {
		return nil, errors.Configf("parameter file %s: %v", path, err)
	}
	return f, nil
}

// Set assigns key. New keys are appended after existing ones.
func (f *File) Set(key, value string) {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// Get returns the value of key.
func (f *File) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Keys returns parameter names in write order.
func (f *File) Keys() []string {
	return slices.Clone(f.keys)
}

// Enzymes returns the enzyme table lines.
func (f *File) Enzymes() []string {
	return slices.Clone(f.enzymes)
}

// SetEnzymes replaces the enzyme table.
func (f *File) SetEnzymes(lines []string) {
	f.enzymes = slices.Clone(lines)
}

// Merge copies every parameter of other into f, overriding existing values.
// The enzyme table of other replaces f's when it is non-empty.
func (f *File) Merge(other *File) {
	for _, k := range other.keys {
		f.Set(k, other.values[k])
	}
	if len(other.enzymes) > 0 {
		f.SetEnzymes(other.enzymes)
	}
}

// Clone returns a deep copy of f.
func (f *File) Clone() *File {
	c := New()
	c.Merge(f)
	return c
}

// SetPrecursorTolerance sets the precursor window for both engines.
// ppm selects a relative window; otherwise the window is in mass units.
func (f *File) SetPrecursorTolerance(mass float64, ppm bool) {
	v := strconv.FormatFloat(mass, 'g', -1, 64)
	f.Set("precursor-window", v)
	f.Set("peptide_mass_tolerance", v)
	if ppm {
		f.Set("precursor-window-type", "ppm")
		f.Set("peptide_mass_units", "2")
	} else {
		f.Set("precursor-window-type", "mass")
		f.Set("peptide_mass_units", "0")
	}
}

// SetMissedCleavages sets the allowed number of missed cleavages for both engines.
func (f *File) SetMissedCleavages(n int) {
	v := strconv.Itoa(n)
	f.Set("missed-cleavages", v)
	f.Set("allowed_missed_cleavage", v)
}

// WriteTo writes f in "key=value" form with the enzyme table last.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	write := func(s string) error {
		m, err := bw.WriteString(s)
		n += int64(m)
		return err
	}
	for _, k := range f.keys {
		if err := write(k + "=" + f.values[k] + "\n"); err != nil {
			return n, err
		}
	}
	if len(f.enzymes) > 0 {
		if err := write(EnzymeHeader + "\n"); err != nil {
			return n, err
		}
		for _, line := range f.enzymes {
			if err := write(line + "\n"); err != nil {
				return n, err
			}
		}
	}
	return n, bw.Flush()
}

// Save writes f to path.
func (f *File) Save(path string) error {
	fh, err := os.Create(path)
	if err != nil {
		return errors.IO(path, err)
	}
	if _, err := f.WriteTo(fh); err != nil {
		_ = fh.Close()
		return errors.IO(path, err)
	}
	if err := fh.Close(); err != nil {
		return errors.IO(path, err)
	}
	return nil
}
