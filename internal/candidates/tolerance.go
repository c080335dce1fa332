package candidates

import (
	"fmt"
	"math"
)

// ToleranceType says how a precursor mass tolerance is expressed.
type ToleranceType string

const (
	PPM      ToleranceType = "ppm"      // parts per million of the peptide mass
	Absolute ToleranceType = "absolute" // mass units (Da)
)

// ParseToleranceType validates a tolerance type name.
func ParseToleranceType(s string) (ToleranceType, error) {
	switch ToleranceType(s) {
	case PPM, Absolute:
		return ToleranceType(s), nil
	default:
		return "", fmt.Errorf("unknown tolerance type %q (valid: ppm, absolute)", s)
	}
}

// GuardFactor is the fraction of the tolerance beyond which a candidate is
// considered borderline. Engines filter at the tolerance edge with slightly
// different arithmetic, so disagreement on borderline candidates is expected.
const GuardFactor = 0.9

// Tolerance is a precursor mass tolerance.
type Tolerance struct {
	Value float64
	Type  ToleranceType
}

func (t Tolerance) String() string {
	if t.Type == PPM {
		return fmt.Sprintf("%g ppm", t.Value)
	}
	return fmt.Sprintf("%g Da", t.Value)
}

// limit is the tolerance expressed in the unit Deviation returns.
func (t Tolerance) limit() float64 {
	if t.Type == PPM {
		return t.Value * 1e-6
	}
	return t.Value
}

// Deviation returns how far a spectrum mass is from a peptide mass: the
// relative deviation |delta| / peptide mass for PPM, |delta| for Absolute.
func (t Tolerance) Deviation(spectrumMass, peptideMass float64) float64 {
	delta := math.Abs(spectrumMass - peptideMass)
	if t.Type == PPM {
		if peptideMass == 0 {
			return math.Inf(1)
		}
		return delta / math.Abs(peptideMass)
	}
	return delta
}

// Borderline reports whether a deviation exceeds GuardFactor times the tolerance.
func (t Tolerance) Borderline(deviation float64) bool {
	return deviation > GuardFactor*t.limit()
}
