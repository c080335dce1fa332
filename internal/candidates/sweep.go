package candidates

import "fmt"

// Combination is one point of the parameter sweep.
type Combination struct {
	Tolerance       Tolerance
	Database        string
	Spectra         string
	MissedCleavages int
}

func (c Combination) String() string {
	return fmt.Sprintf("%s, %s, %s, %d missed cleavages", c.Tolerance, c.Database, c.Spectra, c.MissedCleavages)
}

// Sweep is the set of values whose cartesian product is validated.
type Sweep struct {
	Masses          []float64
	ToleranceTypes  []ToleranceType
	Databases       []string
	Spectra         []string
	MissedCleavages []int
}

// Combinations returns the cartesian product, masses varying slowest and
// missed cleavages fastest. An empty dimension yields no combinations.
func (s Sweep) Combinations() []Combination {
	var out []Combination
	for _, mass := range s.Masses {
		for _, tt := range s.ToleranceTypes {
			for _, db := range s.Databases {
				for _, ms := range s.Spectra {
					for _, mc := range s.MissedCleavages {
						out = append(out, Combination{
							Tolerance:       Tolerance{Value: mass, Type: tt},
							Database:        db,
							Spectra:         ms,
							MissedCleavages: mc,
						})
					}
				}
			}
		}
	}
	return out
}

// Validate reports the first unusable sweep value.
func (s Sweep) Validate() error {
	for _, m := range s.Masses {
		if m <= 0 {
			return fmt.Errorf("mass tolerance must be positive, got %v", m)
		}
	}
	for _, tt := range s.ToleranceTypes {
		if _, err := ParseToleranceType(string(tt)); err != nil {
			return err
		}
	}
	for _, mc := range s.MissedCleavages {
		if mc < 0 {
			return fmt.Errorf("missed cleavages must not be negative, got %d", mc)
		}
	}
	if len(s.Combinations()) == 0 {
		return fmt.Errorf("sweep is empty: every dimension needs at least one value")
	}
	return nil
}

// Phase is a state of the validator.
type Phase string

const (
	PhaseSweep      Phase = "PARAMETER_SWEEP"
	PhaseRunEngines Phase = "RUN_ENGINES"
	PhaseBaseline   Phase = "BUILD_BASELINE"
	PhaseReconcile  Phase = "RECONCILE"
	PhasePass       Phase = "PASS"
	PhaseFail       Phase = "FAIL"
)
