// Package candidates cross-validates two search engines that should find
// the same candidate peptide-spectrum matches.
//
// Each engine's result table is reduced to a set of keys (scan, charge,
// sequence) read through that engine's column Layout. The sets must agree,
// except for candidates whose precursor mass deviation is close enough to the
// tolerance edge that the engines may filter them differently.
package candidates

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/crux-toolkit/cruxcheck/internal/errors"
	"github.com/crux-toolkit/cruxcheck/internal/logging"
	"github.com/crux-toolkit/cruxcheck/internal/model"
	"github.com/crux-toolkit/cruxcheck/internal/params"
	"github.com/crux-toolkit/cruxcheck/internal/process"
)

// Executor runs one engine step. *process.Runner satisfies it.
type Executor interface {
	Execute(ctx context.Context, tc process.TestCase) (process.CapturedRun, error)
}

// Config configures a Validator.
type Config struct {
	Executable string       // Program providing both engines
	WorkDir    string       // Working directory of every engine run
	OutputDir  string       // Shared results directory, relative to WorkDir
	Base       *params.File // Parameters common to every combination
	EngineA    Engine       // Baseline engine
	EngineB    Engine       // Engine checked against the baseline
	Logger     *slog.Logger
}

// Validator runs the sweep. Combinations run one after another because
// they share one output directory and one parameter file.
type Validator struct {
	exec Executor
	cfg  Config
	log  *slog.Logger
}

// CombinationResult is the reconciliation of one sweep point.
type CombinationResult struct {
	Combination Combination
	Report      Report
}

// SweepReport is the outcome of a whole sweep.
type SweepReport struct {
	Verdict model.Verdict
	Results []CombinationResult // Up to and including the first failure
}

// ParamFileName is the parameter file written into the work directory.
const ParamFileName = "cruxcheck.param"

// NewValidator creates a Validator.
func NewValidator(exec Executor, cfg Config) *Validator {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "crux-output"
	}
	if cfg.Base == nil {
		cfg.Base = params.Default()
	}
	if cfg.EngineA.Name == "" {
		cfg.EngineA = TideEngine()
	}
	if cfg.EngineB.Name == "" {
		cfg.EngineB = CometEngine()
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}
	return &Validator{exec: exec, cfg: cfg, log: log}
}

// Run validates every combination of sweep, stopping at the first failure.
// Harness problems (missing executable, missing result file, output
// directory locked by another run) are returned as errors.
func (v *Validator) Run(ctx context.Context, sweep Sweep) (SweepReport, error) {
	if err := sweep.Validate(); err != nil {
		return SweepReport{}, errors.Configf("sweep: %v", err)
	}

	lock := flock.New(filepath.Join(v.cfg.WorkDir, v.cfg.OutputDir+".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return SweepReport{}, errors.IO(lock.Path(), err)
	}
	if !locked {
		return SweepReport{}, errors.ConfigPath(lock.Path(), "output directory is in use by another run")
	}
	defer func() { _ = lock.Unlock() }()

	var rep SweepReport
	for _, combo := range sweep.Combinations() {
		v.log.Info("sweep", "phase", PhaseSweep, "combination", combo.String())
		res, err := v.RunCombination(ctx, combo)
		if err != nil {
			return rep, err
		}
		rep.Results = append(rep.Results, res)
		if !res.Report.Verdict.Success {
			v.log.Info("sweep", "phase", PhaseFail, "combination", combo.String(), "reason", res.Report.Verdict.Message)
			rep.Verdict = model.Fail("%s: %s", combo, res.Report.Verdict.Message)
			return rep, nil
		}
	}
	v.log.Info("sweep", "phase", PhasePass, "combinations", len(rep.Results))
	rep.Verdict = model.Pass()
	return rep, nil
}

// RunCombination runs both engines for one sweep point and reconciles their
// result tables.
func (v *Validator) RunCombination(ctx context.Context, combo Combination) (CombinationResult, error) {
	res := CombinationResult{Combination: combo}

	paramPath, err := v.writeParams(combo)
	if err != nil {
		return res, err
	}

	v.log.Debug("sweep", "phase", PhaseRunEngines, "combination", combo.String())
	vars := map[string]string{
		"param-file": paramPath,
		"output-dir": v.cfg.OutputDir,
		"database":   combo.Database,
		"spectra":    combo.Spectra,
		"index":      filepath.Join(v.cfg.OutputDir, "index"),
	}
	// A result table left by the previous combination must not be read
	// if an engine writes nothing this time.
	for _, eng := range []Engine{v.cfg.EngineA, v.cfg.EngineB} {
		if err := os.Remove(v.resultsPath(eng)); err != nil && !os.IsNotExist(err) {
			return res, errors.IO(v.resultsPath(eng), err)
		}
	}
	for _, eng := range []Engine{v.cfg.EngineA, v.cfg.EngineB} {
		verdict, err := v.runEngine(ctx, eng, combo, vars)
		if err != nil {
			return res, err
		}
		if !verdict.Success {
			res.Report.Verdict = verdict
			return res, nil
		}
	}

	v.log.Debug("sweep", "phase", PhaseBaseline, "engine", v.cfg.EngineA.Name)
	table, verdict, err := v.baseline(combo)
	if err != nil || !verdict.Success {
		res.Report.Verdict = verdict
		return res, err
	}

	v.log.Debug("sweep", "phase", PhaseReconcile, "engine", v.cfg.EngineB.Name, "baseline", len(table))
	res.Report, err = v.reconcile(table, combo)
	return res, err
}

func (v *Validator) writeParams(combo Combination) (string, error) {
	p := v.cfg.Base.Clone()
	p.SetPrecursorTolerance(combo.Tolerance.Value, combo.Tolerance.Type == PPM)
	p.SetMissedCleavages(combo.MissedCleavages)

	path, err := filepath.Abs(filepath.Join(v.cfg.WorkDir, ParamFileName))
	if err != nil {
		return "", errors.IO(ParamFileName, err)
	}
	if err := p.Save(path); err != nil {
		return "", err
	}
	v.log.Debug("parameter file written", "path", path, "tolerance", combo.Tolerance.String())
	return path, nil
}

func (v *Validator) runEngine(ctx context.Context, eng Engine, combo Combination, vars map[string]string) (model.Verdict, error) {
	for _, step := range eng.Steps {
		tc := process.TestCase{
			Name:       eng.Name + " " + step.Subcommand + " [" + combo.String() + "]",
			Executable: v.cfg.Executable,
			Subcommand: step.Subcommand,
			Args:       expand(step.Args, vars),
		}
		run, err := v.exec.Execute(ctx, tc)
		if err != nil {
			return model.Verdict{}, err
		}
		if run.ExitCode != 0 {
			return model.Fail("%s %s exited with status %d", eng.Name, step.Subcommand, run.ExitCode), nil
		}
	}
	return model.Pass(), nil
}

func (v *Validator) resultsPath(eng Engine) string {
	return filepath.Join(v.cfg.WorkDir, v.cfg.OutputDir, eng.Results)
}

func (v *Validator) baseline(combo Combination) (Table, model.Verdict, error) {
	path := v.resultsPath(v.cfg.EngineA)
	f, err := os.Open(path)
	if err != nil {
		return nil, model.Verdict{}, errors.IO(path, err)
	}
	defer func() { _ = f.Close() }()

	table, _, err := BuildBaseline(f, v.cfg.EngineA.Layout, combo.Tolerance)
	if err != nil {
		var rowErr *RowError
		if stderrors.As(err, &rowErr) {
			return nil, model.Fail("%s: %v", path, rowErr), nil
		}
		return nil, model.Verdict{}, errors.IO(path, err)
	}
	return table, model.Pass(), nil
}

func (v *Validator) reconcile(table Table, combo Combination) (Report, error) {
	path := v.resultsPath(v.cfg.EngineB)
	f, err := os.Open(path)
	if err != nil {
		return Report{}, errors.IO(path, err)
	}
	defer func() { _ = f.Close() }()

	rep, err := Reconcile(table, f, v.cfg.EngineB.Layout, combo.Tolerance)
	if err != nil {
		var rowErr *RowError
		if stderrors.As(err, &rowErr) {
			rep.Verdict = model.Fail("%s: %v", path, rowErr)
			return rep, nil
		}
		return rep, errors.IO(path, err)
	}
	return rep, nil
}
