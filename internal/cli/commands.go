package cli

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/crux-toolkit/cruxcheck/internal/candidates"
	"github.com/crux-toolkit/cruxcheck/internal/compare"
	"github.com/crux-toolkit/cruxcheck/internal/config"
	"github.com/crux-toolkit/cruxcheck/internal/errors"
	"github.com/crux-toolkit/cruxcheck/internal/model"
	"github.com/crux-toolkit/cruxcheck/internal/output"
	"github.com/crux-toolkit/cruxcheck/internal/params"
	"github.com/crux-toolkit/cruxcheck/internal/process"
	"github.com/crux-toolkit/cruxcheck/internal/scenario"
)

// loadSuite loads and validates the suite file, printing its warnings.
func (a *app) loadSuite(path string) (*config.Config, error) {
	cfg, warnings, err := config.LoadAndValidate(path)
	a.warn(warnings)
	if err != nil {
		return nil, err
	}
	a.log.Debug("suite loaded", "path", path, "executable", cfg.ExecutablePath(), "workdir", cfg.Dir())
	return cfg, nil
}

type runCommand struct {
	Config string `short:"c" long:"config" description:"suite file" default:"cruxcheck.yaml"`
	Report string `long:"report" description:"write a JSON report to this file"`
	Only   string `long:"only" description:"run only scenarios whose name matches this glob"`

	app *app
}

func (c *runCommand) Execute([]string) error {
	a := c.app
	cfg, err := a.loadSuite(c.Config)
	if err != nil {
		return err
	}

	all, err := scenario.LoadAll(cfg.Dir(), cfg.Scenarios)
	if err != nil {
		return err
	}
	selected, err := filterScenarios(all, c.Only)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		return errors.Configf("no scenarios match %q in %s", cfg.Scenarios, cfg.Dir())
	}
	a.out.Info("Running %d scenarios against %s", len(selected), cfg.ExecutablePath())

	suite := scenario.Suite{
		Executable: cfg.ExecutablePath(),
		WorkDir:    cfg.Dir(),
		Options: scenario.Options{
			Policy: cfg.ExitPolicy(),
			Env:    cfg.Env,
			Logger: a.log,
		},
	}
	started := time.Now()
	summary := suite.RunAll(a.ctx, selected)
	summary.RunID = uuid.NewString()
	a.out.RunSummary(&summary)

	if c.Report != "" {
		if err := writeReport(c.Report, newRunReport(&summary, started)); err != nil {
			return err
		}
		a.out.Hint("Report written to %s", c.Report)
	}

	if summary.Success() {
		return nil
	}
	for _, r := range summary.Scenarios {
		if r.Error != nil {
			return &exitError{code: errors.GetExitCode(r.Error)}
		}
	}
	return errMismatch
}

func filterScenarios(all []*scenario.Scenario, pattern string) ([]*scenario.Scenario, error) {
	if pattern == "" {
		return all, nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.Configf("invalid --only pattern %q", pattern)
	}
	var out []*scenario.Scenario
	for _, sc := range all {
		if ok, _ := doublestar.Match(pattern, sc.Name); ok {
			out = append(out, sc)
		}
	}
	return out, nil
}

type compareCommand struct {
	Mode      string   `short:"m" long:"mode" description:"comparison mode" choice:"exact" choice:"unordered" choice:"tolerant" choice:"stdout" default:"exact"`
	Tolerance float64  `short:"t" long:"tolerance" description:"relative tolerance for numeric fields in tolerant mode" default:"0"`
	Ignore    []string `short:"i" long:"ignore" description:"regular expression excusing a differing line pair it matches on both sides (repeatable)"`

	Args struct {
		Expected string `positional-arg-name:"EXPECTED" required:"yes"`
		Actual   string `positional-arg-name:"ACTUAL" description:"file or directory; standard input in stdout mode"`
	} `positional-args:"yes"`

	app *app
}

func (c *compareCommand) Execute([]string) error {
	a := c.app
	mode, err := compare.ParseMode(c.Mode, c.Tolerance)
	if err != nil {
		return errors.Configf("%v", err)
	}

	var ignore []*regexp.Regexp
	for _, p := range c.Ignore {
		re, err := regexp.Compile(p)
		if err != nil {
			return errors.Configf("ignore pattern %q: %v", p, err)
		}
		ignore = append(ignore, re)
	}

	var actual compare.Source
	if mode.Kind() == compare.KindStdout {
		buf, err := io.ReadAll(a.stdin)
		if err != nil {
			return errors.IO("<stdin>", err)
		}
		if len(buf) == 0 {
			buf = nil
		}
		actual = compare.Stdout(buf)
	} else {
		if c.Args.Actual == "" {
			return errors.Configf("mode %s needs an ACTUAL path", c.Mode)
		}
		actual = compare.File(c.Args.Actual)
	}

	engine := compare.NewEngine(compare.WithIgnore(ignore...), compare.WithLogger(a.log))
	res, err := engine.Compare(c.Args.Expected, actual, mode)
	if err != nil {
		return err
	}

	label := fmt.Sprintf("%s comparison of %s", output.Title(c.Mode), actual)
	if res.Equal {
		a.out.Verdict(label, model.Pass())
		return nil
	}
	a.out.Verdict(label, model.Fail("%s", res.Detail))
	if res.Observed != "" {
		a.out.Hint("Observed output saved to %s", res.Observed)
	}
	return errMismatch
}

type crossvalCommand struct {
	Config string `short:"c" long:"config" description:"suite file" default:"cruxcheck.yaml"`

	A             string  `long:"a" description:"reconcile this existing first-engine result file instead of running a sweep"`
	B             string  `long:"b" description:"second-engine result file to reconcile with --a"`
	LayoutA       string  `long:"layout-a" description:"column layout of --a" choice:"tide" choice:"comet" default:"tide"`
	LayoutB       string  `long:"layout-b" description:"column layout of --b" choice:"tide" choice:"comet" default:"comet"`
	Mass          float64 `long:"mass" description:"precursor mass tolerance for --a/--b" default:"5"`
	ToleranceType string  `long:"tolerance-type" description:"tolerance type for --a/--b" choice:"ppm" choice:"absolute" default:"ppm"`

	app *app
}

var layouts = map[string]candidates.Layout{
	"tide":  candidates.TideLayout,
	"comet": candidates.CometLayout,
}

func (c *crossvalCommand) Execute([]string) error {
	if c.A != "" || c.B != "" {
		return c.reconcileFiles()
	}

	a := c.app
	cfg, err := a.loadSuite(c.Config)
	if err != nil {
		return err
	}
	cc := cfg.Candidates
	if cc == nil {
		return errors.ConfigPath(c.Config, "suite has no candidates section")
	}
	base, err := cfg.BaseParams()
	if err != nil {
		return err
	}

	runner := process.New(
		process.WithDir(cfg.Dir()),
		process.WithExitPolicy(cfg.ExitPolicy()),
		process.WithEnv(cfg.Env...),
		process.WithLogger(a.log),
	)
	v := candidates.NewValidator(runner, candidates.Config{
		Executable: cfg.ExecutablePath(),
		WorkDir:    cfg.Dir(),
		OutputDir:  cc.OutputDir,
		Base:       base,
		EngineA:    *cc.EngineA,
		EngineB:    *cc.EngineB,
		Logger:     a.log,
	})

	sweep := cc.Sweep()
	total := len(sweep.Combinations())
	a.out.Info("Cross-validating %s against %s over %d combinations", cc.EngineB.Name, cc.EngineA.Name, total)

	rep, err := v.Run(a.ctx, sweep)
	if err != nil {
		return err
	}
	a.out.SweepSummary(&rep, total)
	if !rep.Verdict.Success {
		return errMismatch
	}
	return nil
}

func (c *crossvalCommand) reconcileFiles() error {
	if c.A == "" || c.B == "" {
		return errors.Config("--a and --b must be given together")
	}
	tt, err := candidates.ParseToleranceType(c.ToleranceType)
	if err != nil {
		return errors.Configf("%v", err)
	}
	if c.Mass <= 0 {
		return errors.Configf("--mass must be positive, got %v", c.Mass)
	}

	fa, err := os.Open(c.A)
	if err != nil {
		return errors.IO(c.A, err)
	}
	defer func() { _ = fa.Close() }()
	fb, err := os.Open(c.B)
	if err != nil {
		return errors.IO(c.B, err)
	}
	defer func() { _ = fb.Close() }()

	rep, err := candidates.ReconcileFiles(fa, layouts[c.LayoutA], fb, layouts[c.LayoutB], candidates.Tolerance{Value: c.Mass, Type: tt})
	if err != nil {
		return errors.IO(c.A+", "+c.B, err)
	}
	c.app.out.ReconcileSummary(&rep)
	if !rep.Verdict.Success {
		return errMismatch
	}
	return nil
}

type paramsCommand struct {
	Config          string  `short:"c" long:"config" description:"take base parameters from this suite file"`
	Mass            float64 `long:"mass" description:"precursor mass tolerance"`
	ToleranceType   string  `long:"tolerance-type" description:"tolerance type" choice:"ppm" choice:"absolute" default:"ppm"`
	MissedCleavages int     `long:"missed-cleavages" description:"allowed missed cleavages" default:"-1"`
	Output          string  `short:"o" long:"output" description:"write to this file instead of standard output"`

	app *app
}

func (c *paramsCommand) Execute([]string) error {
	p := params.Default()
	if c.Config != "" {
		cfg, err := c.app.loadSuite(c.Config)
		if err != nil {
			return err
		}
		if p, err = cfg.BaseParams(); err != nil {
			return err
		}
	}
	if c.Mass > 0 {
		p.SetPrecursorTolerance(c.Mass, c.ToleranceType == string(candidates.PPM))
	}
	if c.MissedCleavages >= 0 {
		p.SetMissedCleavages(c.MissedCleavages)
	}

	if c.Output != "" {
		return p.Save(c.Output)
	}
	if _, err := p.WriteTo(c.app.stdout); err != nil {
		return errors.IO("<stdout>", err)
	}
	return nil
}

type versionCommand struct {
	app *app
}

func (c *versionCommand) Execute([]string) error {
	c.app.out.Println("cruxcheck %s", Version)
	return nil
}
