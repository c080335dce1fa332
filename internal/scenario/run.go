package scenario

import (
	"context"
	"time"

	"github.com/crux-toolkit/cruxcheck/internal/compare"
	"github.com/crux-toolkit/cruxcheck/internal/errors"
	"github.com/crux-toolkit/cruxcheck/internal/logging"
	"github.com/crux-toolkit/cruxcheck/internal/model"
)

// Suite runs scenarios against one executable.
type Suite struct {
	Executable string
	WorkDir    string
	Options    Options
}

// RunAll runs scenarios in order. Scenarios are independent: a failure or
// harness error in one does not stop the others.
func (s Suite) RunAll(ctx context.Context, scenarios []*Scenario) model.RunSummary {
	var summary model.RunSummary
	for _, sc := range scenarios {
		if ctx.Err() != nil {
			summary.Add(model.ScenarioResult{Name: sc.Name, Path: sc.Path, Error: errors.Wrap(ctx.Err(), "run interrupted")})
			continue
		}
		summary.Add(s.RunScenario(ctx, sc))
	}
	return summary
}

// RunScenario runs the steps of sc until one fails.
func (s Suite) RunScenario(ctx context.Context, sc *Scenario) model.ScenarioResult {
	log := s.Options.Logger
	if log == nil {
		log = logging.Discard()
	}
	start := time.Now()
	res := model.ScenarioResult{Name: sc.Name, Path: sc.Path}

	sess := NewSession(s.Options)
	dir := s.WorkDir
	if sc.WorkDir != "" {
		dir = resolvePath(s.WorkDir, sc.WorkDir)
	}
	if dir != "" {
		if err := sess.SetWorkDir(dir); err != nil {
			res.Error = err
			res.Duration = time.Since(start)
			return res
		}
	}
	sess.SetExecutable(s.Executable)
	sess.NameTest(sc.Name)

	log.Info("scenario started", "name", sc.Name, "steps", len(sc.Steps))
	res.Success = true
	for i, step := range sc.Steps {
		verdict, err := s.runStep(ctx, sess, sc, step)
		if err != nil {
			res.Error = err
			res.Success = false
			log.Info("scenario aborted", "name", sc.Name, "step", i+1, "error", err)
			break
		}
		res.Steps = append(res.Steps, model.StepResult{Index: i + 1, Action: step.Action(), Verdict: verdict})
		if !verdict.Success {
			res.Success = false
			log.Info("scenario failed", "name", sc.Name, "step", i+1, "reason", verdict.Message)
			break
		}
	}

	res.Observed = sess.Observed()
	res.Duration = time.Since(start)
	if res.Success {
		log.Info("scenario passed", "name", sc.Name, "duration", res.Duration)
	}
	return res
}

func (s Suite) runStep(ctx context.Context, sess *Session, sc *Scenario, step Step) (model.Verdict, error) {
	switch {
	case step.Run != nil:
		if err := sess.Run(ctx, step.Run.Command, step.Run.Intermediate); err != nil {
			return model.Verdict{}, err
		}
		return model.Pass(), nil
	case step.ExitCode != nil:
		return sess.AssertExitCode(*step.ExitCode)
	case step.Compare != nil:
		mode, err := compare.ParseMode(step.Compare.Mode, step.Compare.Tolerance)
		if err != nil {
			return model.Verdict{}, errors.Configf("step compare: %v", err)
		}
		return sess.AssertFiles(step.Compare.Expected, step.Compare.Actual, mode)
	case step.Stdout != nil:
		return sess.AssertStdout(step.Stdout.Expected)
	case step.Finish:
		sess.Finish()
		sess.NameTest(sc.Name)
		return model.Pass(), nil
	case step.Ignore != nil:
		if err := sess.AddIgnore(step.Ignore...); err != nil {
			return model.Verdict{}, err
		}
		return model.Pass(), nil
	case step.Args != nil:
		sess.AddArgs(step.Args...)
		return model.Pass(), nil
	case step.Name != "":
		sess.NameTest(step.Name)
		return model.Pass(), nil
	default:
		return model.Verdict{}, errors.Config("empty scenario step")
	}
}
