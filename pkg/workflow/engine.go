package workflow

import (
	"log/slog"
	"slices"

	"github.com/systemstart/fwbuild/pkg/cleanup"
	"github.com/systemstart/fwbuild/pkg/config"
	"github.com/systemstart/fwbuild/pkg/execute"
	"github.com/systemstart/fwbuild/pkg/steps"
)

// Record is one (step, status) outcome appended after a successful step.
type Record struct {
	Step   string
	Status string
}

// Engine drives the fixed nine-step workflow. Steps run strictly in order;
// the first failure stops the run and the remaining steps are skipped without
// summary records.
type Engine struct {
	ctx     *steps.Context
	summary []Record
}

// New builds an engine around a resolved configuration and cleanup registry.
func New(cfg *config.Config, reg *cleanup.Registry) *Engine {
	return &Engine{
		ctx: &steps.Context{
			Config:  cfg,
			Runner:  &execute.Runner{DryRun: cfg.DryRun},
			Cleanup: reg,
		},
	}
}

// RunFull clears the summary and executes every step in order, stopping at
// the first failure. The failure is logged and returned; callers decide
// whether it reaches the process exit code.
func (e *Engine) RunFull() error {
	e.summary = e.summary[:0]

	ordered := make([]steps.Step, 0, len(steps.Names()))
	for _, name := range steps.Names() {
		step, err := steps.New(name)
		if err != nil {
			return err
		}
		ordered = append(ordered, step)
	}
	return e.runSequence(ordered)
}

// RunStep executes exactly one named step.
func (e *Engine) RunStep(name string) error {
	step, err := steps.New(name)
	if err != nil {
		return err
	}
	return e.runSequence([]steps.Step{step})
}

// Summary returns a copy of the records accumulated so far.
func (e *Engine) Summary() []Record {
	return slices.Clone(e.summary)
}

func (e *Engine) runSequence(ordered []steps.Step) error {
	for _, step := range ordered {
		status, err := step.Run(e.ctx)
		if err != nil {
			slog.Error("step failed", "step", step.Name(), "error", err)
			return err
		}
		e.summary = append(e.summary, Record{Step: step.Title(), Status: status})
	}
	return nil
}
