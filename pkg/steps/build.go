package steps

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/systemstart/fwbuild/pkg/execute"
	"github.com/systemstart/fwbuild/pkg/logging"
)

type buildStep struct{}

func (buildStep) Name() string  { return NameBuild }
func (buildStep) Title() string { return "Build" }

func (buildStep) Run(ctx *Context) (string, error) {
	jobs := runtime.NumCPU()
	slog.Info("starting parallel build", "jobs", jobs)
	if ctx.DryRun() {
		logging.Ok("dry-run mode: skipping firmware build")
		return statusOK, nil
	}
	if err := requireRepo(ctx); err != nil {
		return "", err
	}

	// Build output goes straight to the terminal; a full firmware build is
	// far too large to buffer.
	code, err := ctx.Runner.RunInteractive(execute.Options{
		Argv: []string{"make", fmt.Sprintf("-j%d", jobs)},
		Dir:  ctx.Config.RepoDir(),
	})
	if err != nil {
		return "", err
	}
	if code != 0 {
		return "", fmt.Errorf("%w: make exited with code %d", ErrProcessExit, code)
	}

	logging.Ok("build completed successfully")
	return statusOK, nil
}
