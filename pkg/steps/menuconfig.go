package steps

import (
	"fmt"
	"log/slog"

	"github.com/systemstart/fwbuild/pkg/execute"
	"github.com/systemstart/fwbuild/pkg/logging"
)

type menuconfigStep struct{}

func (menuconfigStep) Name() string  { return NameMenuconfig }
func (menuconfigStep) Title() string { return "menuconfig" }

func (menuconfigStep) Run(ctx *Context) (string, error) {
	slog.Info("launching make menuconfig (interactive)")
	if ctx.DryRun() {
		logging.Ok("dry-run mode: skipping interactive configuration")
		return statusOK, nil
	}
	if err := requireRepo(ctx); err != nil {
		return "", err
	}

	code, err := ctx.Runner.RunInteractive(execute.Options{
		Argv: []string{"make", "menuconfig"},
		Dir:  ctx.Config.RepoDir(),
	})
	if err != nil {
		return "", err
	}
	if code != 0 {
		return "", fmt.Errorf("%w: make menuconfig exited with code %d", ErrProcessExit, code)
	}

	logging.Ok("configuration step completed")
	return statusOK, nil
}
