package steps

import (
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/systemstart/fwbuild/pkg/logging"
)

// Tools the workflow shells out to. Checked up front so a missing dependency
// surfaces before any remote or repository work starts.
var requiredTools = []string{"git", "ssh", "scp", "rsync", "make", "awk", "tar", "xz"}

type preflightStep struct{}

func (preflightStep) Name() string  { return NamePreflight }
func (preflightStep) Title() string { return "Preflight checks" }

func (preflightStep) Run(ctx *Context) (string, error) {
	slog.Info("running preflight checks")
	if ctx.DryRun() {
		logging.Ok("dry-run mode: tool resolution only, no commands will run")
	}

	if err := CheckTools(); err != nil {
		return "", err
	}

	logging.Ok("all required tooling is available")
	return statusOK, nil
}

// CheckTools resolves every required external tool on PATH and reports all
// missing ones at once.
func CheckTools() error {
	var missing []string
	for _, tool := range requiredTools {
		if _, err := exec.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrToolMissing, strings.Join(missing, ", "))
	}
	return nil
}
