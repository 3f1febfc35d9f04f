package steps

import (
	"fmt"
	"os"

	"github.com/systemstart/fwbuild/pkg/cleanup"
	"github.com/systemstart/fwbuild/pkg/config"
	"github.com/systemstart/fwbuild/pkg/execute"
)

// Context provides the runtime context for a step. It is owned by the engine
// and passed by reference; steps may register cleanup paths but never replace
// the context itself.
type Context struct {
	Config  *config.Config
	Runner  *execute.Runner
	Cleanup *cleanup.Registry
}

// DryRun reports whether all real side effects are suppressed for this run.
func (c *Context) DryRun() bool { return c.Config.DryRun }

// Step is one named operation of the build workflow. Name is the stable CLI
// keyword; Title is the human label used in the menu and the summary table.
// Run returns the success status for the summary record, or a typed failure
// that aborts the remaining workflow.
type Step interface {
	Name() string
	Title() string
	Run(ctx *Context) (string, error)
}

const statusOK = "OK"

// requireRepo fails with a repository state error when the build tree has not
// been synced yet.
func requireRepo(ctx *Context) error {
	if _, err := os.Stat(ctx.Config.RepoDir()); err != nil {
		return fmt.Errorf("%w: build repository missing at %s; run the sync step first",
			ErrRepoState, ctx.Config.RepoDir())
	}
	return nil
}
