package steps

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/systemstart/fwbuild/pkg/execute"
	"github.com/systemstart/fwbuild/pkg/logging"
)

type syncStep struct{}

func (syncStep) Name() string  { return NameSync }
func (syncStep) Title() string { return "Repository sync" }

// Run clones the build tree if absent, otherwise hard-resets it to the remote
// branch tip, then refreshes the feed metadata. Running it twice against an
// unchanged remote yields the same tree both times.
func (syncStep) Run(ctx *Context) (string, error) {
	cfg := ctx.Config
	slog.Info("synchronising build repository", "repo", cfg.RepoURL, "branch", cfg.RepoBranch)
	if ctx.DryRun() {
		logging.Ok("dry-run mode: skipping repository sync")
		return statusOK, nil
	}

	repoDir := cfg.RepoDir()
	if _, err := os.Stat(repoDir); err == nil {
		slog.Info("repository exists; fetching updates", "dir", repoDir)
		if err := gitRun(ctx, repoDir, "fetch", "--all"); err != nil {
			return "", err
		}
		if err := gitRun(ctx, repoDir, "reset", "--hard", "origin/"+cfg.RepoBranch); err != nil {
			return "", err
		}
	} else {
		if err := os.MkdirAll(cfg.BuildRoot, 0o750); err != nil {
			return "", fmt.Errorf("creating build root: %w", err)
		}
		if err := gitRun(ctx, "", "clone", "--branch", cfg.RepoBranch, cfg.RepoURL, repoDir); err != nil {
			return "", err
		}
	}

	for _, action := range []string{"update", "install"} {
		if _, err := ctx.Runner.Run(execute.Options{
			Argv:  []string{"./scripts/feeds", action, "-a"},
			Dir:   repoDir,
			Check: true,
		}); err != nil {
			return "", fmt.Errorf("%w: feeds %s: %v", ErrRepoState, action, err)
		}
	}

	logging.Ok("repository synchronised", "dir", repoDir)
	return statusOK, nil
}

func gitRun(ctx *Context, dir string, args ...string) error {
	_, err := ctx.Runner.Run(execute.Options{
		Argv:  append([]string{"git"}, args...),
		Dir:   dir,
		Check: true,
	})
	if err != nil {
		return fmt.Errorf("%w: git %s: %v", ErrRepoState, args[0], err)
	}
	return nil
}
