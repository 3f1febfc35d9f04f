package steps

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/systemstart/fwbuild/pkg/logging"
)

const statusSimulated = "OK (simulated)"

type verifyStep struct{}

func (verifyStep) Name() string  { return NameVerify }
func (verifyStep) Title() string { return "Artifact verification" }

// Run matches the configured artifact glob inside the build tree, picks the
// most recently modified match and reports its checksum. A dry run never
// fails on an empty tree: it reports a placeholder digest instead.
func (verifyStep) Run(ctx *Context) (string, error) {
	cfg := ctx.Config
	slog.Info("verifying build artifacts", "glob", cfg.ArtifactGlob)

	if !ctx.DryRun() {
		if err := requireRepo(ctx); err != nil {
			return "", err
		}
	}

	matches := globArtifacts(cfg.RepoDir(), cfg.ArtifactGlob)
	if len(matches) == 0 {
		if ctx.DryRun() {
			slog.Warn("dry-run mode: no artifacts present; using placeholder checksum")
			logging.Ok("sha256", "digest", strings.Repeat("0", 64))
			return statusSimulated, nil
		}
		return "", fmt.Errorf("%w: no artifacts match glob %q", ErrArtifactNotFound, cfg.ArtifactGlob)
	}

	latest, err := newestFile(cfg.RepoDir(), matches)
	if err != nil {
		return "", err
	}

	digest := strings.Repeat("0", 64)
	if ctx.DryRun() {
		logging.Ok("dry-run mode: using placeholder checksum")
	} else {
		digest, err = sha256File(latest)
		if err != nil {
			return "", err
		}
	}

	logging.Ok("latest artifact", "path", latest)
	logging.Ok("sha256", "digest", digest)
	return statusOK, nil
}

func globArtifacts(repoDir, pattern string) []string {
	matches, err := doublestar.Glob(os.DirFS(repoDir), pattern)
	if err != nil {
		slog.Warn("artifact glob failed", "glob", pattern, "error", err)
		return nil
	}
	return matches
}

func newestFile(repoDir string, relPaths []string) (string, error) {
	var (
		newest     string
		newestTime time.Time
	)
	for _, rel := range relPaths {
		path := filepath.Join(repoDir, rel)
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", path, err)
		}
		if info.IsDir() {
			continue
		}
		if newest == "" || info.ModTime().After(newestTime) {
			newest = path
			newestTime = info.ModTime()
		}
	}
	if newest == "" {
		return "", fmt.Errorf("%w: glob matched only directories", ErrArtifactNotFound)
	}
	return newest, nil
}
