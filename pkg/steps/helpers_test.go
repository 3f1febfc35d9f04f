package steps

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/systemstart/fwbuild/pkg/cleanup"
	"github.com/systemstart/fwbuild/pkg/config"
	"github.com/systemstart/fwbuild/pkg/execute"
)

func newTestContext(t *testing.T, dryRun bool) *Context {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{
		VendorUser:   "root",
		VendorHost:   "192.0.2.1",
		VendorPath:   "/lib/firmware",
		BackupUser:   "root",
		BackupHost:   "192.0.2.1",
		BackupPath:   "/",
		BuildRoot:    root,
		RepoURL:      "https://example.invalid/firmware.git",
		RepoBranch:   "master",
		RepoName:     "firmware",
		ArtifactGlob: "bin/targets/**/*sysupgrade*.bin",
		VendorAssets: filepath.Join(root, "ra74-fw"),
		LanAddr:      "192.168.1.190",
		Partitions:   []config.Partition{{Device: "mtd9", Label: "kernel"}},
		DryRun:       dryRun,
	}
	return &Context{
		Config:  cfg,
		Runner:  &execute.Runner{DryRun: dryRun},
		Cleanup: cleanup.New(),
	}
}

func makeRepo(t *testing.T, ctx *Context) string {
	t.Helper()
	repoDir := ctx.Config.RepoDir()
	if err := os.MkdirAll(repoDir, 0o750); err != nil {
		t.Fatal(err)
	}
	return repoDir
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected file %s to exist: %v", path, err)
	}
	return string(content)
}
