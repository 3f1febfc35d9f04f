package steps

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func artifactPath(ctx *Context, name string) string {
	return filepath.Join(ctx.Config.RepoDir(), "bin", "targets", "qualcommax", "ipq50xx", name)
}

func TestVerify_PicksNewestMatch(t *testing.T) {
	ctx := newTestContext(t, false)
	makeRepo(t, ctx)

	older := artifactPath(ctx, "old-ra74-squashfs-sysupgrade.bin")
	newer := artifactPath(ctx, "new-ra74-squashfs-sysupgrade.bin")
	writeTestFile(t, older, "old image")
	writeTestFile(t, newer, "new image")
	past := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(older, past, past); err != nil {
		t.Fatal(err)
	}

	status, err := verifyStep{}.Run(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != statusOK {
		t.Errorf("unexpected status %q", status)
	}

	got, err := newestFile(ctx.Config.RepoDir(), []string{
		"bin/targets/qualcommax/ipq50xx/old-ra74-squashfs-sysupgrade.bin",
		"bin/targets/qualcommax/ipq50xx/new-ra74-squashfs-sysupgrade.bin",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != newer {
		t.Errorf("expected newest match %s, got %s", newer, got)
	}
}

func TestVerify_ChecksumMatchesContent(t *testing.T) {
	ctx := newTestContext(t, false)
	makeRepo(t, ctx)
	path := artifactPath(ctx, "only-ra74-sysupgrade.bin")
	writeTestFile(t, path, "firmware payload")

	sum, err := sha256File(path)
	if err != nil {
		t.Fatal(err)
	}
	want := sha256.Sum256([]byte("firmware payload"))
	if sum != hex.EncodeToString(want[:]) {
		t.Errorf("checksum mismatch: %s", sum)
	}
}

func TestVerify_NoMatchFails(t *testing.T) {
	ctx := newTestContext(t, false)
	makeRepo(t, ctx)

	_, err := verifyStep{}.Run(ctx)
	if !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound, got %v", err)
	}
}

func TestVerify_MissingRepo(t *testing.T) {
	ctx := newTestContext(t, false)

	_, err := verifyStep{}.Run(ctx)
	if !errors.Is(err, ErrRepoState) {
		t.Fatalf("expected ErrRepoState, got %v", err)
	}
}

func TestVerify_DryRunNoMatchSimulatesSuccess(t *testing.T) {
	ctx := newTestContext(t, true)

	status, err := verifyStep{}.Run(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != statusSimulated {
		t.Errorf("expected simulated success, got %q", status)
	}
}

func TestVerify_DryRunWithMatchReportsOK(t *testing.T) {
	ctx := newTestContext(t, true)
	makeRepo(t, ctx)
	writeTestFile(t, artifactPath(ctx, "x-ra74-sysupgrade.bin"), "image")

	status, err := verifyStep{}.Run(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != statusOK {
		t.Errorf("unexpected status %q", status)
	}
}
