package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearBuildEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BUILD_VENDOR_USER", "BUILD_VENDOR_HOST", "BUILD_VENDOR_PATH",
		"BUILD_BACKUP_USER", "BUILD_BACKUP_HOST", "BUILD_BACKUP_PATH",
		"BUILD_BACKUP_DIR", "BUILD_ROOT", "BUILD_REPO_URL",
		"BUILD_REPO_BRANCH", "BUILD_REPO_NAME", "BUILD_ARTIFACT_GLOB",
		"BUILD_VENDOR_ASSETS", "BUILD_LAN_ADDR", "BUILD_BACKUP_PARTS",
		"DRY_RUN",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearBuildEnv(t)

	cfg, err := load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RepoName != "immortalwrt" {
		t.Errorf("unexpected repo name %q", cfg.RepoName)
	}
	if cfg.DryRun {
		t.Error("dry-run should default to false")
	}
	if len(cfg.Partitions) != 3 {
		t.Errorf("expected 3 default partitions, got %d", len(cfg.Partitions))
	}
	if cfg.RepoDir() != filepath.Join(cfg.BuildRoot, "immortalwrt") {
		t.Errorf("unexpected repo dir %q", cfg.RepoDir())
	}
	if cfg.BackupDir() != filepath.Join(cfg.BuildRoot, "backups") {
		t.Errorf("unexpected backup dir %q", cfg.BackupDir())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearBuildEnv(t)
	t.Setenv("BUILD_ROOT", "/tmp/workbench")
	t.Setenv("BUILD_REPO_NAME", "openwrt")
	t.Setenv("BUILD_BACKUP_PARTS", "mtd4:art")
	t.Setenv("DRY_RUN", "YES")

	cfg, err := load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BuildRoot != "/tmp/workbench" {
		t.Errorf("unexpected build root %q", cfg.BuildRoot)
	}
	if cfg.RepoDir() != filepath.Join("/tmp/workbench", "openwrt") {
		t.Errorf("unexpected repo dir %q", cfg.RepoDir())
	}
	if !cfg.DryRun {
		t.Error("DRY_RUN=YES should enable dry-run")
	}
	if len(cfg.Partitions) != 1 || cfg.Partitions[0] != (Partition{Device: "mtd4", Label: "art"}) {
		t.Errorf("unexpected partitions %v", cfg.Partitions)
	}
}

func TestLoad_YAMLFileThenEnvWins(t *testing.T) {
	clearBuildEnv(t)

	file := filepath.Join(t.TempDir(), "fwbuild.yaml")
	if err := os.WriteFile(file, []byte("repo_branch: openwrt-24.10\nbuild_root: /from/yaml\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BUILD_ROOT", "/from/env")

	cfg, err := load(file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RepoBranch != "openwrt-24.10" {
		t.Errorf("yaml override not applied, branch %q", cfg.RepoBranch)
	}
	if cfg.BuildRoot != "/from/env" {
		t.Errorf("env should win over yaml, got %q", cfg.BuildRoot)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	clearBuildEnv(t)

	file := filepath.Join(t.TempDir(), "fwbuild.yaml")
	if err := os.WriteFile(file, []byte(":\n  - ["), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := load(file); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestParseBool(t *testing.T) {
	affirmative := []string{"1", "true", "TRUE", "yes", "Yes", "on", " ON "}
	for _, v := range affirmative {
		if !ParseBool(v) {
			t.Errorf("ParseBool(%q) should be true", v)
		}
	}
	negative := []string{"", "0", "false", "no", "off", "2", "enabled"}
	for _, v := range negative {
		if ParseBool(v) {
			t.Errorf("ParseBool(%q) should be false", v)
		}
	}
}

func TestParsePartitions(t *testing.T) {
	parts, err := ParsePartitions("mtd1:bootloader, mtd9:kernel ,mtd10:rootfs,")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parts) != 3 {
		t.Fatalf("expected 3 partitions, got %d", len(parts))
	}
	if parts[1] != (Partition{Device: "mtd9", Label: "kernel"}) {
		t.Errorf("unexpected partition %v", parts[1])
	}

	for _, bad := range []string{"mtd1", "mtd1:", ":kernel"} {
		if _, err := ParsePartitions(bad); err == nil {
			t.Errorf("expected error for spec %q", bad)
		}
	}
}

func TestValidate_MissingRequired(t *testing.T) {
	cfg := defaults()
	cfg.RepoURL = ""
	cfg.Partitions = []Partition{{Device: "mtd1", Label: "a"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for empty repo_url")
	}
}

func TestValidate_EmptyPartitions(t *testing.T) {
	cfg := defaults()
	cfg.Partitions = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for empty partition list")
	}
}
