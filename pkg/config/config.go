package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const configFilename = "fwbuild.yaml"

// Partition identifies a flash partition to back up from the target device.
type Partition struct {
	Device string // e.g. "mtd9"
	Label  string // e.g. "kernel"
}

// Config holds every workflow parameter. It is resolved once at startup
// (built-in defaults, then an optional fwbuild.yaml, then the environment)
// and never mutated afterwards.
type Config struct {
	VendorUser string `yaml:"vendor_user"`
	VendorHost string `yaml:"vendor_host"`
	VendorPath string `yaml:"vendor_path"`

	BackupUser string `yaml:"backup_user"`
	BackupHost string `yaml:"backup_host"`
	BackupPath string `yaml:"backup_path"`
	BackupDest string `yaml:"backup_dir"`

	BuildRoot  string `yaml:"build_root"`
	RepoURL    string `yaml:"repo_url"`
	RepoBranch string `yaml:"repo_branch"`
	RepoName   string `yaml:"repo_name"`

	ArtifactGlob string `yaml:"artifact_glob"`
	VendorAssets string `yaml:"vendor_assets"`
	LanAddr      string `yaml:"lan_addr"`

	PartitionSpec string `yaml:"backup_parts"`

	DryRun     bool        `yaml:"-"`
	Partitions []Partition `yaml:"-"`
}

func defaults() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		VendorUser:    "root",
		VendorHost:    "192.168.1.190",
		VendorPath:    "/lib/firmware",
		BackupUser:    "root",
		BackupHost:    "192.168.1.190",
		BackupPath:    "/",
		BuildRoot:     "./builder_workspace",
		RepoURL:       "https://github.com/immortalwrt/immortalwrt.git",
		RepoBranch:    "master",
		RepoName:      "immortalwrt",
		ArtifactGlob:  "bin/targets/qualcommax/ipq50xx/*ra74*sysupgrade*.bin",
		VendorAssets:  filepath.Join(home, "ra74-fw"),
		LanAddr:       "192.168.1.190",
		PartitionSpec: "mtd1:bootloader,mtd9:kernel,mtd10:rootfs",
	}
}

// Load resolves the configuration from defaults, an optional fwbuild.yaml in
// the working directory, and environment overrides.
func Load() (*Config, error) {
	return load(configFilename)
}

func load(file string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(file)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", file, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}

	applyEnv(&cfg)
	cfg.DryRun = ParseBool(os.Getenv("DRY_RUN"))

	parts, err := ParsePartitions(cfg.PartitionSpec)
	if err != nil {
		return nil, err
	}
	cfg.Partitions = parts

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	env := func(key string, target *string) {
		if v := os.Getenv(key); v != "" {
			*target = v
		}
	}
	env("BUILD_VENDOR_USER", &cfg.VendorUser)
	env("BUILD_VENDOR_HOST", &cfg.VendorHost)
	env("BUILD_VENDOR_PATH", &cfg.VendorPath)
	env("BUILD_BACKUP_USER", &cfg.BackupUser)
	env("BUILD_BACKUP_HOST", &cfg.BackupHost)
	env("BUILD_BACKUP_PATH", &cfg.BackupPath)
	env("BUILD_BACKUP_DIR", &cfg.BackupDest)
	env("BUILD_ROOT", &cfg.BuildRoot)
	env("BUILD_REPO_URL", &cfg.RepoURL)
	env("BUILD_REPO_BRANCH", &cfg.RepoBranch)
	env("BUILD_REPO_NAME", &cfg.RepoName)
	env("BUILD_ARTIFACT_GLOB", &cfg.ArtifactGlob)
	env("BUILD_VENDOR_ASSETS", &cfg.VendorAssets)
	env("BUILD_LAN_ADDR", &cfg.LanAddr)
	env("BUILD_BACKUP_PARTS", &cfg.PartitionSpec)
}

// ParseBool reports whether s is an affirmative toggle value.
// Accepted: 1, true, yes, on (case-insensitive).
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// ParsePartitions parses a comma-separated list of device:label pairs.
func ParsePartitions(spec string) ([]Partition, error) {
	var parts []Partition
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		device, label, ok := strings.Cut(entry, ":")
		device = strings.TrimSpace(device)
		label = strings.TrimSpace(label)
		if !ok || device == "" || label == "" {
			return nil, fmt.Errorf("invalid partition spec entry %q (want device:label)", entry)
		}
		parts = append(parts, Partition{Device: device, Label: label})
	}
	return parts, nil
}

// Validate checks that every required parameter is set.
func (c *Config) Validate() error {
	required := map[string]string{
		"build_root":    c.BuildRoot,
		"repo_url":      c.RepoURL,
		"repo_branch":   c.RepoBranch,
		"repo_name":     c.RepoName,
		"artifact_glob": c.ArtifactGlob,
		"vendor_host":   c.VendorHost,
		"backup_host":   c.BackupHost,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("configuration value %s is required", name)
		}
	}
	if len(c.Partitions) == 0 {
		return fmt.Errorf("backup partition list is empty")
	}
	return nil
}

// RepoDir is the local checkout of the build source tree.
func (c *Config) RepoDir() string { return filepath.Join(c.BuildRoot, c.RepoName) }

// OverlayDir is the files/ overlay inside the build tree.
func (c *Config) OverlayDir() string { return filepath.Join(c.RepoDir(), "files") }

// BackupDir is where device backups are stored.
func (c *Config) BackupDir() string {
	if c.BackupDest != "" {
		return c.BackupDest
	}
	return filepath.Join(c.BuildRoot, "backups")
}

// LogDir holds the per-run log files.
func (c *Config) LogDir() string { return filepath.Join(c.BuildRoot, "logs") }
