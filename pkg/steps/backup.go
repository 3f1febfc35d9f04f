package steps

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/systemstart/fwbuild/pkg/execute"
	"github.com/systemstart/fwbuild/pkg/logging"
)

const manifestName = "checksums.sha256"

type backupStep struct{}

func (backupStep) Name() string  { return NameBackup }
func (backupStep) Title() string { return "Backup" }

// Run retrieves diagnostics and raw partition images from the target device.
// The connectivity probe is mandatory; every individual transfer is
// best-effort so a single unreadable partition does not lose the rest of the
// backup.
func (backupStep) Run(ctx *Context) (string, error) {
	cfg := ctx.Config
	slog.Info("backing up device partitions and diagnostics",
		"host", cfg.BackupHost, "dest", cfg.BackupDir())
	if ctx.DryRun() {
		logging.Ok("dry-run mode: skipping device backup")
		return statusOK, nil
	}

	if err := os.MkdirAll(cfg.BackupDir(), 0o750); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}

	remote := fmt.Sprintf("%s@%s", cfg.BackupUser, cfg.BackupHost)
	if _, err := ctx.Runner.Run(execute.Options{
		Argv:  []string{"ssh", remote, "true"},
		Check: true,
	}); err != nil {
		return "", fmt.Errorf("%w: host %s unreachable: %v", ErrRemoteTransfer, cfg.BackupHost, err)
	}

	banner, err := render("backup-banner", backupBanner, map[string]string{
		"Host":       cfg.BackupHost,
		"RemotePath": cfg.BackupPath,
	})
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(cfg.BackupDir(), "backup_info.txt"), []byte(banner), 0o640); err != nil {
		return "", fmt.Errorf("writing backup banner: %w", err)
	}

	diagnostics := map[string]string{
		"dmesg.txt":     "dmesg",
		"mtd_table.txt": "cat /proc/mtd",
	}
	for name, command := range diagnostics {
		dest := filepath.Join(cfg.BackupDir(), name)
		err := ctx.Runner.RunToFile(execute.Options{
			Argv: []string{"ssh", remote, command},
		}, dest, true)
		if err != nil {
			return "", err
		}
	}

	for _, part := range cfg.Partitions {
		dest := filepath.Join(cfg.BackupDir(), fmt.Sprintf("%s_%s.bin", part.Device, part.Label))
		dump := fmt.Sprintf("dd if=/dev/%s bs=131072", part.Device)
		err := ctx.Runner.RunToFile(execute.Options{
			Argv: []string{"ssh", remote, dump},
		}, dest, true)
		if err != nil {
			return "", err
		}
	}

	if err := writeChecksumManifest(cfg.BackupDir()); err != nil {
		return "", err
	}

	logging.Ok("backup completed", "dest", cfg.BackupDir())
	return statusOK, nil
}

// writeChecksumManifest records one "<sha256>  <filename>" line per regular
// file in dir (the manifest itself excluded), sorted by filename.
func writeChecksumManifest(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("listing backup directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == manifestName {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var lines strings.Builder
	for _, name := range names {
		sum, err := sha256File(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		fmt.Fprintf(&lines, "%s  %s\n", sum, name)
	}

	path := filepath.Join(dir, manifestName)
	if err := os.WriteFile(path, []byte(lines.String()), 0o640); err != nil {
		return fmt.Errorf("writing checksum manifest: %w", err)
	}
	logging.Ok("checksum manifest written", "path", path, "files", len(names))
	return nil
}
