package steps

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/systemstart/fwbuild/pkg/logging"
)

type overlayStep struct{}

func (overlayStep) Name() string  { return NameOverlay }
func (overlayStep) Title() string { return "Overlay" }

// Run stages the files/ overlay in a temporary sibling directory and swaps it
// into the build tree in one rename, so a partially-built overlay is never
// visible to the build system. The staging directory is registered for
// cleanup in case the swap never happens.
func (overlayStep) Run(ctx *Context) (string, error) {
	cfg := ctx.Config
	slog.Info("preparing files/ overlay", "dest", cfg.OverlayDir())
	if ctx.DryRun() {
		logging.Ok("dry-run mode: skipping overlay preparation")
		return statusOK, nil
	}
	if err := requireRepo(ctx); err != nil {
		return "", err
	}

	staging, err := os.MkdirTemp(cfg.BuildRoot, "overlay-")
	if err != nil {
		return "", fmt.Errorf("creating overlay staging directory: %w", err)
	}
	ctx.Cleanup.RegisterPath(staging)

	script, err := render("first-boot", firstBootScript, map[string]string{"LanAddr": cfg.LanAddr})
	if err != nil {
		return "", err
	}
	scriptPath := filepath.Join(staging, "etc", "uci-defaults", "99-ra74-dumb-ap")
	if _, err := EnsureFile(ctx, scriptPath, script); err != nil {
		return "", err
	}

	firmwareRoot := filepath.Join(staging, "lib", "firmware")
	if err := os.MkdirAll(firmwareRoot, 0o750); err != nil {
		return "", fmt.Errorf("creating firmware overlay directory: %w", err)
	}

	if _, err := os.Stat(cfg.VendorAssets); err == nil {
		if err := copyTree(cfg.VendorAssets, firmwareRoot); err != nil {
			return "", err
		}
	} else {
		slog.Warn("vendor assets directory missing; using placeholder", "dir", cfg.VendorAssets)
		note, err := render("vendor-placeholder", vendorPlaceholder, map[string]string{
			"User": cfg.VendorUser,
			"Host": cfg.VendorHost,
			"Path": cfg.VendorPath,
		})
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(filepath.Join(firmwareRoot, "README.txt"), []byte(note), 0o640); err != nil {
			return "", fmt.Errorf("writing placeholder note: %w", err)
		}
	}

	overlayDir := cfg.OverlayDir()
	if err := os.RemoveAll(overlayDir); err != nil {
		return "", fmt.Errorf("removing previous overlay: %w", err)
	}
	if err := os.Rename(staging, overlayDir); err != nil {
		return "", fmt.Errorf("moving overlay into place: %w", err)
	}

	logging.Ok("overlay prepared", "path", overlayDir)
	return statusOK, nil
}

// copyTree mirrors src into dst, preserving file modes.
func copyTree(src, dst string) error {
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk error at %s: %w", path, err)
		}
		rel, relErr := filepath.Rel(src, path)
		if relErr != nil {
			return fmt.Errorf("computing relative path for %s: %w", path, relErr)
		}
		return copyEntry(dst, rel, path, d)
	})
	if err != nil {
		return fmt.Errorf("copying tree: %w", err)
	}
	return nil
}

func copyEntry(dst, rel, srcPath string, d fs.DirEntry) error {
	target := filepath.Join(dst, rel)

	if d.IsDir() {
		if err := os.MkdirAll(target, 0o750); err != nil {
			return fmt.Errorf("creating directory %s: %w", target, err)
		}
		return nil
	}

	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", srcPath, err)
	}

	info, err := d.Info()
	if err != nil {
		return fmt.Errorf("stat %s: %w", srcPath, err)
	}

	if err := os.WriteFile(target, data, info.Mode()); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	return nil
}
