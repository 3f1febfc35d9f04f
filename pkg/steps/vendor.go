package steps

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/systemstart/fwbuild/pkg/execute"
	"github.com/systemstart/fwbuild/pkg/logging"
)

type vendorBlob struct {
	Name     string
	Desc     string
	Optional bool
}

// Blobs expected under the vendor remote path. Optional entries degrade to a
// warning when missing on the device.
var vendorBlobs = []vendorBlob{
	{Name: "IPQ5018", Desc: "ath11k board data and firmware"},
	{Name: "qca-nss0-retail.bin", Desc: "NSS acceleration blob"},
	{Name: "qcn9000", Desc: "optional 5 GHz board data", Optional: true},
}

type vendorStep struct{}

func (vendorStep) Name() string  { return NameVendor }
func (vendorStep) Title() string { return "Vendor assets" }

func (vendorStep) Run(ctx *Context) (string, error) {
	cfg := ctx.Config
	slog.Info("fetching vendor assets",
		"host", cfg.VendorHost, "path", cfg.VendorPath, "dest", cfg.VendorAssets)
	if ctx.DryRun() {
		logging.Ok("dry-run mode: skipping vendor asset transfer")
		return statusOK, nil
	}

	if err := os.MkdirAll(cfg.VendorAssets, 0o750); err != nil {
		return "", fmt.Errorf("creating vendor staging directory: %w", err)
	}

	for _, blob := range vendorBlobs {
		source := fmt.Sprintf("%s@%s:%s", cfg.VendorUser, cfg.VendorHost,
			filepath.ToSlash(filepath.Join(cfg.VendorPath, blob.Name)))
		result, err := ctx.Runner.Run(execute.Options{
			Argv: []string{"scp", "-r", source, cfg.VendorAssets},
		})
		switch {
		case err != nil:
			return "", fmt.Errorf("%w: fetching %s: %v", ErrRemoteTransfer, blob.Name, err)
		case result.ExitCode != 0 && blob.Optional:
			slog.Warn("optional vendor blob unavailable; continuing",
				"blob", blob.Name, "desc", blob.Desc, "exit_code", result.ExitCode)
		case result.ExitCode != 0:
			return "", fmt.Errorf("%w: mandatory blob %s (%s) exit code %d",
				ErrRemoteTransfer, blob.Name, blob.Desc, result.ExitCode)
		default:
			logging.Ok("vendor blob staged", "blob", blob.Name)
		}
	}

	logging.Ok("vendor assets available", "dest", cfg.VendorAssets)
	return statusOK, nil
}
