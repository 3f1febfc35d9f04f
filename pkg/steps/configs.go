package steps

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/systemstart/fwbuild/pkg/logging"
)

const deviceStanzaMarker = "Device/xiaomi_redmi_ra74"

// deviceTreeSource describes the RA74 board for the kernel build.
const deviceTreeSource = `// SPDX-License-Identifier: GPL-2.0-or-later
/dts-v1/;

#include "ipq5018.dtsi"
#include <dt-bindings/gpio/gpio.h>
#include <dt-bindings/input/input.h>

/ {
	model = "Xiaomi Redmi AX5400 (RA74)";
	compatible = "xiaomi,redmi-ra74", "qcom,ipq5018";

	aliases {
		serial0 = &blsp1_uart1;
		led-boot = &led_power;
		led-failsafe = &led_power;
		led-running = &led_power;
		led-upgrade = &led_power;
	};

	chosen {
		// Bootloader parameters confirmed on stock firmware.
		bootargs-override = "ubi.mtd=rootfs_1 root=mtd:ubi_rootfs rootfstype=squashfs rootwait";
		stdout-path = "serial0:115200n8";
	};

	leds {
		compatible = "gpio-leds";
		led_power: power {
			label = "ra74:green:power";
			gpios = <&tlmm 10 GPIO_ACTIVE_HIGH>;
			default-state = "on";
		};
	};

	keys {
		compatible = "gpio-keys";
		reset {
			label = "reset";
			gpios = <&tlmm 12 GPIO_ACTIVE_LOW>;
			linux,code = <KEY_RESTART>;
		};
	};
};

/* UART */
&blsp1_uart1 { status = "okay"; };
`

// deviceStanza registers the RA74 image recipe with the build system.
const deviceStanza = `define ` + deviceStanzaMarker + `
  DEVICE_VENDOR := Xiaomi
  DEVICE_MODEL := Redmi AX5400 (RA74)
  DEVICE_DTS := qcom/ipq5018-redmi-ra74
  SOC := ipq5018
  IMAGE/sysupgrade.bin := sysupgrade-tar
  UBINIZE_OPTS := -E 5
  BLOCKSIZE := 128k
  PAGESIZE := 2048
  KERNEL_SIZE := 4096k
  KERNEL := kernel-bin | lzma | uImage lzma
  DEVICE_PACKAGES := kmod-ath11k-pci ath11k-firmware-ipq5018 wpad-basic-mbedtls \
	 irqbalance ethtool
  SUPPORTED_DEVICES := xiaomi,redmi-ra74
endef
TARGET_DEVICES += xiaomi_redmi_ra74
`

type configsStep struct{}

func (configsStep) Name() string  { return NameConfigs }
func (configsStep) Title() string { return "Custom configs" }

// Run idempotently injects the RA74 device description into the build tree:
// the device-tree source file and the image-recipe stanza. Both writes are
// safe to repeat against an already-patched tree.
func (configsStep) Run(ctx *Context) (string, error) {
	slog.Info("applying custom configuration files")
	if ctx.DryRun() {
		logging.Ok("dry-run mode: would patch device tree source and image recipe")
		return statusOK, nil
	}
	if err := requireRepo(ctx); err != nil {
		return "", err
	}

	repoDir := ctx.Config.RepoDir()
	dtsPath := filepath.Join(repoDir, "target", "linux", "qualcommax", "files-6.6",
		"arch", "arm64", "boot", "dts", "qcom", "ipq5018-redmi-ra74.dts")
	wrote, err := EnsureFile(ctx, dtsPath, deviceTreeSource)
	if err != nil {
		return "", err
	}
	if wrote {
		logging.Ok("updated RA74 device tree source")
	} else {
		logging.Ok("RA74 device tree source already up to date")
	}

	makefilePath := filepath.Join(repoDir, "target", "linux", "qualcommax", "image", "generic.mk")
	content, err := os.ReadFile(makefilePath)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%w: expected image recipe not found at %s", ErrConfigTarget, makefilePath)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", makefilePath, err)
	}

	if !strings.Contains(string(content), deviceStanzaMarker) {
		handle, err := os.OpenFile(makefilePath, os.O_APPEND|os.O_WRONLY, 0o640)
		if err != nil {
			return "", fmt.Errorf("opening %s for append: %w", makefilePath, err)
		}
		_, writeErr := handle.WriteString("\n" + deviceStanza)
		if closeErr := handle.Close(); writeErr == nil {
			writeErr = closeErr
		}
		if writeErr != nil {
			return "", fmt.Errorf("appending device stanza: %w", writeErr)
		}
		logging.Ok("appended RA74 device stanza to generic.mk")
	} else {
		logging.Ok("RA74 device stanza already present in generic.mk")
	}

	logging.Ok("custom configuration overlays applied")
	return statusOK, nil
}
