package steps

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/systemstart/fwbuild/pkg/logging"
)

// EnsureFile writes content to path only when the existing content differs,
// creating parent directories as needed. Unchanged files are left untouched
// so downstream build systems see no spurious modification. Files under a
// uci-defaults directory are made executable. Reports whether a write
// occurred.
func EnsureFile(ctx *Context, path, content string) (bool, error) {
	if ctx.DryRun() {
		logging.Ok("dry-run mode: would write file", "path", path)
		return false, nil
	}

	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	if err == nil && string(existing) == content {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return false, fmt.Errorf("creating parent directories for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o640); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	if isFirstBootScript(path) {
		if err := os.Chmod(path, 0o755); err != nil {
			return false, fmt.Errorf("marking %s executable: %w", path, err)
		}
	}
	return true, nil
}

func isFirstBootScript(path string) bool {
	return strings.Contains(filepath.ToSlash(path), "/uci-defaults/")
}
