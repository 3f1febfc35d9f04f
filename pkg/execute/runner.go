package execute

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/systemstart/fwbuild/pkg/logging"
)

// Options describes a single subprocess invocation.
type Options struct {
	Argv  []string // command and arguments, never empty
	Dir   string   // working directory, "" for inherited
	Check bool     // treat a non-zero exit code as an error
}

// Result is the outcome of a non-interactive invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Skipped  bool // true when dry-run suppressed the call
}

// Runner executes external tools on behalf of the workflow steps. With DryRun
// set it logs the would-be command line and reports synthetic success without
// starting any process.
type Runner struct {
	DryRun bool
}

// Run executes the command with captured output. With Check set, a non-zero
// exit code is returned as an error; otherwise the Result carries the exit
// code for caller-side policy. Failing to start the process is always an
// error.
func (r *Runner) Run(opts Options) (Result, error) {
	if skipped := r.announce(opts); skipped {
		return Result{Skipped: true}, nil
	}

	cmd := exec.Command(opts.Argv[0], opts.Argv[1:]...)
	cmd.Dir = opts.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return result, nil
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		if !opts.Check {
			return result, nil
		}
		return result, fmt.Errorf("command %s exited with code %d: %s",
			opts.Argv[0], result.ExitCode, tail(result.Stderr))
	default:
		result.ExitCode = -1
		return result, fmt.Errorf("starting command %s: %w", opts.Argv[0], err)
	}
}

// RunInteractive executes the command attached to the controlling terminal.
// The exit code is returned for explicit handling rather than raised.
func (r *Runner) RunInteractive(opts Options) (int, error) {
	if skipped := r.announce(opts); skipped {
		return 0, nil
	}

	cmd := exec.Command(opts.Argv[0], opts.Argv[1:]...)
	cmd.Dir = opts.Dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0, nil
	case errors.As(err, &exitErr):
		return exitErr.ExitCode(), nil
	default:
		return -1, fmt.Errorf("starting command %s: %w", opts.Argv[0], err)
	}
}

// RunToFile streams the command's stdout into dest. The output is written to
// a temporary sibling file first so a failing command never corrupts an
// existing dest. With allowFailure set, a failure is logged as a warning and
// nil is returned.
func (r *Runner) RunToFile(opts Options, dest string, allowFailure bool) error {
	if skipped := r.announce(opts); skipped {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return fmt.Errorf("creating directory for %s: %w", dest, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".partial-*")
	if err != nil {
		return fmt.Errorf("creating temporary file for %s: %w", dest, err)
	}

	cmd := exec.Command(opts.Argv[0], opts.Argv[1:]...)
	cmd.Dir = opts.Dir
	cmd.Stdout = tmp

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	closeErr := tmp.Close()

	if runErr != nil || closeErr != nil {
		os.Remove(tmp.Name())
		if runErr == nil {
			runErr = closeErr
		}
		if allowFailure {
			slog.Warn("optional transfer failed; continuing",
				"command", quote(opts.Argv), "dest", dest, "error", runErr, "stderr", tail(stderr.String()))
			return nil
		}
		return fmt.Errorf("command %s writing %s: %w: %s",
			opts.Argv[0], dest, runErr, tail(stderr.String()))
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("moving output into place: %w", err)
	}
	return nil
}

// announce logs the command line and reports whether dry-run suppressed it.
func (r *Runner) announce(opts Options) bool {
	args := []any{"command", quote(opts.Argv)}
	if opts.Dir != "" {
		args = append(args, "cwd", opts.Dir)
	}
	slog.Info("executing command", args...)
	if r.DryRun {
		logging.Ok("dry-run mode: command skipped")
		return true
	}
	return false
}

func quote(argv []string) string {
	quoted := make([]string, len(argv))
	for i, a := range argv {
		if strings.ContainsAny(a, " \t\"'$") {
			quoted[i] = fmt.Sprintf("%q", a)
		} else {
			quoted[i] = a
		}
	}
	return strings.Join(quoted, " ")
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	const max = 400
	if len(s) > max {
		s = "..." + s[len(s)-max:]
	}
	return s
}
