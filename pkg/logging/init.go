package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
)

// LevelOK sits between Info and Warn and marks successful step outcomes.
const LevelOK = slog.Level(2)

// Initialize opens a per-run log file under logDir and installs the default
// slog logger: a tint handler on stderr mirrored by a text handler appending
// to the file. The returned file must be closed exactly once during cleanup.
func Initialize(logDir string, level slog.Level) (*os.File, error) {
	if err := os.MkdirAll(logDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	name := fmt.Sprintf("fwbuild_%s.log", time.Now().UTC().Format("20060102_150405"))
	file, err := os.OpenFile(filepath.Join(logDir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	console := tint.NewHandler(os.Stderr, &tint.Options{
		Level:       level,
		TimeFormat:  time.TimeOnly,
		ReplaceAttr: normalizeAttrs,
	})
	sink := slog.NewTextHandler(file, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: normalizeAttrs,
	})

	slog.SetDefault(slog.New(fanout{console, sink}))
	return file, nil
}

// Ok logs msg at the OK level on the default logger.
func Ok(msg string, args ...any) {
	slog.Default().Log(context.Background(), LevelOK, msg, args...)
}

// normalizeAttrs renders the OK level by name and pins record timestamps to
// UTC so console and file lines agree regardless of the host timezone.
func normalizeAttrs(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.LevelKey:
		if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelOK {
			a.Value = slog.StringValue("OK")
		}
	case slog.TimeKey:
		if a.Value.Kind() == slog.KindTime {
			a.Value = slog.TimeValue(a.Value.Time().UTC())
		}
	}
	return a
}

// fanout forwards every record to all inner handlers. Records go to the file
// sink unbuffered so a crashing build still leaves a readable trail.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make(fanout, len(f))
	for i, h := range f {
		next[i] = h.WithAttrs(attrs)
	}
	return next
}

func (f fanout) WithGroup(name string) slog.Handler {
	next := make(fanout, len(f))
	for i, h := range f {
		next[i] = h.WithGroup(name)
	}
	return next
}
