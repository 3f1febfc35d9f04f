package cleanup

import (
	"log/slog"
	"os"
	"sync"
)

// Registry collects shutdown hooks accumulated during a run: temporary
// staging paths, the log file handle, anything that must be released whether
// the process exits normally or on a signal. Hooks run in last-registered-
// first order and the drain is idempotent, so invoking it from both a defer
// and a signal handler is safe.
type Registry struct {
	mu    sync.Mutex
	hooks []func()
	done  bool
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{}
}

// Register appends a hook to run during the drain.
func (r *Registry) Register(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done {
		fn()
		return
	}
	r.hooks = append(r.hooks, fn)
}

// RegisterPath schedules a best-effort recursive removal of path.
// Removal errors are swallowed.
func (r *Registry) RegisterPath(path string) {
	r.Register(func() {
		if err := os.RemoveAll(path); err != nil {
			slog.Debug("could not remove temporary path", "path", path, "error", err)
		}
	})
}

// Run drains the registry once, newest hook first. Later calls are no-ops.
func (r *Registry) Run() {
	r.mu.Lock()
	if r.done {
		r.mu.Unlock()
		return
	}
	r.done = true
	hooks := r.hooks
	r.hooks = nil
	r.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
}
