// Package instance keeps a single copy of the application running.
package instance

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	apperrors "trayping/internal/errors"
)

// Guard is a named, process-wide exclusive lock backed by an advisory file
// lock. The OS drops the lock when the holder dies, so a crash never blocks
// the next launch.
type Guard struct {
	mu   sync.Mutex
	lock *flock.Flock
	held bool
}

// NewGuard creates a guard for name in the system temp directory.
func NewGuard(name string) *Guard {
	return NewGuardAt(filepath.Join(os.TempDir(), name+".lock"))
}

// NewGuardAt creates a guard locking the file at path.
func NewGuardAt(path string) *Guard {
	return &Guard{lock: flock.New(path)}
}

// Path returns the lock file location.
func (g *Guard) Path() string {
	return g.lock.Path()
}

// Acquire tries to take the lock without waiting. It returns false when
// another process holds it and an error only when the lock file itself
// cannot be opened.
func (g *Guard) Acquire() (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.held {
		return true, nil
	}
	ok, err := g.lock.TryLock()
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrLockUnavailable, "LockOpen", err.Error())
	}
	g.held = ok
	return ok, nil
}

// Release drops the lock. Calling it when not held is a no-op.
func (g *Guard) Release() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.held {
		return nil
	}
	g.held = false
	return g.lock.Unlock()
}

// Held reports whether this guard currently owns the lock.
func (g *Guard) Held() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.held
}
