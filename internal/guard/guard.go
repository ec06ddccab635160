// Package guard keeps a second cliplog process from polling the same
// clipboard and writing the same history file.
//
// The guard is an exclusive advisory lock on a file next to the history
// (flock(2) on Unix, LockFileEx on Windows). The kernel drops the lock when
// the holding process exits for any reason, so a crash never leaves a stale
// lock behind; the lock file itself may remain and is simply reused.
package guard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrAlreadyRunning means another process holds the lock.
var ErrAlreadyRunning = errors.New("cliplog is already running")

// Guard is a held single-instance lock.
type Guard struct {
	fl *flock.Flock
}

// Acquire takes the lock at path without blocking. It returns
// ErrAlreadyRunning if another holder exists, including another Guard in the
// same process.
func Acquire(path string) (*Guard, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("lock dir: %w", err)
	}
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, path)
	}
	return &Guard{fl: fl}, nil
}

// Path returns the lock file location.
func (g *Guard) Path() string { return g.fl.Path() }

// Release drops the lock. Process exit releases it too; Release exists for
// short-lived holders such as offline CLI edits.
func (g *Guard) Release() error {
	return g.fl.Unlock()
}
