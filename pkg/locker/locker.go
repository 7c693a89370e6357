// Package locker provides the per-container advisory lock that serializes
// start attempts on the same container name.
package locker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// ErrBusy reports that another start already holds the lock. It is the
// only contention signal; everything else is a real failure.
var ErrBusy = errors.New("locker: container is busy")

// Lock is a held advisory lock. Release it exactly once per exit path;
// extra releases are no-ops.
type Lock struct {
	fl   *flock.Flock
	once sync.Once
}

// Acquire takes the exclusive lock at path without blocking. A held lock
// elsewhere yields ErrBusy.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("locker: create lock directory: %v", err)
	}
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locker: lock %s: %v", path, err)
	}
	if !ok {
		return nil, ErrBusy
	}
	return &Lock{fl: fl}, nil
}

// Release drops the lock. It never fails observably.
func (l *Lock) Release() {
	l.once.Do(func() {
		l.fl.Unlock()
	})
}
