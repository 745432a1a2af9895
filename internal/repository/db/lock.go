package db

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrLocked means another process already owns the state database.
var ErrLocked = errors.New("state database is locked by another process")

// AcquireLock takes an exclusive, non-blocking lock on path. Only the
// holder may drive the dryer, which keeps a single RUNNING batch per plant.
func AcquireLock(path string) (*flock.Flock, error) {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %q: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("lock %q: %w", path, ErrLocked)
	}
	return lock, nil
}
