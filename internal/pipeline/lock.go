package pipeline

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"

	"cancomp/internal/fileutil"
)

// ErrRunInProgress reports that another run holds the cache lock.
var ErrRunInProgress = errors.New("another cancomp run is using this cache")

// LockPath returns the lock file guarding cachePath.
func LockPath(cachePath string) string {
	return cachePath + ".lock"
}

func acquireLock(cachePath string) (*flock.Flock, error) {
	path := LockPath(cachePath)
	if err := fileutil.EnsureParentDir(path); err != nil {
		return nil, err
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrRunInProgress, path)
	}
	return lock, nil
}
