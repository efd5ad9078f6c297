package journal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// StaleLockThreshold is how old a lock file must be before another run
// may take it over. Crashed runs leave their lock behind; anything older
// than this is presumed dead.
const StaleLockThreshold = 10 * time.Minute

// ErrLockHeld indicates another run holds the work-tree lock.
var ErrLockHeld = errors.New("work tree is locked by another run")

const lockFileName = "run.lock"

// Lock is a held work-tree lock. Release it when the run finishes.
type Lock struct {
	path string
	file *os.File
}

// AcquireLock takes the work-tree lock, creating the journal directory
// if needed. A lock left behind by a crashed run is taken over once it
// is older than StaleLockThreshold.
func AcquireLock(ctx context.Context, workDir string) (*Lock, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	dir := MetaDir(workDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	lockPath := filepath.Join(dir, lockFileName)

	file, err := tryCreateLock(lockPath)
	if errors.Is(err, os.ErrExist) {
		stale, staleErr := isLockStale(lockPath)
		if staleErr != nil {
			return nil, fmt.Errorf("inspect existing lock: %w", staleErr)
		}
		if !stale {
			return nil, fmt.Errorf("%w: %s", ErrLockHeld, lockPath)
		}
		if removeErr := os.Remove(lockPath); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			return nil, fmt.Errorf("remove stale lock: %w", removeErr)
		}
		file, err = tryCreateLock(lockPath)
		if errors.Is(err, os.ErrExist) {
			// Another run grabbed it between our remove and retry.
			return nil, fmt.Errorf("%w: %s", ErrLockHeld, lockPath)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create lock file: %w", err)
	}

	metadata := fmt.Sprintf("pid=%d\ntime=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	if _, err := file.WriteString(metadata); err != nil {
		file.Close()
		os.Remove(lockPath)
		return nil, fmt.Errorf("write lock metadata: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(lockPath)
		return nil, fmt.Errorf("sync lock file: %w", err)
	}

	return &Lock{path: lockPath, file: file}, nil
}

func tryCreateLock(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
}

// Release closes and removes the lock file.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	closeErr := l.file.Close()
	l.file = nil
	removeErr := os.Remove(l.path)
	if removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
		return fmt.Errorf("remove lock file: %w", removeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close lock file: %w", closeErr)
	}
	return nil
}

// isLockStale reports whether the lock file is older than
// StaleLockThreshold.
func isLockStale(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Lock vanished; the caller's retry will settle it.
			return true, nil
		}
		return false, err
	}
	return time.Since(info.ModTime()) > StaleLockThreshold, nil
}
