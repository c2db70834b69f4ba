package spool

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrLocked reports that another runner already holds the lock for a job.
var ErrLocked = errors.New("job already locked")

// AcquireLock hard-links the job file to its '='-prefixed mirror name.
// Mutual exclusion rests on the atomicity of link creation: a second
// acquirer observes EEXIST and receives ErrLocked.
func AcquireLock(dir string, name Name) error {
	jobPath := filepath.Join(dir, name.String())
	lockPath := filepath.Join(dir, name.LockName())
	if err := os.Link(jobPath, lockPath); err != nil {
		if errors.Is(err, os.ErrExist) {
			return ErrLocked
		}
		return fmt.Errorf("link %s to %s: %w", name, name.LockName(), err)
	}
	return nil
}

// ReleaseLock unlinks the '=' entry for a job. After the job file itself has
// been unlinked this removes the last spool evidence of the job.
func ReleaseLock(dir string, name Name) error {
	if err := os.Remove(filepath.Join(dir, name.LockName())); err != nil {
		return fmt.Errorf("unlink lock %s: %w", name.LockName(), err)
	}
	return nil
}
