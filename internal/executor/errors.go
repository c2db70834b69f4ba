package executor

import (
	"errors"
	"fmt"
)

// Failure tiers inside the worker. Quarantine-class failures leave the lock
// behind so the job is never retried; it ages out with the stale-lock
// reclaim. Worker-class failures are syscall problems whose retry behavior
// depends on whether the job file was already unlinked.
var (
	ErrQuarantine = errors.New("job quarantined")
	ErrWorker     = errors.New("worker failure")
)

func quarantine(jobno uint32, file, message string, err error) error {
	return wrap(ErrQuarantine, jobno, file, message, err)
}

func workerErr(jobno uint32, file, message string, err error) error {
	return wrap(ErrWorker, jobno, file, message, err)
}

func wrap(marker error, jobno uint32, file, message string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: job %d (%s): %s: %w", marker, jobno, file, message, err)
	}
	return fmt.Errorf("%w: job %d (%s): %s", marker, jobno, file, message)
}
