package scan

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"atrund/internal/logging"
	"atrund/internal/spool"
)

// CheckInterval bounds how long a scan will sleep and how old a locked job
// must be before its runner is presumed dead.
const CheckInterval = time.Hour

// Runner starts one eligible job. Implementations return immediately; the
// job runs in the background under its own lock.
type Runner interface {
	Run(name spool.Name, uid, gid uint32)
}

// Candidate is the batch job retained by a scan, with the owner identity
// captured at stat time.
type Candidate struct {
	Name spool.Name
	UID  uint32
	GID  uint32
}

// Result is what one pass over the spool produced.
type Result struct {
	// NextWake is when the next scan is due: the earliest future job, a
	// stale-lock reschedule, or now + CheckInterval, whichever is soonest.
	NextWake time.Time
	// Batch is the lexicographically smallest eligible batch candidate.
	Batch *Candidate
	// Pending reports that the spool held work in some form: an eligible or
	// future job, a file awaiting its execute bit, or a reclaimed lock.
	Pending bool
}

// Scanner performs one pass over the spool per call.
type Scanner struct {
	dir    string
	runner Runner
	logger *slog.Logger
}

// New constructs a scanner over dir that hands immediate jobs to runner.
func New(dir string, runner Runner, logger *slog.Logger) *Scanner {
	return &Scanner{
		dir:    dir,
		runner: runner,
		logger: logging.NewComponentLogger(logger, "scanner"),
	}
}

// Scan classifies every spool entry and selects work. Immediate jobs are
// started during the pass; the best batch candidate is returned for the
// scheduler to gate. Entries that vanish mid-scan, non-regular files, and
// unparseable names are skipped silently.
func (s *Scanner) Scan(now time.Time) (Result, error) {
	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		return Result{}, err
	}

	res := Result{NextWake: now.Add(CheckInterval)}
	var batchName string

	for _, de := range dirents {
		name, ok := spool.ParseName(de.Name())
		if !ok {
			continue
		}

		info, err := spool.StatEntry(filepath.Join(s.dir, de.Name()))
		if err != nil {
			// Racing deletion of a '=' entry is normal.
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			s.logger.Warn("stat spool entry failed",
				logging.String(logging.FieldFile, de.Name()),
				logging.Error(err),
			)
			continue
		}
		if !info.Regular {
			continue
		}

		// The submitter marks a job ready by setting the execute bit; until
		// then the file is in preparation and will probably become runnable
		// soon.
		if !info.Executable {
			res.Pending = true
			continue
		}

		runTime := name.Time()

		if name.IsLock() {
			if info.NLink == 1 && !runTime.Add(CheckInterval).After(now) {
				s.removeStaleLock(de.Name())
			}
			continue
		}
		if !name.IsJob() {
			continue
		}

		// nlink > 1 means a runner owns the job. If its scheduled time is
		// far enough in the past the runner died between locking and
		// unlinking; clear the lock and reschedule for now.
		if info.NLink > 1 {
			if !runTime.Add(CheckInterval).After(now) {
				s.reclaimDeadRunner(name)
				res.Pending = true
				res.NextWake = now
			}
			continue
		}

		res.Pending = true

		if runTime.After(now) {
			if runTime.Before(res.NextWake) {
				res.NextWake = runTime
			}
			continue
		}

		if name.IsBatch() {
			if batchName == "" || de.Name() < batchName {
				batchName = de.Name()
				res.Batch = &Candidate{Name: name, UID: info.UID, GID: info.GID}
			}
			continue
		}

		s.runner.Run(name, info.UID, info.GID)
	}

	return res, nil
}

func (s *Scanner) removeStaleLock(entry string) {
	if err := os.Remove(filepath.Join(s.dir, entry)); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("remove stale lock failed",
			logging.String(logging.FieldFile, entry),
			logging.Error(err),
		)
		return
	}
	s.logger.Info("stale lock removed", logging.String(logging.FieldFile, entry))
}

func (s *Scanner) reclaimDeadRunner(name spool.Name) {
	if err := os.Remove(filepath.Join(s.dir, name.LockName())); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("reclaim locked job failed",
			logging.String(logging.FieldFile, name.String()),
			logging.Error(err),
		)
		return
	}
	s.logger.Warn("dead runner reclaimed, job rescheduled",
		logging.String(logging.FieldFile, name.String()),
		logging.Uint64(logging.FieldJob, uint64(name.JobNo)),
	)
}
