package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"atrund/internal/config"
	"atrund/internal/logging"
	"atrund/internal/scan"
	"atrund/internal/sched"
)

// Executor is the part of the job runner the daemon drives directly.
type Executor interface {
	scan.Runner
	Wait()
}

// Daemon owns the scan/sleep loop and its signal integration.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	scanner   *scan.Scanner
	scheduler *sched.Scheduler
	executor  Executor

	lockPath string
	lock     *flock.Flock

	hup  chan os.Signal
	chld chan os.Signal

	// reaped counts SIGCHLD deliveries. Child reaping itself belongs to the
	// per-worker waits; the counter only exists for diagnostics.
	reaped atomic.Uint64

	nothingToDo bool
	lastMtime   time.Time
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, scanner *scan.Scanner, scheduler *sched.Scheduler, executor Executor, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || scanner == nil || scheduler == nil || executor == nil {
		return nil, errors.New("daemon requires config, scanner, scheduler, and executor")
	}
	lockPath := filepath.Join(cfg.Paths.LogDir, "atrund.lock")
	return &Daemon{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "daemon"),
		scanner:   scanner,
		scheduler: scheduler,
		executor:  executor,
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}, nil
}

// RunOnce performs a single scan and returns, for the -s mode.
func (d *Daemon) RunOnce() error {
	now := time.Now()
	_, err := d.iterate(now)
	if err != nil {
		return err
	}
	d.executor.Wait()
	return nil
}

// Run enters the daemon loop until ctx is canceled by a termination signal.
// A second daemon instance on the same installation is refused via the
// flock; the spool's link locks remain the only cross-runner coordination.
func (d *Daemon) Run(ctx context.Context) error {
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire daemon lock: %w", err)
	}
	if !ok {
		return errors.New("another atrund instance is already running")
	}
	defer func() {
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("failed to release daemon lock", logging.Error(err))
		}
	}()

	d.hup = make(chan os.Signal, 1)
	signal.Notify(d.hup, syscall.SIGHUP)
	defer signal.Stop(d.hup)

	d.chld = make(chan os.Signal, 1)
	signal.Notify(d.chld, syscall.SIGCHLD)
	defer signal.Stop(d.chld)

	d.logger.Info("atrund started",
		logging.String("lock", d.lockPath),
		logging.String("spool", d.cfg.Paths.JobDir),
	)

	for {
		now := time.Now()
		next, err := d.iterate(now)
		if err != nil {
			return err
		}
		if !d.sleepUntil(ctx, next) {
			break
		}
	}

	d.logger.Info("atrund shutting down, waiting for in-flight jobs")
	d.executor.Wait()
	return nil
}

// iterate runs one scan unless the spool provably has not changed since the
// last verdict of "nothing to do".
func (d *Daemon) iterate(now time.Time) (time.Time, error) {
	st, err := os.Stat(d.cfg.Paths.JobDir)
	if err != nil {
		return time.Time{}, fmt.Errorf("stat spool %s: %w", d.cfg.Paths.JobDir, err)
	}
	if d.nothingToDo && !st.ModTime().After(d.lastMtime) {
		return now.Add(scan.CheckInterval), nil
	}
	d.lastMtime = st.ModTime()

	res, err := d.scanner.Scan(now)
	if err != nil {
		return time.Time{}, fmt.Errorf("scan spool: %w", err)
	}

	next, pending := d.scheduler.Gate(now, res, func(c scan.Candidate) {
		d.executor.Run(c.Name, c.UID, c.GID)
	})

	d.nothingToDo = !pending
	d.logger.Debug("scan complete",
		logging.Time(logging.FieldNextWake, next),
		logging.Bool("pending", pending),
	)
	return next, nil
}

// sleepUntil blocks until the wake deadline, a SIGHUP, or termination.
// It reports whether the loop should continue.
func (d *Daemon) sleepUntil(ctx context.Context, next time.Time) bool {
	for {
		delay := time.Until(next)
		if delay <= 0 {
			return ctx.Err() == nil
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-d.hup:
			timer.Stop()
			// A HUP forces the next iteration to rescan even if the
			// directory mtime is unchanged.
			d.nothingToDo = false
			d.logger.Info("rescan requested", logging.String(logging.FieldSignal, "SIGHUP"))
			return true
		case <-d.chld:
			timer.Stop()
			d.reaped.Add(1)
		case <-timer.C:
			return true
		}
	}
}
