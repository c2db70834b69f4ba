package executor

import (
	"errors"
	"log/slog"
	"sync"

	"atrund/internal/auth"
	"atrund/internal/logging"
	"atrund/internal/privs"
	"atrund/internal/spool"
)

// Executor runs eligible jobs. Run locks the job synchronously and hands the
// rest of the work to a background worker, so the caller's scan pass never
// blocks on user code.
type Executor struct {
	jobDir       string
	outputDir    string
	sendmail     string
	loginNameMax int

	privs  *privs.Manager
	auth   auth.Opener
	logger *slog.Logger

	wg sync.WaitGroup
}

// Options configures an Executor.
type Options struct {
	JobDir       string
	OutputDir    string
	Sendmail     string
	LoginNameMax int
	Privs        *privs.Manager
	Auth         auth.Opener
	Logger       *slog.Logger
}

// New constructs an executor.
func New(opts Options) *Executor {
	if opts.Auth == nil {
		opts.Auth = auth.Noop{}
	}
	if opts.Privs == nil {
		opts.Privs = privs.NewPassthrough()
	}
	return &Executor{
		jobDir:       opts.JobDir,
		outputDir:    opts.OutputDir,
		sendmail:     opts.Sendmail,
		loginNameMax: opts.LoginNameMax,
		privs:        opts.Privs,
		auth:         opts.Auth,
		logger:       logging.NewComponentLogger(opts.Logger, "executor"),
	}
}

// Run executes one job file. The uid/gid are the file owner captured by the
// scanner's stat. Locking happens before Run returns; everything after the
// lock runs in a worker so the scan continues immediately.
func (e *Executor) Run(name spool.Name, uid, gid uint32) {
	if err := spool.AcquireLock(e.jobDir, name); err != nil {
		if errors.Is(err, spool.ErrLocked) {
			e.logger.Warn("trying to execute job twice",
				logging.String(logging.FieldFile, name.String()),
			)
			return
		}
		e.logger.Error("cannot link execution file",
			logging.String(logging.FieldFile, name.String()),
			logging.Error(err),
		)
		return
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := e.runJob(name, uid, gid); err != nil {
			e.logger.Error("job failed",
				logging.Uint64(logging.FieldJob, uint64(name.JobNo)),
				logging.String(logging.FieldFile, name.String()),
				logging.Error(err),
			)
		}
	}()
}

// Wait blocks until all in-flight workers have finished. Called on graceful
// shutdown so spawned shells and mail deliveries are not orphaned.
func (e *Executor) Wait() {
	e.wg.Wait()
}
