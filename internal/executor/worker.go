package executor

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"

	"atrund/internal/auth"
	"atrund/internal/jobfile"
	"atrund/internal/logging"
	"atrund/internal/sched"
	"atrund/internal/spool"
)

// runJob performs the whole post-lock job lifecycle: verify, unlink, run the
// shell as the submitter, and hand the captured output to mail delivery.
func (e *Executor) runJob(name spool.Name, uid, gid uint32) error {
	file := name.String()
	jobPath := filepath.Join(e.jobDir, file)

	pw, err := user.LookupId(strconv.FormatUint(uint64(uid), 10))
	if err != nil {
		return quarantine(name.JobNo, file, "userid "+strconv.FormatUint(uint64(uid), 10)+" not found", err)
	}

	var job *os.File
	if err := e.privs.Do(func() error {
		var openErr error
		job, openErr = os.Open(jobPath)
		return openErr
	}); err != nil {
		return workerErr(name.JobNo, file, "cannot open input file", err)
	}
	defer job.Close()

	if err := jobfile.Verify(job, jobPath); err != nil {
		return quarantine(name.JobNo, file, "input file verification failed", err)
	}

	hdr, err := jobfile.ParseHeader(job, e.loginNameMax)
	if err != nil {
		return quarantine(name.JobNo, file, "file is in wrong format", err)
	}
	if strings.HasPrefix(hdr.Login, "-") {
		return quarantine(name.JobNo, file, "illegal mail name "+hdr.Login, nil)
	}
	if hdr.UID != uid {
		return quarantine(name.JobNo, file,
			"header uid "+strconv.FormatUint(uint64(hdr.UID), 10)+
				" does not match file uid "+strconv.FormatUint(uint64(uid), 10), nil)
	}

	// Committed to executing this script. From here the '=' entry is the
	// only spool evidence of the job.
	if err := os.Remove(jobPath); err != nil {
		return workerErr(name.JobNo, file, "cannot unlink input file", err)
	}

	out, mark, err := e.createOutput(name, uid, hdr)
	if err != nil {
		return err
	}
	defer out.Close()

	var sess auth.Session
	if err := e.privs.Do(func() error {
		var openErr error
		sess, openErr = e.auth.Open(pw.Username)
		return openErr
	}); err != nil {
		return workerErr(name.JobNo, file, "cannot open session for "+pw.Username, err)
	}

	shellErr := e.runShell(name, pw, hdr, job, out)

	if err := e.privs.Do(sess.Close); err != nil {
		e.logger.Warn("session close failed",
			logging.Uint64(logging.FieldJob, uint64(name.JobNo)),
			logging.Error(err),
		)
	}
	if shellErr != nil {
		return shellErr
	}

	// Capture the output size from the still-open handle before anything
	// rewinds or unlinks it.
	info, err := out.Stat()
	if err != nil {
		return workerErr(name.JobNo, file, "cannot stat output file", err)
	}
	grew := info.Size() > mark

	if err := os.Remove(filepath.Join(e.outputDir, file)); err != nil {
		e.logger.Warn("removing output file failed",
			logging.Uint64(logging.FieldJob, uint64(name.JobNo)),
			logging.Error(err),
		)
	}
	if err := spool.ReleaseLock(e.jobDir, name); err != nil {
		e.logger.Warn("removing lock file failed",
			logging.Uint64(logging.FieldJob, uint64(name.JobNo)),
			logging.Error(err),
		)
	}

	if hdr.SendMail == jobfile.MailAlways || (hdr.SendMail != jobfile.MailNever && grew) {
		if err := e.deliverMail(name, pw, hdr, gid, out); err != nil {
			return err
		}
	}

	e.logger.Info("job complete",
		logging.Uint64(logging.FieldJob, uint64(name.JobNo)),
		logging.String(logging.FieldFile, file),
		logging.String(logging.FieldLogin, hdr.Login),
		logging.Bool("mailed", hdr.SendMail == jobfile.MailAlways || (hdr.SendMail != jobfile.MailNever && grew)),
	)
	return nil
}

// runShell spawns /bin/sh reading the job script on stdin with both output
// streams captured. The shell runs as the submitter with an empty
// environment; the empty environment is a security contract, not an
// oversight.
func (e *Executor) runShell(name spool.Name, pw *user.User, hdr jobfile.Header, job, out *os.File) error {
	file := name.String()

	if _, err := job.Seek(0, io.SeekStart); err != nil {
		return workerErr(name.JobNo, file, "cannot rewind input file", err)
	}

	cmd := exec.Command("/bin/sh")
	cmd.Args = []string{"sh"}
	cmd.Stdin = job
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.Dir = "/"
	cmd.Env = []string{}
	if cred := e.credentialFor(pw, hdr.UID, hdr.GID); cred != nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{Credential: cred}
	}

	if err := e.privs.Do(func() error {
		if err := cmd.Start(); err != nil {
			return err
		}
		if name.IsBatch() {
			if err := unix.Setpriority(unix.PRIO_PROCESS, cmd.Process.Pid, sched.Nice(name.Queue)); err != nil {
				e.logger.Warn("cannot renice batch job",
					logging.Uint64(logging.FieldJob, uint64(name.JobNo)),
					logging.Error(err),
				)
			}
		}
		return nil
	}); err != nil {
		return workerErr(name.JobNo, file, "cannot exec /bin/sh", err)
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The job's own exit status is its business; it goes to the log
			// and nowhere else.
			e.logger.Debug("job shell exited nonzero",
				logging.Uint64(logging.FieldJob, uint64(name.JobNo)),
				logging.Int("status", exitErr.ExitCode()),
			)
			return nil
		}
		return workerErr(name.JobNo, file, "wait for job shell", err)
	}
	return nil
}

// credentialFor builds the credential switch applied to spawned children.
// When the daemon holds no saved privileges and the target identity is the
// current one there is nothing to switch, which keeps the execution path
// usable in unprivileged test runs.
func (e *Executor) credentialFor(pw *user.User, uid, gid uint32) *syscall.Credential {
	if !e.privs.Elevatable() && os.Getuid() == int(uid) {
		return nil
	}
	return &syscall.Credential{Uid: uid, Gid: gid, Groups: supplementaryGroups(pw)}
}

func supplementaryGroups(pw *user.User) []uint32 {
	ids, err := pw.GroupIds()
	if err != nil {
		return nil
	}
	groups := make([]uint32, 0, len(ids))
	for _, id := range ids {
		parsed, err := strconv.ParseUint(id, 10, 32)
		if err != nil {
			continue
		}
		groups = append(groups, uint32(parsed))
	}
	return groups
}
