package executor

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"atrund/internal/jobfile"
	"atrund/internal/logging"
	"atrund/internal/spool"
)

// createOutput creates the capture file for a job's stdout/stderr in the
// output spool, owned by the submitter, primed with the mail header. It
// returns the open handle and the size of the header so post-run growth can
// be detected.
//
// Creation is O_EXCL: a leftover file under the same name means two runners
// disagree about lock ownership, which is a per-job error rather than
// something to silently clean up.
func (e *Executor) createOutput(name spool.Name, uid uint32, hdr jobfile.Header) (*os.File, int64, error) {
	file := name.String()
	outPath := filepath.Join(e.outputDir, file)

	out, err := os.OpenFile(outPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, 0, workerErr(name.JobNo, file, "cannot create output file", err)
	}

	if err := e.privs.Do(func() error {
		return unix.Fchown(int(out.Fd()), int(uid), int(hdr.GID))
	}); err != nil {
		// Output stays readable by the daemon only; mail delivery still works.
		e.logger.Warn("could not change owner of output file",
			logging.Uint64(logging.FieldJob, uint64(name.JobNo)),
			logging.Uint64(logging.FieldUID, uint64(uid)),
			logging.Uint64(logging.FieldGID, uint64(hdr.GID)),
			logging.Error(err),
		)
	}

	if _, err := fmt.Fprintf(out, "Subject: Output from your job %8d\nTo: %s\n\n", name.JobNo, hdr.Login); err != nil {
		out.Close()
		return nil, 0, workerErr(name.JobNo, file, "cannot write mail header", err)
	}

	info, err := out.Stat()
	if err != nil {
		out.Close()
		return nil, 0, workerErr(name.JobNo, file, "cannot stat output file", err)
	}
	return out, info.Size(), nil
}
