package executor

import (
	"io"
	"os"
	"os/exec"
	"os/user"
	"syscall"

	"atrund/internal/jobfile"
	"atrund/internal/spool"
)

// deliverMail replays the captured output to the configured mail program as
// the submitting user. The output file has already been unlinked; the open
// handle keeps the bytes alive until sendmail has read them. Stdout and
// stderr are left pointing at /dev/null, which keeps picky sendmail
// implementations happy.
func (e *Executor) deliverMail(name spool.Name, pw *user.User, hdr jobfile.Header, gid uint32, out *os.File) error {
	file := name.String()

	if _, err := out.Seek(0, io.SeekStart); err != nil {
		return workerErr(name.JobNo, file, "cannot rewind output file", err)
	}

	cmd := exec.Command(e.sendmail, "-i", hdr.Login)
	cmd.Args = []string{"sendmail", "-i", hdr.Login}
	cmd.Stdin = out
	cmd.Dir = "/"
	if cred := e.credentialFor(pw, hdr.UID, gid); cred != nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{Credential: cred}
	}

	if err := e.privs.Do(cmd.Start); err != nil {
		return workerErr(name.JobNo, file, "exec failed for mail command", err)
	}
	if err := cmd.Wait(); err != nil {
		return workerErr(name.JobNo, file, "mail command failed", err)
	}
	return nil
}
