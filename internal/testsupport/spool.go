package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"atrund/internal/jobfile"
	"atrund/internal/spool"
)

// WriteJob deposits a finalized job file the way the companion submitter
// would: header, script body, and the owner-execute bit that marks the job
// ready to run.
func WriteJob(t testing.TB, dir string, name spool.Name, hdr jobfile.Header, script string) string {
	t.Helper()

	content := append(hdr.Encode(jobfile.DefaultLoginNameMax), []byte(script)...)
	path := filepath.Join(dir, name.String())
	if err := os.WriteFile(path, content, 0o700); err != nil {
		t.Fatalf("write job file: %v", err)
	}
	return path
}

// StubSendmail installs an executable that copies its stdin to capturePath,
// standing in for the host mail transport.
func StubSendmail(t testing.TB, capturePath string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "sendmail")
	script := "#!/bin/sh\ncat > " + capturePath + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write sendmail stub: %v", err)
	}
	return path
}
