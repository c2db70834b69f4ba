package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"atrund/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the readiness checks for the given config: the job shell,
// the mail transport, and spool directory access.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckExecutable("Job shell", "/bin/sh"),
		CheckExecutable("Mail transport", cfg.Daemon.Sendmail),
		CheckDirectoryAccess("Job spool", cfg.Paths.JobDir),
		CheckDirectoryAccess("Output spool", cfg.Paths.OutputDir),
	}
}

// CheckExecutable verifies that path exists and is executable.
func CheckExecutable(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s: %v", path, err)}
	}
	if info.IsDir() || info.Mode()&0o111 == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s is not executable", path)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckDirectoryAccess verifies the directory exists and is writable and
// searchable by the current identity.
func CheckDirectoryAccess(name, dir string) Result {
	info, err := os.Stat(dir)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s: %v", dir, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s is not a directory", dir)}
	}
	if err := unix.Access(dir, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s: %v", dir, err)}
	}
	return Result{Name: name, Passed: true, Detail: dir}
}
