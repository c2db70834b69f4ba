package jobfile

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Verification failures mark a job for quarantine rather than retry.
var (
	ErrSymlink  = errors.New("symbolic link encountered")
	ErrTampered = errors.New("file changed underneath the open descriptor")
	ErrAliased  = errors.New("too many links to job script")
)

// Verify compares an fstat of the already-open job file against an lstat of
// its path. A symlink at the path, a mismatch in device, inode, owner, or
// size, or a link count above two (the job plus our '=' lock) all indicate
// the file is not the one the submitter deposited.
func Verify(f *os.File, path string) error {
	var fst unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &fst); err != nil {
		return fmt.Errorf("fstat job file: %w", err)
	}

	var lst unix.Stat_t
	if err := unix.Lstat(path, &lst); err != nil {
		return fmt.Errorf("lstat %s: %w", path, err)
	}
	if lst.Mode&unix.S_IFMT == unix.S_IFLNK {
		return ErrSymlink
	}

	if lst.Dev != fst.Dev || lst.Ino != fst.Ino ||
		lst.Uid != fst.Uid || lst.Gid != fst.Gid ||
		lst.Size != fst.Size {
		return ErrTampered
	}

	if fst.Nlink > 2 {
		return ErrAliased
	}
	return nil
}
