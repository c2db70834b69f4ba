package spool

import (
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sys/unix"
)

// EntryInfo is the subset of stat output the scanner and CLI care about.
type EntryInfo struct {
	UID        uint32
	GID        uint32
	NLink      uint32
	Size       int64
	Regular    bool
	Executable bool
}

// StatEntry stats a spool entry. The caller is expected to treat ENOENT as a
// racing deletion rather than an error condition.
func StatEntry(path string) (EntryInfo, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return EntryInfo{}, &os.PathError{Op: "stat", Path: path, Err: err}
	}
	return EntryInfo{
		UID:        st.Uid,
		GID:        st.Gid,
		NLink:      uint32(st.Nlink),
		Size:       st.Size,
		Regular:    st.Mode&unix.S_IFMT == unix.S_IFREG,
		Executable: st.Mode&unix.S_IXUSR != 0,
	}, nil
}

// Entry pairs a parsed name with its stat info, for spool inspection.
type Entry struct {
	Name Name
	Info EntryInfo
}

// List returns the parseable entries of a spool directory in name order.
// Entries that vanish between the directory read and the stat are skipped.
func List(dir string) ([]Entry, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(dirents))
	for _, de := range dirents {
		name, ok := ParseName(de.Name())
		if !ok {
			continue
		}
		info, err := StatEntry(filepath.Join(dir, de.Name()))
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Name: name, Info: info})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name.String() < entries[j].Name.String()
	})
	return entries, nil
}
