package spool_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"atrund/internal/spool"
)

func writeJobFile(t *testing.T, dir string, name spool.Name) string {
	t.Helper()
	path := filepath.Join(dir, name.String())
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o700); err != nil {
		t.Fatalf("write job file: %v", err)
	}
	return path
}

func TestAcquireLockCreatesHardLink(t *testing.T) {
	dir := t.TempDir()
	name := spool.FromTime('a', 1, time.Now())
	path := writeJobFile(t, dir, name)

	if err := spool.AcquireLock(dir, name); err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}

	info, err := spool.StatEntry(path)
	if err != nil {
		t.Fatalf("stat job: %v", err)
	}
	if info.NLink != 2 {
		t.Fatalf("expected nlink 2 after lock, got %d", info.NLink)
	}
}

func TestAcquireLockSecondRunner(t *testing.T) {
	dir := t.TempDir()
	name := spool.FromTime('a', 2, time.Now())
	writeJobFile(t, dir, name)

	if err := spool.AcquireLock(dir, name); err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}
	if err := spool.AcquireLock(dir, name); !errors.Is(err, spool.ErrLocked) {
		t.Fatalf("second acquire: got %v, want ErrLocked", err)
	}
}

func TestReleaseLockRemovesOnlyLockEntry(t *testing.T) {
	dir := t.TempDir()
	name := spool.FromTime('a', 3, time.Now())
	path := writeJobFile(t, dir, name)

	if err := spool.AcquireLock(dir, name); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	if err := spool.ReleaseLock(dir, name); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, name.LockName())); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("lock entry should be gone, got %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("job file should survive release: %v", err)
	}
}

func TestListSkipsForeignEntries(t *testing.T) {
	dir := t.TempDir()
	a := spool.FromTime('a', 1, time.Now())
	b := spool.FromTime('B', 2, time.Now())
	writeJobFile(t, dir, a)
	writeJobFile(t, dir, b)
	if err := os.WriteFile(filepath.Join(dir, ".sequence"), []byte("2\n"), 0o600); err != nil {
		t.Fatalf("write foreign file: %v", err)
	}

	entries, err := spool.List(dir)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Name.Queue != 'B' || entries[1].Name.Queue != 'a' {
		t.Fatalf("unexpected order: %c %c", entries[0].Name.Queue, entries[1].Name.Queue)
	}
}
