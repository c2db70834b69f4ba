package jobfile_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"atrund/internal/jobfile"
)

func TestVerifyAcceptsIntactFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a00001abcdef12")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o700); err != nil {
		t.Fatalf("write job: %v", err)
	}
	// Simulate the held '=' lock link.
	if err := os.Link(path, filepath.Join(dir, "=00001abcdef12")); err != nil {
		t.Fatalf("link lock: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open job: %v", err)
	}
	defer f.Close()

	if err := jobfile.Verify(f, path); err != nil {
		t.Fatalf("Verify failed on intact file: %v", err)
	}
}

func TestVerifyRejectsSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"), 0o700); err != nil {
		t.Fatalf("write target: %v", err)
	}
	path := filepath.Join(dir, "a00001abcdef12")
	if err := os.Symlink(target, path); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	if err := jobfile.Verify(f, path); !errors.Is(err, jobfile.ErrSymlink) {
		t.Fatalf("got %v, want ErrSymlink", err)
	}
}

func TestVerifyRejectsReplacedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a00001abcdef12")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o700); err != nil {
		t.Fatalf("write job: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	// Swap the path out from under the open descriptor.
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\necho gotcha\n"), 0o700); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	if err := jobfile.Verify(f, path); !errors.Is(err, jobfile.ErrTampered) {
		t.Fatalf("got %v, want ErrTampered", err)
	}
}

func TestVerifyRejectsExtraLinks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a00001abcdef12")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o700); err != nil {
		t.Fatalf("write job: %v", err)
	}
	if err := os.Link(path, filepath.Join(dir, "=00001abcdef12")); err != nil {
		t.Fatalf("lock link: %v", err)
	}
	if err := os.Link(path, filepath.Join(dir, "alias")); err != nil {
		t.Fatalf("alias link: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	if err := jobfile.Verify(f, path); !errors.Is(err, jobfile.ErrAliased) {
		t.Fatalf("got %v, want ErrAliased", err)
	}
}
