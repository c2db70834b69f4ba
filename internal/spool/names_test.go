package spool_test

import (
	"testing"
	"time"

	"atrund/internal/spool"
)

func TestParseNameRoundTrip(t *testing.T) {
	name, ok := spool.ParseName("a00001abcdef12")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if name.Queue != 'a' {
		t.Fatalf("unexpected queue: %c", name.Queue)
	}
	if name.JobNo != 1 {
		t.Fatalf("unexpected job number: %d", name.JobNo)
	}
	if name.Minutes != 0xabcdef12 {
		t.Fatalf("unexpected minutes: %#x", name.Minutes)
	}
	if got := name.String(); got != "a00001abcdef12" {
		t.Fatalf("round trip mismatch: %q", got)
	}
	if got := name.LockName(); got != "=00001abcdef12" {
		t.Fatalf("unexpected lock name: %q", got)
	}
	if got := name.Time(); got != time.Unix(0xabcdef12*60, 0) {
		t.Fatalf("unexpected scheduled time: %v", got)
	}
}

func TestParseNameAcceptsUppercaseHex(t *testing.T) {
	name, ok := spool.ParseName("B0000AABCDEF12")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if name.JobNo != 0xa {
		t.Fatalf("unexpected job number: %d", name.JobNo)
	}
	if got := name.String(); got != "B0000aabcdef12" {
		t.Fatalf("expected lowercase canonical form, got %q", got)
	}
}

func TestParseNameRejections(t *testing.T) {
	for _, bad := range []string{
		"",
		"a00001abcdef1",   // too short
		"a00001abcdef123", // too long
		"a0000gabcdef12",  // non-hex serial
		"a00001abcdefg2",  // non-hex time
		".hidden-file00",  // wrong shape, right length is still required
	} {
		if _, ok := spool.ParseName(bad); ok {
			t.Fatalf("expected rejection of %q", bad)
		}
	}
}

func TestQueueClassification(t *testing.T) {
	cases := []struct {
		queue byte
		job   bool
		batch bool
		lock  bool
	}{
		{'a', true, false, false},
		{'b', true, true, false},
		{'z', true, false, false},
		{'A', true, true, false},
		{'Z', true, true, false},
		{'=', false, false, true},
		{'0', false, false, false},
	}
	for _, tc := range cases {
		n := spool.Name{Queue: tc.queue}
		if n.IsJob() != tc.job {
			t.Fatalf("queue %c: IsJob = %v, want %v", tc.queue, n.IsJob(), tc.job)
		}
		if n.IsBatch() != tc.batch {
			t.Fatalf("queue %c: IsBatch = %v, want %v", tc.queue, n.IsBatch(), tc.batch)
		}
		if n.IsLock() != tc.lock {
			t.Fatalf("queue %c: IsLock = %v, want %v", tc.queue, n.IsLock(), tc.lock)
		}
	}
}

func TestFromTimeTruncatesToMinutes(t *testing.T) {
	at := time.Unix(90*60+35, 0)
	n := spool.FromTime('c', 7, at)
	if n.Minutes != 90 {
		t.Fatalf("unexpected minutes: %d", n.Minutes)
	}
	if got := n.String(); got != "c000070000005a" {
		t.Fatalf("unexpected name: %q", got)
	}
}
