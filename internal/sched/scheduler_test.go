package sched_test

import (
	"testing"
	"time"

	"atrund/internal/logging"
	"atrund/internal/scan"
	"atrund/internal/sched"
	"atrund/internal/spool"
)

type stubSampler struct {
	load float64
	err  error
}

func (s stubSampler) Sample() (float64, error) { return s.load, s.err }

func candidate(queue byte, jobno uint32, at time.Time) *scan.Candidate {
	return &scan.Candidate{Name: spool.FromTime(queue, jobno, at), UID: 1000, GID: 1000}
}

func TestGateRunsFirstCandidateImmediately(t *testing.T) {
	now := time.Now()
	s := sched.New(time.Minute, 0.8, stubSampler{load: 0.1}, logging.NewNop())

	var ran []scan.Candidate
	res := scan.Result{NextWake: now.Add(scan.CheckInterval), Batch: candidate('b', 1, now), Pending: true}
	_, pending := s.Gate(now, res, func(c scan.Candidate) { ran = append(ran, c) })

	if len(ran) != 1 {
		t.Fatalf("expected one batch run, got %d", len(ran))
	}
	if !pending {
		t.Fatal("expected pending work")
	}
}

func TestGateThrottlesSecondCandidate(t *testing.T) {
	now := time.Now()
	s := sched.New(time.Minute, 0.8, stubSampler{load: 0.1}, logging.NewNop())

	runs := 0
	res := scan.Result{NextWake: now.Add(scan.CheckInterval), Batch: candidate('b', 1, now), Pending: true}
	s.Gate(now, res, func(scan.Candidate) { runs++ })

	// A candidate in the very next scan is inside the batch interval.
	later := now.Add(10 * time.Second)
	res = scan.Result{NextWake: later.Add(scan.CheckInterval), Batch: candidate('b', 2, now), Pending: true}
	nextWake, pending := s.Gate(later, res, func(scan.Candidate) { runs++ })

	if runs != 1 {
		t.Fatalf("throttled candidate must not run, got %d runs", runs)
	}
	if !pending {
		t.Fatal("throttled candidate keeps work pending")
	}
	want := now.Add(time.Minute)
	if !nextWake.Equal(want) {
		t.Fatalf("next wake %v, want throttle expiry %v", nextWake, want)
	}

	// After the throttle elapses the candidate runs.
	afterThrottle := now.Add(2 * time.Minute)
	res = scan.Result{NextWake: afterThrottle.Add(scan.CheckInterval), Batch: candidate('b', 2, now), Pending: true}
	s.Gate(afterThrottle, res, func(scan.Candidate) { runs++ })
	if runs != 2 {
		t.Fatalf("expected second run after throttle, got %d", runs)
	}
}

func TestGateDefersOnHighLoad(t *testing.T) {
	now := time.Now()
	s := sched.New(time.Minute, 1.0, stubSampler{load: 2.5}, logging.NewNop())

	runs := 0
	res := scan.Result{NextWake: now.Add(scan.CheckInterval), Batch: candidate('B', 1, now), Pending: true}
	nextWake, pending := s.Gate(now, res, func(scan.Candidate) { runs++ })

	if runs != 0 {
		t.Fatal("loaded system must defer batch jobs")
	}
	if !pending {
		t.Fatal("deferred candidate keeps work pending")
	}
	if nextWake.After(now.Add(time.Minute)) {
		t.Fatalf("next wake %v must not exceed the advanced throttle", nextWake)
	}
}

func TestGateTreatsSampleErrorAsIdle(t *testing.T) {
	now := time.Now()
	s := sched.New(time.Minute, 0.8, stubSampler{err: errSample}, logging.NewNop())

	runs := 0
	res := scan.Result{NextWake: now.Add(scan.CheckInterval), Batch: candidate('b', 1, now), Pending: true}
	s.Gate(now, res, func(scan.Candidate) { runs++ })
	if runs != 1 {
		t.Fatal("sample failure should not block batch execution")
	}
}

func TestGateWithoutCandidateLeavesResultAlone(t *testing.T) {
	now := time.Now()
	s := sched.New(time.Minute, 0.8, stubSampler{load: 0.1}, logging.NewNop())

	wake := now.Add(15 * time.Minute)
	nextWake, pending := s.Gate(now, scan.Result{NextWake: wake}, func(scan.Candidate) {
		t.Fatal("no candidate, nothing to run")
	})
	if !nextWake.Equal(wake) {
		t.Fatalf("next wake %v, want %v", nextWake, wake)
	}
	if pending {
		t.Fatal("no candidate means no extra pending work")
	}
}

func TestNice(t *testing.T) {
	cases := map[byte]int{'b': 4, 'B': 4, 'c': 6, 'Z': 52}
	for queue, want := range cases {
		if got := sched.Nice(queue); got != want {
			t.Fatalf("Nice(%c) = %d, want %d", queue, got, want)
		}
	}
}

var errSample = errSampleType{}

type errSampleType struct{}

func (errSampleType) Error() string { return "sample failed" }
