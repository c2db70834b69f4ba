package sched

import (
	"log/slog"
	"time"

	"atrund/internal/logging"
	"atrund/internal/scan"
)

// Scheduler layers batch policy over scan results: at most one batch start
// per scan, a minimum interval between starts, and a load-average gate.
type Scheduler struct {
	interval time.Duration
	limit    float64
	sampler  LoadSampler
	logger   *slog.Logger

	nextBatch time.Time
}

// New constructs a scheduler. The throttle is primed to the first scan's
// "now", so the first batch candidate is eligible immediately.
func New(interval time.Duration, limit float64, sampler LoadSampler, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		interval: interval,
		limit:    limit,
		sampler:  sampler,
		logger:   logging.NewComponentLogger(logger, "sched"),
	}
}

// Gate applies batch policy to one scan's result. run is invoked for at most
// one batch candidate. It returns the possibly-shortened next wake time and
// whether pending work remains.
func (s *Scheduler) Gate(now time.Time, res scan.Result, run func(scan.Candidate)) (time.Time, bool) {
	nextWake := res.NextWake
	pending := res.Pending

	if s.nextBatch.IsZero() {
		s.nextBatch = now
	}

	cand := res.Batch
	if cand != nil && !s.nextBatch.After(now) {
		s.nextBatch = now.Add(s.interval)

		load, err := s.sampler.Sample()
		if err != nil {
			s.logger.Warn("load sample failed, assuming idle", logging.Error(err))
			load = 0
		}
		if load < s.limit {
			run(*cand)
			cand = nil
		} else {
			s.logger.Info("batch job deferred by load",
				logging.String(logging.FieldFile, cand.Name.String()),
				logging.Float64(logging.FieldLoadAvg, load),
			)
		}
	}

	if cand != nil && s.nextBatch.Before(nextWake) {
		nextWake = s.nextBatch
		pending = true
	}

	return nextWake, pending
}

// Nice returns the scheduling priority adjustment for a batch queue:
// queue 'b' runs at nice 4, 'c' at 6, and so on.
func Nice(queue byte) int {
	c := queue
	if c >= 'A' && c <= 'Z' {
		c += 'a' - 'A'
	}
	return int(c-'a'+1) * 2
}
