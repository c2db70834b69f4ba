// Package scan performs one classification pass over the job spool: it
// parses entry names, skips files still being prepared, reclaims stale
// locks, starts immediate jobs, and retains the single best batch candidate
// for the scheduler.
package scan
