// Package executor runs a single queued job from lock to mail delivery.
//
// Run acquires the hard-link lock synchronously, then a background worker
// verifies the job file, unlinks it, spawns /bin/sh as the submitter with
// output captured to the output spool, and pipes the result to sendmail
// according to the header's mail switch.
//
// Failure tiers: quarantine-class errors (tamper evidence, malformed
// headers, identity mismatches) abort the job and deliberately leave the
// lock entry behind, so the job cannot be retried and silently ages out of
// the spool. Worker-class errors are environmental; whether the job retries
// depends on whether its file was still linked when the worker died.
package executor
