// Package sched gates batch jobs: at most one start per scan, a minimum
// interval between starts, and a 1-minute load-average ceiling sampled from
// the kernel. It also owns the queue-letter-to-nice mapping applied to
// batch shells.
package sched
