// Package spool defines the on-disk layout of the job directory: the
// 14-character entry name grammar, queue classification, and the hard-link
// lock protocol.
//
// A job is a regular file named QNNNNNTTTTTTTT (queue character, hex serial,
// hex scheduled minutes since the epoch) owned by the submitting user. Its
// lock is a second directory entry with the queue character replaced by '=',
// hard-linked to the job file; a lock is recognized by nlink > 1 on the job
// and considered stale once its encoded time is far enough in the past.
//
// The scheduled time encoded in the filename is authoritative. File mtimes
// are only used by the daemon to short-circuit scans.
package spool
