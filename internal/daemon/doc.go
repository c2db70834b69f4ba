// Package daemon coordinates the long-running atrund process and system
// integration points.
//
// It wires the scanner, scheduler, and executor into a single scan/sleep
// lifecycle with flock-based locking to prevent multiple instances, and owns
// signal integration: SIGHUP forces a rescan, SIGTERM/SIGINT end the loop
// gracefully, SIGCHLD is counted for diagnostics only. Between scans the
// loop sleeps until the next wake time and skips scan bodies entirely while
// the spool directory mtime proves nothing changed.
//
// Keep orchestration logic here: scan classification, batch policy, and job
// execution live in their respective packages while the daemon focuses on
// timing, startup, and shutdown.
package daemon
