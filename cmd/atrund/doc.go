// Package main hosts the atrund CLI entrypoint and command graph.
//
// The root command is the daemon itself: it loads configuration, drops to
// the service identity, and enters the scan/sleep loop (or runs a single
// scan with -s). The queue and config subcommands are terminal utilities
// for inspecting the spool and scaffolding configuration.
//
// Keep this package lean: the scan, scheduling, and execution semantics
// live in the internal packages; this layer only translates flags and
// renders output.
package main
