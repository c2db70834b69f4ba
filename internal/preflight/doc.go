// Package preflight provides readiness checks for the binaries and
// filesystem paths atrund depends on. The daemon runs them once at startup
// and logs failures; a missing sendmail or an unwritable spool is better
// reported before the first job than during it.
package preflight
