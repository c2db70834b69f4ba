// Package logging assembles the structured slog loggers and formatting
// helpers used across atrund.
//
// It owns the configurable console/JSON handlers, centralizes level and
// output plumbing, and exposes attribute helpers plus the shared field-name
// constants so the scanner, scheduler, and executor tag job-related log
// lines with the same keys. The package also provides a no-op logger for
// tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup to ensure new
// components emit data with the same shape as the rest of the system.
package logging
