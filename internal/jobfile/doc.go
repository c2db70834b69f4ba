// Package jobfile parses and verifies the contents of queued job files: the
// fixed three-line header declaring owner identity and mail disposition, and
// the anti-tamper checks run before a job's script is committed to
// execution.
package jobfile
