// Package testsupport provides builders shared by package tests: temp-spool
// configs and well-formed job files.
package testsupport

import (
	"path/filepath"
	"testing"

	"atrund/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.JobDir = filepath.Join(base, "jobs")
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure test directories: %v", err)
	}
	return &cfg
}

// WithSendmail overrides the mail transport path on the test config.
func WithSendmail(path string) ConfigOption {
	return func(c *config.Config) {
		c.Daemon.Sendmail = path
	}
}

// WithBatchInterval overrides the batch throttle on the test config.
func WithBatchInterval(seconds uint) ConfigOption {
	return func(c *config.Config) {
		c.Daemon.BatchInterval = seconds
	}
}
