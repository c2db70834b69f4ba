package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDaemon()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.JobDir, err = expandPath(c.Paths.JobDir); err != nil {
		return fmt.Errorf("paths.job_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDaemon() {
	c.Daemon.User = strings.TrimSpace(c.Daemon.User)
	c.Daemon.Group = strings.TrimSpace(c.Daemon.Group)
	c.Daemon.Sendmail = strings.TrimSpace(c.Daemon.Sendmail)
	if c.Daemon.User == "" {
		c.Daemon.User = defaultDaemonUser
	}
	if c.Daemon.Group == "" {
		c.Daemon.Group = defaultDaemonGroup
	}
	if c.Daemon.Sendmail == "" {
		c.Daemon.Sendmail = defaultSendmail
	}
	if c.Daemon.BatchInterval == 0 {
		c.Daemon.BatchInterval = defaultBatchInterval
	}
	// Non-positive limits request the platform default, matching the -l flag.
	if c.Daemon.LoadLimit <= 0 {
		c.Daemon.LoadLimit = defaultLoadLimit
	}
	if c.Daemon.LoginNameMax <= 0 {
		c.Daemon.LoginNameMax = defaultLoginNameMax
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
