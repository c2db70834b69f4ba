package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDaemon(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.JobDir == "" {
		return errors.New("paths.job_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.JobDir == c.Paths.OutputDir {
		return errors.New("paths.job_dir and paths.output_dir must differ")
	}
	return nil
}

func (c *Config) validateDaemon() error {
	if c.Daemon.User == "" {
		return errors.New("daemon.user must be set")
	}
	if c.Daemon.Group == "" {
		return errors.New("daemon.group must be set")
	}
	if c.Daemon.Sendmail == "" {
		return errors.New("daemon.sendmail must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
