// Package config loads, defaults, and validates atrund's TOML configuration.
//
// Load resolves the config path (explicit flag, /etc/atrund, then the
// per-user location), decodes it over Default(), expands all paths, and
// validates the result. Keep new knobs here rather than scattering flag
// parsing through the daemon; the CLI overrides individual fields after
// Load returns.
package config
