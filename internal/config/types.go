// Package config provides configuration types for the shellgate gateway.
// These types map to the YAML configuration file at
// ~/.config/shellgate/config.yaml.
package config

// Config represents the top-level shellgate configuration.
type Config struct {
	// Allowlist is the path to the allowed-commands file.
	// One program name per line; # comments and blank lines are ignored.
	Allowlist string `yaml:"allowlist,omitempty"`

	Execute ExecuteConfig `yaml:"execute,omitempty"`
	Audit   AuditConfig   `yaml:"audit,omitempty"`
	Log     LogConfig     `yaml:"log,omitempty"`
}

// ExecuteConfig contains command execution limits.
type ExecuteConfig struct {
	// DefaultTimeout is applied when a request does not specify a timeout.
	// Duration string, e.g. "30s".
	DefaultTimeout string `yaml:"default_timeout,omitempty"`

	// MaxTimeout caps the per-request timeout. Requests asking for more
	// are clamped, not rejected. Duration string, e.g. "5m".
	MaxTimeout string `yaml:"max_timeout,omitempty"`

	// CaptureLimit is the per-stream output capture ceiling in bytes.
	// Output beyond the ceiling is discarded and the result is marked
	// truncated; the process is not killed for producing too much output.
	CaptureLimit int64 `yaml:"capture_limit,omitempty"`
}

// AuditConfig contains audit log settings.
type AuditConfig struct {
	// File is the path of the append-only audit log.
	File string `yaml:"file,omitempty"`
}

// LogConfig contains operational logging settings.
type LogConfig struct {
	// File is the operational log path. Empty means the default
	// state-directory location.
	File string `yaml:"file,omitempty"`

	// Level is the minimum log level: debug, info, warn, or error.
	Level string `yaml:"level,omitempty"`
}
