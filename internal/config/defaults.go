package config

import "time"

// Default execution limits. The default timeout and capture ceiling match
// the values the gateway has always used; the maximum timeout bounds what a
// request may ask for.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxTimeout   = 5 * time.Minute
	DefaultCaptureLimit = 1 << 20 // 1 MiB per stream
)

// DefaultConfig returns a Config with all defaults populated.
func DefaultConfig() *Config {
	return &Config{
		Allowlist: DefaultAllowlistPath(),
		Execute: ExecuteConfig{
			DefaultTimeout: DefaultTimeout.String(),
			MaxTimeout:     DefaultMaxTimeout.String(),
			CaptureLimit:   DefaultCaptureLimit,
		},
		Audit: AuditConfig{
			File: DefaultAuditPath(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// defaultConfigTemplate is written when no config file exists. It documents
// every field so users can edit it without consulting the docs.
const defaultConfigTemplate = `# shellgate configuration
#
# allowlist: path to the allowed-commands file.
# One program name per line; lines starting with # and blank lines are
# ignored. Duplicate entries are de-duplicated on load.
#allowlist: ~/.config/shellgate/allowed_commands.txt

execute:
  # Timeout applied when a request does not specify one.
  default_timeout: 30s
  # Upper bound on per-request timeouts; larger requests are clamped.
  max_timeout: 5m
  # Per-stream output capture ceiling in bytes. Output past the ceiling is
  # discarded and the result is marked truncated.
  capture_limit: 1048576

audit:
  # Append-only execution audit log.
  #file: ~/.local/state/shellgate/audit.log

log:
  # Operational log (distinct from the audit log).
  #file: ~/.local/state/shellgate/shellgate.log
  level: info
`
