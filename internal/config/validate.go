package config

import (
	"fmt"
	"time"
)

// validLogLevels defines the allowed log level values.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks that a parsed Config contains valid values. It validates:
//   - Duration strings parse and are positive
//   - default_timeout does not exceed max_timeout
//   - capture_limit is non-negative
//   - log.level is one of: debug, info, warn, error (if non-empty)
//
// Returns nil if the config is valid, or an error naming the invalid field.
func Validate(cfg *Config) error {
	var defaultTimeout, maxTimeout time.Duration

	if cfg.Execute.DefaultTimeout != "" {
		d, err := parsePositiveDuration(cfg.Execute.DefaultTimeout, "execute.default_timeout")
		if err != nil {
			return err
		}
		defaultTimeout = d
	}
	if cfg.Execute.MaxTimeout != "" {
		d, err := parsePositiveDuration(cfg.Execute.MaxTimeout, "execute.max_timeout")
		if err != nil {
			return err
		}
		maxTimeout = d
	}
	if defaultTimeout > 0 && maxTimeout > 0 && defaultTimeout > maxTimeout {
		return fmt.Errorf("execute.default_timeout: %s exceeds execute.max_timeout %s",
			cfg.Execute.DefaultTimeout, cfg.Execute.MaxTimeout)
	}

	if cfg.Execute.CaptureLimit < 0 {
		return fmt.Errorf("execute.capture_limit: must be non-negative, got %d", cfg.Execute.CaptureLimit)
	}

	if cfg.Log.Level != "" && !validLogLevels[cfg.Log.Level] {
		return fmt.Errorf("log.level: must be one of debug, info, warn, error; got %q", cfg.Log.Level)
	}

	return nil
}

// parsePositiveDuration parses a duration string and requires it to be
// greater than zero.
func parsePositiveDuration(s, field string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", field, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %q", field, s)
	}
	return d, nil
}

// DefaultTimeoutDuration returns the configured default timeout, falling
// back to the built-in default when unset.
func (c *Config) DefaultTimeoutDuration() time.Duration {
	if c.Execute.DefaultTimeout == "" {
		return DefaultTimeout
	}
	d, err := time.ParseDuration(c.Execute.DefaultTimeout)
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}

// MaxTimeoutDuration returns the configured maximum timeout, falling back
// to the built-in default when unset.
func (c *Config) MaxTimeoutDuration() time.Duration {
	if c.Execute.MaxTimeout == "" {
		return DefaultMaxTimeout
	}
	d, err := time.ParseDuration(c.Execute.MaxTimeout)
	if err != nil || d <= 0 {
		return DefaultMaxTimeout
	}
	return d
}

// CaptureLimitBytes returns the configured per-stream capture ceiling,
// falling back to the built-in default when unset.
func (c *Config) CaptureLimitBytes() int64 {
	if c.Execute.CaptureLimit <= 0 {
		return DefaultCaptureLimit
	}
	return c.Execute.CaptureLimit
}
