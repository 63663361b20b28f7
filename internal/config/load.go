package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/xdg/shellgate/internal/clog"
)

// Load loads the configuration from the default config path.
// If the config file doesn't exist, it writes a commented default config
// and returns DefaultConfig(). If the file exists but cannot be read or
// parsed, it returns an error.
// All paths containing ~ are expanded to the actual home directory.
func Load() (*Config, error) {
	path := Path()
	clog.Debug("config: loading from %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			clog.Debug("config: file not found, creating defaults")
			if writeErr := WriteDefault(); writeErr != nil {
				clog.Warn("config: failed to create default config: %v", writeErr)
			}
			cfg := DefaultConfig()
			expandPaths(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	applyDefaults(cfg)
	expandPaths(cfg)
	return cfg, nil
}

// applyDefaults fills unset fields with their default values so callers
// never see empty paths or zero limits.
func applyDefaults(cfg *Config) {
	if cfg.Allowlist == "" {
		cfg.Allowlist = DefaultAllowlistPath()
	}
	if cfg.Audit.File == "" {
		cfg.Audit.File = DefaultAuditPath()
	}
}

// expandPaths expands ~ to the home directory in all path fields.
func expandPaths(cfg *Config) {
	cfg.Allowlist = ExpandHome(cfg.Allowlist)
	cfg.Audit.File = ExpandHome(cfg.Audit.File)
	cfg.Log.File = ExpandHome(cfg.Log.File)
}
