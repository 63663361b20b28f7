package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dir returns the shellgate configuration directory path.
// By default, this is ~/.config/shellgate/. If the XDG_CONFIG_HOME
// environment variable is set, it uses $XDG_CONFIG_HOME/shellgate/ instead.
// The returned path always has a trailing slash.
func Dir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = "~/.config"
	}
	return ExpandHome(base) + "/shellgate/"
}

// EnsureDir creates the shellgate configuration directory if it
// doesn't exist. It uses 0700 permissions for security (user-only access).
// Returns nil if the directory already exists or was successfully created.
func EnsureDir() error {
	if err := os.MkdirAll(Dir(), 0o700); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}
	return nil
}

// Path returns the full path to the configuration file.
// This is Dir() + "config.yaml".
func Path() string {
	return Dir() + "config.yaml"
}

// DefaultAllowlistPath returns the default path of the allowed-commands file.
// This is Dir() + "allowed_commands.txt".
func DefaultAllowlistPath() string {
	return Dir() + "allowed_commands.txt"
}

// DefaultAuditPath returns the default path of the audit log, under the
// XDG state directory: ~/.local/state/shellgate/audit.log.
func DefaultAuditPath() string {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		stateDir = "~/.local/state"
	}
	return filepath.Join(ExpandHome(stateDir), "shellgate", "audit.log")
}

// ExpandHome replaces a leading ~ in path with the user's home directory.
// If the home directory cannot be determined, the path is returned unchanged.
func ExpandHome(path string) string {
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
