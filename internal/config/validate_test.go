package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(cfg *Config) {},
		},
		{
			name:   "empty config is valid",
			mutate: func(cfg *Config) { *cfg = Config{} },
		},
		{
			name:    "bad default timeout",
			mutate:  func(cfg *Config) { cfg.Execute.DefaultTimeout = "soon" },
			wantErr: "execute.default_timeout",
		},
		{
			name:    "negative max timeout",
			mutate:  func(cfg *Config) { cfg.Execute.MaxTimeout = "-1m" },
			wantErr: "execute.max_timeout",
		},
		{
			name: "default timeout above max",
			mutate: func(cfg *Config) {
				cfg.Execute.DefaultTimeout = "10m"
				cfg.Execute.MaxTimeout = "1m"
			},
			wantErr: "exceeds execute.max_timeout",
		},
		{
			name:    "negative capture limit",
			mutate:  func(cfg *Config) { cfg.Execute.CaptureLimit = -1 },
			wantErr: "execute.capture_limit",
		},
		{
			name:    "bad log level",
			mutate:  func(cfg *Config) { cfg.Log.Level = "loud" },
			wantErr: "log.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q should contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestDurationAccessorsFallBack(t *testing.T) {
	cfg := &Config{}
	if got := cfg.DefaultTimeoutDuration(); got != DefaultTimeout {
		t.Errorf("DefaultTimeoutDuration: got %v, want %v", got, DefaultTimeout)
	}
	if got := cfg.MaxTimeoutDuration(); got != DefaultMaxTimeout {
		t.Errorf("MaxTimeoutDuration: got %v, want %v", got, DefaultMaxTimeout)
	}
	if got := cfg.CaptureLimitBytes(); got != int64(DefaultCaptureLimit) {
		t.Errorf("CaptureLimitBytes: got %d, want %d", got, int64(DefaultCaptureLimit))
	}

	cfg.Execute.DefaultTimeout = "45s"
	if got := cfg.DefaultTimeoutDuration(); got != 45*time.Second {
		t.Errorf("DefaultTimeoutDuration: got %v, want 45s", got)
	}
}
