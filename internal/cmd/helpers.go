package cmd

import (
	"fmt"
	"os"

	"github.com/xdg/shellgate/internal/audit"
	"github.com/xdg/shellgate/internal/clog"
	"github.com/xdg/shellgate/internal/config"
	"github.com/xdg/shellgate/internal/executor"
	"github.com/xdg/shellgate/internal/gateway"
	"github.com/xdg/shellgate/internal/policy"
)

// newGateway loads the configuration and assembles the gateway with its
// injected collaborators. serverMode routes operational logging away from
// stderr, which the serve loop owns as its wire.
func newGateway(serverMode bool) (*gateway.Gateway, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logPath := cfg.Log.File
	if logPath == "" {
		logPath = clog.DefaultLogPath()
	}
	debug := debugFlag || cfg.Log.Level == "debug"
	if err := clog.Configure(logPath, debug, serverMode); err != nil {
		// Operational logging is ambient; a bad log path must not make
		// the gateway inoperable.
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if !debug && cfg.Log.Level != "" {
		clog.SetLevel(clog.ParseLevel(cfg.Log.Level))
	}

	store := policy.NewStore(cfg.Allowlist)
	if err := store.Load(); err != nil {
		return nil, nil, fmt.Errorf("load allowlist: %w", err)
	}

	auditLog, err := audit.Open(cfg.Audit.File)
	if err != nil {
		// Audit is best-effort: keep records in memory rather than
		// refusing to run commands.
		clog.Warn("audit: %v; keeping records in memory only", err)
		auditLog = audit.NewLog(nil)
	}

	engine := executor.NewShellExecutor(cfg.CaptureLimitBytes())
	gw := gateway.New(store, engine, auditLog,
		cfg.DefaultTimeoutDuration(), cfg.MaxTimeoutDuration())
	return gw, cfg, nil
}
