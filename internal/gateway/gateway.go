package gateway

import (
	"context"
	"time"

	"github.com/xdg/shellgate/internal/audit"
	"github.com/xdg/shellgate/internal/clog"
	"github.com/xdg/shellgate/internal/executor"
	"github.com/xdg/shellgate/internal/policy"
)

// Status classifies a gateway response.
type Status string

const (
	// StatusExecuted means the command ran; Result carries the outcome
	// (including non-zero exits and timeouts).
	StatusExecuted Status = "executed"
	// StatusRejected means policy denied the command; nothing was spawned.
	StatusRejected Status = "rejected"
	// StatusError means the gateway's own machinery failed (e.g. the
	// process could not be started). Distinct from a command that ran
	// and failed.
	StatusError Status = "error"
)

// Request is one command execution request.
type Request struct {
	// Command is the full shell command text.
	Command string

	// Timeout is the requested deadline. Zero means the configured
	// default; values above the configured maximum are clamped.
	Timeout time.Duration
}

// Response is the structured result of Handle.
type Response struct {
	Status Status

	// Reason is set for StatusRejected and StatusError.
	Reason string

	// Result is set for StatusExecuted.
	Result executor.Result
}

// Gateway orchestrates authorize, execute, and audit for each request.
// Handle may be called concurrently; in-flight requests share only the
// policy store and the audit log, both of which synchronize internally,
// so concurrent commands execute as concurrent child processes.
type Gateway struct {
	authorizer     *Authorizer
	policy         *policy.Store
	engine         executor.Engine
	auditLog       *audit.Log
	defaultTimeout time.Duration
	maxTimeout     time.Duration
}

// New creates a Gateway from its injected collaborators.
func New(store *policy.Store, engine executor.Engine, auditLog *audit.Log, defaultTimeout, maxTimeout time.Duration) *Gateway {
	return &Gateway{
		authorizer:     NewAuthorizer(store),
		policy:         store,
		engine:         engine,
		auditLog:       auditLog,
		defaultTimeout: defaultTimeout,
		maxTimeout:     maxTimeout,
	}
}

// Handle runs one request through authorize → execute → audit and returns
// a structured response. Expected command failures (denial, non-zero exit,
// timeout) are data in the response, never errors. The audit record is
// written after the authoritative result is computed; audit failures are
// swallowed inside the audit log and cannot affect the response.
func (g *Gateway) Handle(ctx context.Context, req Request) Response {
	decision := g.authorizer.Authorize(req.Command)
	if !decision.Allowed {
		clog.Info("gateway: denied %q: %s", req.Command, decision.Reason)
		g.auditLog.Record(audit.Record{
			Command: req.Command,
			Outcome: audit.OutcomeDeny,
			Reason:  decision.Reason,
		})
		return Response{Status: StatusRejected, Reason: decision.Reason}
	}

	timeout := g.clampTimeout(req.Timeout)
	clog.Debug("gateway: running %q with timeout %v", req.Command, timeout)

	result, err := g.engine.Run(ctx, executor.Request{Command: req.Command, Timeout: timeout})
	if err != nil {
		clog.Error("gateway: %q failed to start: %v", req.Command, err)
		g.auditLog.Record(audit.Record{
			Command: req.Command,
			Outcome: audit.OutcomeError,
			Reason:  err.Error(),
		})
		return Response{Status: StatusError, Reason: err.Error()}
	}

	outcome := audit.OutcomeExec
	if result.TimedOut {
		outcome = audit.OutcomeTimeout
	}
	g.auditLog.Record(audit.Record{
		Command:  req.Command,
		Outcome:  outcome,
		ExitCode: result.ExitCode,
		Duration: result.Duration,
	})

	return Response{Status: StatusExecuted, Result: result}
}

// clampTimeout applies the default and maximum timeout to a requested
// value. Requests above the maximum are clamped, not rejected.
func (g *Gateway) clampTimeout(requested time.Duration) time.Duration {
	if requested <= 0 {
		requested = g.defaultTimeout
	}
	if requested > g.maxTimeout {
		requested = g.maxTimeout
	}
	return requested
}

// Allowed returns the sorted allowlist. Read-only; never touches the engine.
func (g *Gateway) Allowed() []string {
	return g.policy.List()
}

// Allow adds a program name to the allowlist and persists it.
func (g *Gateway) Allow(name string) (policy.AddResult, error) {
	return g.policy.Add(name)
}

// Log returns up to limit recent audit records, most recent first.
func (g *Gateway) Log(limit int) []audit.Record {
	return g.auditLog.Recent(limit)
}

// PolicyDegraded reports whether the policy store is running on its
// built-in fallback set because the allowlist file was unavailable.
func (g *Gateway) PolicyDegraded() bool {
	return g.policy.Fallback()
}
