// Package server exposes the gateway over a line-delimited JSON
// request/response protocol: one JSON request per line in, one JSON
// response per line out. This is the surface agent-side transports
// (MQTT bridges, tool hosts) wrap; the gateway itself stays
// transport-neutral.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/xdg/shellgate/internal/audit"
	"github.com/xdg/shellgate/internal/clog"
	"github.com/xdg/shellgate/internal/gateway"
)

// JSON-RPC style error codes. ParseError follows the JSON-RPC convention;
// the rest are this protocol's own.
const (
	CodeParseError   = -32700
	CodeUnauthorized = -32000
	CodeBadRequest   = -1
)

// maxLineBytes bounds a single request line.
const maxLineBytes = 1 << 20

// Request is one incoming protocol message.
type Request struct {
	ID     any             `json:"id,omitempty"`
	Secret string          `json:"secret,omitempty"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is one outgoing protocol message. Exactly one of Result and
// Error is set.
type Response struct {
	ID     any    `json:"id,omitempty"`
	Result any    `json:"result,omitempty"`
	Error  *Error `json:"error,omitempty"`
}

// Error carries a protocol-level failure (bad request, unknown method).
// Command-level outcomes, including denials, travel inside ExecuteResult.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type executeParams struct {
	Command string `json:"command"`
	Timeout int    `json:"timeout,omitempty"` // seconds
}

// ExecuteResult is the wire shape of an execution outcome.
type ExecuteResult struct {
	Success   bool    `json:"success"`
	Stdout    string  `json:"stdout"`
	Stderr    string  `json:"stderr"`
	ExitCode  int     `json:"exit_code"`
	Duration  float64 `json:"duration"` // seconds
	TimedOut  bool    `json:"timed_out,omitempty"`
	Truncated bool    `json:"truncated,omitempty"`
	Error     string  `json:"error,omitempty"`
}

type listParams struct{}

type logParams struct {
	Limit int `json:"limit,omitempty"`
}

// LogEntry is the wire shape of one audit record.
type LogEntry struct {
	Timestamp string  `json:"timestamp"`
	Command   string  `json:"command"`
	Outcome   string  `json:"outcome"`
	ExitCode  int     `json:"exit_code"`
	Reason    string  `json:"reason,omitempty"`
	Duration  float64 `json:"duration"` // seconds
}

// Server dispatches protocol requests to a Gateway. A non-empty secret
// requires every request to carry the same value.
type Server struct {
	gw     *gateway.Gateway
	secret string
}

// New creates a Server for gw. secret may be empty to disable the check.
func New(gw *gateway.Gateway, secret string) *Server {
	return &Server{gw: gw, secret: secret}
}

// Handle processes one raw request line and returns the response.
func (s *Server) Handle(ctx context.Context, line []byte) Response {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return Response{Error: &Error{Code: CodeParseError, Message: "Parse error"}}
	}

	if s.secret != "" && req.Secret != s.secret {
		return Response{ID: req.ID, Error: &Error{Code: CodeUnauthorized, Message: "invalid secret"}}
	}

	switch req.Method {
	case "execute_command":
		return s.handleExecute(ctx, req)
	case "list_allowed_commands":
		return s.handleList(req)
	case "get_command_log":
		return s.handleLog(req)
	default:
		return Response{ID: req.ID, Error: &Error{
			Code:    CodeBadRequest,
			Message: fmt.Sprintf("Unknown method: %s", req.Method),
		}}
	}
}

func (s *Server) handleExecute(ctx context.Context, req Request) Response {
	var params executeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return Response{ID: req.ID, Error: &Error{Code: CodeBadRequest, Message: "invalid params"}}
		}
	}
	if params.Command == "" {
		return Response{ID: req.ID, Error: &Error{Code: CodeBadRequest, Message: "No command provided"}}
	}

	resp := s.gw.Handle(ctx, gateway.Request{
		Command: params.Command,
		Timeout: time.Duration(params.Timeout) * time.Second,
	})

	result := ExecuteResult{ExitCode: -1}
	switch resp.Status {
	case gateway.StatusExecuted:
		r := resp.Result
		result = ExecuteResult{
			Success:   r.ExitCode == 0 && !r.TimedOut,
			Stdout:    r.Stdout,
			Stderr:    r.Stderr,
			ExitCode:  r.ExitCode,
			Duration:  r.Duration.Seconds(),
			TimedOut:  r.TimedOut,
			Truncated: r.Truncated,
		}
		if r.TimedOut {
			result.Error = fmt.Sprintf("Command timed out after %ds", params.Timeout)
		}
	case gateway.StatusRejected, gateway.StatusError:
		result.Error = resp.Reason
	}

	return Response{ID: req.ID, Result: result}
}

func (s *Server) handleList(req Request) Response {
	return Response{ID: req.ID, Result: map[string]any{"commands": s.gw.Allowed()}}
}

func (s *Server) handleLog(req Request) Response {
	var params logParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return Response{ID: req.ID, Error: &Error{Code: CodeBadRequest, Message: "invalid params"}}
		}
	}

	records := s.gw.Log(params.Limit)
	entries := make([]LogEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, logEntry(r))
	}
	return Response{ID: req.ID, Result: map[string]any{"log": entries}}
}

func logEntry(r audit.Record) LogEntry {
	return LogEntry{
		Timestamp: r.Timestamp.UTC().Format(time.RFC3339),
		Command:   r.Command,
		Outcome:   string(r.Outcome),
		ExitCode:  r.ExitCode,
		Reason:    r.Reason,
		Duration:  r.Duration.Seconds(),
	}
}

// Serve reads requests from r line by line and writes one response line
// each, until EOF or ctx is done. Used for the stdio transport.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		resp := s.Handle(ctx, line)
		if err := writeResponse(w, resp); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	clog.Debug("server: input closed, shutting down")
	return nil
}

func writeResponse(w io.Writer, resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		// Marshaling our own response types cannot fail with well-formed
		// inputs; answer a generic error rather than dropping the line.
		data = []byte(`{"error":{"code":-1,"message":"internal error"}}`)
	}
	data = append(data, '\n')
	if _, err = w.Write(data); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}
