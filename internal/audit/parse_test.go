package audit

import (
	"testing"
	"time"
)

func TestParseRecordRoundTrip(t *testing.T) {
	ts := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		name   string
		record Record
	}{
		{
			name: "exec",
			record: Record{
				Timestamp: ts,
				Command:   "git status",
				Outcome:   OutcomeExec,
				ExitCode:  0,
				Duration:  12 * time.Millisecond,
			},
		},
		{
			name: "deny with reason",
			record: Record{
				Timestamp: ts,
				Command:   "rm -rf /",
				Outcome:   OutcomeDeny,
				Reason:    "command not allowed: rm",
			},
		},
		{
			name: "timeout with sentinel",
			record: Record{
				Timestamp: ts,
				Command:   "sleep 99",
				Outcome:   OutcomeTimeout,
				ExitCode:  -1,
				Duration:  30 * time.Second,
			},
		},
		{
			name: "command with quotes and equals",
			record: Record{
				Timestamp: ts,
				Command:   `env FOO="a b" printf %s=%s x y`,
				Outcome:   OutcomeExec,
				ExitCode:  2,
				Duration:  1500 * time.Millisecond,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRecord(tt.record.Format())
			if err != nil {
				t.Fatalf("ParseRecord: %v", err)
			}
			if !got.Timestamp.Equal(tt.record.Timestamp) {
				t.Errorf("Timestamp: got %v, want %v", got.Timestamp, tt.record.Timestamp)
			}
			if got.Command != tt.record.Command {
				t.Errorf("Command: got %q, want %q", got.Command, tt.record.Command)
			}
			if got.Outcome != tt.record.Outcome {
				t.Errorf("Outcome: got %q, want %q", got.Outcome, tt.record.Outcome)
			}
			if got.ExitCode != tt.record.ExitCode {
				t.Errorf("ExitCode: got %d, want %d", got.ExitCode, tt.record.ExitCode)
			}
			if got.Reason != tt.record.Reason {
				t.Errorf("Reason: got %q, want %q", got.Reason, tt.record.Reason)
			}
		})
	}
}

func TestParseRecordRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"not a timestamp", "yesterday EXEC cmd=\"ls\""},
		{"unknown outcome", "2026-01-02T15:04:05Z LAUNCH cmd=\"ls\""},
		{"unterminated quote", `2026-01-02T15:04:05Z EXEC cmd="ls`},
		{"bad exit code", `2026-01-02T15:04:05Z EXEC cmd="ls" exit=zero duration=1.0ms`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRecord(tt.line); err == nil {
				t.Errorf("ParseRecord(%q) should fail", tt.line)
			}
		})
	}
}
