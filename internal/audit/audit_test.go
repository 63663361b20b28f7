package audit

import (
	"strings"
	"testing"
	"time"
)

func TestRecordFormat(t *testing.T) {
	ts := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		name     string
		record   Record
		expected string
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
			expected: `2026-01-02T15:04:05Z EXEC cmd="git status" exit=0 duration=12.0ms`,
		},
		{
			name: "deny",
			record: Record{
				Timestamp: ts,
				Command:   "shutdown -h now",
				Outcome:   OutcomeDeny,
				Reason:    "command not allowed: shutdown",
			},
			expected: `2026-01-02T15:04:05Z DENY cmd="shutdown -h now" reason="command not allowed: shutdown"`,
		},
		{
			name: "timeout carries sentinel exit",
			record: Record{
				Timestamp: ts,
				Command:   "sleep 99",
				Outcome:   OutcomeTimeout,
				ExitCode:  -1,
				Duration:  30 * time.Second,
			},
			expected: `2026-01-02T15:04:05Z TIMEOUT cmd="sleep 99" exit=-1 duration=30.0s`,
		},
		{
			name: "system error",
			record: Record{
				Timestamp: ts,
				Command:   "ls",
				Outcome:   OutcomeError,
				Reason:    "start process: fork failed",
			},
			expected: `2026-01-02T15:04:05Z ERROR cmd="ls" reason="start process: fork failed"`,
		},
		{
			name: "command with quotes is escaped",
			record: Record{
				Timestamp: ts,
				Command:   `echo "hi there"`,
				Outcome:   OutcomeExec,
				ExitCode:  0,
				Duration:  time.Millisecond,
			},
			expected: `2026-01-02T15:04:05Z EXEC cmd="echo \"hi there\"" exit=0 duration=1.0ms`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.Format(); got != tt.expected {
				t.Errorf("Format():\n got %s\nwant %s", got, tt.expected)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		d        time.Duration
		expected string
	}{
		{"sub-second", 250 * time.Millisecond, "250.0ms"},
		{"seconds", 2300 * time.Millisecond, "2.3s"},
		{"minutes", 90 * time.Second, "1m30s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatDuration(tt.d); got != tt.expected {
				t.Errorf("formatDuration(%v): got %q, want %q", tt.d, got, tt.expected)
			}
		})
	}
}

func TestRecordFormatIgnoresEmptyReason(t *testing.T) {
	r := Record{
		Timestamp: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
		Command:   "ls",
		Outcome:   OutcomeDeny,
	}
	if strings.Contains(r.Format(), "reason=") {
		t.Errorf("empty reason should be omitted: %s", r.Format())
	}
}
