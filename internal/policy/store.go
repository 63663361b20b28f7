// Package policy maintains the allowlist of program names that the gateway
// may execute without human confirmation.
//
// The backing store is a plain text file, one program name per line. Lines
// beginning with # and blank lines are ignored, and duplicate entries are
// de-duplicated on load, so hand-edited files are tolerated.
package policy

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/xdg/shellgate/internal/clog"
)

// DefaultCommands is the built-in allowlist used when the backing file is
// missing or unreadable. The gateway stays operable with this minimal set
// rather than refusing every command.
var DefaultCommands = []string{
	"python3", "pip", "git", "curl", "ls", "cat", "head", "tail",
	"mkdir", "cp", "mv", "rm", "find", "grep", "which", "say",
	"docker", "docker-compose", "nvidia-smi",
}

// AddResult reports the outcome of Store.Add.
type AddResult int

const (
	// Added means the name was new and has been persisted.
	Added AddResult = iota
	// AlreadyPresent means the name was already allowed; nothing changed.
	AlreadyPresent
)

// Store holds the in-memory allowlist and keeps it in sync with the
// backing file. All methods are safe for concurrent use: membership checks
// take a read lock, while Add serializes the read-modify-write of the file
// under the write lock so concurrent adds cannot corrupt it.
type Store struct {
	mu       sync.RWMutex
	path     string
	names    map[string]struct{}
	fallback bool // true when Load fell back to DefaultCommands
}

// NewStore creates a Store backed by the file at path. Call Load before use.
func NewStore(path string) *Store {
	return &Store{
		path:  path,
		names: make(map[string]struct{}),
	}
}

// Load reads the allowlist file into memory. Comment lines and blank lines
// are ignored and duplicates collapse. A missing or unreadable file is not
// an error: the store falls back to DefaultCommands and marks itself
// degraded (see Fallback).
func (s *Store) Load() error {
	names, err := readAllowlist(s.path)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		clog.Warn("policy: %v; falling back to built-in allowlist", err)
		s.names = make(map[string]struct{}, len(DefaultCommands))
		for _, name := range DefaultCommands {
			s.names[name] = struct{}{}
		}
		s.fallback = true
		return nil
	}

	s.names = names
	s.fallback = false
	return nil
}

// Fallback reports whether the store is running on the built-in default
// set because the backing file was unavailable at load time.
func (s *Store) Fallback() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fallback
}

// Contains reports whether name is allowed. Matching is case-sensitive and
// exact; there is no globbing or pattern matching.
func (s *Store) Contains(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.names[name]
	return ok
}

// List returns the allowed names sorted for deterministic display.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.names))
	for name := range s.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Add allows name and persists the change. Adding an existing name is
// idempotent: it reports AlreadyPresent without touching storage. The name
// must be a single program token (non-empty, no whitespace).
func (s *Store) Add(name string) (AddResult, error) {
	if err := validateName(name); err != nil {
		return AlreadyPresent, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.names[name]; ok {
		return AlreadyPresent, nil
	}

	s.names[name] = struct{}{}
	if err := s.persistLocked(); err != nil {
		// Keep memory and disk consistent: roll back the in-memory add.
		delete(s.names, name)
		return AlreadyPresent, fmt.Errorf("persist allowlist: %w", err)
	}

	// A successful add means the backing file now exists and is writable.
	s.fallback = false
	return Added, nil
}

// persistLocked rewrites the backing file from the in-memory set, sorted,
// one name per line. Caller must hold the write lock. The file is written
// with 0600 permissions and its parent directory is created if needed.
func (s *Store) persistLocked() error {
	names := make([]string, 0, len(s.names))
	for name := range s.names {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte('\n')
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create allowlist directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("write allowlist file: %w", err)
	}
	return nil
}

// readAllowlist parses the allowlist file at path into a set.
func readAllowlist(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open allowlist file: %w", err)
	}
	defer f.Close()

	names := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read allowlist file: %w", err)
	}
	return names, nil
}

// validateName checks that name is usable as an allowlist entry.
func validateName(name string) error {
	if name == "" {
		return errors.New("command name cannot be empty")
	}
	if strings.ContainsAny(name, " \t\n\r") {
		return fmt.Errorf("command name cannot contain whitespace: %q", name)
	}
	if strings.HasPrefix(name, "#") {
		return fmt.Errorf("command name cannot start with #: %q", name)
	}
	return nil
}
