// Package gateway decides whether a requested shell command may run
// without human confirmation, runs it, and records the attempt.
package gateway

import (
	"fmt"
	"strings"

	"github.com/xdg/shellgate/internal/policy"
)

// Decision is the outcome of authorizing one command.
type Decision struct {
	// Allowed reports whether the command may run.
	Allowed bool

	// Program is the extracted program token, empty for an empty command.
	// On denial it tells the caller exactly what to allowlist.
	Program string

	// Reason explains a denial. Empty when Allowed.
	Reason string
}

// Authorizer checks a command's program token against the policy store.
//
// Authorization is scoped to "is the named program allowed to run": the
// program token is the first whitespace-delimited word of the command, and
// no further shell parsing happens. Because the engine shell-interprets the
// full command text, later pipeline stages (`a | b`), `&&`/`;` segments,
// and `$()` substitutions are not themselves authorized. That gap is a
// deliberate, documented boundary of the first-token rule, not an
// oversight; tightening it would cost pipe and redirection support.
type Authorizer struct {
	policy *policy.Store
}

// NewAuthorizer creates an Authorizer backed by store.
func NewAuthorizer(store *policy.Store) *Authorizer {
	return &Authorizer{policy: store}
}

// Authorize decides whether commandText may run.
func (a *Authorizer) Authorize(commandText string) Decision {
	program := firstToken(commandText)
	if program == "" {
		return Decision{Reason: "empty command"}
	}
	if !a.policy.Contains(program) {
		return Decision{
			Program: program,
			Reason:  fmt.Sprintf("command not allowed: %s", program),
		}
	}
	return Decision{Allowed: true, Program: program}
}

// firstToken returns the first whitespace-delimited word of s after
// trimming leading whitespace.
func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
