package audit

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseRecord parses one formatted audit line back into a Record. It is
// the inverse of Record.Format and is used to seed Recent from the
// persisted log at startup.
func ParseRecord(line string) (Record, error) {
	ts, rest, ok := strings.Cut(line, " ")
	if !ok {
		return Record{}, fmt.Errorf("parse audit record: no outcome in %q", line)
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return Record{}, fmt.Errorf("parse audit record timestamp: %w", err)
	}

	outcome, rest, _ := strings.Cut(rest, " ")
	r := Record{Timestamp: t, Outcome: Outcome(outcome)}
	switch r.Outcome {
	case OutcomeExec, OutcomeDeny, OutcomeTimeout, OutcomeError:
	default:
		return Record{}, fmt.Errorf("parse audit record: unknown outcome %q", outcome)
	}

	for rest != "" {
		rest = strings.TrimLeft(rest, " ")
		if rest == "" {
			break
		}
		key, after, ok := strings.Cut(rest, "=")
		if !ok {
			return Record{}, fmt.Errorf("parse audit record: bad field %q", rest)
		}

		var value string
		if strings.HasPrefix(after, `"`) {
			quoted, err := strconv.QuotedPrefix(after)
			if err != nil {
				return Record{}, fmt.Errorf("parse audit record: bad quoted value for %s: %w", key, err)
			}
			value, err = strconv.Unquote(quoted)
			if err != nil {
				return Record{}, fmt.Errorf("parse audit record: unquote %s: %w", key, err)
			}
			rest = after[len(quoted):]
		} else {
			value, rest, _ = strings.Cut(after, " ")
			// keep rest as-is when no further space
			if value == "" {
				return Record{}, fmt.Errorf("parse audit record: empty value for %s", key)
			}
		}

		switch key {
		case "cmd":
			r.Command = value
		case "exit":
			code, err := strconv.Atoi(value)
			if err != nil {
				return Record{}, fmt.Errorf("parse audit record exit code: %w", err)
			}
			r.ExitCode = code
		case "duration":
			d, err := time.ParseDuration(value)
			if err != nil {
				return Record{}, fmt.Errorf("parse audit record duration: %w", err)
			}
			r.Duration = d
		case "reason":
			r.Reason = value
		default:
			// Skip unknown fields so newer writers stay readable.
		}
	}

	return r, nil
}
