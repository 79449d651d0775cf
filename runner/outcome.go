package runner

import (
	"encoding/hex"
	"strings"
)

// DigestSequence is the ordered list of digests one implementation produced
// for one (file, algorithm) invocation: one byte sequence per top-level
// value, in file order.
type DigestSequence [][]byte

// Fingerprint returns a canonical string key for structural equality.
// Two sequences share a fingerprint iff they have the same length and every
// digest matches byte for byte at the same position.
func (s DigestSequence) Fingerprint() string {
	lines := make([]string, len(s))
	for i, digest := range s {
		lines[i] = hex.EncodeToString(digest)
	}
	return strings.Join(lines, "\n")
}

// Status classifies the result of one invocation.
type Status int

const (
	// StatusSuccess: exit code zero and stdout satisfied the digest-line
	// contract for every top-level value.
	StatusSuccess Status = iota

	// StatusProcessError: the process failed to start or exited non-zero.
	StatusProcessError

	// StatusParseError: exit code zero but stdout violated the line-count
	// or hex-token contract.
	StatusParseError

	// StatusTimeout: the process exceeded the invocation bound and was
	// force-terminated.
	StatusTimeout
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusProcessError:
		return "process_error"
	case StatusParseError:
		return "parse_error"
	case StatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Outcome is the result of one Runner call. Success outcomes carry the full
// digest sequence; everything else carries enough detail for the report's
// error map. Partial results are never represented: a sequence is either
// complete or absent.
type Outcome struct {
	Implementation string
	File           string
	Algorithm      string
	Status         Status

	// Digests is populated only when Status == StatusSuccess.
	Digests DigestSequence

	// ExitCode and Stderr are populated for process errors.
	ExitCode int
	Stderr   string

	// Reason is a human-readable failure description for parse errors and
	// timeouts, including the offending line where one exists.
	Reason string
}

// OK reports whether the invocation produced a usable digest sequence.
func (o Outcome) OK() bool {
	return o.Status == StatusSuccess
}
