package runner

import (
	"fmt"
	"strings"
)

// parseDigests validates stdout against the driver CLI contract: exactly
// one line per top-level value, each line lowercase two-digit hex byte
// tokens separated by single spaces, in file order. Trailing blank lines
// are ignored; any other deviation fails the whole invocation — a partial
// sequence is never returned.
func parseDigests(stdout string, expectedValues int) (DigestSequence, error) {
	lines := strings.Split(stdout, "\n")

	// Drop trailing blank lines only. A blank line between digests is a
	// contract violation and fails the count check below.
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	if len(lines) != expectedValues {
		return nil, fmt.Errorf("expected %d digest lines, got %d", expectedValues, len(lines))
	}

	digests := make(DigestSequence, 0, len(lines))
	for i, line := range lines {
		digest, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %v (%q)", i+1, err, line)
		}
		digests = append(digests, digest)
	}
	return digests, nil
}

// parseLine decodes one space-separated sequence of hex byte tokens.
func parseLine(line string) ([]byte, error) {
	if line == "" {
		return nil, fmt.Errorf("blank digest line")
	}

	tokens := strings.Split(line, " ")
	digest := make([]byte, len(tokens))
	for i, token := range tokens {
		b, err := parseToken(token)
		if err != nil {
			return nil, err
		}
		digest[i] = b
	}
	return digest, nil
}

// parseToken decodes exactly two lowercase hex digits. strconv.ParseUint is
// deliberately not used: it accepts uppercase, signs and prefixes that the
// contract forbids.
func parseToken(token string) (byte, error) {
	if len(token) != 2 {
		return 0, fmt.Errorf("token %q is not two hex digits", token)
	}
	hi, ok := hexDigit(token[0])
	if !ok {
		return 0, fmt.Errorf("token %q has invalid hex digit %q", token, token[0])
	}
	lo, ok := hexDigit(token[1])
	if !ok {
		return 0, fmt.Errorf("token %q has invalid hex digit %q", token, token[1])
	}
	return hi<<4 | lo, nil
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	default:
		return 0, false
	}
}
