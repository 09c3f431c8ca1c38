package challengedomain

import "strings"

// NormalizeFlag trims surrounding whitespace and lowercases s.
func NormalizeFlag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsCorrect compares the submitted text against the canonical flag after
// normalizing both.
func IsCorrect(c Challenge, submitted string) bool {
	return NormalizeFlag(c.Flag) == NormalizeFlag(submitted)
}
