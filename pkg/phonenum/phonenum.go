// Package phonenum normalizes free-form phone numbers to E.164.
package phonenum

import (
	"regexp"
	"strings"
)

var e164Pattern = regexp.MustCompile(`^\+\d{10,15}$`)

// Normalize converts a free-form phone string to E.164 form.
// Rules, applied in order:
//   - strip every character except digits and a leading plus sign
//   - 10 bare digits are assumed to be a US/Canada number (+1 prefix)
//   - 11+ bare digits starting with a country code digit get a plus prefix
//   - anything that does not end up matching ^\+\d{10,15}$ is rejected
//
// Normalize is idempotent: feeding its output back in returns the same value.
func Normalize(raw string) (string, bool) {
	cleaned := clean(raw)
	if cleaned == "" {
		return "", false
	}

	if !strings.HasPrefix(cleaned, "+") {
		if len(cleaned) == 10 {
			cleaned = "+1" + cleaned
		} else {
			// 11+ digits already carry a country code (1, 91, ...);
			// shorter strings fail the E.164 check below.
			cleaned = "+" + cleaned
		}
	}

	if !e164Pattern.MatchString(cleaned) {
		return "", false
	}
	return cleaned, true
}

// IsValid reports whether raw normalizes to a well-formed E.164 number.
func IsValid(raw string) bool {
	_, ok := Normalize(raw)
	return ok
}

// clean keeps digits and a plus sign only in the leading position.
func clean(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			continue
		}
		if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
