package httpserver

import (
	"strings"
	"testing"
)

func TestValidateEntityID(t *testing.T) {
	cases := []struct {
		name  string
		id    string
		valid bool
		code  string
	}{
		{"valid uuid-ish", "f47ac10b-58cc-4372-a567-0e02b2c3d479", true, ""},
		{"valid alnum", "cand_42", true, ""},
		{"empty", "", false, "REQUIRED"},
		{"too long", strings.Repeat("a", 101), false, "TOO_LONG"},
		{"path traversal", "../etc/passwd", false, "INVALID_FORMAT"},
		{"spaces", "id with spaces", false, "INVALID_FORMAT"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := ValidateEntityID("candidate_id", tc.id)
			if res.Valid != tc.valid {
				t.Fatalf("Valid = %v, want %v", res.Valid, tc.valid)
			}
			if !tc.valid && res.Errors[0].Code != tc.code {
				t.Fatalf("code = %s, want %s", res.Errors[0].Code, tc.code)
			}
		})
	}
}

func TestValidateCallStatus(t *testing.T) {
	valid := []string{
		"", "queued", "initiated", "ringing", "in-progress", "answered",
		"completed", "busy", "no-answer", "failed", "canceled",
	}
	for _, s := range valid {
		if res := ValidateCallStatus(s); !res.Valid {
			t.Fatalf("status %q should be valid", s)
		}
	}
	for _, s := range []string{"done", "COMPLETED", "hangup"} {
		if res := ValidateCallStatus(s); res.Valid {
			t.Fatalf("status %q should be rejected", s)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hi\x00there  "); got != "hithere" {
		t.Fatalf("got %q", got)
	}
	long := strings.Repeat("x", 2000)
	if got := SanitizeString(long); len(got) != 1000 {
		t.Fatalf("len = %d, want 1000", len(got))
	}
	if got := SanitizeString(string([]byte{0xff, 'a'})); !strings.Contains(got, "a") {
		t.Fatalf("invalid utf8 not cleaned: %q", got)
	}
}
