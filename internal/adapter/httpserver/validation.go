package httpserver

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult represents the result of validation
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

var validEntityID = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateEntityID validates a path identifier (job id, candidate id).
func ValidateEntityID(field, id string) ValidationResult {
	if id == "" {
		return ValidationResult{
			Valid: false,
			Errors: []ValidationError{
				{Field: field, Code: "REQUIRED", Message: field + " is required"},
			},
		}
	}
	if len(id) > 100 {
		return ValidationResult{
			Valid: false,
			Errors: []ValidationError{
				{Field: field, Code: "TOO_LONG", Message: field + " is too long (max 100 characters)"},
			},
		}
	}
	if !validEntityID.MatchString(id) {
		return ValidationResult{
			Valid: false,
			Errors: []ValidationError{
				{Field: field, Code: "INVALID_FORMAT", Message: field + " contains invalid characters"},
			},
		}
	}
	return ValidationResult{Valid: true}
}

// ValidateCallStatus validates a webhook call status value. The set covers
// the full telephony lifecycle, not just the terminal states: Twilio reports
// progress events (queued, ringing, in-progress) on the same callback URL
// and those must parse cleanly even though reconciliation ignores them.
func ValidateCallStatus(status string) ValidationResult {
	if status == "" {
		return ValidationResult{Valid: true}
	}
	for _, valid := range []string{
		"queued", "initiated", "ringing", "in-progress", "answered",
		"completed", "busy", "no-answer", "failed", "canceled",
	} {
		if status == valid {
			return ValidationResult{Valid: true}
		}
	}
	return ValidationResult{
		Valid: false,
		Errors: []ValidationError{
			{Field: "status", Code: "INVALID_VALUE", Message: "Status is not a recognized call status"},
		},
	}
}

// SanitizeString sanitizes a free-text input field.
func SanitizeString(input string) string {
	// Remove null bytes and control characters
	input = strings.ReplaceAll(input, "\x00", "")

	// Trim whitespace
	input = strings.TrimSpace(input)

	// Limit length to prevent DoS
	if len(input) > 1000 {
		input = input[:1000]
	}

	// Ensure valid UTF-8
	if !utf8.ValidString(input) {
		input = strings.ToValidUTF8(input, "")
	}

	return input
}
