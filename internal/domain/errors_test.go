package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorConstants(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"ErrInvalidArgument", ErrInvalidArgument, "invalid argument"},
		{"ErrNotFound", ErrNotFound, "not found"},
		{"ErrConflict", ErrConflict, "conflict"},
		{"ErrMissingPhone", ErrMissingPhone, "candidate has no phone number"},
		{"ErrInvalidPhone", ErrInvalidPhone, "invalid phone number"},
		{"ErrScreeningInProgress", ErrScreeningInProgress, "screening already in progress"},
		{"ErrVendorUnavailable", ErrVendorUnavailable, "vendor unavailable"},
		{"ErrTelephonyFailed", ErrTelephonyFailed, "telephony call failed"},
		{"ErrInternal", ErrInternal, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expected {
				t.Errorf("Expected %s to be %q, got %q", tt.name, tt.expected, tt.err.Error())
			}
		})
	}
}

func TestErrorIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		target   error
		expected bool
	}{
		{"ErrInvalidPhone is ErrInvalidPhone", ErrInvalidPhone, ErrInvalidPhone, true},
		{"wrapped ErrVendorUnavailable matches", fmt.Errorf("op=create call: %w", ErrVendorUnavailable), ErrVendorUnavailable, true},
		{"wrapped ErrTelephonyFailed matches", fmt.Errorf("op=place call: %w", ErrTelephonyFailed), ErrTelephonyFailed, true},
		{"ErrMissingPhone is not ErrInvalidPhone", ErrMissingPhone, ErrInvalidPhone, false},
		{"ErrNotFound is not ErrConflict", ErrNotFound, ErrConflict, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if errors.Is(tt.err, tt.target) != tt.expected {
				t.Errorf("Expected errors.Is(%v, %v) to be %v, got %v", tt.err, tt.target, tt.expected, !tt.expected)
			}
		})
	}
}
