// Package httpserver contains HTTP handlers and middleware.
//
// It exposes the REST surface for starting screening calls, receiving
// telephony webhooks, and reading screening outcomes. The package follows
// clean architecture principles and provides a clear separation between
// HTTP concerns and business logic.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairyhunter13/voice-screener/internal/domain"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, _ *http.Request, err error, details interface{}) {
	code := http.StatusInternalServerError
	codeStr := "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrMissingPhone):
		code = http.StatusBadRequest
		codeStr = "MISSING_PHONE"
	case errors.Is(err, domain.ErrInvalidPhone):
		code = http.StatusBadRequest
		codeStr = "INVALID_PHONE"
	case errors.Is(err, domain.ErrInvalidArgument):
		code = http.StatusBadRequest
		codeStr = "INVALID_ARGUMENT"
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
		codeStr = "NOT_FOUND"
	case errors.Is(err, domain.ErrScreeningInProgress):
		code = http.StatusConflict
		codeStr = "SCREENING_IN_PROGRESS"
	case errors.Is(err, domain.ErrConflict):
		code = http.StatusConflict
		codeStr = "CONFLICT"
	case errors.Is(err, domain.ErrVendorUnavailable):
		code = http.StatusServiceUnavailable
		codeStr = "VENDOR_UNAVAILABLE"
	case errors.Is(err, domain.ErrTelephonyFailed):
		code = http.StatusBadGateway
		codeStr = "TELEPHONY_FAILED"
	}
	writeJSON(w, code, errorEnvelope{Error: apiError{Code: codeStr, Message: err.Error(), Details: details}})
}
