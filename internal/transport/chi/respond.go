package chi

import (
	"encoding/json"
	"net/http"
)

// Error codes surfaced in JSON error bodies.
const (
	codeBadRequest   = "bad_request"
	codeValidation   = "validation_failed"
	codeRateLimited  = "rate_limited"
	codeUnauthorized = "unauthorized"
	codeInternal     = "internal_error"
	codeUnavailable  = "unavailable"
)

// ErrorResponse is the uniform JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
