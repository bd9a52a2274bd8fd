// Package middleware holds the HTTP cross-cutting pieces: error translation
// and per-client rate limiting.
package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"stockval/logger"
	"stockval/pkg/core/fundamentals"
	"stockval/pkg/core/ingest"
	"stockval/pkg/core/valuation"
)

// ErrorBody is the JSON shape every error response uses.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

// StatusFor translates engine errors into HTTP status codes. Unknown errors
// are treated as internal.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, valuation.ErrInvalidRate):
		return http.StatusBadRequest
	case errors.Is(err, fundamentals.ErrDataInsufficient):
		return http.StatusNotFound
	case errors.Is(err, valuation.ErrNonPositiveValuation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ingest.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// WriteError sends a JSON error response. Internal errors are logged with
// detail but answered with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, status int, err error) {
	label := http.StatusText(status)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.WithFields(logger.Fields{"path": r.URL.Path, "error": err}).Error("request failed")
		message = "An unexpected error occurred"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorBody{
		Error:   label,
		Message: message,
		Path:    r.URL.Path,
	})
}

// WriteEngineError maps the error to a status first, then writes it.
func WriteEngineError(w http.ResponseWriter, r *http.Request, err error) {
	WriteError(w, r, StatusFor(err), err)
}
