package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"budget/internal/core"
	"budget/internal/log"
)

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Failed to encode response", log.FieldError, err)
	}
}

// writeError translates err into the API error body. Unexpected errors are logged and masked.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *core.ValidationError
		notFound   *core.NotFoundError
		duplicate  *core.DuplicateNameError
		invalid    *core.InvalidArgumentError
		malformed  *requestError
	)

	status, label, message, errorType := http.StatusInternalServerError, "Internal Server Error",
		"An unexpected error occurred", log.ErrorTypeInternal
	switch {
	case errors.As(err, &validation):
		status, label, message, errorType = http.StatusBadRequest, "Validation Error", validation.Error(), log.ErrorTypeValidation
	case errors.As(err, &notFound):
		status, label, message, errorType = http.StatusNotFound, "Not Found", notFound.Error(), log.ErrorTypeNotFound
	case errors.As(err, &duplicate):
		status, label, message, errorType = http.StatusBadRequest, "Bad Request", duplicate.Error(), log.ErrorTypeConflict
	case errors.As(err, &invalid):
		status, label, message, errorType = http.StatusBadRequest, "Bad Request", invalid.Error(), log.ErrorTypeValidation
	case errors.As(err, &malformed):
		status, label, message, errorType = http.StatusBadRequest, "Bad Request", malformed.Error(), log.ErrorTypeBadRequest
	}

	logger := log.FromContext(r.Context())
	fields := log.NewFields().
		WithErrorType(errorType).
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "")
	if status >= http.StatusInternalServerError {
		logger.LogError(r.Context(), "Request failed", err, r.Method, fields)
	} else {
		logger.DebugContext(r.Context(), "Request rejected", fields.WithError(err).ToSlice()...)
	}

	s.writeJSON(w, r, status, errorResponse{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     label,
		Message:   message,
		Path:      r.URL.Path,
	})
}

func (s *Server) writeRateLimited(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusTooManyRequests, errorResponse{
		Timestamp: time.Now().UTC(),
		Status:    http.StatusTooManyRequests,
		Error:     "Too Many Requests",
		Message:   "Rate limit exceeded. Please try again later.",
		Path:      r.URL.Path,
	})
}
