package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"tmsintake/internal/form"
	"tmsintake/internal/registry"
	"tmsintake/internal/service"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// WriteError writes a standardized error response
func WriteError(w http.ResponseWriter, code int, errCode, message string, log *zap.Logger) {
	fields := []zap.Field{zap.Int("status", code), zap.String("code", errCode), zap.String("message", message)}
	if code >= http.StatusInternalServerError {
		log.Error("API error", fields...)
	} else {
		log.Warn("API error", fields...)
	}

	resp := ErrorResponse{
		Error:   errCode,
		Message: message,
	}
	if errCode != "" {
		resp.Code = errCode
	}

	writeJSON(w, code, resp)
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

// writeServiceError maps service and form errors to HTTP responses
func (d Dependencies) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		WriteError(w, http.StatusNotFound, "session_not_found", err.Error(), d.Log)
	case errors.Is(err, registry.ErrUnknownForm):
		WriteError(w, http.StatusNotFound, "unknown_form", err.Error(), d.Log)
	case errors.Is(err, form.ErrUnknownField):
		WriteError(w, http.StatusBadRequest, "unknown_field", err.Error(), d.Log)
	case errors.Is(err, service.ErrInvalidPayload):
		WriteError(w, http.StatusBadRequest, "invalid_payload", err.Error(), d.Log)
	case errors.Is(err, service.ErrNotAssessment):
		WriteError(w, http.StatusBadRequest, "not_assessment", err.Error(), d.Log)
	case errors.Is(err, form.ErrSubmissionInFlight):
		WriteError(w, http.StatusConflict, "submission_in_flight", "A submission for this form is already in progress", d.Log)
	case errors.Is(err, form.ErrInvalidTransition):
		WriteError(w, http.StatusConflict, "invalid_transition", err.Error(), d.Log)
	default:
		d.Log.Error("Unhandled service error", zap.Error(err))
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error", d.Log)
	}
}

// RequestLogger logs HTTP requests and responses
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status code
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			log.Info("HTTP request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", wrapped.statusCode),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
