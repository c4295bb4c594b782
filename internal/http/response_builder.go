package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"salesboard/internal/core"
	applog "salesboard/internal/log"
)

// Error messages returned to clients.
const (
	msgInvalidMonth   = "Invalid month name"
	msgInvalidBody    = "Invalid request body"
	msgInternal       = "Internal Server Error"
	msgUpstreamSeed   = "Upstream seed failed"
	msgTooManyRequest = "Too Many Requests"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// errorStatus classifies an engine error. Only an invalid month is the
// caller's fault; store details never leak into the response.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrInvalidMonth):
		return http.StatusBadRequest, msgInvalidMonth
	case errors.Is(err, core.ErrUpstreamSeed):
		return http.StatusBadGateway, msgUpstreamSeed
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidMonth):
		return applog.ErrorTypeValidation
	case errors.Is(err, core.ErrStoreUnavailable):
		return applog.ErrorTypeDatabase
	case errors.Is(err, core.ErrUpstreamSeed):
		return applog.ErrorTypeUpstream
	default:
		return applog.ErrorTypeInternal
	}
}

// writeServiceError logs err on the request logger and writes the
// client-facing error body.
func writeServiceError(w http.ResponseWriter, r *http.Request, op, search string, err error) {
	status, msg := errorStatus(err)
	fields := applog.NewFields().WithMonthQuery(r.PathValue("monthName"), search, 0)
	logger := applog.FromContext(r.Context())
	if status >= 500 {
		applog.NewStructuredLogger(logger).LogError(r.Context(), "Request failed", err, errorType(err), op, fields)
	} else {
		fields.WithError(err).WithErrorType(errorType(err)).WithOperation(op)
		logger.WarnContext(r.Context(), "Request rejected", fields.ToSlice()...)
	}
	writeError(w, status, msg)
}

// logServed records a successful month query at debug level.
func logServed(r *http.Request, op, search string, records int) {
	fields := applog.NewFields().
		WithMonthQuery(r.PathValue("monthName"), search, records).
		WithOperation(op)
	applog.FromContext(r.Context()).DebugContext(r.Context(), "Month query served", fields.ToSlice()...)
}
