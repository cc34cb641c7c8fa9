package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/templui/movieapi/internal/ctxkeys"
)

type envelope map[string]any

// writeJSON writes data as a JSON response with the given status
func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		slog.Error("failed to encode response", "error", err, "path", r.URL.Path)
	}
}

// writeError sends {"error": message}
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, envelope{"error": message})
}

// serverError logs the cause and sends a generic message
func serverError(w http.ResponseWriter, r *http.Request, err error, message string, args ...any) {
	args = append([]any{
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", ctxkeys.RequestID(r.Context()),
	}, args...)
	slog.Error(message, args...)

	writeError(w, r, http.StatusInternalServerError, message)
}

// NotFound answers unknown routes with a JSON 404
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "the requested resource could not be found")
}
