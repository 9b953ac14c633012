package http

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hookrelay/hookrelay/internal/domain"
)

// WriteJSONError writes a JSON error response with the given message and status code.
// It sets the Content-Type header to application/json and automatically formats
// the response as {"error": "message"}.
func WriteJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// writeJSON writes a JSON response with the given status code and data.
// It sets the Content-Type header to application/json.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainError maps the domain error taxonomy to HTTP status codes.
// Unclassified errors become the fallback message with a 500.
func writeDomainError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case domain.IsNotFound(err):
		WriteJSONError(w, err.Error(), http.StatusNotFound)
	case domain.IsValidation(err):
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		WriteJSONError(w, fallback, http.StatusInternalServerError)
	}
}

// parsePagination reads skip/limit query parameters with bounds applied.
func parsePagination(q url.Values, defaultLimit, maxLimit int) (limit, offset int) {
	limit = defaultLimit
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if raw := q.Get("skip"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			offset = n
		}
	}
	return limit, offset
}
