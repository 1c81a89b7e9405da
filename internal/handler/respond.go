package handler

import (
	"encoding/json"
	"errors"
	"net/http"
)

// FieldError is one entry of a structured validation failure, shaped
// as {type, loc, msg, input}.
type FieldError struct {
	Type  string   `json:"type"`
	Loc   []string `json:"loc"`
	Msg   string   `json:"msg"`
	Input any      `json:"input"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorResponse(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// writeValidationError emits a 422 with per-field details.
func writeValidationError(w http.ResponseWriter, r *http.Request, details ...FieldError) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"error":   "ValidationError",
		"status":  http.StatusUnprocessableEntity,
		"path":    r.URL.Path,
		"details": details,
	})
}

// decodeJSON reads a bounded JSON body into dst. On failure it writes
// the error response itself and reports false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.As(err, new(*http.MaxBytesError)) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return false
	}
	return true
}
