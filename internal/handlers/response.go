package handlers

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body of every JSON error written by the API.
type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	Expression string `json:"expression,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes a standardised JSON error response. label is the short
// error category, message the human-readable cause, expression the user
// input that triggered it (may be empty).
func WriteError(w http.ResponseWriter, status int, label, message, expression string) {
	WriteJSON(w, status, ErrorResponse{
		Error:      label,
		Message:    message,
		Expression: expression,
	})
}
