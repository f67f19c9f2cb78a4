package middleware

import (
	"encoding/json"
	"net/http"
)

// writeJSONError writes the {"error","error_code"} body used across the API.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": msg, "error_code": status})
}
