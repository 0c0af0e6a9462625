package response

import (
	"encoding/json"
	"net/http"
)

type errorEnvelope struct {
	Error string `json:"error"`
}

// JSON writes v as the response body with a 200 status.
func JSON(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, v)
}

// Status writes v as the response body with an explicit status code.
func Status(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, v)
}

// Error writes {"error": message} with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorEnvelope{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
