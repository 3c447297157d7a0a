package handlers

import (
	"encoding/json"
	"net/http"

	"swiftincorp.ng/api/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeUpstreamError logs the real failure and returns a generic message
// so upstream details never leak to the client.
func writeUpstreamError(w http.ResponseWriter, op string, err error) {
	logger.Error("upstream failure", map[string]interface{}{
		"op":    op,
		"error": err.Error(),
	})
	writeError(w, http.StatusInternalServerError, "Something went wrong")
}

func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
