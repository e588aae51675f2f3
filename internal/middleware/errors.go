package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError answers with the same {"error":{"code","message"}} envelope
// the handlers use, so clients parse one shape whichever layer rejected
// the request.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]map[string]string{
		"error": {"code": code, "message": message},
	})
}
