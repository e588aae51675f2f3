package middleware

import (
	"fmt"
	"net/http"
)

// NewMaxBodySizeHandler caps request bodies at limit bytes. A request that
// declares a larger Content-Length gets 413 without the handler running.
// Otherwise the body is wrapped in http.MaxBytesReader and the handler sees
// *http.MaxBytesError from its read once the limit is passed.
//
// Image and bulk uploads share the limit, so it must cover the largest
// multipart form an admin sends.
func NewMaxBodySizeHandler(limit int64) func(http.Handler) http.Handler {
	msg := fmt.Sprintf("request body exceeds %d bytes", limit)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				writeError(w, http.StatusRequestEntityTooLarge, "too_large", msg)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
