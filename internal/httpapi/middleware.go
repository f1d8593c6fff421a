package httpapi

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader echoes the caller's X-Request-ID or mints one, so every
// response carries a correlation id.
func RequestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r)
	})
}
