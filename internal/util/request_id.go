package util

import (
	"net/http"
	"strings"
)

const (
	requestIDHeader = "X-Request-Id"
	maxRequestIDLen = 128
)

// WithRequestID reuses a well-formed incoming X-Request-Id or mints one,
// echoes it on the response and attaches a child logger carrying
// "request_id" to the request context.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if !validRequestID(id) {
			id = NewID()
		}
		w.Header().Set(requestIDHeader, id)
		logger := LoggerFromContext(r.Context()).With("request_id", id)
		next.ServeHTTP(w, r.WithContext(ContextWithLogger(r.Context(), logger)))
	})
}

// validRequestID accepts up to maxRequestIDLen printable ASCII characters
// without spaces.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	return strings.IndexFunc(id, func(c rune) bool { return c < 0x21 || c > 0x7e }) < 0
}
