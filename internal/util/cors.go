package util

import (
	"net/http"

	"github.com/rs/cors"
)

// CORSMethods are the methods the public API answers cross-origin.
var CORSMethods = []string{http.MethodOptions, http.MethodGet}

var publicCORS = cors.New(cors.Options{
	AllowedOrigins:       []string{"*"},
	AllowedMethods:       CORSMethods,
	AllowedHeaders:       []string{"Content-Type", "X-Request-Id"},
	ExposedHeaders:       []string{"X-Request-Id", "Retry-After", "ETag"},
	OptionsSuccessStatus: http.StatusOK,
})

// WithCORS answers preflight requests for any origin and decorates the
// rest with Access-Control-Allow-Origin.
func WithCORS(next http.Handler) http.Handler {
	return publicCORS.Handler(next)
}

// SetCORSHeaders writes the fixed headers the verse endpoints always carry,
// whether or not the request was cross-origin.
func SetCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "OPTIONS, GET")
}
