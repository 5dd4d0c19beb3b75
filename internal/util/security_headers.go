package util

import (
	"net/http"
	"strings"
)

const (
	apiContentSecurityPolicy  = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"
	htmlContentSecurityPolicy = "default-src 'none'; style-src 'unsafe-inline'; frame-ancestors 'none'; base-uri 'none'"
	hstsValue                 = "max-age=31536000; includeSubDomains"
)

// publicAPIHeaders are set on every response. Passages are meant to be
// embedded by other sites, including through JSONP script tags, so the
// resource policy is cross-origin.
var publicAPIHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "no-referrer"},
	{"Cross-Origin-Resource-Policy", "cross-origin"},
	{"Content-Security-Policy", apiContentSecurityPolicy},
}

// WithSecurityHeaders adds the public API response headers, plus HSTS on
// HTTPS requests.
func WithSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range publicAPIHeaders {
			h.Set(kv[0], kv[1])
		}
		if IsHTTPS(r) {
			h.Set("Strict-Transport-Security", hstsValue)
		}
		next.ServeHTTP(w, r)
	})
}

// AllowInlineStyles relaxes the policy for the server-rendered index page.
func AllowInlineStyles(w http.ResponseWriter) {
	w.Header().Set("Content-Security-Policy", htmlContentSecurityPolicy)
}

// IsHTTPS reports whether the request arrived over TLS, directly or via a
// proxy that set X-Forwarded-Proto.
func IsHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	proto, _, _ := strings.Cut(r.Header.Get("X-Forwarded-Proto"), ",")
	return strings.EqualFold(strings.TrimSpace(proto), "https")
}
