package server

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"

	"bibleapi/internal/ratelimit"
	"bibleapi/internal/util"
	"bibleapi/services/verse/internal/app"
)

const serviceName = "verse"

// callbackParams are checked in order for a JSONP callback name.
var callbackParams = []string{"callback", "jscallback", "jsonp", "jsoncallback"}

var callbackUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_$.]`)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App *app.App
	// Limiter throttles requests per client IP. Nil disables throttling.
	Limiter        *ratelimit.FixedWindowLimiter
	TrustedProxies *util.TrustedProxies
	// DisplayHost is the host shown in index page links. Empty uses the
	// request Host header.
	DisplayHost string
}

// Server exposes the verse lookup endpoints.
type Server struct {
	app         *app.App
	limiter     *ratelimit.FixedWindowLimiter
	trusted     *util.TrustedProxies
	displayHost string
	mux         *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("server: app is required")
	}
	s := &Server{
		app:         cfg.App,
		limiter:     cfg.Limiter,
		trusted:     cfg.TrustedProxies,
		displayHost: strings.TrimSpace(cfg.DisplayHost),
		mux:         http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog(serviceName, s.trusted,
		util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.Handle("/", s.throttled(s.handleRoot))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/" {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			methodNotAllowed(w)
			return
		}
		s.handleIndex(w, r)
		return
	}

	util.SetCORSHeaders(w)
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet, http.MethodHead:
		ref := strings.ReplaceAll(strings.TrimPrefix(r.URL.Path, "/"), "+", " ")
		s.resolve(w, r, app.Request{Reference: ref})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request, req app.Request) {
	q := r.URL.Query()
	req.Translation = q.Get("translation")
	req.VerseNumbers = q.Get("verse_numbers") == "true"

	res, err := s.app.Resolve(r.Context(), req)
	if err != nil {
		util.LoggerFromContext(r.Context()).Error("resolve failed", "reference", req.Reference, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if found, ok := res.(app.Found); ok {
		writeJSONP(w, r, http.StatusOK, found.Passage)
		return
	}
	msg, _ := app.ErrorMessage(res)
	writeJSONP(w, r, http.StatusNotFound, map[string]string{"error": msg})
}

// throttled applies the per-client fixed window before next.
func (s *Server) throttled(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.allowRate(w, r) {
			next(w, r)
		}
	})
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request) bool {
	if s.limiter == nil {
		return true
	}
	ip := util.ClientIP(r, s.trusted)
	decision, err := s.limiter.Allow(r.Context(), ip)
	if err != nil {
		util.LoggerFromContext(r.Context()).Warn("rate limiter unavailable", "client_ip", ip, "allowed", decision.Allowed, "err", err)
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(s.limiter.Limit()))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	if decision.Allowed {
		return true
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(decision.RetryAfter.Seconds()))))
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
	return false
}

// callbackName returns the sanitized JSONP callback, or "" when absent.
func callbackName(r *http.Request) string {
	q := r.URL.Query()
	for _, key := range callbackParams {
		if v, ok := q[key]; ok && len(v) > 0 {
			return callbackUnsafe.ReplaceAllString(v[0], "")
		}
	}
	return ""
}

// writeJSONP writes payload as JSON, or as a callback invocation when the
// request names one. Successful bodies carry a content ETag.
func writeJSONP(w http.ResponseWriter, r *http.Request, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	contentType := "application/json; charset=utf-8"
	if cb := callbackName(r); cb != "" {
		contentType = "text/javascript; charset=utf-8"
		data = append(append([]byte(cb+"("), data...), ')')
	}
	w.Header().Set("Content-Type", contentType)
	if status == http.StatusOK {
		etag := contentETag(data)
		w.Header().Set("ETag", etag)
		if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func contentETag(body []byte) string {
	sum := blake3.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == etag || candidate == "*" {
			return true
		}
	}
	return false
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
