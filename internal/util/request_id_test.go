package util

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestWithRequestIDPropagatesIncomingHeader(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	InitLoggerTo(&buf, "info")
	t.Cleanup(func() { slog.SetDefault(prev) })

	const incoming = "req-incoming-123"
	handler := WithRequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		LoggerFromContext(r.Context()).Info("resolving")
	}))

	req := httptest.NewRequest(http.MethodGet, "/John+3:16", nil)
	req.Header.Set("X-Request-Id", incoming)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != incoming {
		t.Fatalf("unexpected response request id: got %q want %q", got, incoming)
	}
	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line["request_id"] != incoming {
		t.Fatalf("context logger missing request_id: %s", buf.String())
	}
}

func TestWithRequestIDGeneratesWhenMissing(t *testing.T) {
	handler := WithRequestID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	got := rec.Header().Get("X-Request-Id")
	if _, err := uuid.Parse(got); err != nil {
		t.Fatalf("expected generated uuid request id, got %q", got)
	}
}

func TestWithRequestIDReplacesMalformedHeader(t *testing.T) {
	handler := WithRequestID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	for _, incoming := range []string{"has space", strings.Repeat("a", 200), "tab\there"} {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Request-Id", incoming)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if got := rec.Header().Get("X-Request-Id"); got == incoming || got == "" {
			t.Fatalf("expected malformed id %q to be replaced, got %q", incoming, got)
		}
	}
}
