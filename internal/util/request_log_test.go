package util

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWithRequestLog(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	InitLoggerTo(&buf, "info")
	t.Cleanup(func() { slog.SetDefault(prev) })

	h := WithRequestID(WithRequestLog("verse", nil, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	})))
	req := httptest.NewRequest(http.MethodGet, "/Hezekiah+1:1?translation=WEB", nil)
	req.Header.Set("X-Request-Id", "req-1")
	req.RemoteAddr = "198.51.100.4:5555"
	h.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	want := map[string]any{
		"msg":        "http_request",
		"service":    "verse",
		"status":     float64(http.StatusNotFound),
		"bytes":      float64(len(`{"error":"not found"}`)),
		"request_id": "req-1",
		"client_ip":  "198.51.100.4",
		"path":       "/Hezekiah+1:1",
		"query":      "translation=WEB",
		"level":      "INFO",
	}
	for k, v := range want {
		if line[k] != v {
			t.Fatalf("log field %s = %v, want %v (line %s)", k, line[k], v, buf.String())
		}
	}
}

func TestWithRequestLogLevels(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{status: http.StatusOK, want: "INFO"},
		{status: http.StatusTooManyRequests, want: "WARN"},
		{status: http.StatusInternalServerError, want: "ERROR"},
	}
	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			var buf bytes.Buffer
			prev := slog.Default()
			InitLoggerTo(&buf, "info")
			t.Cleanup(func() { slog.SetDefault(prev) })

			h := WithRequestLog("", nil, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			}))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

			var line map[string]any
			if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
				t.Fatalf("decode log line %q: %v", buf.String(), err)
			}
			if line["level"] != tc.want || line["service"] != "unknown" {
				t.Fatalf("unexpected line: %s", buf.String())
			}
		})
	}
}
