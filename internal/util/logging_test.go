package util

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	base := InitLoggerTo(&buf, "debug")
	t.Cleanup(func() { slog.SetDefault(prev) })

	if got := LoggerFromContext(context.Background()); got != base {
		t.Fatalf("expected default logger without a scoped one")
	}
	ctx := ContextWithLogger(context.Background(), base.With("request_id", "abc"))
	LoggerFromContext(ctx).Debug("lookup")
	if !strings.Contains(buf.String(), `"request_id":"abc"`) {
		t.Fatalf("expected scoped attributes, got %s", buf.String())
	}
}
