package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger(level slog.Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(Config{Level: level, Component: ComponentHTTP, Output: &buf}), &buf
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogger_TagsComponent(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)

	logger.Info("hello", FieldRows, 3)
	logger.WithComponent(ComponentCache).Warn("evicted")
	logger.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "component=http") || !strings.Contains(out, "rows=3") {
		t.Errorf("missing fields in %q", out)
	}
	if !strings.Contains(out, "component=cache") {
		t.Errorf("WithComponent not applied: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug record should be filtered at info level")
	}
}

func TestMiddleware_StoresLoggerInContext(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelDebug)

	h := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).Info("inside")
		})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Errorf("request id missing: %q", buf.String())
	}
}

func TestFromContext_Default(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != "unknown" {
		t.Fatalf("unexpected default logger: %+v", l)
	}
}

func TestStructuredLogger_LevelsByStatus(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)
	sl := NewStructuredLogger(logger)
	r := httptest.NewRequest(http.MethodGet, "/ui/recent-expenses", nil)

	sl.LogHTTPEnd(context.Background(), r, 503, 12, "abc", "10.0.0.1")
	sl.LogError(context.Background(), "backend failed", errors.New("boom"), ComponentBackend, OpRecent, nil)

	out := buf.String()
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "status_code=503") {
		t.Errorf("unexpected http end record: %q", out)
	}
	if !strings.Contains(out, "error=boom") || !strings.Contains(out, "operation=recent") {
		t.Errorf("unexpected error record: %q", out)
	}
}
