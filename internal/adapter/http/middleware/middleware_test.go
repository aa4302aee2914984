package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type limitCounter struct{ n int }

func (c *limitCounter) RecordRateLimited() { c.n++ }

func TestRateLimiter_RejectsBurstOverflow(t *testing.T) {
	counter := &limitCounter{}
	rl := NewRateLimiter(1, 2, counter)
	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status codes %v", codes)
	}
	if counter.n != 1 {
		t.Fatalf("expected one recorded rejection, got %d", counter.n)
	}

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, other)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected other client to pass, got %d", rr.Code)
	}
}

func TestRateLimiter_CleanupLimiters(t *testing.T) {
	now := time.Now()
	rl := NewRateLimiter(1, 1, nil)
	rl.now = func() time.Time { return now }

	rl.getLimiter("10.0.0.1")
	now = now.Add(time.Hour)
	rl.getLimiter("10.0.0.2")

	if removed := rl.CleanupLimiters(time.Minute); removed != 1 {
		t.Fatalf("expected one idle limiter removed, got %d", removed)
	}
	if _, ok := rl.limiters["10.0.0.2"]; !ok {
		t.Fatalf("active limiter must survive cleanup")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	if got := clientIP(req); got != "192.0.2.7" {
		t.Fatalf("expected host without port, got %s", got)
	}

	req.RemoteAddr = "192.0.2.8"
	if got := clientIP(req); got != "192.0.2.8" {
		t.Fatalf("expected bare address, got %s", got)
	}
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	rr := httptest.NewRecorder()
	Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if !strings.Contains(buf.String(), "panic recovered") || !strings.Contains(buf.String(), "boom") {
		t.Fatalf("expected panic to be logged, got %s", buf.String())
	}
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	mw := NewLoggingMiddleware(zerolog.New(&buf))

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))

	out := buf.String()
	if !strings.Contains(out, `"status":503`) || !strings.Contains(out, `"level":"error"`) {
		t.Fatalf("unexpected log line %s", out)
	}
	if !strings.Contains(out, `"path":"/ready"`) {
		t.Fatalf("expected path in log line %s", out)
	}
}
