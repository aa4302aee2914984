package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHealthHandler_Liveness(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler().Liveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	ok := PingFunc(func(ctx context.Context) error { return nil })
	down := PingFunc(func(ctx context.Context) error { return errors.New("connection refused") })

	rec := httptest.NewRecorder()
	NewHealthHandler().WithCheck("postgres", ok).WithCheck("redis", ok).
		Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"redis":"ok"`) {
		t.Fatalf("expected redis status in body, got %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	NewHealthHandler().WithCheck("postgres", ok).WithCheck("redis", down).
		Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "redis unhealthy") {
		t.Fatalf("expected failing dependency in body, got %s", rec.Body.String())
	}
}

func TestHealthHandler_ReadinessWithoutChecks(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler().Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for memory storage, got %d", rec.Code)
	}
}
