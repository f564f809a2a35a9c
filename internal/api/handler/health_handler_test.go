package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthHandler_Liveness(t *testing.T) {
	e := newTestEcho()
	h := NewHealthHandler(AppInfo{Name: "WisdomBase API", Version: "1.0.0"})

	rec := httptest.NewRecorder()
	if err := h.Liveness(e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["status"] != "healthy" || body["version"] != "1.0.0" || body["timestamp"] == "" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestReadinessHandler(t *testing.T) {
	e := newTestEcho()
	up := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	rec := httptest.NewRecorder()
	h := NewReadinessHandler(map[string]Pinger{"mongodb": up, "redis": up})
	if err := h.Readiness(e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h = NewReadinessHandler(map[string]Pinger{"mongodb": up, "redis": down})
	if err := h.Readiness(e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var body readinessResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Dependencies["redis"].Status != "unhealthy" || body.Dependencies["mongodb"].Status != "ok" {
		t.Fatalf("unexpected dependencies %+v", body.Dependencies)
	}
}
