package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHealthHandler_LivenessAndTest(t *testing.T) {
	e := echo.New()
	h := NewHealthHandler()

	rec := httptest.NewRecorder()
	if err := h.Liveness(e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	if err := h.Test(e.NewContext(httptest.NewRequest(http.MethodGet, "/test", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Body.String() != "Hello from API" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestReadinessHandler(t *testing.T) {
	e := echo.New()

	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	cases := []struct {
		name   string
		checks map[string]DependencyCheck
		code   int
		status string
	}{
		{"all ok", map[string]DependencyCheck{"mongodb": ok, "redis": ok}, http.StatusOK, "ok"},
		{"no redis", map[string]DependencyCheck{"mongodb": ok}, http.StatusOK, "ok"},
		{"redis down", map[string]DependencyCheck{"mongodb": ok, "redis": down}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h := NewReadinessHandler(tc.checks)
		if err := h.Readiness(e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)); err != nil {
			t.Fatalf("%s: handler error: %v", tc.name, err)
		}
		if rec.Code != tc.code {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.code, rec.Code)
		}

		var resp readinessResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: invalid json: %v", tc.name, err)
		}
		if resp.Status != tc.status || len(resp.Dependencies) != len(tc.checks) {
			t.Fatalf("%s: unexpected response %+v", tc.name, resp)
		}
	}
}
