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
	e := newEcho()
	rec := httptest.NewRecorder()
	if err := NewHealthHandler().Liveness(e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthDependenciesHandler_Readiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	cases := []struct {
		name   string
		checks map[string]DependencyCheck
		code   int
		status string
	}{
		{"all ok", map[string]DependencyCheck{"store": ok}, http.StatusOK, "ok"},
		{"one down", map[string]DependencyCheck{"store": ok, "redis": down}, http.StatusServiceUnavailable, "degraded"},
		{"no checks", nil, http.StatusOK, "ok"},
	}
	for _, tc := range cases {
		e := newEcho()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)
		if err := NewHealthDependenciesHandler(tc.checks).Readiness(c); err != nil {
			t.Fatalf("%s: handler error: %v", tc.name, err)
		}
		if rec.Code != tc.code {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.code, rec.Code)
		}
		var resp readinessResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Status != tc.status {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.status, resp.Status)
		}
		if tc.status == "degraded" && resp.Dependencies["redis"].Error == "" {
			t.Fatalf("%s: expected redis error detail", tc.name)
		}
	}
}
