package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeChecker struct {
	err error
}

func (c *fakeChecker) Ping(_ context.Context) error {
	return c.err
}

func TestHealthHandler_Health(t *testing.T) {
	// Liveness never touches dependencies; broken checkers must not matter.
	h := NewHealthHandler("userhub", &fakeChecker{err: errors.New("down")}, nil)

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body HealthResponse
	decodeJSON(t, rec, &body)
	if body.Status != "healthy" {
		t.Errorf("status = %q, want healthy", body.Status)
	}
	if body.Service != "userhub" {
		t.Errorf("service = %q, want userhub", body.Service)
	}
	if _, err := time.Parse(time.RFC3339, body.Timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", body.Timestamp, err)
	}
}

func TestHealthHandler_Readyz(t *testing.T) {
	tests := []struct {
		name       string
		db, cache  *fakeChecker
		wantStatus int
		wantBody   string
	}{
		{"all healthy", &fakeChecker{}, &fakeChecker{}, http.StatusOK, "ok"},
		{"db down", &fakeChecker{err: errors.New("refused")}, &fakeChecker{}, http.StatusServiceUnavailable, "unhealthy"},
		{"cache down", &fakeChecker{}, &fakeChecker{err: errors.New("refused")}, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler("userhub", tt.db, tt.cache)

			rec := httptest.NewRecorder()
			h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body ReadyResponse
			decodeJSON(t, rec, &body)
			if body.Status != tt.wantBody {
				t.Errorf("body status = %q, want %q", body.Status, tt.wantBody)
			}
		})
	}
}

func TestHealthHandler_ReadyzNotConfigured(t *testing.T) {
	h := NewHealthHandler("userhub", nil, nil)

	rec := httptest.NewRecorder()
	h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body ReadyResponse
	decodeJSON(t, rec, &body)
	if body.Checks["postgres"] != "not configured" {
		t.Errorf("postgres check = %q, want 'not configured'", body.Checks["postgres"])
	}
	if body.Checks["redis"] != "not configured" {
		t.Errorf("redis check = %q, want 'not configured'", body.Checks["redis"])
	}
}
