package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/userhub/userhub/internal/handler/dto"
)

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHandler_Root(t *testing.T) {
	h := New("userhub", "0.1.0")

	rec := httptest.NewRecorder()
	h.Root(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	decodeJSON(t, rec, &body)
	if body["service"] != "userhub" {
		t.Errorf("service = %q, want userhub", body["service"])
	}
	if body["version"] != "0.1.0" {
		t.Errorf("version = %q, want 0.1.0", body["version"])
	}
}

func TestHandler_NotFound(t *testing.T) {
	h := New("userhub", "0.1.0")

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	var body dto.ErrorResponse
	decodeJSON(t, rec, &body)
	if body.Error != "Not found" {
		t.Errorf("error = %q, want %q", body.Error, "Not found")
	}
	if body.Details != nil {
		t.Errorf("details = %v, want none", body.Details)
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := New("userhub", "0.1.0")

	rec := httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodPut, "/health", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}

	var body dto.ErrorResponse
	decodeJSON(t, rec, &body)
	if body.Error != "Method not allowed" {
		t.Errorf("error = %q, want %q", body.Error, "Method not allowed")
	}
}

func TestWriteValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeValidationError(rec, []string{"Email can't be blank", "Password can't be blank"})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}

	var body dto.ErrorResponse
	decodeJSON(t, rec, &body)
	if body.Error != "Validation failed" {
		t.Errorf("error = %q, want %q", body.Error, "Validation failed")
	}
	if len(body.Details) != 2 {
		t.Errorf("details = %v, want 2 entries", body.Details)
	}
}
