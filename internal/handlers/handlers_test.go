package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ImadGanwa/AcademyAi-sub003/internal/booking"
	"github.com/ImadGanwa/AcademyAi-sub003/internal/model"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestWriteError_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &booking.ValidationError{Field: "date", Message: "bad"}, http.StatusBadRequest},
		{"not found", &booking.NotFoundError{Resource: "booking"}, http.StatusNotFound},
		{"conflict", &booking.ConflictError{Message: "taken"}, http.StatusConflict},
		{"state transition", &booking.StateTransitionError{Current: model.BookingStatusCancelled, Requested: model.BookingStatusScheduled}, http.StatusConflict},
		{"external dependency", &booking.ExternalDependencyError{Dependency: "meeting provisioning", Err: errors.New("down")}, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, testLogger, tc.err)
		if rec.Code != tc.status {
			t.Fatalf("%s: expected status %d, got %d", tc.name, tc.status, rec.Code)
		}
		var body errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: response is not json: %v", tc.name, err)
		}
		if body.Error == "" {
			t.Fatalf("%s: expected error message in body", tc.name)
		}
	}

	// The internal-error detail never reaches the client.
	rec := httptest.NewRecorder()
	writeError(rec, testLogger, errors.New("pq: secret detail"))
	var body errorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Error != "internal error" {
		t.Fatalf("expected generic message, got %q", body.Error)
	}
}

func TestWriteError_ValidationIncludesField(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, testLogger, &booking.ValidationError{Field: "slots[2].startTime", Message: "not a valid HH:MM time"})
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not json: %v", err)
	}
	if body.Field != "slots[2].startTime" {
		t.Fatalf("expected field in body, got %q", body.Field)
	}
}

func TestIdentityFrom(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
	if _, ok := identityFrom(r); ok {
		t.Fatal("expected no identity without headers")
	}

	r.Header.Set("X-User-Id", "user-1")
	r.Header.Set("X-User-Role", "mentor")
	id, ok := identityFrom(r)
	if !ok {
		t.Fatal("expected identity")
	}
	if id.UserID != "user-1" || id.Role != "mentor" {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestBookingCollection_RequiresIdentity(t *testing.T) {
	h := NewBookingHandler(nil, testLogger)
	rec := httptest.NewRecorder()
	h.Collection(rec, httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestBookingItem_PathParsing(t *testing.T) {
	h := NewBookingHandler(nil, testLogger)

	// An unknown action is a 404 before the service is touched.
	r := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/abc/refund", nil)
	r.Header.Set("X-User-Id", "user-1")
	r.Header.Set("X-User-Role", "mentee")
	rec := httptest.NewRecorder()
	h.Item(rec, r)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown action, got %d", rec.Code)
	}

	// Lifecycle actions only accept POST.
	r = httptest.NewRequest(http.MethodGet, "/api/v1/bookings/abc/confirm", nil)
	r.Header.Set("X-User-Id", "user-1")
	r.Header.Set("X-User-Role", "mentor")
	rec = httptest.NewRecorder()
	h.Item(rec, r)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET on action, got %d", rec.Code)
	}
}

func TestPublicSlots_RequestShape(t *testing.T) {
	h := NewAvailabilityHandler(nil, testLogger)

	// Missing date.
	r := httptest.NewRequest(http.MethodGet, "/api/v1/public/mentors/m-1/slots", nil)
	rec := httptest.NewRecorder()
	h.PublicSlots(rec, r)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without date, got %d", rec.Code)
	}

	// Malformed path.
	r = httptest.NewRequest(http.MethodGet, "/api/v1/public/mentors/m-1/other?date=2025-03-12", nil)
	rec = httptest.NewRecorder()
	h.PublicSlots(rec, r)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for wrong subresource, got %d", rec.Code)
	}

	// Wrong method.
	r = httptest.NewRequest(http.MethodPost, "/api/v1/public/mentors/m-1/slots?date=2025-03-12", nil)
	rec = httptest.NewRecorder()
	h.PublicSlots(rec, r)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestAvailability_RequiresMentorRole(t *testing.T) {
	h := NewAvailabilityHandler(nil, testLogger)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/mentors/availability", nil)
	r.Header.Set("X-User-Id", "user-1")
	r.Header.Set("X-User-Role", "mentee")
	rec := httptest.NewRecorder()
	h.Availability(rec, r)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for mentee, got %d", rec.Code)
	}
}
