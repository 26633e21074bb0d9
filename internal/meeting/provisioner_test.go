package meeting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWebhookProvisioner_Create(t *testing.T) {
	var gotAuth string
	var gotReq Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/meetings" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Meeting{ID: "room-1", JoinURL: "https://meet.example/room-1"})
	}))
	defer srv.Close()

	p := NewWebhookProvisioner(srv.URL, "secret-token")
	m, err := p.Create(context.Background(), Request{
		Topic:           "intro call",
		Start:           time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		MentorEmail:     "mentor@example.com",
		MenteeEmail:     "mentee@example.com",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if m.ID != "room-1" || m.JoinURL != "https://meet.example/room-1" {
		t.Fatalf("unexpected meeting: %+v", m)
	}
	if gotAuth != "Bearer secret-token" {
		t.Fatalf("expected bearer token, got %q", gotAuth)
	}
	if gotReq.Topic != "intro call" || gotReq.DurationMinutes != 60 {
		t.Fatalf("unexpected request payload: %+v", gotReq)
	}
}

func TestWebhookProvisioner_CreateErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewWebhookProvisioner(srv.URL, "")
	if _, err := p.Create(context.Background(), Request{}); err == nil {
		t.Fatal("expected error on 500 response")
	}

	incomplete := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Meeting{ID: "room-1"})
	}))
	defer incomplete.Close()

	p = NewWebhookProvisioner(incomplete.URL, "")
	if _, err := p.Create(context.Background(), Request{}); err == nil {
		t.Fatal("expected error on incomplete meeting")
	}
}

func TestWebhookProvisioner_Delete(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("unexpected method %s", r.Method)
		}
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := NewWebhookProvisioner(srv.URL, "")
	if err := p.Delete(context.Background(), "room-7"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if gotPath != "/meetings/room-7" {
		t.Fatalf("unexpected path %s", gotPath)
	}
}

func TestWebhookProvisioner_DeleteGoneIsFine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	p := NewWebhookProvisioner(srv.URL, "")
	if err := p.Delete(context.Background(), "already-gone"); err != nil {
		t.Fatalf("expected 404 on delete to be tolerated, got %v", err)
	}
}

func TestNoopProvisioner(t *testing.T) {
	p := NewNoopProvisioner()
	m, err := p.Create(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if m.ID == "" || m.JoinURL == "" {
		t.Fatalf("expected fabricated meeting, got %+v", m)
	}
	if err := p.Delete(context.Background(), m.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
}
