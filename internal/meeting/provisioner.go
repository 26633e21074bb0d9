package meeting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Request carries everything the meeting backend needs to create a room.
type Request struct {
	Topic           string    `json:"topic"`
	Start           time.Time `json:"start"`
	DurationMinutes int       `json:"duration_minutes"`
	MentorEmail     string    `json:"mentor_email"`
	MenteeEmail     string    `json:"mentee_email"`
}

// Meeting is the provisioned room.
type Meeting struct {
	ID      string `json:"id"`
	JoinURL string `json:"join_url"`
}

type Provisioner interface {
	Create(ctx context.Context, req Request) (Meeting, error)
	Delete(ctx context.Context, externalID string) error
}

// WebhookProvisioner talks to an external meeting backend over HTTP.
type WebhookProvisioner struct {
	url   string
	token string
	http  *http.Client
}

func NewWebhookProvisioner(url string, token string) *WebhookProvisioner {
	return &WebhookProvisioner{
		url:   strings.TrimRight(strings.TrimSpace(url), "/"),
		token: strings.TrimSpace(token),
		http: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (p *WebhookProvisioner) Create(ctx context.Context, req Request) (Meeting, error) {
	if p.url == "" {
		return Meeting{}, errors.New("meeting provisioner url not configured")
	}
	raw, err := json.Marshal(req)
	if err != nil {
		return Meeting{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url+"/meetings", bytes.NewReader(raw))
	if err != nil {
		return Meeting{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.token)
	}
	resp, err := p.http.Do(httpReq)
	if err != nil {
		return Meeting{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Meeting{}, fmt.Errorf("meeting backend returned status %d", resp.StatusCode)
	}

	var m Meeting
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return Meeting{}, err
	}
	if m.ID == "" || m.JoinURL == "" {
		return Meeting{}, errors.New("meeting backend returned incomplete meeting")
	}
	return m, nil
}

func (p *WebhookProvisioner) Delete(ctx context.Context, externalID string) error {
	if p.url == "" {
		return errors.New("meeting provisioner url not configured")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, p.url+"/meetings/"+externalID, nil)
	if err != nil {
		return err
	}
	if p.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.token)
	}
	resp, err := p.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	// A 404 means the meeting is already gone, which is what we wanted.
	if resp.StatusCode != http.StatusNotFound && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		return fmt.Errorf("meeting backend returned status %d", resp.StatusCode)
	}
	return nil
}

// NoopProvisioner fabricates join links locally. Dev/test only.
type NoopProvisioner struct{}

func NewNoopProvisioner() *NoopProvisioner {
	return &NoopProvisioner{}
}

func (p *NoopProvisioner) Create(_ context.Context, _ Request) (Meeting, error) {
	id := uuid.NewString()
	return Meeting{ID: id, JoinURL: "https://meet.invalid/" + id}, nil
}

func (p *NoopProvisioner) Delete(_ context.Context, _ string) error {
	return nil
}
