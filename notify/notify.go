// Package notify delivers lead-capture notifications (e.g. a welcome email
// relay) as an outbound webhook.
//
// Notifications are strictly fire-and-forget: the lead submission path runs
// them in a detached goroutine and a delivery failure must never change the
// response returned to the caller.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// LeadEvent is the payload posted when a new lead is captured.
type LeadEvent struct {
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Source string `json:"source"`
}

// Notifier delivers a lead-created notification.
type Notifier interface {
	LeadCreated(ctx context.Context, e LeadEvent) error
}

// Null is a Notifier that does nothing. Used when no webhook is configured.
type Null struct{}

// LeadCreated is a no-op.
func (Null) LeadCreated(context.Context, LeadEvent) error { return nil }

// Webhook posts lead events as JSON to a fixed URL.
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook creates a webhook notifier with a bounded request timeout.
func NewWebhook(url string, timeout time.Duration) *Webhook {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// LeadCreated posts the event. Non-2xx responses are reported as errors so
// the caller can log them; the caller never surfaces them further.
func (w *Webhook) LeadCreated(ctx context.Context, e LeadEvent) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("notify: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notify: webhook returned %d", resp.StatusCode)
	}
	return nil
}
