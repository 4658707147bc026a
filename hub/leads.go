package hub

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/hazyhaar/sitekb/internal/store"
	"github.com/hazyhaar/sitekb/notify"
	"github.com/hazyhaar/sitekb/observability"
)

// ErrInvalidEmail rejects a lead submission before any write occurs.
var ErrInvalidEmail = errors.New("hub: invalid email address")

// LeadSubmission is one inbound lead capture. Optional fields left nil do
// not overwrite previously stored values.
type LeadSubmission struct {
	Email       string  `json:"email"`
	Source      string  `json:"source"`
	Name        *string `json:"name,omitempty"`
	Interest    *string `json:"interest,omitempty"`
	ChatSummary *string `json:"chatSummary,omitempty"`
}

// NormalizeEmail lowercases and trims an email address; it is the dedup key
// of the lead ledger.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// SubmitLead validates and records a submission. Repeated submissions for
// the same email enrich the existing row instead of duplicating it. On first
// capture a welcome notification is dispatched fire-and-forget: the caller
// never waits on it and its failure never changes the result.
func (s *Service) SubmitLead(ctx context.Context, sub LeadSubmission) (created bool, err error) {
	email := NormalizeEmail(sub.Email)
	if !validEmail(email) {
		return false, ErrInvalidEmail
	}

	lead := &store.Lead{
		ID:          s.newLeadID(),
		Email:       email,
		Source:      sub.Source,
		Name:        sub.Name,
		Interest:    sub.Interest,
		ChatSummary: sub.ChatSummary,
	}

	created, err = s.store.UpsertLead(ctx, lead)
	if err != nil {
		return false, fmt.Errorf("hub: submit lead: %w", err)
	}

	if created {
		if s.events != nil {
			s.events.Log(ctx, observability.Event{
				Type: "lead_created", EntityType: "lead", EntityID: lead.ID, Success: true,
			})
		}
		s.dispatchWelcome(lead)
	}
	return created, nil
}

// dispatchWelcome runs the notifier in a detached goroutine with its own
// deadline, decoupled from the request context.
func (s *Service) dispatchWelcome(lead *store.Lead) {
	name := ""
	if lead.Name != nil {
		name = *lead.Name
	}
	event := notify.LeadEvent{Email: lead.Email, Name: name, Source: lead.Source}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.notifier.LeadCreated(ctx, event); err != nil {
			s.logger.Warn("lead notification failed", "email", lead.Email, "error", err)
		}
	}()
}

// ListLeads returns captured leads, newest first.
func (s *Service) ListLeads(ctx context.Context, limit, offset int) ([]*store.Lead, error) {
	return s.store.ListLeads(ctx, limit, offset)
}

// DeleteLead removes a lead by ID, reporting whether a row was removed.
func (s *Service) DeleteLead(ctx context.Context, id string) (bool, error) {
	return s.store.DeleteLead(ctx, id)
}
