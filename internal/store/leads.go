package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Lead is one row in the lead ledger. Optional fields are pointers so a nil
// value on resubmission leaves the stored value untouched.
type Lead struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Source      string  `json:"source"`
	Name        *string `json:"name,omitempty"`
	Interest    *string `json:"interest,omitempty"`
	ChatSummary *string `json:"chat_summary,omitempty"`
	CreatedAt   int64   `json:"created_at"`
}

// EnsureLeadColumns adds the optional columns that older deployments may
// lack. "duplicate column" outcomes are swallowed; run once at startup.
func (s *Store) EnsureLeadColumns(ctx context.Context) error {
	for _, stmt := range []string{
		`ALTER TABLE leads ADD COLUMN interest TEXT`,
		`ALTER TABLE leads ADD COLUMN chat_summary TEXT`,
	} {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil && !isDuplicateColumn(err) {
			return err
		}
	}
	return nil
}

// UpsertLead records a submission, deduplicating on email. A new email
// inserts the full row and reports created=true. A known email merges: only
// fields non-nil in the submission overwrite stored values, so enrichment
// never clobbers earlier data. Concurrent first submissions for the same
// email may race to insert; the loser falls back to the update path.
func (s *Store) UpsertLead(ctx context.Context, l *Lead) (created bool, err error) {
	var existingID string
	err = s.DB.QueryRowContext(ctx,
		`SELECT id FROM leads WHERE email = ?`, l.Email).Scan(&existingID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		if l.CreatedAt == 0 {
			l.CreatedAt = time.Now().Unix()
		}
		// Default only on insert. A submission without a source must never
		// clobber a meaningful stored one through the merge path, so l.Source
		// itself stays empty for the race fallback below.
		source := l.Source
		if source == "" {
			source = "unknown"
		}
		_, err = s.DB.ExecContext(ctx, `
			INSERT INTO leads (id, email, source, name, interest, chat_summary, created_at)
			VALUES (?,?,?,?,?,?,?)`,
			l.ID, l.Email, source, l.Name, l.Interest, l.ChatSummary, l.CreatedAt)
		if isUniqueViolation(err) {
			// Lost the insert race; enrich the winner's row instead.
			return false, s.mergeLead(ctx, l)
		}
		if err != nil {
			return false, err
		}
		l.Source = source
		return true, nil

	case err != nil:
		return false, err

	default:
		l.ID = existingID
		return false, s.mergeLead(ctx, l)
	}
}

func (s *Store) mergeLead(ctx context.Context, l *Lead) error {
	_, err := s.DB.ExecContext(ctx, `
		UPDATE leads SET
			source       = CASE WHEN ? != '' THEN ? ELSE source END,
			name         = COALESCE(?, name),
			interest     = COALESCE(?, interest),
			chat_summary = COALESCE(?, chat_summary)
		WHERE email = ?`,
		l.Source, l.Source, l.Name, l.Interest, l.ChatSummary, l.Email)
	return err
}

// GetLeadByEmail returns the lead for email, or nil if absent.
func (s *Store) GetLeadByEmail(ctx context.Context, email string) (*Lead, error) {
	l := &Lead{}
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, email, source, name, interest, chat_summary, created_at
		FROM leads WHERE email = ?`, email).
		Scan(&l.ID, &l.Email, &l.Source, &l.Name, &l.Interest, &l.ChatSummary, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ListLeads returns leads newest first.
func (s *Store) ListLeads(ctx context.Context, limit, offset int) ([]*Lead, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, email, source, name, interest, chat_summary, created_at
		FROM leads ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Lead
	for rows.Next() {
		l := &Lead{}
		if err := rows.Scan(&l.ID, &l.Email, &l.Source, &l.Name, &l.Interest, &l.ChatSummary, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// DeleteLead removes a lead by ID. Returns false if no row matched.
func (s *Store) DeleteLead(ctx context.Context, id string) (bool, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// CountLeads returns the total number of captured leads. Feeds the live-stat
// augmentation of the knowledge base.
func (s *Store) CountLeads(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`).Scan(&n)
	if isNoSuchTable(err) {
		return 0, nil
	}
	return n, err
}
