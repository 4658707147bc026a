package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Gist is a cached per-language AI summary of the knowledge base.
type Gist struct {
	Lang      string `json:"lang"`
	Gist      string `json:"gist"`
	UpdatedAt int64  `json:"updated_at"`
}

// GetGist returns the cached gist for lang, or nil if absent. A missing
// table is treated as a cache miss, never an error: the read path falls
// through to the next tier.
func (s *Store) GetGist(ctx context.Context, lang string) (*Gist, error) {
	g := &Gist{Lang: lang}
	err := s.DB.QueryRowContext(ctx, `
		SELECT gist, updated_at FROM knowledge_gists WHERE lang = ?`, lang).
		Scan(&g.Gist, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) || isNoSuchTable(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// PutGist upserts the gist for lang, creating the backing table first if it
// does not exist (self-healing).
func (s *Store) PutGist(ctx context.Context, lang, gist string) error {
	_, err := s.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS knowledge_gists (
			lang       TEXT PRIMARY KEY,
			gist       TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`)
	if err != nil {
		return err
	}

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO knowledge_gists (lang, gist, updated_at)
		VALUES (?,?,?)
		ON CONFLICT(lang) DO UPDATE SET
			gist = excluded.gist,
			updated_at = excluded.updated_at`,
		lang, gist, time.Now().Unix())
	return err
}

// ClearGists deletes every cached gist (global invalidation after publish).
// A missing table is a no-op, not an error: the schema may not have been
// created yet.
func (s *Store) ClearGists(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM knowledge_gists`)
	if isNoSuchTable(err) {
		return nil
	}
	return err
}
