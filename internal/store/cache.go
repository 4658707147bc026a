package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// CacheEntry is the per-language denormalized content blob.
type CacheEntry struct {
	Lang      string `json:"lang"`
	Data      string `json:"data"` // JSON object: section → data
	UpdatedAt int64  `json:"updated_at"`
}

// EnsureCacheTable creates the content cache table if missing. The table
// self-heals on first publish rather than requiring an out-of-band migration.
func (s *Store) EnsureCacheTable(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS content_cache (
			lang       TEXT PRIMARY KEY,
			data       TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`)
	return err
}

// GetCache returns the cache entry for lang, or nil if absent. A missing
// table is the same as a missing entry.
func (s *Store) GetCache(ctx context.Context, lang string) (*CacheEntry, error) {
	e := &CacheEntry{Lang: lang}
	err := s.DB.QueryRowContext(ctx, `
		SELECT data, updated_at FROM content_cache WHERE lang = ?`, lang).
		Scan(&e.Data, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) || isNoSuchTable(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ReplaceCache upserts the cache row for lang with full-replace semantics.
// Partial merges are never written; the row is always a complete
// reconstruction from the content store.
func (s *Store) ReplaceCache(ctx context.Context, lang, data string) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO content_cache (lang, data, updated_at)
		VALUES (?,?,?)
		ON CONFLICT(lang) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at`,
		lang, data, time.Now().Unix())
	return err
}

// CacheStatus returns updated_at per cached language. A missing table yields
// an empty map.
func (s *Store) CacheStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT lang, updated_at FROM content_cache`)
	if isNoSuchTable(err) {
		return map[string]int64{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	status := make(map[string]int64)
	for rows.Next() {
		var lang string
		var at int64
		if err := rows.Scan(&lang, &at); err != nil {
			return nil, err
		}
		status[lang] = at
	}
	return status, rows.Err()
}
