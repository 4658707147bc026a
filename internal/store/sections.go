package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// Section is one (section, language) record from the content store.
type Section struct {
	Section   string          `json:"section"`
	Lang      string          `json:"lang"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt int64           `json:"updated_at"`
}

// UpsertSection inserts or replaces the record for (section, lang).
func (s *Store) UpsertSection(ctx context.Context, section, lang string, data json.RawMessage) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO content_sections (section, lang, data, updated_at)
		VALUES (?,?,?,?)
		ON CONFLICT(section, lang) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at`,
		section, lang, string(data), time.Now().Unix())
	return err
}

// GetSection returns the record for (section, lang), or nil if absent.
func (s *Store) GetSection(ctx context.Context, section, lang string) (*Section, error) {
	row := &Section{Section: section, Lang: lang}
	var data string

	err := s.DB.QueryRowContext(ctx, `
		SELECT data, updated_at FROM content_sections
		WHERE section = ? AND lang = ?`, section, lang).
		Scan(&data, &row.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	row.Data = json.RawMessage(data)
	return row, nil
}

// AssembleLanguage reads every section stored for lang and returns the
// assembled section→data map. Rows whose stored JSON is malformed are
// isolated: they are skipped and their section keys returned, instead of
// aborting the whole language.
func (s *Store) AssembleLanguage(ctx context.Context, lang string) (map[string]json.RawMessage, []string, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT section, data FROM content_sections
		WHERE lang = ? ORDER BY section`, lang)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	assembled := make(map[string]json.RawMessage)
	var skipped []string
	for rows.Next() {
		var section, data string
		if err := rows.Scan(&section, &data); err != nil {
			return nil, nil, err
		}
		if !json.Valid([]byte(data)) {
			skipped = append(skipped, section)
			continue
		}
		assembled[section] = json.RawMessage(data)
	}
	return assembled, skipped, rows.Err()
}
