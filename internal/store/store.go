// Package store provides the SQLite persistence layer for the sitekb hub:
// the content store, the per-language content cache, the gist cache and the
// lead ledger.
package store

import (
	"database/sql"
	"strings"

	"github.com/hazyhaar/sitekb/dbopen"
)

// Store is the sitekb database handle. It is created once per process and
// passed by reference; no hidden singletons.
type Store struct {
	DB *sql.DB
}

// Open opens (or creates) the sitekb SQLite database at path, applies the
// production pragmas and the idempotent schema.
func Open(path string, opts ...dbopen.Option) (*Store, error) {
	allOpts := append([]dbopen.Option{
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(Schema),
	}, opts...)

	db, err := dbopen.Open(path, allOpts...)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// New wraps an already-open database. The caller is responsible for having
// applied Schema (tests use dbopen.OpenMemory with WithSchema).
func New(db *sql.DB) *Store {
	return &Store{DB: db}
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}

// isNoSuchTable reports whether err is SQLite's missing-table error.
// Older deployments may predate parts of the schema; callers self-heal or
// treat the condition as an empty result instead of failing.
func isNoSuchTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

// isDuplicateColumn reports whether err is SQLite's duplicate-column error
// from an additive ALTER TABLE that already ran.
func isDuplicateColumn(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate column name")
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
