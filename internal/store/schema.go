package store

// Schema contains the complete DDL for the sitekb tables. Every statement is
// idempotent; the schema is applied once at open instead of scattered
// create-if-missing calls at every operation.
const Schema = `
-- Content store: source of truth, one JSON record per (section, language)
CREATE TABLE IF NOT EXISTS content_sections (
    section    TEXT NOT NULL,
    lang       TEXT NOT NULL,
    data       TEXT NOT NULL,
    updated_at INTEGER NOT NULL,
    PRIMARY KEY (section, lang)
);
CREATE INDEX IF NOT EXISTS idx_sections_lang ON content_sections(lang);

-- Content cache: per-language denormalized blob, full-replace on publish
CREATE TABLE IF NOT EXISTS content_cache (
    lang       TEXT PRIMARY KEY,
    data       TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);

-- Gist cache: per-language AI summary; absence means "must regenerate"
CREATE TABLE IF NOT EXISTS knowledge_gists (
    lang       TEXT PRIMARY KEY,
    gist       TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);

-- Lead ledger: at most one row per distinct email
CREATE TABLE IF NOT EXISTS leads (
    id           TEXT PRIMARY KEY,
    email        TEXT NOT NULL UNIQUE,
    source       TEXT NOT NULL DEFAULT '',
    name         TEXT,
    interest     TEXT,
    chat_summary TEXT,
    created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_leads_created ON leads(created_at DESC);
`
