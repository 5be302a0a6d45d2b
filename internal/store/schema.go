package store

import (
	"context"
	"fmt"
)

// Schema for the two persisted tables. jobs is keyed by the identity
// hash; search_history is an append-only attempt log. Both are pruned
// on the same retention horizon.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		company TEXT NOT NULL,
		location TEXT NOT NULL,
		hash TEXT UNIQUE NOT NULL,
		region TEXT NOT NULL,
		location_class TEXT NOT NULL DEFAULT '',
		pay_range_min INTEGER,
		pay_range_max INTEGER,
		pay_range_text TEXT,
		pay_period TEXT NOT NULL DEFAULT 'yearly',
		posted_time TEXT,
		posted_hours_ago INTEGER,
		source_url TEXT,
		source_id TEXT,
		career_page_url TEXT,
		first_seen TIMESTAMPTZ NOT NULL,
		last_seen TIMESTAMPTZ NOT NULL,
		notified BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS search_history (
		id BIGSERIAL PRIMARY KEY,
		region TEXT NOT NULL,
		search_url TEXT NOT NULL,
		jobs_found INTEGER NOT NULL DEFAULT 0,
		success BOOLEAN NOT NULL DEFAULT TRUE,
		error_text TEXT,
		timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_hash ON jobs(hash)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_first_seen ON jobs(first_seen)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_notified ON jobs(notified)`,
	`CREATE INDEX IF NOT EXISTS idx_search_history_region ON search_history(region)`,
	`CREATE INDEX IF NOT EXISTS idx_search_history_timestamp ON search_history(timestamp)`,
}

// InitSchema creates tables and indexes if they do not exist yet.
// Safe to call on every startup.
func (s *Store) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
