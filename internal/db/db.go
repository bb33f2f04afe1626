// Package db provides PostgreSQL persistence for source records and
// published snapshots.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the tables the store needs if they do not exist.
// Records are append-mostly, keyed by (source, external_id); snapshots
// are immutable once published, with identities and profiles attached
// to their snapshot version.
func (db *DB) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS source_records (
			source       TEXT NOT NULL,
			external_id  TEXT NOT NULL,
			fetched_at   TIMESTAMPTZ NOT NULL,
			record       JSONB NOT NULL,
			PRIMARY KEY (source, external_id)
		)`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			version      INTEGER PRIMARY KEY,
			published_at TIMESTAMPTZ NOT NULL,
			splits       JSONB NOT NULL DEFAULT '[]',
			diagnostics  JSONB NOT NULL DEFAULT '[]'
		)`,
		`CREATE TABLE IF NOT EXISTS identities (
			snapshot_version INTEGER NOT NULL REFERENCES snapshots(version) ON DELETE CASCADE,
			id               TEXT NOT NULL,
			members          JSONB NOT NULL,
			cohesion         DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (snapshot_version, id)
		)`,
		`CREATE TABLE IF NOT EXISTS profiles (
			snapshot_version INTEGER NOT NULL REFERENCES snapshots(version) ON DELETE CASCADE,
			identity_id      TEXT NOT NULL,
			profile          JSONB NOT NULL,
			PRIMARY KEY (snapshot_version, identity_id)
		)`,
		`CREATE TABLE IF NOT EXISTS match_scores (
			requirement_id   TEXT NOT NULL,
			snapshot_version INTEGER NOT NULL,
			profile_id       TEXT NOT NULL,
			score            DOUBLE PRECISION NOT NULL,
			matched_terms    JSONB NOT NULL DEFAULT '[]',
			PRIMARY KEY (requirement_id, profile_id)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
