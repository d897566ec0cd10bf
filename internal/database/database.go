// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

// Package database implements the post store on DuckDB via database/sql.
//
// It supplies the two read pipelines of the service: keyset-paginated feed
// reads (GetFeedPage) and the unfiltered recency scan used by the
// recommendation engine (GetRecentPosts), plus the batch personality-type
// lookup (TypesForAuthors). Writes (post lifecycle, bumps, profile upserts,
// event inserts) exist so the feed has a data path but carry no ranking logic.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/davishong/rallyfeed/internal/config"
	"github.com/davishong/rallyfeed/internal/logging"
	"github.com/davishong/rallyfeed/internal/metrics"
	_ "github.com/duckdb/duckdb-go/v2" // DuckDB database/sql driver
)

// DB wraps the DuckDB connection pool.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig
}

// New opens (or creates) the database and initializes the schema.
// An empty path opens an in-memory database, used by tests.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	conn, err := sql.Open("duckdb", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	db := &DB{conn: conn, cfg: cfg}
	if err := db.initialize(); err != nil {
		conn.Close()
		return nil, err
	}

	logging.Info().Str("path", cfg.Path).Msg("database initialized")
	return db, nil
}

// initialize creates tables and indexes. Idempotent.
func (db *DB) initialize() error {
	statements := []string{
		`CREATE SEQUENCE IF NOT EXISTS posts_id_seq`,
		`CREATE TABLE IF NOT EXISTS posts (
			id BIGINT PRIMARY KEY DEFAULT nextval('posts_id_seq'),
			author_id BIGINT NOT NULL,
			game_mode VARCHAR NOT NULL,
			main_position VARCHAR NOT NULL,
			sub_position VARCHAR NOT NULL,
			mic BOOLEAN NOT NULL DEFAULT FALSE,
			content VARCHAR NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			bumped_at TIMESTAMP,
			deleted BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS author_profiles (
			author_id BIGINT PRIMARY KEY,
			game_name VARCHAR NOT NULL,
			tag VARCHAR NOT NULL DEFAULT '',
			profile_image INTEGER NOT NULL DEFAULT 0,
			manner_level INTEGER NOT NULL DEFAULT 1,
			solo_tier VARCHAR NOT NULL DEFAULT 'UNRANKED',
			free_tier VARCHAR NOT NULL DEFAULT 'UNRANKED'
		)`,
		`CREATE TABLE IF NOT EXISTS personality_profiles (
			author_id BIGINT PRIMARY KEY,
			type VARCHAR NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE SEQUENCE IF NOT EXISTS events_id_seq`,
		`CREATE TABLE IF NOT EXISTS events (
			id BIGINT PRIMARY KEY DEFAULT nextval('events_id_seq'),
			author_id BIGINT,
			event_type VARCHAR NOT NULL,
			personality_type VARCHAR,
			session_id VARCHAR NOT NULL,
			source VARCHAR NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_author ON posts (author_id)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_created ON posts (created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_events_session ON events (session_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}
	}
	return nil
}

// ensureContext applies the configured query timeout when the caller's context
// has no deadline of its own.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	timeout := db.cfg.QueryTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// record observes one query duration under an operation label.
// Used as `defer db.record("op", time.Now())`.
func (db *DB) record(operation string, start time.Time) {
	metrics.RecordDBQuery(operation, time.Since(start))
}

// Ping verifies the database connection.
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	return db.conn.PingContext(ctx)
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
