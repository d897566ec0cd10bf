// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

package database

import (
	"context"
	"fmt"
	"time"
)

// InsertEvent records one funnel event row.
func (db *DB) InsertEvent(
	ctx context.Context,
	authorID *int64,
	eventType string,
	personalityType *string,
	sessionID, source string,
) (int64, error) {
	defer db.record("insert_event", time.Now())

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var id int64
	err := db.conn.QueryRowContext(ctx, `
		INSERT INTO events (author_id, event_type, personality_type, session_id, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		authorID, eventType, personalityType, sessionID, source, time.Now().UTC()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}
	return id, nil
}

// CountEventsBySession returns how many events a session has recorded.
// Used by handlers to cap runaway sessions.
func (db *DB) CountEventsBySession(ctx context.Context, sessionID string) (int, error) {
	defer db.record("count_session_events", time.Now())

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE session_id = ?`, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count session events: %w", err)
	}
	return count, nil
}
