// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/davishong/rallyfeed/internal/apperr"
	"github.com/davishong/rallyfeed/internal/compat"
	"github.com/davishong/rallyfeed/internal/models"
)

// UpsertAuthorProfile inserts or replaces an author's display profile.
func (db *DB) UpsertAuthorProfile(ctx context.Context, profile *models.AuthorProfile) error {
	defer db.record("upsert_author_profile", time.Now())

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO author_profiles (author_id, game_name, tag, profile_image, manner_level, solo_tier, free_tier)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (author_id) DO UPDATE SET
			game_name = excluded.game_name,
			tag = excluded.tag,
			profile_image = excluded.profile_image,
			manner_level = excluded.manner_level,
			solo_tier = excluded.solo_tier,
			free_tier = excluded.free_tier`,
		profile.AuthorID, profile.GameName, profile.Tag, profile.ProfileImage,
		profile.MannerLevel, string(profile.SoloTier), string(profile.FreeTier))
	if err != nil {
		return fmt.Errorf("upsert author profile: %w", err)
	}
	return nil
}

// GetAuthorProfile returns one author's display profile.
func (db *DB) GetAuthorProfile(ctx context.Context, authorID int64) (*models.AuthorProfile, error) {
	defer db.record("get_author_profile", time.Now())

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var p models.AuthorProfile
	err := db.conn.QueryRowContext(ctx, `
		SELECT author_id, game_name, tag, profile_image, manner_level, solo_tier, free_tier
		FROM author_profiles WHERE author_id = ?`, authorID).Scan(
		&p.AuthorID, &p.GameName, &p.Tag, &p.ProfileImage, &p.MannerLevel, &p.SoloTier, &p.FreeTier)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NewNotFound(apperr.CodeProfileNotFound,
			fmt.Sprintf("author %d has no profile", authorID))
	}
	if err != nil {
		return nil, fmt.Errorf("get author profile: %w", err)
	}
	return &p, nil
}

// UpsertPersonalityProfile stores an author's personality type, replacing any
// previous type. At most one row exists per author.
func (db *DB) UpsertPersonalityProfile(ctx context.Context, authorID int64, typ compat.Type) (*models.PersonalityProfile, error) {
	defer db.record("upsert_personality_profile", time.Now())

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO personality_profiles (author_id, type, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (author_id) DO UPDATE SET
			type = excluded.type,
			updated_at = excluded.updated_at`,
		authorID, string(typ), now)
	if err != nil {
		return nil, fmt.Errorf("upsert personality profile: %w", err)
	}

	return &models.PersonalityProfile{AuthorID: authorID, Type: typ, UpdatedAt: now}, nil
}

// GetPersonalityProfile returns an author's stored personality type, or a
// profile-not-found error when the author has never saved one.
func (db *DB) GetPersonalityProfile(ctx context.Context, authorID int64) (*models.PersonalityProfile, error) {
	defer db.record("get_personality_profile", time.Now())

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var p models.PersonalityProfile
	var typ string
	err := db.conn.QueryRowContext(ctx, `
		SELECT author_id, type, updated_at
		FROM personality_profiles WHERE author_id = ?`, authorID).Scan(
		&p.AuthorID, &typ, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NewNotFound(apperr.CodeProfileNotFound,
			fmt.Sprintf("author %d has no personality profile", authorID))
	}
	if err != nil {
		return nil, fmt.Errorf("get personality profile: %w", err)
	}
	p.Type = compat.Type(typ)
	return &p, nil
}

// TypesForAuthors resolves personality types for a set of authors in a single
// bulk query. Authors without a stored profile are omitted from the result,
// never one query per author: latency must stay bounded regardless of how
// many candidates the recommendation fetch produced.
func (db *DB) TypesForAuthors(ctx context.Context, authorIDs []int64) (map[int64]compat.Type, error) {
	result := make(map[int64]compat.Type, len(authorIDs))
	if len(authorIDs) == 0 {
		return result, nil
	}

	defer db.record("types_for_authors", time.Now())

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(authorIDs)), ",")
	args := make([]interface{}, len(authorIDs))
	for i, id := range authorIDs {
		args[i] = id
	}

	rows, err := db.conn.QueryContext(ctx, fmt.Sprintf(`
		SELECT author_id, type FROM personality_profiles
		WHERE author_id IN (%s)`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("batch type lookup: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var authorID int64
		var typ string
		if err := rows.Scan(&authorID, &typ); err != nil {
			return nil, fmt.Errorf("scan type row: %w", err)
		}
		result[authorID] = compat.Type(typ)
	}
	return result, rows.Err()
}
