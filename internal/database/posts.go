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
	"github.com/davishong/rallyfeed/internal/models"
)

// bumpCooldown is the minimum interval between bumps of the same post.
const bumpCooldown = 5 * time.Minute

// feedSelectColumns is the shared column list for feed queries joining posts
// with their author's display attributes.
const feedSelectColumns = `
	p.id, p.author_id, p.game_mode, p.main_position, p.sub_position,
	p.mic, p.content, p.created_at, p.bumped_at,
	a.game_name, a.tag, a.profile_image, a.manner_level, a.solo_tier, a.free_tier`

// GetFeedPage returns one keyset-paginated page of the feed ordered by
// (activity time DESC, id DESC). A nil cursor starts at the most recent post.
//
// The composite tie-break (activity < t OR (activity = t AND id < cursorID))
// keeps pagination stable while bumps reorder the feed; offset pagination
// would skip or repeat posts here. A post bumped mid-scroll may reappear near
// the top on a later page, which is accepted behavior for a live feed.
func (db *DB) GetFeedPage(
	ctx context.Context,
	limit int,
	cursor *models.FeedCursor,
	filter *FeedFilter,
) ([]models.FeedPost, *models.FeedCursor, bool, error) {
	defer db.record("feed_page", time.Now())

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	conditions := []string{"p.deleted = FALSE"}
	var args []interface{}

	if cursor != nil {
		conditions = append(conditions, `(
			COALESCE(p.bumped_at, p.created_at) < ?
			OR (COALESCE(p.bumped_at, p.created_at) = ? AND p.id < ?)
		)`)
		args = append(args, cursor.ActivityTime, cursor.ActivityTime, cursor.PostID)
	}

	filterConds, filterArgs := buildFeedConditions(filter)
	conditions = append(conditions, filterConds...)
	args = append(args, filterArgs...)

	// Fetch one extra row to detect whether more pages exist.
	fetchLimit := limit + 1
	args = append(args, fetchLimit)

	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		LEFT JOIN author_profiles a ON a.author_id = p.author_id
		WHERE %s
		ORDER BY COALESCE(p.bumped_at, p.created_at) DESC, p.id DESC
		LIMIT ?`,
		feedSelectColumns, strings.Join(conditions, " AND "))

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, false, fmt.Errorf("query feed page: %w", err)
	}
	defer rows.Close()

	posts, err := scanFeedPosts(rows)
	if err != nil {
		return nil, nil, false, err
	}

	hasMore := len(posts) > limit
	if hasMore {
		posts = posts[:limit]
	}

	var nextCursor *models.FeedCursor
	if hasMore && len(posts) > 0 {
		last := posts[len(posts)-1]
		nextCursor = &models.FeedCursor{
			ActivityTime: last.ActivityTime(),
			PostID:       last.ID,
		}
	}

	return posts, nextCursor, hasMore, nil
}

// GetRecentPosts returns the most recent non-deleted posts in feed order,
// unfiltered and without a cursor. This is the oversampled fetch feeding the
// recommendation engine.
func (db *DB) GetRecentPosts(ctx context.Context, limit int) ([]models.FeedPost, error) {
	defer db.record("recent_posts", time.Now())

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		LEFT JOIN author_profiles a ON a.author_id = p.author_id
		WHERE p.deleted = FALSE
		ORDER BY COALESCE(p.bumped_at, p.created_at) DESC, p.id DESC
		LIMIT ?`, feedSelectColumns)

	rows, err := db.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent posts: %w", err)
	}
	defer rows.Close()

	return scanFeedPosts(rows)
}

// GetAuthorFeedPage returns one cursor page of a single author's posts,
// ordered like the main feed.
func (db *DB) GetAuthorFeedPage(
	ctx context.Context,
	authorID int64,
	limit int,
	cursor *models.FeedCursor,
) ([]models.FeedPost, *models.FeedCursor, bool, error) {
	defer db.record("author_feed_page", time.Now())

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	conditions := []string{"p.deleted = FALSE", "p.author_id = ?"}
	args := []interface{}{authorID}

	if cursor != nil {
		conditions = append(conditions, `(
			COALESCE(p.bumped_at, p.created_at) < ?
			OR (COALESCE(p.bumped_at, p.created_at) = ? AND p.id < ?)
		)`)
		args = append(args, cursor.ActivityTime, cursor.ActivityTime, cursor.PostID)
	}

	fetchLimit := limit + 1
	args = append(args, fetchLimit)

	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		LEFT JOIN author_profiles a ON a.author_id = p.author_id
		WHERE %s
		ORDER BY COALESCE(p.bumped_at, p.created_at) DESC, p.id DESC
		LIMIT ?`,
		feedSelectColumns, strings.Join(conditions, " AND "))

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, false, fmt.Errorf("query author feed page: %w", err)
	}
	defer rows.Close()

	posts, err := scanFeedPosts(rows)
	if err != nil {
		return nil, nil, false, err
	}

	hasMore := len(posts) > limit
	if hasMore {
		posts = posts[:limit]
	}

	var nextCursor *models.FeedCursor
	if hasMore && len(posts) > 0 {
		last := posts[len(posts)-1]
		nextCursor = &models.FeedCursor{
			ActivityTime: last.ActivityTime(),
			PostID:       last.ID,
		}
	}

	return posts, nextCursor, hasMore, nil
}

// scanFeedPosts reads joined post+author rows. Author columns are nullable
// because the join is a LEFT JOIN; authors without profiles fall back to
// zero values.
func scanFeedPosts(rows *sql.Rows) ([]models.FeedPost, error) {
	var posts []models.FeedPost
	for rows.Next() {
		var fp models.FeedPost
		var bumpedAt sql.NullTime
		var gameName, tag, soloTier, freeTier sql.NullString
		var profileImage, mannerLevel sql.NullInt32

		err := rows.Scan(
			&fp.ID, &fp.AuthorID, &fp.GameMode, &fp.MainPosition, &fp.SubPosition,
			&fp.Mic, &fp.Content, &fp.CreatedAt, &bumpedAt,
			&gameName, &tag, &profileImage, &mannerLevel, &soloTier, &freeTier,
		)
		if err != nil {
			return nil, fmt.Errorf("scan feed post: %w", err)
		}

		if bumpedAt.Valid {
			t := bumpedAt.Time
			fp.BumpedAt = &t
		}
		fp.GameName = gameName.String
		fp.Tag = tag.String
		fp.ProfileImage = int(profileImage.Int32)
		fp.MannerLevel = int(mannerLevel.Int32)
		fp.SoloTier = models.Tier(soloTier.String)
		fp.FreeTier = models.Tier(freeTier.String)

		posts = append(posts, fp)
	}
	return posts, rows.Err()
}

// InsertPost creates a new post and returns it with the assigned ID.
func (db *DB) InsertPost(ctx context.Context, post *models.Post) error {
	defer db.record("insert_post", time.Now())

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}

	row := db.conn.QueryRowContext(ctx, `
		INSERT INTO posts (author_id, game_mode, main_position, sub_position, mic, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		post.AuthorID, string(post.GameMode), string(post.MainPosition),
		string(post.SubPosition), post.Mic, post.Content, post.CreatedAt)

	if err := row.Scan(&post.ID); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// GetPost returns a single non-deleted post.
func (db *DB) GetPost(ctx context.Context, postID int64) (*models.Post, error) {
	defer db.record("get_post", time.Now())

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var post models.Post
	var bumpedAt sql.NullTime
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, author_id, game_mode, main_position, sub_position, mic, content, created_at, bumped_at
		FROM posts
		WHERE id = ? AND deleted = FALSE`, postID).Scan(
		&post.ID, &post.AuthorID, &post.GameMode, &post.MainPosition, &post.SubPosition,
		&post.Mic, &post.Content, &post.CreatedAt, &bumpedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NewNotFound(apperr.CodePostNotFound, fmt.Sprintf("post %d not found", postID))
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if bumpedAt.Valid {
		t := bumpedAt.Time
		post.BumpedAt = &t
	}
	return &post, nil
}

// UpdatePost edits a post's recruiting fields. Only the author may update.
func (db *DB) UpdatePost(ctx context.Context, postID, authorID int64, req *models.UpdatePostRequest) error {
	defer db.record("update_post", time.Now())

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `
		UPDATE posts
		SET game_mode = ?, main_position = ?, sub_position = ?, mic = ?, content = ?
		WHERE id = ? AND author_id = ? AND deleted = FALSE`,
		string(req.GameMode), string(req.MainPosition), string(req.SubPosition),
		req.Mic, req.Content, postID, authorID)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return requireAffected(res, postID)
}

// SoftDeletePost marks a post deleted. The row is retained.
func (db *DB) SoftDeletePost(ctx context.Context, postID, authorID int64) error {
	defer db.record("delete_post", time.Now())

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `
		UPDATE posts SET deleted = TRUE
		WHERE id = ? AND author_id = ? AND deleted = FALSE`, postID, authorID)
	if err != nil {
		return fmt.Errorf("soft delete post: %w", err)
	}
	return requireAffected(res, postID)
}

// BumpPost moves a post back to the top of the feed by setting its bump time.
// Bumping is the only path that advances a post's activity time. Rejected with
// a rate-limited error when the previous bump is under five minutes old.
func (db *DB) BumpPost(ctx context.Context, postID, authorID int64, now time.Time) (*models.Post, error) {
	defer db.record("bump_post", time.Now())

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var bumpedAt sql.NullTime
	err := db.conn.QueryRowContext(ctx, `
		SELECT bumped_at FROM posts
		WHERE id = ? AND author_id = ? AND deleted = FALSE`, postID, authorID).Scan(&bumpedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NewNotFound(apperr.CodePostNotFound, fmt.Sprintf("post %d not found", postID))
	}
	if err != nil {
		return nil, fmt.Errorf("bump post lookup: %w", err)
	}

	if bumpedAt.Valid && now.Sub(bumpedAt.Time) < bumpCooldown {
		return nil, apperr.NewRateLimited(apperr.CodeBumpRateLimited,
			"post can be bumped once every 5 minutes")
	}

	if _, err := db.conn.ExecContext(ctx, `
		UPDATE posts SET bumped_at = ? WHERE id = ?`, now, postID); err != nil {
		return nil, fmt.Errorf("bump post: %w", err)
	}

	return db.GetPost(ctx, postID)
}

// BumpLatestPost bumps the author's most recent non-deleted post.
func (db *DB) BumpLatestPost(ctx context.Context, authorID int64, now time.Time) (*models.Post, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var postID int64
	err := db.conn.QueryRowContext(ctx, `
		SELECT id FROM posts
		WHERE author_id = ? AND deleted = FALSE
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, authorID).Scan(&postID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NewNotFound(apperr.CodePostNotFound,
			fmt.Sprintf("author %d has no posts", authorID))
	}
	if err != nil {
		return nil, fmt.Errorf("latest post lookup: %w", err)
	}

	return db.BumpPost(ctx, postID, authorID, now)
}

// requireAffected maps zero affected rows to a not-found error.
func requireAffected(res sql.Result, postID int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return apperr.NewNotFound(apperr.CodePostNotFound, fmt.Sprintf("post %d not found", postID))
	}
	return nil
}
