// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

package api

import (
	"net/http"
	"time"

	"github.com/davishong/rallyfeed/internal/database"
	"github.com/davishong/rallyfeed/internal/logging"
	"github.com/davishong/rallyfeed/internal/metrics"
	"github.com/davishong/rallyfeed/internal/models"
)

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 50
)

// Feed godoc
// @Summary Cursor-paginated duo recruiting feed
// @Description Returns posts ordered by activity (bump or creation time), newest first. Pass the returned next_cursor to fetch the following page.
// @Tags feed
// @Produce json
// @Param limit query int false "Page size (default 20, max 50)"
// @Param cursor query string false "Opaque cursor from the previous page"
// @Param game_mode query string false "Filter: SOLO, FREE, or ARAM"
// @Param tier query string false "Filter by tier for the post's game mode"
// @Param positions query string false "Comma-separated positions, matches main or sub"
// @Param mic query bool false "Filter by mic availability"
// @Success 200 {object} models.APIResponse{data=models.FeedPageResponse}
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/feed [get]
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit := clampLimit(getIntParam(r, "limit", defaultFeedLimit))

	cursor, err := decodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		respondAppError(w, err)
		return
	}

	filter, err := parseFeedFilter(r)
	if err != nil {
		respondAppError(w, err)
		return
	}

	posts, nextCursor, hasMore, err := h.db.GetFeedPage(r.Context(), limit, cursor, filter)
	if err != nil {
		respondAppError(w, err)
		return
	}

	h.respondFeedPage(w, posts, nextCursor, hasMore, limit, start)
}

// MyPosts godoc
// @Summary The caller's own posts, cursor-paginated
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (default 20, max 50)"
// @Param cursor query string false "Opaque cursor from the previous page"
// @Success 200 {object} models.APIResponse{data=models.FeedPageResponse}
// @Router /api/v1/me/posts [get]
func (h *Handler) MyPosts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	authorID := AuthorID(r.Context())

	limit := clampLimit(getIntParam(r, "limit", defaultFeedLimit))

	cursor, err := decodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		respondAppError(w, err)
		return
	}

	posts, nextCursor, hasMore, err := h.db.GetAuthorFeedPage(r.Context(), authorID, limit, cursor)
	if err != nil {
		respondAppError(w, err)
		return
	}

	h.respondFeedPage(w, posts, nextCursor, hasMore, limit, start)
}

func (h *Handler) respondFeedPage(
	w http.ResponseWriter,
	posts []models.FeedPost,
	nextCursor *models.FeedCursor,
	hasMore bool,
	limit int,
	start time.Time,
) {
	token, err := encodeCursor(nextCursor)
	if err != nil {
		respondAppError(w, err)
		return
	}

	metrics.FeedPagesServed.Inc()
	respondData(w, http.StatusOK, models.FeedPageResponse{
		Posts: posts,
		Pagination: models.PaginationInfo{
			Limit:      limit,
			HasMore:    hasMore,
			NextCursor: token,
		},
	}, start)
}

func clampLimit(limit int) int {
	if limit < 1 {
		return defaultFeedLimit
	}
	if limit > maxFeedLimit {
		return maxFeedLimit
	}
	return limit
}

// parseFeedFilter builds the optional feed filter from query parameters.
// Unknown enum values are rejected rather than silently ignored.
func parseFeedFilter(r *http.Request) (*database.FeedFilter, error) {
	q := r.URL.Query()
	filter := &database.FeedFilter{}
	any := false

	if v := q.Get("game_mode"); v != "" {
		mode, err := models.ParseGameMode(v)
		if err != nil {
			return nil, err
		}
		filter.GameMode = &mode
		any = true
	}

	if v := q.Get("tier"); v != "" {
		tier, err := models.ParseTier(v)
		if err != nil {
			return nil, err
		}
		filter.Tier = &tier
		any = true
	}

	if raw := parseCommaSeparated(q.Get("positions")); len(raw) > 0 {
		positions := make([]models.Position, 0, len(raw))
		for _, p := range raw {
			pos, err := models.ParsePosition(p)
			if err != nil {
				return nil, err
			}
			positions = append(positions, pos)
		}
		filter.Positions = positions
		any = true
	}

	if v := q.Get("mic"); v != "" {
		mic := v == "true" || v == "1"
		filter.Mic = &mic
		any = true
	}

	if !any {
		return nil, nil
	}
	logging.Debug().Interface("filter", filter).Msg("feed filter applied")
	return filter, nil
}
