// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

// Package recommend turns a raw feed slice into a scored, deduplicated,
// size-bounded list of duo candidates.
//
// The pipeline is a pure read path: oversample the feed by recency, keep each
// author's most recent post, resolve personality types in one batch query,
// score against the requester's type with a fixed rule table, rank, truncate.
// The PostProvider and ProfileIndex interfaces decouple it from the database
// package without circular imports.
package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/davishong/rallyfeed/internal/apperr"
	"github.com/davishong/rallyfeed/internal/cache"
	"github.com/davishong/rallyfeed/internal/compat"
	"github.com/davishong/rallyfeed/internal/metrics"
	"github.com/davishong/rallyfeed/internal/models"
)

// Size and oversampling bounds.
const (
	DefaultSize     = 20
	MaxSize         = 50
	FetchMultiplier = 5
	MinFetch        = 100
	MaxFetch        = 500
)

// Compatibility scores. The five buckets never overlap for a given type
// because the catalog's good and bad sets are disjoint (enforced by test).
const (
	NoProfileScore = 50
	SameTypeScore  = 75
	GoodMatchScore = 95
	BadMatchScore  = 20
	NormalScore    = 60
)

// PostProvider supplies the oversampled recency fetch.
type PostProvider interface {
	// GetRecentPosts returns the most recent non-deleted posts ordered by
	// (activity time DESC, id DESC).
	GetRecentPosts(ctx context.Context, limit int) ([]models.FeedPost, error)
}

// ProfileIndex resolves personality types for authors in bulk.
type ProfileIndex interface {
	// TypesForAuthors omits authors without a stored profile.
	TypesForAuthors(ctx context.Context, authorIDs []int64) (map[int64]compat.Type, error)
}

// Request holds one recommendation request.
type Request struct {
	RequesterType compat.Type
	// Size is the requested result size; nil defaults to DefaultSize.
	Size *int
	// ExcludeAuthorID drops the given author's posts before dedup,
	// typically the requester themselves.
	ExcludeAuthorID *int64
}

// Engine produces ranked duo recommendations. Safe for concurrent use; each
// invocation is independent and the only shared state is the response cache.
type Engine struct {
	posts    PostProvider
	profiles ProfileIndex
	logger   zerolog.Logger

	// cache memoizes responses for identical requests. Nil disables caching.
	respCache *cache.LRU[*models.RecommendationResponse]
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache enables response caching with the given capacity and TTL.
func WithCache(capacity int, ttl time.Duration) Option {
	return func(e *Engine) {
		e.respCache = cache.NewLRU[*models.RecommendationResponse](capacity, ttl)
	}
}

// NewEngine creates a recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(posts PostProvider, profiles ProfileIndex, logger zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		posts:    posts,
		profiles: profiles,
		logger:   logger.With().Str("component", "recommend").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// InvalidateCache drops every cached response. Callers invoke it after writes
// that change feed contents or personality profiles, so recommendations
// reflect the writer's own mutation immediately instead of after the TTL.
func (e *Engine) InvalidateCache() {
	if e == nil || e.respCache == nil {
		return
	}
	e.respCache.Purge()
}

// Recommend runs the full pipeline for one request.
func (e *Engine) Recommend(ctx context.Context, req Request) (*models.RecommendationResponse, error) {
	start := time.Now()

	entry, err := compat.GetEntry(req.RequesterType)
	if err != nil {
		return nil, err
	}

	size, err := normalizeSize(req.Size)
	if err != nil {
		return nil, err
	}

	cacheKey := e.cacheKey(req.RequesterType, size, req.ExcludeAuthorID)
	if e.respCache != nil {
		if resp, ok := e.respCache.Get(cacheKey); ok {
			metrics.RecommendationCacheHits.Inc()
			return resp, nil
		}
	}

	fetchSize := normalizeFetchSize(size)
	posts, err := e.posts.GetRecentPosts(ctx, fetchSize)
	if err != nil {
		return nil, fmt.Errorf("fetch recent posts: %w", err)
	}

	candidates := dedupByAuthor(posts, req.ExcludeAuthorID)

	authorIDs := make([]int64, len(candidates))
	for i, c := range candidates {
		authorIDs[i] = c.AuthorID
	}
	typesByAuthor, err := e.profiles.TypesForAuthors(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve author types: %w", err)
	}

	ranked := make([]models.RecommendedPost, 0, len(candidates))
	goodSet := toSet(entry.GoodMatches)
	badSet := toSet(entry.BadMatches)
	for _, c := range candidates {
		var typ *compat.Type
		if t, ok := typesByAuthor[c.AuthorID]; ok {
			typ = &t
		}
		activity := c.ActivityTime()
		ranked = append(ranked, models.RecommendedPost{
			PostID:       c.ID,
			AuthorID:     c.AuthorID,
			GameName:     c.GameName,
			Tag:          c.Tag,
			ProfileImage: c.ProfileImage,
			MannerLevel:  c.MannerLevel,
			GameMode:     c.GameMode,
			MainPosition: c.MainPosition,
			SubPosition:  c.SubPosition,
			Mic:          c.Mic,
			Content:      c.Content,
			Type:         typ,
			Score:        scoreCandidate(req.RequesterType, typ, goodSet, badSet),
			ActivityTime: &activity,
		})
	}

	sortRanked(ranked)

	if len(ranked) > size {
		ranked = ranked[:size]
	}
	if len(ranked) < size {
		// Best effort: dedup can yield fewer distinct authors than requested.
		// There is deliberately no re-fetch loop.
		metrics.RecommendationShortResults.Inc()
	}

	resp := &models.RecommendationResponse{
		RequesterType:   req.RequesterType,
		RequestedSize:   size,
		Count:           len(ranked),
		Recommendations: ranked,
	}

	if e.respCache != nil {
		e.respCache.Add(cacheKey, resp)
	}

	metrics.RecommendationDuration.Observe(time.Since(start).Seconds())
	e.logger.Debug().
		Str("requester_type", string(req.RequesterType)).
		Int("requested_size", size).
		Int("fetched", len(posts)).
		Int("returned", len(ranked)).
		Msg("recommendation complete")

	return resp, nil
}

// normalizeSize applies the default and the upper clamp. Sizes below one are
// rejected; sizes above MaxSize are clamped, never rejected.
func normalizeSize(size *int) (int, error) {
	if size == nil {
		return DefaultSize, nil
	}
	if *size < 1 {
		return 0, apperr.NewValidation(apperr.CodeSizeBadRequest,
			fmt.Sprintf("size must be at least 1, got %d", *size))
	}
	if *size > MaxSize {
		return MaxSize, nil
	}
	return *size, nil
}

// normalizeFetchSize computes the oversampled fetch size. The multiplier and
// bounds assume authors rarely post more than a few times, trading read
// volume for a high probability of reaching size distinct authors in one pass.
func normalizeFetchSize(size int) int {
	fetch := size * FetchMultiplier
	if fetch < MinFetch {
		return MinFetch
	}
	if fetch > MaxFetch {
		return MaxFetch
	}
	return fetch
}

// dedupByAuthor keeps the first post seen per author. Because the input is
// ordered most-recent-first, the surviving post is the author's latest.
func dedupByAuthor(posts []models.FeedPost, excludeAuthorID *int64) []models.FeedPost {
	seen := make(map[int64]struct{}, len(posts))
	result := make([]models.FeedPost, 0, len(posts))
	for _, p := range posts {
		if excludeAuthorID != nil && p.AuthorID == *excludeAuthorID {
			continue
		}
		if _, ok := seen[p.AuthorID]; ok {
			continue
		}
		seen[p.AuthorID] = struct{}{}
		result = append(result, p)
	}
	return result
}

// scoreCandidate applies the fixed rule table in precedence order.
func scoreCandidate(requester compat.Type, candidate *compat.Type, goodSet, badSet map[compat.Type]struct{}) int {
	switch {
	case candidate == nil:
		return NoProfileScore
	case *candidate == requester:
		return SameTypeScore
	case contains(goodSet, *candidate):
		return GoodMatchScore
	case contains(badSet, *candidate):
		return BadMatchScore
	default:
		return NormalScore
	}
}

// sortRanked orders candidates by (score DESC, activity time DESC with nils
// last, post ID DESC). Equal scores prefer more recent activity; equal
// activity prefers the higher post ID.
func sortRanked(ranked []models.RecommendedPost) {
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		switch {
		case a.ActivityTime == nil && b.ActivityTime == nil:
			// fall through to ID tie-break
		case a.ActivityTime == nil:
			return false
		case b.ActivityTime == nil:
			return true
		case !a.ActivityTime.Equal(*b.ActivityTime):
			return a.ActivityTime.After(*b.ActivityTime)
		}
		return a.PostID > b.PostID
	})
}

func (e *Engine) cacheKey(typ compat.Type, size int, exclude *int64) string {
	var ex int64
	if exclude != nil {
		ex = *exclude
	}
	return fmt.Sprintf("%s:%d:%d", typ, size, ex)
}

func toSet(types []compat.Type) map[compat.Type]struct{} {
	set := make(map[compat.Type]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return set
}

func contains(set map[compat.Type]struct{}, t compat.Type) bool {
	_, ok := set[t]
	return ok
}
