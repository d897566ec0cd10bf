// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

package stats

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/davishong/rallyfeed/internal/database"
	"github.com/davishong/rallyfeed/internal/metrics"
	"github.com/davishong/rallyfeed/internal/models"
)

// refreshQueueSize bounds pending refreshes. Enqueue drops when full, a
// missed refresh is corrected on the next signup or manual update.
const refreshQueueSize = 256

// Refresher updates stored author profiles with fresh rank data after
// signup. It implements suture.Service.
type Refresher struct {
	client *Client
	db     *database.DB
	queue  chan int64
	logger zerolog.Logger
}

// NewRefresher creates a rank refresher backed by the given client and store.
func NewRefresher(client *Client, db *database.DB, logger zerolog.Logger) *Refresher {
	return &Refresher{
		client: client,
		db:     db,
		queue:  make(chan int64, refreshQueueSize),
		logger: logger.With().Str("component", "stats_refresher").Logger(),
	}
}

// Enqueue schedules a rank refresh for an author. Non-blocking.
func (r *Refresher) Enqueue(authorID int64) {
	select {
	case r.queue <- authorID:
	default:
		r.logger.Warn().Int64("author_id", authorID).Msg("refresh queue full, dropping")
		metrics.StatsRefreshTotal.WithLabelValues("dropped").Inc()
	}
}

// Serve drains the refresh queue until ctx is cancelled.
func (r *Refresher) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case authorID := <-r.queue:
			r.refresh(ctx, authorID)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context, authorID int64) {
	profile, err := r.db.GetAuthorProfile(ctx, authorID)
	if err != nil {
		r.logger.Warn().Err(err).Int64("author_id", authorID).Msg("refresh skipped, no profile")
		metrics.StatsRefreshTotal.WithLabelValues("skipped").Inc()
		return
	}

	snapshot, err := r.client.FetchRank(ctx, profile.GameName, profile.Tag)
	if err != nil {
		r.logger.Warn().Err(err).Int64("author_id", authorID).Msg("rank fetch failed")
		metrics.StatsRefreshTotal.WithLabelValues("failed").Inc()
		return
	}

	updated := &models.AuthorProfile{
		AuthorID:     authorID,
		GameName:     snapshot.GameName,
		Tag:          snapshot.Tag,
		ProfileImage: snapshot.ProfileImage,
		MannerLevel:  profile.MannerLevel,
		SoloTier:     snapshot.SoloTier,
		FreeTier:     snapshot.FreeTier,
	}
	if err := r.db.UpsertAuthorProfile(ctx, updated); err != nil {
		r.logger.Error().Err(err).Int64("author_id", authorID).Msg("profile update failed")
		metrics.StatsRefreshTotal.WithLabelValues("failed").Inc()
		return
	}

	metrics.StatsRefreshTotal.WithLabelValues("ok").Inc()
	r.logger.Info().Int64("author_id", authorID).Msg("rank snapshot refreshed")
}

func (r *Refresher) String() string { return "stats-refresher" }
