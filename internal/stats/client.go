// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

// Package stats fetches player rank data from the external game-stats API.
// Calls are rate limited and wrapped in a circuit breaker so a degraded
// upstream cannot stall signups.
package stats

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/davishong/rallyfeed/internal/config"
	"github.com/davishong/rallyfeed/internal/models"
)

// RankSnapshot is the subset of upstream player data this service stores.
type RankSnapshot struct {
	GameName     string      `json:"game_name"`
	Tag          string      `json:"tag"`
	ProfileImage int         `json:"profile_icon"`
	SoloTier     models.Tier `json:"solo_tier"`
	FreeTier     models.Tier `json:"flex_tier"`
}

// Client calls the external stats API.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*RankSnapshot]
	logger  zerolog.Logger
}

// NewClient builds a stats client from configuration.
func NewClient(cfg *config.StatsConfig, logger zerolog.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker[*RankSnapshot](gobreaker.Settings{
		Name:    "stats-api",
		Timeout: cfg.BreakerOpen,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("stats breaker state changed")
		},
	})

	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RateBurst),
		breaker: breaker,
		logger:  logger.With().Str("component", "stats_client").Logger(),
	}
}

// FetchRank fetches the current rank snapshot for a player.
func (c *Client) FetchRank(ctx context.Context, gameName, tag string) (*RankSnapshot, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("stats rate limit wait: %w", err)
	}

	return c.breaker.Execute(func() (*RankSnapshot, error) {
		return c.fetch(ctx, gameName, tag)
	})
}

func (c *Client) fetch(ctx context.Context, gameName, tag string) (*RankSnapshot, error) {
	endpoint := fmt.Sprintf("%s/v1/players/%s/%s/rank",
		c.baseURL, url.PathEscape(gameName), url.PathEscape(tag))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build stats request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stats request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("stats API returned %d: %s", resp.StatusCode, body)
	}

	var snapshot RankSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("decode stats response: %w", err)
	}

	c.logger.Debug().
		Str("game_name", gameName).
		Dur("duration", time.Since(start)).
		Msg("rank snapshot fetched")
	return &snapshot, nil
}
