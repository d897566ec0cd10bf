// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

package stats

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/davishong/rallyfeed/internal/config"
	"github.com/davishong/rallyfeed/internal/models"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	cfg := &config.StatsConfig{
		BaseURL:     baseURL,
		Timeout:     2 * time.Second,
		RatePerSec:  100,
		RateBurst:   100,
		BreakerOpen: time.Minute,
	}
	return NewClient(cfg, zerolog.Nop())
}

func TestFetchRank(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"game_name": "Deft",
			"tag": "KR3",
			"profile_icon": 7,
			"solo_tier": "CHALLENGER",
			"flex_tier": "DIAMOND"
		}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	snapshot, err := c.FetchRank(context.Background(), "Deft", "KR3")
	if err != nil {
		t.Fatalf("FetchRank failed: %v", err)
	}

	if gotPath != "/v1/players/Deft/KR3/rank" {
		t.Errorf("request path = %s", gotPath)
	}
	if snapshot.SoloTier != models.TierChallenger || snapshot.FreeTier != models.TierDiamond {
		t.Errorf("unexpected snapshot: %+v", snapshot)
	}
	if snapshot.ProfileImage != 7 {
		t.Errorf("ProfileImage = %d, want 7", snapshot.ProfileImage)
	}
}

func TestFetchRankUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	if _, err := c.FetchRank(context.Background(), "Deft", "KR3"); err == nil {
		t.Fatal("expected error on 502 response")
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := c.FetchRank(ctx, "Deft", "KR3"); err == nil {
			t.Fatalf("call %d unexpectedly succeeded", i)
		}
	}

	// Sixth call must be rejected by the open breaker without hitting the
	// upstream at all.
	_, err := c.FetchRank(ctx, "Deft", "KR3")
	if err != gobreaker.ErrOpenState {
		t.Errorf("expected ErrOpenState, got %v", err)
	}
}
