// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

package recommend

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/davishong/rallyfeed/internal/apperr"
	"github.com/davishong/rallyfeed/internal/compat"
	"github.com/davishong/rallyfeed/internal/logging"
	"github.com/davishong/rallyfeed/internal/models"
)

type fakePosts struct {
	posts     []models.FeedPost
	lastLimit int
}

func (f *fakePosts) GetRecentPosts(_ context.Context, limit int) ([]models.FeedPost, error) {
	f.lastLimit = limit
	if len(f.posts) > limit {
		return f.posts[:limit], nil
	}
	return f.posts, nil
}

type fakeProfiles struct {
	types map[int64]compat.Type
	calls int
}

func (f *fakeProfiles) TypesForAuthors(_ context.Context, ids []int64) (map[int64]compat.Type, error) {
	f.calls++
	result := make(map[int64]compat.Type, len(ids))
	for _, id := range ids {
		if t, ok := f.types[id]; ok {
			result[id] = t
		}
	}
	return result, nil
}

func newTestEngine(posts []models.FeedPost, types map[int64]compat.Type) (*Engine, *fakePosts, *fakeProfiles) {
	fp := &fakePosts{posts: posts}
	fpr := &fakeProfiles{types: types}
	var buf bytes.Buffer
	return NewEngine(fp, fpr, logging.NewTestLogger(&buf)), fp, fpr
}

// post builds a feed post with a descending activity time: later sequence
// numbers are older, matching the recency-descending fetch order.
func post(id, authorID int64, ageMinutes int) models.FeedPost {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC).Add(-time.Duration(ageMinutes) * time.Minute)
	return models.FeedPost{
		Post: models.Post{
			ID:        id,
			AuthorID:  authorID,
			GameMode:  models.GameModeSolo,
			CreatedAt: created,
		},
	}
}

func intPtr(v int) *int     { return &v }
func i64Ptr(v int64) *int64 { return &v }

func TestNormalizeSize(t *testing.T) {
	tests := []struct {
		name    string
		size    *int
		want    int
		wantErr bool
	}{
		{"nil defaults to 20", nil, DefaultSize, false},
		{"zero rejected", intPtr(0), 0, true},
		{"negative rejected", intPtr(-5), 0, true},
		{"in range passes through", intPtr(7), 7, false},
		{"max passes through", intPtr(50), 50, false},
		{"above max clamped", intPtr(1000), MaxSize, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeSize(tt.size)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %d", got)
				}
				if !apperr.IsCode(err, apperr.CodeSizeBadRequest) {
					t.Errorf("expected SIZE_BAD_REQUEST, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("normalizeSize = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNormalizeFetchSize(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{1, 100},   // 5 clamped up to MinFetch
		{20, 100},  // exactly MinFetch
		{30, 150},  // within bounds
		{50, 250},  // within bounds
		{100, 500}, // would exceed via multiplier (unreachable size, still clamped)
	}

	for _, tt := range tests {
		if got := normalizeFetchSize(tt.size); got != tt.want {
			t.Errorf("normalizeFetchSize(%d) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestRecommendScoringAndRanking(t *testing.T) {
	// ADCI's catalog entry: good matches {ADTB, ASTI}, bad matches {FDCB, FDTB}.
	// One candidate per bucket, activity times fixed so ranking is unambiguous.
	posts := []models.FeedPost{
		post(1, 101, 0), // same type ADCI -> 75
		post(2, 102, 1), // good match ADTB -> 95
		post(3, 103, 2), // bad match FDCB -> 20
		post(4, 104, 3), // unrelated ASCB -> 60
		post(5, 105, 4), // no profile -> 50
	}
	types := map[int64]compat.Type{
		101: compat.ADCI,
		102: compat.ADTB,
		103: compat.FDCB,
		104: compat.ASCB,
	}

	engine, _, profiles := newTestEngine(posts, types)
	resp, err := engine.Recommend(context.Background(), Request{
		RequesterType: compat.ADCI,
		Size:          intPtr(5),
	})
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}

	if profiles.calls != 1 {
		t.Errorf("expected 1 batch type lookup, got %d", profiles.calls)
	}
	if resp.Count != 5 {
		t.Fatalf("Count = %d, want 5", resp.Count)
	}

	wantAuthors := []int64{102, 101, 104, 105, 103}
	wantScores := []int{95, 75, 60, 50, 20}
	for i, rec := range resp.Recommendations {
		if rec.AuthorID != wantAuthors[i] {
			t.Errorf("rank %d: author = %d, want %d", i, rec.AuthorID, wantAuthors[i])
		}
		if rec.Score != wantScores[i] {
			t.Errorf("rank %d: score = %d, want %d", i, rec.Score, wantScores[i])
		}
	}
}

func TestRecommendDedupKeepsLatestPostPerAuthor(t *testing.T) {
	// Author 201 has three posts; the first in fetch order is the latest.
	posts := []models.FeedPost{
		post(10, 201, 0),
		post(9, 201, 1),
		post(8, 202, 2),
		post(7, 201, 3),
		post(6, 203, 4),
	}

	engine, _, _ := newTestEngine(posts, nil)
	resp, err := engine.Recommend(context.Background(), Request{
		RequesterType: compat.FSTB,
		Size:          intPtr(10),
	})
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}

	if resp.Count != 3 {
		t.Fatalf("Count = %d, want 3 distinct authors", resp.Count)
	}

	seen := make(map[int64]bool)
	for _, rec := range resp.Recommendations {
		if seen[rec.AuthorID] {
			t.Errorf("author %d appears more than once", rec.AuthorID)
		}
		seen[rec.AuthorID] = true
		if rec.AuthorID == 201 && rec.PostID != 10 {
			t.Errorf("author 201 kept post %d, want latest post 10", rec.PostID)
		}
	}
}

func TestRecommendExcludesAuthor(t *testing.T) {
	posts := []models.FeedPost{
		post(1, 301, 0),
		post(2, 302, 1),
	}

	engine, _, _ := newTestEngine(posts, nil)
	resp, err := engine.Recommend(context.Background(), Request{
		RequesterType:   compat.ADCI,
		Size:            intPtr(10),
		ExcludeAuthorID: i64Ptr(301),
	})
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}

	for _, rec := range resp.Recommendations {
		if rec.AuthorID == 301 {
			t.Error("excluded author present in recommendations")
		}
	}
	if resp.Count != 1 {
		t.Errorf("Count = %d, want 1", resp.Count)
	}
}

func TestRecommendShortResultWithoutRetry(t *testing.T) {
	// Only two distinct authors available; result is simply short.
	posts := []models.FeedPost{
		post(1, 401, 0),
		post(2, 402, 1),
	}

	engine, fp, _ := newTestEngine(posts, nil)
	resp, err := engine.Recommend(context.Background(), Request{
		RequesterType: compat.ASTI,
	})
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}

	if resp.RequestedSize != DefaultSize {
		t.Errorf("RequestedSize = %d, want %d", resp.RequestedSize, DefaultSize)
	}
	if resp.Count != 2 {
		t.Errorf("Count = %d, want 2", resp.Count)
	}
	if fp.lastLimit != MinFetch {
		t.Errorf("fetch limit = %d, want %d", fp.lastLimit, MinFetch)
	}
}

func TestRecommendIdempotent(t *testing.T) {
	posts := []models.FeedPost{
		post(1, 501, 0),
		post(2, 502, 1),
		post(3, 503, 2),
	}
	types := map[int64]compat.Type{501: compat.ADTB, 502: compat.FDCB}

	engine, _, _ := newTestEngine(posts, types)
	req := Request{RequesterType: compat.ADCI, Size: intPtr(3)}

	first, err := engine.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("first Recommend failed: %v", err)
	}
	second, err := engine.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("second Recommend failed: %v", err)
	}

	if len(first.Recommendations) != len(second.Recommendations) {
		t.Fatalf("result lengths differ: %d vs %d", len(first.Recommendations), len(second.Recommendations))
	}
	for i := range first.Recommendations {
		if first.Recommendations[i].PostID != second.Recommendations[i].PostID {
			t.Errorf("rank %d differs between identical calls", i)
		}
	}
}

func TestRecommendUnknownTypeFails(t *testing.T) {
	engine, _, _ := newTestEngine(nil, nil)
	_, err := engine.Recommend(context.Background(), Request{RequesterType: compat.Type("QQQQ")})
	if err == nil {
		t.Fatal("expected error for unknown requester type")
	}
	if !apperr.IsCode(err, apperr.CodeTypeNotSupported) {
		t.Errorf("expected TYPE_NOT_SUPPORTED, got %v", err)
	}
}

func TestSortRankedOrdering(t *testing.T) {
	early := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	late := time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC)

	ranked := []models.RecommendedPost{
		{PostID: 1, Score: 60, ActivityTime: &early},
		{PostID: 2, Score: 95, ActivityTime: &early},
		{PostID: 3, Score: 95, ActivityTime: &late},
		{PostID: 4, Score: 95, ActivityTime: nil},
		{PostID: 5, Score: 95, ActivityTime: &late},
	}

	sortRanked(ranked)

	// score 95 first; within it, late activity before early, nil last;
	// equal (score, activity) breaks ties by higher post ID.
	wantIDs := []int64{5, 3, 2, 4, 1}
	for i, rec := range ranked {
		if rec.PostID != wantIDs[i] {
			t.Errorf("position %d: post %d, want %d", i, rec.PostID, wantIDs[i])
		}
	}

	for i := 1; i < len(ranked); i++ {
		if ranked[i-1].Score < ranked[i].Score {
			t.Errorf("score ordering violated at %d", i)
		}
	}
}

func TestRecommendCache(t *testing.T) {
	posts := []models.FeedPost{post(1, 601, 0)}
	fp := &fakePosts{posts: posts}
	fpr := &fakeProfiles{}
	var buf bytes.Buffer
	engine := NewEngine(fp, fpr, logging.NewTestLogger(&buf), WithCache(16, time.Minute))

	req := Request{RequesterType: compat.ADCI, Size: intPtr(5)}
	if _, err := engine.Recommend(context.Background(), req); err != nil {
		t.Fatalf("first Recommend failed: %v", err)
	}
	if _, err := engine.Recommend(context.Background(), req); err != nil {
		t.Fatalf("second Recommend failed: %v", err)
	}

	if fpr.calls != 1 {
		t.Errorf("expected cached second call, got %d profile lookups", fpr.calls)
	}
}

func TestInvalidateCacheForcesRefetch(t *testing.T) {
	fp := &fakePosts{posts: []models.FeedPost{post(1, 701, 0)}}
	fpr := &fakeProfiles{}
	var buf bytes.Buffer
	engine := NewEngine(fp, fpr, logging.NewTestLogger(&buf), WithCache(16, time.Minute))

	req := Request{RequesterType: compat.ADCI, Size: intPtr(5)}
	first, err := engine.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("first Recommend failed: %v", err)
	}
	if first.Count != 1 {
		t.Fatalf("Count = %d, want 1", first.Count)
	}

	// A new post lands; the cached response must not outlive the write.
	fp.posts = append([]models.FeedPost{post(2, 702, 0)}, fp.posts...)
	engine.InvalidateCache()

	second, err := engine.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("second Recommend failed: %v", err)
	}
	if second.Count != 2 {
		t.Errorf("Count after invalidation = %d, want 2", second.Count)
	}
	if fpr.calls != 2 {
		t.Errorf("profile lookups = %d, want 2 (cache dropped)", fpr.calls)
	}
}
