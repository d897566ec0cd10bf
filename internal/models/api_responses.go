// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

package models

import (
	"time"

	"github.com/davishong/rallyfeed/internal/compat"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Status   string      `json:"status"` // "success" or "error"
	Data     interface{} `json:"data,omitempty"`
	Metadata *Metadata   `json:"metadata,omitempty"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError contains error details.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// FeedCursor is the keyset pagination cursor for the post feed. It is encoded
// as base64url(JSON) and opaque to clients. The composite (activity time, post
// ID) key makes pagination immune to bumps reordering unseen posts, which
// plain offset pagination is not.
type FeedCursor struct {
	ActivityTime time.Time `json:"activity_time"`
	PostID       int64     `json:"post_id"`
}

// PaginationInfo describes a cursor-paginated page.
type PaginationInfo struct {
	Limit      int    `json:"limit"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// FeedPost is one feed entry joined with its author's display attributes.
type FeedPost struct {
	Post
	GameName     string `json:"game_name"`
	Tag          string `json:"tag"`
	ProfileImage int    `json:"profile_image"`
	MannerLevel  int    `json:"manner_level"`
	SoloTier     Tier   `json:"solo_tier"`
	FreeTier     Tier   `json:"free_tier"`
}

// FeedPageResponse is the response for GET /api/v1/feed.
type FeedPageResponse struct {
	Posts      []FeedPost     `json:"posts"`
	Pagination PaginationInfo `json:"pagination"`
}

// RecommendedPost is one ranked recommendation candidate: an author's most
// recent post plus the author's display fields, resolved type, and score.
type RecommendedPost struct {
	PostID       int64        `json:"post_id"`
	AuthorID     int64        `json:"author_id"`
	GameName     string       `json:"game_name"`
	Tag          string       `json:"tag"`
	ProfileImage int          `json:"profile_image"`
	MannerLevel  int          `json:"manner_level"`
	GameMode     GameMode     `json:"game_mode"`
	MainPosition Position     `json:"main_position"`
	SubPosition  Position     `json:"sub_position"`
	Mic          bool         `json:"mic"`
	Content      string       `json:"content"`
	Type         *compat.Type `json:"type,omitempty"`
	Score        int          `json:"score"`
	ActivityTime *time.Time   `json:"activity_time,omitempty"`
}

// RecommendationResponse is the response for recommendation endpoints.
type RecommendationResponse struct {
	RequesterType   compat.Type       `json:"requester_type"`
	RequestedSize   int               `json:"requested_size"`
	Count           int               `json:"count"`
	Recommendations []RecommendedPost `json:"recommendations"`
}

// TypeSummaryResponse is the response for GET /api/v1/types/{type}.
type TypeSummaryResponse struct {
	Type        compat.Type            `json:"type"`
	Alias       string                 `json:"alias"`
	Description string                 `json:"description"`
	GoodMatches []compat.Type          `json:"good_matches"`
	BadMatches  []compat.Type          `json:"bad_matches"`
	Picks       []compat.PositionPicks `json:"picks"`
}

// CompatibilityResponse is the response for GET /api/v1/types/{type}/compatibility.
type CompatibilityResponse struct {
	Type        compat.Type   `json:"type"`
	GoodMatches []compat.Type `json:"good_matches"`
	BadMatches  []compat.Type `json:"bad_matches"`
}

// CreatePostRequest creates a new feed post.
type CreatePostRequest struct {
	GameMode     GameMode `json:"game_mode" validate:"required,oneof=SOLO FREE ARAM"`
	MainPosition Position `json:"main_position" validate:"required,oneof=TOP JUNGLE MID ADC SUP ANY"`
	SubPosition  Position `json:"sub_position" validate:"required,oneof=TOP JUNGLE MID ADC SUP ANY"`
	Mic          bool     `json:"mic"`
	Content      string   `json:"content" validate:"max=1000"`
}

// UpdatePostRequest edits an existing post's recruiting fields.
type UpdatePostRequest struct {
	GameMode     GameMode `json:"game_mode" validate:"required,oneof=SOLO FREE ARAM"`
	MainPosition Position `json:"main_position" validate:"required,oneof=TOP JUNGLE MID ADC SUP ANY"`
	SubPosition  Position `json:"sub_position" validate:"required,oneof=TOP JUNGLE MID ADC SUP ANY"`
	Mic          bool     `json:"mic"`
	Content      string   `json:"content" validate:"max=1000"`
}

// UpsertTypeRequest stores the caller's personality type.
type UpsertTypeRequest struct {
	Type string `json:"type" validate:"required,len=4"`
}

// TrackEventRequest records one funnel event.
type TrackEventRequest struct {
	EventType       string `json:"event_type" validate:"required,oneof=test_started test_completed signup_completed result_card_saved result_card_shared referral_clicked"`
	SessionID       string `json:"session_id" validate:"required,max=64"`
	Source          string `json:"source" validate:"max=32"`
	AuthorID        *int64 `json:"author_id,omitempty" validate:"omitempty,min=1"`
	PersonalityType string `json:"personality_type,omitempty" validate:"omitempty,len=4"`
}

// PostResponse wraps a single post for write-path responses.
type PostResponse struct {
	Post Post `json:"post"`
}
