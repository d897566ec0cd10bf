// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

// Package models defines the domain entities and API wire types shared across
// the database, recommendation, and HTTP layers.
package models

import (
	"time"

	"github.com/davishong/rallyfeed/internal/compat"
)

// GameMode tags a post with the queue it is recruiting for.
type GameMode string

// Supported game modes.
const (
	GameModeSolo GameMode = "SOLO"
	GameModeFree GameMode = "FREE"
	GameModeAram GameMode = "ARAM"
)

// Tier is a ranked ladder tier.
type Tier string

// Ladder tiers, lowest to highest.
const (
	TierUnranked    Tier = "UNRANKED"
	TierIron        Tier = "IRON"
	TierBronze      Tier = "BRONZE"
	TierSilver      Tier = "SILVER"
	TierGold        Tier = "GOLD"
	TierPlatinum    Tier = "PLATINUM"
	TierEmerald     Tier = "EMERALD"
	TierDiamond     Tier = "DIAMOND"
	TierMaster      Tier = "MASTER"
	TierGrandmaster Tier = "GRANDMASTER"
	TierChallenger  Tier = "CHALLENGER"
)

// Position is an in-game role.
type Position string

// Positions a post can recruit for. PositionAny matches everything.
const (
	PositionTop     Position = "TOP"
	PositionJungle  Position = "JUNGLE"
	PositionMid     Position = "MID"
	PositionAdc     Position = "ADC"
	PositionSupport Position = "SUP"
	PositionAny     Position = "ANY"
)

// Post is one feed entry. Posts are soft-deleted, never removed, and can be
// bumped back to the top of the feed by their author.
type Post struct {
	ID           int64      `json:"id"`
	AuthorID     int64      `json:"author_id"`
	GameMode     GameMode   `json:"game_mode"`
	MainPosition Position   `json:"main_position"`
	SubPosition  Position   `json:"sub_position"`
	Mic          bool       `json:"mic"`
	Content      string     `json:"content"`
	CreatedAt    time.Time  `json:"created_at"`
	BumpedAt     *time.Time `json:"bumped_at,omitempty"`
	Deleted      bool       `json:"-"`
}

// ActivityTime is the feed ordering timestamp: the bump time when the post has
// been bumped, otherwise the creation time. The feed layer only ever reads it;
// bumps are the single mutation path.
func (p *Post) ActivityTime() time.Time {
	if p.BumpedAt != nil {
		return *p.BumpedAt
	}
	return p.CreatedAt
}

// AuthorProfile carries the display and ranking attributes of a post author.
// One per author, read-only from the feed's perspective.
type AuthorProfile struct {
	AuthorID     int64  `json:"author_id"`
	GameName     string `json:"game_name"`
	Tag          string `json:"tag"`
	ProfileImage int    `json:"profile_image"`
	MannerLevel  int    `json:"manner_level"`
	SoloTier     Tier   `json:"solo_tier"`
	FreeTier     Tier   `json:"free_tier"`
}

// PersonalityProfile maps an author to their personality type.
// At most one per author; upserts replace the previous type.
type PersonalityProfile struct {
	AuthorID  int64       `json:"author_id"`
	Type      compat.Type `json:"type"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// EventType enumerates trackable funnel events.
type EventType string

// Trackable events.
const (
	EventTestStarted     EventType = "test_started"
	EventTestCompleted   EventType = "test_completed"
	EventSignupCompleted EventType = "signup_completed"
	EventResultCardSaved EventType = "result_card_saved"
	EventResultCardShare EventType = "result_card_shared"
	EventReferralClicked EventType = "referral_clicked"
)

// Event is a tracked funnel event. AuthorID and PersonalityType are optional
// since pre-signup events carry only a session ID.
type Event struct {
	ID              int64        `json:"id"`
	AuthorID        *int64       `json:"author_id,omitempty"`
	EventType       EventType    `json:"event_type"`
	PersonalityType *compat.Type `json:"personality_type,omitempty"`
	SessionID       string       `json:"session_id"`
	Source          string       `json:"source"`
	CreatedAt       time.Time    `json:"created_at"`
}
