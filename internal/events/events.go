// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

// Package events publishes funnel and feed events to NATS JetStream via
// Watermill. While the bus is unavailable (or disabled) events are spooled to
// a local BadgerDB directory and drained on the next successful publish path.
package events

import (
	"time"

	"github.com/davishong/rallyfeed/internal/compat"
	"github.com/davishong/rallyfeed/internal/models"
)

// Topics.
const (
	// TopicFunnel carries tracked funnel events (signup, test progress).
	TopicFunnel = "rallyfeed.events.funnel"

	// TopicFeed carries feed mutations (created, bumped) for live clients.
	TopicFeed = "rallyfeed.feed.updates"
)

// FunnelEvent is the wire form of one tracked event.
type FunnelEvent struct {
	EventID         int64            `json:"event_id"`
	AuthorID        *int64           `json:"author_id,omitempty"`
	EventType       models.EventType `json:"event_type"`
	PersonalityType *compat.Type     `json:"personality_type,omitempty"`
	SessionID       string           `json:"session_id"`
	Source          string           `json:"source"`
	OccurredAt      time.Time        `json:"occurred_at"`
}

// FeedUpdateKind enumerates feed mutations.
type FeedUpdateKind string

// Feed update kinds.
const (
	FeedUpdateCreated FeedUpdateKind = "created"
	FeedUpdateBumped  FeedUpdateKind = "bumped"
	FeedUpdateDeleted FeedUpdateKind = "deleted"
)

// FeedUpdate is the wire form of one feed mutation.
type FeedUpdate struct {
	Kind FeedUpdateKind `json:"kind"`
	Post models.Post    `json:"post"`
}
