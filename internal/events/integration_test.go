// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

//go:build integration

package events

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/davishong/rallyfeed/internal/config"
	"github.com/davishong/rallyfeed/internal/models"
	"github.com/davishong/rallyfeed/internal/testinfra"
)

// TestFunnelRoundTripOverNATS publishes a funnel event through the Bus and
// verifies a Subscriber delivers it, against a real JetStream broker.
func TestFunnelRoundTripOverNATS(t *testing.T) {
	testinfra.SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker, err := testinfra.NewNATSContainer(ctx)
	if err != nil {
		t.Fatalf("start NATS container: %v", err)
	}
	defer broker.Terminate(context.Background())

	cfg := &config.Config{}
	cfg.NATS.Enabled = true
	cfg.NATS.URL = broker.URL

	bus, err := NewBus(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	defer bus.Close()

	received := make(chan FunnelEvent, 1)
	sub := NewSubscriber(broker.URL, func(_ context.Context, ev FunnelEvent) error {
		select {
		case received <- ev:
		default:
		}
		return nil
	}, zerolog.Nop())

	subCtx, subCancel := context.WithCancel(ctx)
	defer subCancel()
	go func() { _ = sub.Serve(subCtx) }()

	// Give the durable consumer a moment to come up.
	time.Sleep(2 * time.Second)

	authorID := int64(7)
	bus.PublishFunnel(FunnelEvent{
		EventType: models.EventSignupCompleted,
		AuthorID:  &authorID,
		SessionID: "sess-integration",
		Source:    "web",
	})

	select {
	case ev := <-received:
		if ev.EventType != models.EventSignupCompleted {
			t.Errorf("event type = %q, want %q", ev.EventType, models.EventSignupCompleted)
		}
		if ev.AuthorID == nil || *ev.AuthorID != authorID {
			t.Errorf("author ID = %v, want %d", ev.AuthorID, authorID)
		}
		if ev.SessionID != "sess-integration" {
			t.Errorf("session ID = %q, want sess-integration", ev.SessionID)
		}
	case <-time.After(30 * time.Second):
		t.Fatal("funnel event never delivered")
	}
}
