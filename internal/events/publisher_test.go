// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

package events

import (
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
)

// fakePublisher records payloads in delivery order and can simulate an outage.
type fakePublisher struct {
	failing   bool
	published []string
}

func (p *fakePublisher) Publish(topic string, msgs ...*message.Message) error {
	if p.failing {
		return errors.New("bus down")
	}
	for _, m := range msgs {
		p.published = append(p.published, string(m.Payload))
	}
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func TestPublishSpoolsWhenBusDown(t *testing.T) {
	spool := openTestSpool(t, t.TempDir())
	pub := &fakePublisher{failing: true}
	bus := &Bus{publisher: pub, spool: spool, logger: zerolog.Nop()}

	bus.publish(TopicFunnel, []byte("first"), "test")

	n, err := spool.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 1 {
		t.Fatalf("spool Len = %d, want 1", n)
	}
	if len(pub.published) != 0 {
		t.Errorf("published %v during outage, want none", pub.published)
	}
}

// A fresh event must queue behind an undeliverable backlog, never overtake it.
func TestPublishPreservesOrderAcrossOutage(t *testing.T) {
	spool := openTestSpool(t, t.TempDir())
	pub := &fakePublisher{failing: true}
	bus := &Bus{publisher: pub, spool: spool, logger: zerolog.Nop()}

	bus.publish(TopicFunnel, []byte("first"), "test")
	bus.publish(TopicFunnel, []byte("second"), "test")

	n, err := spool.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 2 {
		t.Fatalf("spool Len = %d, want 2", n)
	}
	if len(pub.published) != 0 {
		t.Fatalf("published %v during outage, want none", pub.published)
	}

	// Bus recovers; the next publish drains the backlog first.
	pub.failing = false
	bus.publish(TopicFunnel, []byte("third"), "test")

	want := []string{"first", "second", "third"}
	if len(pub.published) != len(want) {
		t.Fatalf("published %d payloads, want %d", len(pub.published), len(want))
	}
	for i := range want {
		if pub.published[i] != want[i] {
			t.Errorf("delivery[%d] = %q, want %q", i, pub.published[i], want[i])
		}
	}

	n, err = spool.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 0 {
		t.Errorf("spool Len after recovery = %d, want 0", n)
	}
}

func TestNilBusDropsEvents(t *testing.T) {
	var bus *Bus
	bus.PublishFunnel(FunnelEvent{SessionID: "s"})
	bus.PublishFeedUpdate(FeedUpdate{Kind: FeedUpdateCreated})
	if err := bus.Close(); err != nil {
		t.Errorf("Close on nil bus = %v, want nil", err)
	}
}
