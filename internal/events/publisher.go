// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

package events

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	json "github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/davishong/rallyfeed/internal/config"
	"github.com/davishong/rallyfeed/internal/metrics"
)

// Bus publishes events to NATS JetStream, spooling to disk when the bus is
// unreachable or disabled. A nil *Bus is valid and drops all events, so
// callers never need to branch on whether eventing is configured.
type Bus struct {
	publisher message.Publisher
	spool     *Spool
	logger    zerolog.Logger
}

// NewBus builds a Bus from configuration. When NATS is disabled the returned
// Bus spools (if a spool path is set) or drops events.
func NewBus(cfg *config.Config, logger zerolog.Logger) (*Bus, error) {
	b := &Bus{logger: logger.With().Str("component", "event_bus").Logger()}

	if cfg.Events.SpoolPath != "" {
		spool, err := OpenSpool(cfg.Events.SpoolPath, logger)
		if err != nil {
			return nil, err
		}
		b.spool = spool
	}

	if cfg.NATS.Enabled {
		pub, err := newNATSPublisher(cfg.NATS.URL)
		if err != nil {
			// Spool-only operation until the bus comes back.
			b.logger.Warn().Err(err).Msg("NATS publisher unavailable, spooling events")
		} else {
			b.publisher = pub
		}
	}

	return b, nil
}

// newNATSPublisher creates a Watermill JetStream publisher with reconnect
// handling.
func newNATSPublisher(url string) (message.Publisher, error) {
	pub, err := wmNats.NewPublisher(
		wmNats.PublisherConfig{
			URL: url,
			NatsOptions: []natsgo.Option{
				natsgo.RetryOnFailedConnect(true),
				natsgo.MaxReconnects(-1),
				natsgo.ReconnectWait(2 * time.Second),
			},
			Marshaler: &wmNats.NATSMarshaler{},
			JetStream: wmNats.JetStreamConfig{
				Disabled:      false,
				AutoProvision: true,
				PublishOptions: []natsgo.PubOpt{
					natsgo.RetryAttempts(3),
					natsgo.RetryWait(100 * time.Millisecond),
				},
			},
		},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}
	return pub, nil
}

// PublishFunnel publishes a tracked funnel event.
func (b *Bus) PublishFunnel(ev FunnelEvent) {
	if b == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		b.logger.Error().Err(err).Msg("marshal funnel event")
		return
	}
	b.publish(TopicFunnel, payload, string(ev.EventType))
}

// PublishFeedUpdate publishes a feed mutation.
func (b *Bus) PublishFeedUpdate(update FeedUpdate) {
	if b == nil {
		return
	}
	payload, err := json.Marshal(update)
	if err != nil {
		b.logger.Error().Err(err).Msg("marshal feed update")
		return
	}
	b.publish(TopicFeed, payload, "feed_"+string(update.Kind))
}

// publish delivers a payload to the bus, draining any spooled backlog first
// so ordering is preserved across outages. While the backlog cannot be
// delivered, fresh payloads join it in the spool behind the older entries
// instead of overtaking them. On failure the payload is spooled.
func (b *Bus) publish(topic string, payload []byte, metricLabel string) {
	if b.publisher != nil {
		backlogged := false
		if b.spool != nil {
			if n, err := b.spool.Drain(b.publishRaw); err != nil {
				b.logger.Warn().Err(err).Int("drained", n).Msg("spool drain interrupted")
				backlogged = true
			} else if n > 0 {
				b.logger.Info().Int("drained", n).Msg("spooled events delivered")
			}
		}

		if !backlogged {
			err := b.publishRaw(topic, payload)
			if err == nil {
				metrics.EventsPublished.WithLabelValues(metricLabel).Inc()
				return
			}
			b.logger.Warn().Err(err).Str("topic", topic).Msg("publish failed")
		}
	}

	if b.spool == nil {
		b.logger.Debug().Str("topic", topic).Msg("event dropped, no bus and no spool")
		return
	}
	if err := b.spool.Append(topic, payload); err != nil {
		b.logger.Error().Err(err).Str("topic", topic).Msg("spool append failed, event lost")
	}
}

func (b *Bus) publishRaw(topic string, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return b.publisher.Publish(topic, msg)
}

// Close flushes and closes the publisher and spool.
func (b *Bus) Close() error {
	if b == nil {
		return nil
	}
	var firstErr error
	if b.publisher != nil {
		if err := b.publisher.Close(); err != nil {
			firstErr = err
		}
	}
	if b.spool != nil {
		if err := b.spool.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
