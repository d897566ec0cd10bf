// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	json "github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// FunnelHandler processes one delivered funnel event. Returning an error
// leaves the message unacked for redelivery.
type FunnelHandler func(ctx context.Context, ev FunnelEvent) error

// Subscriber consumes funnel events from NATS and dispatches them to a
// handler. It implements suture.Service, so the supervisor restarts it when
// the subscription drops.
type Subscriber struct {
	url     string
	handler FunnelHandler
	logger  zerolog.Logger
}

// NewSubscriber creates a funnel event subscriber.
func NewSubscriber(url string, handler FunnelHandler, logger zerolog.Logger) *Subscriber {
	return &Subscriber{
		url:     url,
		handler: handler,
		logger:  logger.With().Str("component", "event_subscriber").Logger(),
	}
}

// Serve runs the subscription loop until ctx is cancelled.
func (s *Subscriber) Serve(ctx context.Context) error {
	sub, err := wmNats.NewSubscriber(
		wmNats.SubscriberConfig{
			URL:              s.url,
			QueueGroupPrefix: "rallyfeed",
			SubscribersCount: 1,
			AckWaitTimeout:   30 * time.Second,
			CloseTimeout:     10 * time.Second,
			NatsOptions: []natsgo.Option{
				natsgo.RetryOnFailedConnect(true),
				natsgo.MaxReconnects(-1),
				natsgo.ReconnectWait(2 * time.Second),
			},
			Unmarshaler: &wmNats.NATSMarshaler{},
			JetStream: wmNats.JetStreamConfig{
				AutoProvision: true,
				AckAsync:      false,
				DurablePrefix: "rallyfeed-funnel",
				SubscribeOptions: []natsgo.SubOpt{
					natsgo.MaxDeliver(5),
					natsgo.AckWait(30 * time.Second),
				},
			},
		},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		return fmt.Errorf("create NATS subscriber: %w", err)
	}
	defer sub.Close()

	messages, err := sub.Subscribe(ctx, TopicFunnel)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicFunnel, err)
	}

	s.logger.Info().Str("topic", TopicFunnel).Msg("funnel subscriber running")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return fmt.Errorf("subscription channel closed")
			}

			var ev FunnelEvent
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				// Poison message, ack so it does not loop forever.
				s.logger.Error().Err(err).Str("message_id", msg.UUID).Msg("unparseable funnel event")
				msg.Ack()
				continue
			}

			if err := s.handler(msg.Context(), ev); err != nil {
				s.logger.Warn().Err(err).
					Str("event_type", string(ev.EventType)).
					Msg("funnel handler failed, nacking")
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}
}

func (s *Subscriber) String() string { return "event-subscriber" }
