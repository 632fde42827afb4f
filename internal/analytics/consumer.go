// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package analytics

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/parleyhq/parley/internal/events"
	"github.com/parleyhq/parley/internal/metrics"
)

// TurnStore persists consumed turn events. *Store implements it; tests
// substitute stubs.
type TurnStore interface {
	InsertTurn(ctx context.Context, event *events.TurnEvent) error
}

// MessageSource provides the subscription side of the event bus.
type MessageSource interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

// Consumer drains turn events from the bus into the store. It runs as
// a supervised service; Serve blocks until the context is cancelled or
// the event stream closes.
type Consumer struct {
	source MessageSource
	store  TurnStore
	logger zerolog.Logger
}

// NewConsumer wires a consumer to its event source and store.
func NewConsumer(source MessageSource, store TurnStore, logger zerolog.Logger) *Consumer {
	return &Consumer{
		source: source,
		store:  store,
		logger: logger.With().Str("component", "analytics-consumer").Logger(),
	}
}

// Serve implements suture.Service.
func (c *Consumer) Serve(ctx context.Context) error {
	msgs, err := c.source.Subscribe(ctx, events.TopicTurns)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", events.TopicTurns, err)
	}

	c.logger.Info().Str("topic", events.TopicTurns).Msg("Consuming turn events")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("turn event stream closed")
			}
			c.handle(ctx, msg)
		}
	}
}

// handle processes one delivery. Malformed payloads are acked and
// dropped since redelivery cannot fix them; insert failures are nacked
// for redelivery.
func (c *Consumer) handle(ctx context.Context, msg *message.Message) {
	event, err := events.DeserializeEvent(msg.Payload)
	if err != nil {
		c.logger.Error().Err(err).Str("message_id", msg.UUID).Msg("Dropping undecodable turn event")
		metrics.RecordEventConsumed(events.TopicTurns, err)
		msg.Ack()
		return
	}

	if err := c.store.InsertTurn(ctx, event); err != nil {
		c.logger.Error().Err(err).Str("event_id", event.EventID).Msg("Failed to store turn event")
		metrics.RecordEventConsumed(events.TopicTurns, err)
		msg.Nack()
		return
	}

	metrics.RecordEventConsumed(events.TopicTurns, nil)
	msg.Ack()
}

// String names the service in supervisor logs.
func (c *Consumer) String() string {
	return "analytics-consumer"
}
