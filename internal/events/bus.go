// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package events

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"

	"github.com/parleyhq/parley/internal/metrics"
)

// Config holds bus settings.
type Config struct {
	// BufferSize is the per-subscriber channel buffer. A full buffer
	// blocks the publisher, so turn latency depends on consumers
	// keeping up within this allowance.
	BufferSize int
}

// DefaultBufferSize is used when Config.BufferSize is zero.
const DefaultBufferSize = 256

// Bus is the in-process turn event bus. Publishing and subscribing are
// safe for concurrent use; subscribers each get their own buffered
// channel and must ack messages.
type Bus struct {
	pubsub *gochannel.GoChannel

	mu     sync.RWMutex
	closed bool
}

// NewBus creates the bus. It never fails; the in-process transport has
// nothing to connect to.
func NewBus(cfg Config, logger zerolog.Logger) *Bus {
	buf := cfg.BufferSize
	if buf <= 0 {
		buf = DefaultBufferSize
	}

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: int64(buf),
	}, newLoggerAdapter(logger))

	return &Bus{pubsub: pubsub}
}

// PublishTurn serializes and publishes a turn event. The event ID
// doubles as the message UUID so consumers can deduplicate replays.
func (b *Bus) PublishTurn(event *TurnEvent) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return fmt.Errorf("event bus is closed")
	}
	b.mu.RUnlock()

	data, err := SerializeEvent(event)
	if err != nil {
		return fmt.Errorf("serialize event: %w", err)
	}

	msg := message.NewMessage(event.EventID, data)
	msg.Metadata.Set("fighter_id", strconv.Itoa(event.FighterID))
	msg.Metadata.Set("action", event.Action)

	if err := b.pubsub.Publish(event.Topic(), msg); err != nil {
		return fmt.Errorf("publish event %s: %w", event.EventID, err)
	}

	metrics.RecordEventPublished(event.Topic())
	return nil
}

// Subscribe returns a channel of messages for the topic. The channel
// closes when ctx is cancelled or the bus shuts down.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, fmt.Errorf("event bus is closed")
	}
	return b.pubsub.Subscribe(ctx, topic)
}

// Close shuts the bus down. Pending subscriber channels are closed.
// Close is idempotent.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	return b.pubsub.Close()
}
