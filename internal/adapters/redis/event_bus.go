package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/initcareer/init-web/internal/domain/model"
	"github.com/initcareer/init-web/internal/ports"
)

var _ ports.StorageEvents = (*EventBus)(nil)

// EventBus publishes storage-change events on one Redis channel per device,
// so every server instance can fan them out to its connected tabs.
type EventBus struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

// NewEventBus creates an EventBus. prefix namespaces the channels.
func NewEventBus(client redis.UniversalClient, prefix string, logger *slog.Logger) *EventBus {
	if prefix == "" {
		prefix = "initweb:storage:"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EventBus{client: client, prefix: prefix, logger: logger.With("component", "storage_events")}
}

func (b *EventBus) channel(device string) string { return b.prefix + device }

func (b *EventBus) Publish(ctx context.Context, ev model.StorageEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal storage event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel(ev.Device), data).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Subscribe relays events for device until ctx is done or cancel is called.
// The returned channel is closed when the subscription ends.
func (b *EventBus) Subscribe(ctx context.Context, device string) (<-chan model.StorageEvent, func(), error) {
	sub := b.client.Subscribe(ctx, b.channel(device))
	// Wait for the subscription confirmation so no event published after return is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("redis subscribe: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan model.StorageEvent, 16)
	msgs := sub.Channel()

	go func() {
		defer close(out)
		defer func() {
			if err := sub.Close(); err != nil {
				b.logger.Debug("close subscription failed", "error", err)
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev model.StorageEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					b.logger.Warn("drop malformed storage event", "error", err)
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, cancel, nil
}
