package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Broker delivers an event to the hubs that should see it.
type Broker interface {
	Publish(ctx context.Context, event Event) error
}

// LocalBroker delivers events to a single process.
type LocalBroker struct {
	hub *Hub
}

// NewLocalBroker creates a broker writing straight into hub.
func NewLocalBroker(hub *Hub) *LocalBroker {
	return &LocalBroker{hub: hub}
}

// Publish broadcasts the event on the local hub.
func (b *LocalBroker) Publish(_ context.Context, event Event) error {
	b.hub.Broadcast(event)
	return nil
}

// RedisBroker relays events between instances through a Redis channel.
// Events published here reach the local hub only through Run.
type RedisBroker struct {
	client  *redis.Client
	channel string
	hub     *Hub
	logger  *zap.SugaredLogger
}

// NewRedisBroker creates a broker bound to channel.
func NewRedisBroker(client *redis.Client, channel string, hub *Hub, logger *zap.SugaredLogger) *RedisBroker {
	return &RedisBroker{client: client, channel: channel, hub: hub, logger: logger}
}

// Publish sends the event to the channel as JSON.
func (b *RedisBroker) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.Name, err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("publish event %s: %w", event.Name, err)
	}
	return nil
}

// Run subscribes to the channel and relays every message into the hub until
// ctx is done. It returns an error only when the subscription cannot be set up.
func (b *RedisBroker) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer func() {
		if err := sub.Close(); err != nil {
			b.logger.Warnw("failed to close redis subscription", "error", err)
		}
	}()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", b.channel, err)
	}
	b.logger.Infow("relaying team events from redis", "channel", b.channel)

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warnw("skipping malformed event", "channel", msg.Channel, "error", err)
				continue
			}
			b.hub.Broadcast(event)
		}
	}
}
