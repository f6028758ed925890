package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisPublisher forwards committed domain events to a Redis channel as JSON
// for downstream consumers. Publish failures are logged, never propagated;
// the commit already happened.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisPublisher creates a publisher for the given channel.
func NewRedisPublisher(client *redis.Client, channel string, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel, logger: logger}
}

// Register subscribes the publisher to every event type on the dispatcher.
func (p *RedisPublisher) Register(dispatcher Dispatcher) {
	if p == nil || dispatcher == nil {
		return
	}
	for _, eventType := range []EventType{EventCaseCreated, EventCaseStateChanged, EventFileAttached} {
		dispatcher.Subscribe(eventType, p.handle)
	}
}

func (p *RedisPublisher) handle(ctx context.Context, event Event) error {
	if p.client == nil {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("marshal event", zap.Error(err), zap.String("event_id", event.ID))
		return nil
	}
	if err := p.client.Publish(ctx, p.channel, body).Err(); err != nil {
		p.logger.Warn("publish event to redis",
			zap.Error(err),
			zap.String("channel", p.channel),
			zap.String("event_id", event.ID))
	}
	return nil
}
