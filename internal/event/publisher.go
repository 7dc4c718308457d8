// Package event publishes created-entity events to Redis streams.
// Delivery is fire-and-forget: the core never depends on it for correctness.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Entity kinds tagged onto published events.
const (
	KindIdentity = "identity"
	KindCar      = "car"
	KindParking  = "parking"
)

const (
	// MaxStreamLen is the approximate max length of each stream.
	MaxStreamLen = 100000

	// PublishTimeout is the max time to wait for a Redis publish.
	PublishTimeout = 100 * time.Millisecond
)

// StreamKey returns the stream name for an entity kind.
func StreamKey(kind string) string {
	return "stream:" + kind + "_created"
}

// Publisher enqueues created-entity events to Redis streams.
type Publisher struct {
	redis  *redis.Client
	logger *slog.Logger
}

// NewPublisher creates a new event publisher.
func NewPublisher(client *redis.Client, logger *slog.Logger) *Publisher {
	return &Publisher{
		redis:  client,
		logger: logger.With("component", "event.publisher"),
	}
}

// Publish adds a created-entity event to the kind's stream synchronously.
// The payload is the entity's full projection.
func (p *Publisher) Publish(ctx context.Context, kind string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	result, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey(kind),
		MaxLen: MaxStreamLen,
		Approx: true, // ~MAXLEN for performance
		ID:     "*",  // Auto-generate ID
		Values: map[string]interface{}{
			"kind":    kind,
			"payload": string(data),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	return result, nil
}

// PublishCreatedAsync publishes without blocking the caller.
// Errors are logged but not returned (fire-and-forget).
func (p *Publisher) PublishCreatedAsync(kind string, payload any) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()

		streamID, err := p.Publish(ctx, kind, payload)
		if err != nil {
			p.logger.Warn("failed to publish created event",
				"kind", kind,
				"error", err,
			)
			return
		}

		p.logger.Debug("created event published",
			"kind", kind,
			"stream_id", streamID,
		)
	}()
}
