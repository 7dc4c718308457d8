// Package service provides the entity service facades consumed by the
// HTTP layer.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/burgasvv/parking-service/internal/cache"
)

// getOrLoad implements cache-aside for one full projection: on hit the
// cached snapshot is returned without touching the store; on miss the
// loader runs and its result backfills the cache with no expiry.
// Cache failures degrade to store reads and are logged, never fatal.
func getOrLoad[T any](
	ctx context.Context,
	c *cache.Cache,
	logger *slog.Logger,
	key string,
	load func(ctx context.Context) (*T, error),
) (*T, error) {
	data, err := c.Get(ctx, key)
	if err == nil {
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
		// Corrupt snapshot: drop it and fall through to the store.
		logger.Warn("dropping undecodable cache entry", "key", key)
		if err := c.Delete(ctx, key); err != nil {
			logger.Warn("cache delete failed", "key", key, "error", err)
		}
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Warn("cache read failed", "key", key, "error", err)
	}

	loaded, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(loaded); err == nil {
		if err := c.Set(ctx, key, data); err != nil {
			logger.Warn("cache backfill failed", "key", key, "error", err)
		}
	}

	return loaded, nil
}
