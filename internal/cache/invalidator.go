package cache

import (
	"context"
	"log/slog"
)

// Invalidator applies invalidation closures after store mutations commit.
// Failures are logged, never propagated: a missed delete leaves a bounded,
// self-healing staleness window, which the cache-aside policy accepts.
type Invalidator struct {
	cache  *Cache
	logger *slog.Logger
}

// NewInvalidator creates a new Invalidator.
func NewInvalidator(cache *Cache, logger *slog.Logger) *Invalidator {
	return &Invalidator{
		cache:  cache,
		logger: logger.With("component", "cache.invalidator"),
	}
}

// Apply deletes the given keys. Absent keys are no-ops.
// Must be called only after the relational transaction has committed;
// a rolled-back mutation must never reach this point.
func (v *Invalidator) Apply(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := v.cache.Delete(ctx, keys...); err != nil {
		v.logger.Warn("cache invalidation failed",
			"keys", keys,
			"error", err,
		)
		return
	}
	v.logger.Debug("cache keys invalidated", "keys", keys)
}
