// Package cache provides the TTL cache layer shared by the orchestrator and
// the source adapters: single-flight computation per key, a shared Redis
// backend, and transparent degradation to a process-local store when the
// shared backend is unreachable.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/civiclens/civicsearch/internal/kv"
)

// KeyPrefix namespaces every cache key written by this service.
const KeyPrefix = "civicsearch:"

// Default TTLs. Staleness is bounded solely by TTL; there is no
// write-through invalidation.
const (
	SourceTTL    = time.Hour
	CompositeTTL = time.Hour
)

// store is the consumer interface for cache operations (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache is a TTL byte cache with a single-flight guarantee: at most one
// concurrent compute runs per key within the process.
type Cache struct {
	primary store // shared backend, nil when running without one
	local   store // process-local degradation target, never nil
	group   singleflight.Group

	fallbackTotal prometheus.Counter
	logger        *zap.Logger
}

// New creates a cache layer. primary may be nil for single-process
// deployments; local must not be. fallbackTotal (optional) counts operations
// served locally after a shared-store failure.
func New(primary, local store, fallbackTotal prometheus.Counter, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		primary:       primary,
		local:         local,
		fallbackTotal: fallbackTotal,
		logger:        logger,
	}
}

// Get returns the cached value for key, reporting whether it was present.
// Backend failures degrade to the local store and are never surfaced.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c.primary != nil {
		data, err := c.primary.Get(ctx, key)
		switch {
		case err == nil:
			return data, true
		case errors.Is(err, kv.ErrKeyNotFound):
			return nil, false
		default:
			c.degraded("get", key, err)
		}
	}

	data, err := c.local.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores value under key for ttl. Backend failures degrade to the local
// store; the caller never sees them.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if c.primary != nil {
		err := c.primary.SetWithTTL(ctx, key, value, ttl)
		if err == nil {
			return
		}
		c.degraded("set", key, err)
	}
	if err := c.local.SetWithTTL(ctx, key, value, ttl); err != nil {
		c.logger.Warn("local cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// GetOrCompute returns the cached value for key or runs compute to produce
// it, storing the result for ttl. The second return reports whether the
// value came from the cache. Concurrent callers for the same key share one
// compute invocation.
func (c *Cache) GetOrCompute(
	ctx context.Context, key string, ttl time.Duration,
	compute func(ctx context.Context) ([]byte, error),
) ([]byte, bool, error) {
	type flight struct {
		data []byte
		hit  bool
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if data, ok := c.Get(ctx, key); ok {
			return flight{data: data, hit: true}, nil
		}
		data, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(ctx, key, data, ttl)
		return flight{data: data}, nil
	})
	if err != nil {
		return nil, false, err
	}

	f := v.(flight)
	return f.data, f.hit, nil
}

// degraded records one shared-store failure and the switch to local serving.
func (c *Cache) degraded(op, key string, err error) {
	if c.fallbackTotal != nil {
		c.fallbackTotal.Inc()
	}
	c.logger.Warn("shared cache unavailable, serving locally",
		zap.String("op", op),
		zap.String("key", key),
		zap.Error(err),
	)
}
