package search

import (
	"context"
	"time"
)

// Cache is the consumer interface for the cache layer (ISP).
type Cache interface {
	GetOrCompute(
		ctx context.Context, key string, ttl time.Duration,
		compute func(ctx context.Context) ([]byte, error),
	) ([]byte, bool, error)
}
