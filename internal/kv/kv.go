// Package kv defines the key-value store contract shared by the cache layer
// and the rate limiter, with interchangeable shared (Redis) and
// process-local backends.
package kv

import (
	"context"
	"time"
)

// Store is the full backend facade. Consumers depend on the narrow
// sub-interfaces they actually use.
type Store interface {
	Pinger
	KV
	Counter
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KV provides plain byte-value operations with expiry.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Counter provides the atomic increment-with-expiry primitive backing the
// rate limiter.
type Counter interface {
	// IncrBy atomically increments key by val and returns the new value.
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	// Expire sets a TTL on key. With nx=true the TTL is set only when the
	// key has no expiry yet, so a window is anchored to its first increment.
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
	// TTL returns the remaining lifetime of key, or 0 when the key has none.
	TTL(ctx context.Context, key string) (time.Duration, error)
}
