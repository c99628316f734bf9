// Package ratelimit gates inbound requests per caller identity with a
// fixed-window counter on the shared kv store, degrading to a process-local
// window when the shared store is unreachable.
package ratelimit

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// keyPrefix namespaces limiter keys in the shared store.
const keyPrefix = "civicsearch:rl:"

// counter is the consumer interface for limiter operations (ISP).
type counter interface {
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter implements fixed-window rate limiting. The window is anchored to
// its first increment via EXPIRE NX, so concurrent callers cannot extend it.
type Limiter struct {
	shared counter // nil when running without a shared store
	local  *localWindows
	denied prometheus.Counter
	logger *zap.Logger
	now    func() time.Time
}

// New creates a limiter. shared may be nil; denied (optional) counts
// rejected requests.
func New(shared counter, denied prometheus.Counter, logger *zap.Logger) *Limiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Limiter{
		shared: shared,
		local:  newLocalWindows(),
		denied: denied,
		logger: logger,
		now:    time.Now,
	}
}

// Allow records one request for identity and reports whether it fits within
// limit per window. A shared-store failure degrades to the process-local
// window (weaker under multi-process deployment, but available); Allow
// itself never fails.
func (l *Limiter) Allow(ctx context.Context, identity string, limit int, window time.Duration) Decision {
	d, err := l.allowShared(ctx, identity, limit, window)
	if err != nil {
		l.logger.Warn("shared rate-limit store unavailable, using local window",
			zap.String("identity", identity),
			zap.Error(err),
		)
		d = l.local.allow(identity, limit, window, l.now())
	}
	if !d.Allowed && l.denied != nil {
		l.denied.Inc()
	}
	return d
}

func (l *Limiter) allowShared(ctx context.Context, identity string, limit int, window time.Duration) (Decision, error) {
	if l.shared == nil {
		return l.local.allow(identity, limit, window, l.now()), nil
	}

	key := keyPrefix + identity
	n, err := l.shared.IncrBy(ctx, key, 1)
	if err != nil {
		return Decision{}, err
	}
	// Anchor the window to the first increment only.
	if err := l.shared.Expire(ctx, key, window, true); err != nil {
		return Decision{}, err
	}

	resetAt := l.now().Add(window)
	if ttl, err := l.shared.TTL(ctx, key); err == nil && ttl > 0 {
		resetAt = l.now().Add(ttl)
	}

	remaining := limit - int(n)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   n <= int64(limit),
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}
