package ratelimit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/civiclens/civicsearch/internal/kv"
	"github.com/civiclens/civicsearch/internal/kv/memory"
)

func newSharedLimiter(t *testing.T) *Limiter {
	t.Helper()
	s := memory.NewStore()
	t.Cleanup(s.Close)
	return New(s, nil, zap.NewNop())
}

func TestAllow_DeniesBeyondLimit(t *testing.T) {
	l := newSharedLimiter(t)
	ctx := context.Background()

	const limit = 5
	for i := 1; i <= limit; i++ {
		d := l.Allow(ctx, "1.2.3.4", limit, time.Minute)
		if !d.Allowed {
			t.Fatalf("call %d denied, want allowed", i)
		}
		if want := limit - i; d.Remaining != want {
			t.Errorf("call %d remaining = %d, want %d", i, d.Remaining, want)
		}
	}

	d := l.Allow(ctx, "1.2.3.4", limit, time.Minute)
	if d.Allowed {
		t.Error("call limit+1 allowed, want denied")
	}
	if d.Remaining != 0 {
		t.Errorf("denied remaining = %d, want 0", d.Remaining)
	}
	if d.ResetAt.IsZero() {
		t.Error("denied decision must carry a reset time")
	}
}

func TestAllow_IdentitiesIndependent(t *testing.T) {
	l := newSharedLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		l.Allow(ctx, "a", 3, time.Minute)
	}
	if d := l.Allow(ctx, "a", 3, time.Minute); d.Allowed {
		t.Error("identity a should be exhausted")
	}
	if d := l.Allow(ctx, "b", 3, time.Minute); !d.Allowed {
		t.Error("identity b must not be affected by a")
	}
}

func TestAllow_ConcurrentNoLostUpdates(t *testing.T) {
	l := newSharedLimiter(t)
	ctx := context.Background()

	const limit = 20
	const callers = 50

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d := l.Allow(ctx, "shared", limit, time.Minute); d.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := allowed.Load(); got != limit {
		t.Errorf("allowed %d of %d concurrent calls, want exactly %d", got, callers, limit)
	}
}

// failingCounter simulates an unreachable shared store.
type failingCounter struct{}

func (failingCounter) IncrBy(context.Context, string, int64) (int64, error) {
	return 0, &kv.Error{Op: kv.OpIncrBy, Err: errors.New("connection refused")}
}

func (failingCounter) Expire(context.Context, string, time.Duration, bool) error {
	return &kv.Error{Op: kv.OpExpire, Err: errors.New("connection refused")}
}

func (failingCounter) TTL(context.Context, string) (time.Duration, error) {
	return 0, &kv.Error{Op: kv.OpTTL, Err: errors.New("connection refused")}
}

func TestAllow_FallsBackWhenSharedUnavailable(t *testing.T) {
	l := New(failingCounter{}, nil, zap.NewNop())
	ctx := context.Background()

	const limit = 2
	for i := 1; i <= limit; i++ {
		if d := l.Allow(ctx, "x", limit, time.Minute); !d.Allowed {
			t.Fatalf("fallback call %d denied", i)
		}
	}
	if d := l.Allow(ctx, "x", limit, time.Minute); d.Allowed {
		t.Error("fallback must still enforce the limit")
	}
}

func TestLocalWindow_Resets(t *testing.T) {
	l := New(nil, nil, zap.NewNop())
	now := time.Now()
	l.now = func() time.Time { return now }

	ctx := context.Background()
	l.Allow(ctx, "x", 1, time.Minute)
	if d := l.Allow(ctx, "x", 1, time.Minute); d.Allowed {
		t.Fatal("second call within window must be denied")
	}

	now = now.Add(61 * time.Second)
	if d := l.Allow(ctx, "x", 1, time.Minute); !d.Allowed {
		t.Error("call after window expiry must be allowed")
	}
}
