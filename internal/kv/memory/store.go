// Package memory implements kv.Store in-process. It backs single-instance
// deployments and serves as the degradation target when the shared store is
// unreachable.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/civiclens/civicsearch/internal/kv"
)

// Compile-time check: Store implements kv.Store.
var _ kv.Store = (*Store)(nil)

type entry struct {
	value     []byte
	counter   int64
	isCounter bool
	// expiresAt is zero for entries without a TTL.
	expiresAt time.Time
}

func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Store is a process-local kv.Store with TTL support. Safe for concurrent
// use; contention is a single map mutex, acceptable at in-process scale.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	stop    chan struct{}
	stopped sync.Once

	// now is swappable in tests.
	now func() time.Time
}

// NewStore creates an in-memory store and starts its expiry janitor.
func NewStore() *Store {
	s := &Store{
		entries: make(map[string]*entry),
		stop:    make(chan struct{}),
		now:     time.Now,
	}
	go s.janitor()
	return s
}

// janitor drops expired entries so unqueried keys do not accumulate.
func (s *Store) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			now := s.now()
			s.mu.Lock()
			for k, e := range s.entries {
				if e.expired(now) {
					delete(s.entries, k)
				}
			}
			s.mu.Unlock()
		}
	}
}

// Ping always succeeds for the in-process store.
func (s *Store) Ping(context.Context) error { return nil }

// Close stops the janitor.
func (s *Store) Close() {
	s.stopped.Do(func() { close(s.stop) })
}

// WaitForReady is immediate for the in-process store.
func (s *Store) WaitForReady(context.Context, time.Duration) error { return nil }

// Get retrieves a value by key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.live(key)
	if e == nil || e.isCounter {
		return nil, kv.ErrKeyNotFound
	}
	// Copy so readers cannot mutate the stored value in place.
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// SetWithTTL stores a value with an expiration.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	e := &entry{value: stored}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = e
	return nil
}

// IncrBy atomically increments a key and returns the new value.
func (s *Store) IncrBy(_ context.Context, key string, val int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.live(key)
	if e == nil {
		e = &entry{isCounter: true}
		s.entries[key] = e
	}
	e.counter += val
	return e.counter, nil
}

// Expire sets TTL on a key. When nx=true the TTL applies only if the key has
// no expiry yet.
func (s *Store) Expire(_ context.Context, key string, ttl time.Duration, nx bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.live(key)
	if e == nil {
		return nil
	}
	if nx && !e.expiresAt.IsZero() {
		return nil
	}
	e.expiresAt = s.now().Add(ttl)
	return nil
}

// TTL returns the remaining lifetime of key, 0 when absent or persistent.
func (s *Store) TTL(_ context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.live(key)
	if e == nil || e.expiresAt.IsZero() {
		return 0, nil
	}
	return e.expiresAt.Sub(s.now()), nil
}

// live returns the entry for key, dropping it first if expired.
// Callers must hold s.mu.
func (s *Store) live(key string) *entry {
	e, ok := s.entries[key]
	if !ok {
		return nil
	}
	if e.expired(s.now()) {
		delete(s.entries, key)
		return nil
	}
	return e
}
