package ratelimit

import (
	"sync"
	"time"
)

type window struct {
	start time.Time
	count int
}

// localWindows is the in-process fixed-window fallback. Contention is scoped
// to the map mutex; windows for idle identities are reaped lazily on access.
type localWindows struct {
	mu      sync.Mutex
	windows map[string]*window
}

func newLocalWindows() *localWindows {
	return &localWindows{windows: make(map[string]*window)}
}

func (l *localWindows) allow(identity string, limit int, size time.Duration, now time.Time) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[identity]
	if !ok || now.Sub(w.start) >= size {
		w = &window{start: now}
		l.windows[identity] = w
	}
	w.count++

	remaining := limit - w.count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   w.count <= limit,
		Remaining: remaining,
		ResetAt:   w.start.Add(size),
	}
}
