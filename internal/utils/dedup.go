package utils

import (
	"sync"
	"time"
)

// RecentActions suppresses repeated (target, kind) observations inside a
// fixed window. Entries older than twice the window are evicted lazily on
// insert so the map stays bounded.
type RecentActions struct {
	mu     sync.Mutex
	window time.Duration
	clock  func() time.Time
	seen   map[string]time.Time
}

func NewRecentActions(window time.Duration) *RecentActions {
	return &RecentActions{
		window: window,
		clock:  time.Now,
		seen:   make(map[string]time.Time),
	}
}

func (r *RecentActions) WithClock(clock func() time.Time) {
	r.clock = clock
}

// Observe reports whether the (target, kind) pair is fresh and stamps it.
// A pair already stamped within the window returns false.
func (r *RecentActions) Observe(targetID, kind string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock()
	key := targetID + "|" + kind
	if last, ok := r.seen[key]; ok && now.Sub(last) < r.window {
		return false
	}
	r.evictLocked(now)
	r.seen[key] = now
	return true
}

// Stamp marks the pair without checking freshness.
func (r *RecentActions) Stamp(targetID, kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock()
	r.evictLocked(now)
	r.seen[targetID+"|"+kind] = now
}

func (r *RecentActions) evictLocked(now time.Time) {
	cutoff := now.Add(-2 * r.window)
	for key, stamped := range r.seen {
		if stamped.Before(cutoff) {
			delete(r.seen, key)
		}
	}
}
