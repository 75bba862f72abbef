package pipeserver

import (
	"sync"
	"time"
)

// RateLimiter allows at most maxEvents per sliding window for each key.
type RateLimiter struct {
	maxEvents int
	window    time.Duration
	mu        sync.Mutex
	events    map[string][]time.Time
}

func NewRateLimiter(maxEvents int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		maxEvents: maxEvents,
		window:    window,
		events:    make(map[string][]time.Time),
	}
}

// Allow reports whether key may send another event and records it if so.
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-r.window)

	existing := r.events[key]
	pruned := existing[:0]
	for _, t := range existing {
		if t.After(cutoff) {
			pruned = append(pruned, t)
		}
	}

	if len(pruned) >= r.maxEvents {
		r.events[key] = pruned
		return false
	}

	r.events[key] = append(pruned, now)
	return true
}

// Forget drops the history kept for key.
func (r *RateLimiter) Forget(key string) {
	r.mu.Lock()
	delete(r.events, key)
	r.mu.Unlock()
}
