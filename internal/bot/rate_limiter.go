package bot

import (
	"sync"
	"time"
)

const (
	defaultRateLimitMaxCommands = 5
	defaultRateLimitWindow      = 60 * time.Second
)

// RateLimiter is a sliding-window limit on commands per Discord user.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	max      int
	window   time.Duration
}

// NewRateLimiter allows max commands per user per window. Zero values fall
// back to 5 per minute.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	if max <= 0 {
		max = defaultRateLimitMaxCommands
	}
	if window <= 0 {
		window = defaultRateLimitWindow
	}
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		max:      max,
		window:   window,
	}
}

func (r *RateLimiter) Allow(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-r.window)

	timestamps := r.requests[userID]
	pruned := timestamps[:0]
	for _, t := range timestamps {
		if t.After(cutoff) {
			pruned = append(pruned, t)
		}
	}

	if len(pruned) >= r.max {
		r.requests[userID] = pruned
		return false
	}

	r.requests[userID] = append(pruned, now)
	return true
}

// Prune drops users with no requests inside the window.
func (r *RateLimiter) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-r.window)
	removed := 0
	for user, timestamps := range r.requests {
		if len(timestamps) == 0 || !timestamps[len(timestamps)-1].After(cutoff) {
			delete(r.requests, user)
			removed++
		}
	}
	return removed
}
