package router

import (
	"sync"
	"time"
)

// RateLimiter applies a per-connection cap on chat messages over a sliding
// one-minute window.
type RateLimiter struct {
	mu      sync.Mutex
	limit   int
	clients map[string]*clientWindow
}

// clientWindow tracks one connection's count within the current window.
type clientWindow struct {
	messageCount int
	windowStart  time.Time
}

// NewRateLimiter creates a rate limiter allowing limit messages per minute
// per connection. A non-positive limit disables limiting.
func NewRateLimiter(limit int) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		clients: make(map[string]*clientWindow),
	}
}

// Allow reports whether the connection may send another message, counting
// the attempt when it does.
func (rl *RateLimiter) Allow(id string) bool {
	if rl.limit <= 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	window, exists := rl.clients[id]
	if !exists {
		rl.clients[id] = &clientWindow{messageCount: 1, windowStart: now}
		return true
	}

	if now.Sub(window.windowStart) >= time.Minute {
		window.messageCount = 1
		window.windowStart = now
		return true
	}

	if window.messageCount >= rl.limit {
		return false
	}

	window.messageCount++
	return true
}

// Forget drops a connection's window. Called on disconnect so state does not
// outlive the connection.
func (rl *RateLimiter) Forget(id string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.clients, id)
}
