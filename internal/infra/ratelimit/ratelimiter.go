package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter defines the interface for a rate limiter.
// This allows for different implementations (e.g., in-memory, distributed).
type Limiter interface {
	// Allow checks if a request is allowed for a given identifier (e.g., client IP).
	Allow(identifier string) bool
}

// NewInMemoryRateLimiter creates a new in-memory rate limiter.
// It creates a new limiter for each identifier with the given rate and burst size.
func NewInMemoryRateLimiter(r rate.Limit, b int) *InMemoryRateLimiter {
	return &InMemoryRateLimiter{
		rate:    r,
		burst:   b,
		clients: make(map[string]*clientLimiter),
	}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type InMemoryRateLimiter struct {
	rate    rate.Limit
	burst   int
	clients map[string]*clientLimiter
	mu      sync.Mutex
}

func (l *InMemoryRateLimiter) Allow(identifier string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	client, exists := l.clients[identifier]
	if !exists {
		client = &clientLimiter{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.clients[identifier] = client
	}
	client.lastSeen = time.Now()

	return client.limiter.Allow()
}

// PurgeStale drops per-client state not seen within maxAge. Callers should
// run this periodically so the client map does not grow without bound.
func (l *InMemoryRateLimiter) PurgeStale(maxAge time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for id, client := range l.clients {
		if client.lastSeen.Before(cutoff) {
			delete(l.clients, id)
		}
	}
}
