package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Vitaee/FlexReviewApi/internal/adapters/observability"
)

// MemoryLimiter is the single-process fallback when no Redis is configured.
// One token-bucket limiter per client identifier; idle entries are reaped
// periodically so the map cannot grow without bound.
type MemoryLimiter struct {
	mu      sync.Mutex
	clients map[string]*memoryClient
	lastGC  time.Time
}

type memoryClient struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

const memoryGCInterval = time.Hour

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{clients: make(map[string]*memoryClient), lastGC: time.Now()}
}

func (m *MemoryLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error) {
	m.mu.Lock()
	m.gcLocked()
	cl, ok := m.clients[key]
	if !ok {
		cl = &memoryClient{lim: rate.NewLimiter(rate.Limit(float64(limit)/window.Seconds()), limit)}
		m.clients[key] = cl
	}
	cl.lastSeen = time.Now()
	allowed := cl.lim.Allow()
	remaining := int(cl.lim.Tokens())
	m.mu.Unlock()

	if !allowed {
		observability.ObserveRateLimit("memory", "limited")
		return false, 0, nil
	}
	if remaining < 0 {
		remaining = 0
	}
	observability.ObserveRateLimit("memory", "allowed")
	return true, remaining, nil
}

func (m *MemoryLimiter) gcLocked() {
	now := time.Now()
	if now.Sub(m.lastGC) < memoryGCInterval {
		return
	}
	for k, cl := range m.clients {
		if now.Sub(cl.lastSeen) > memoryGCInterval {
			delete(m.clients, k)
		}
	}
	m.lastGC = now
}
