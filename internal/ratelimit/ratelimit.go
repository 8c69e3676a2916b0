package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter answers whether one more event is allowed for the key
// Errors mean the limiter backend is unavailable, callers decide to fail open
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter is a per process sliding window limiter
// Good enough for a single instance or as fallback when Redis is not configured
type MemoryLimiter struct {
	mu     sync.Mutex
	times  map[string][]time.Time
	max    int
	window time.Duration
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		times:  make(map[string][]time.Time),
		max:    max,
		window: window,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-l.window)

	// Compact the slice in place dropping events older than the window
	slice := l.times[key]
	i := 0
	for _, t := range slice {
		if t.After(cutoff) {
			slice[i] = t
			i++
		}
	}
	slice = slice[:i]

	if len(slice) >= l.max {
		l.times[key] = slice
		return false, nil
	}

	l.times[key] = append(slice, now)
	return true, nil
}
