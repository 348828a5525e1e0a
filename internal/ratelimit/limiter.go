package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Result is the outcome of a rate limit check.
type Result struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter checks and consumes one request from a per-key budget.
type Limiter interface {
	Check(ctx context.Context, key string, limit int64, window time.Duration) (Result, error)
}

// MemoryLimiter enforces fixed per-window budgets with process-local
// counters. Counting is approximate across a window boundary, which is
// acceptable for abuse throttling.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*countWindow
	now     func() time.Time
}

type countWindow struct {
	start time.Time
	count int64
}

const pruneThreshold = 4096

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string]*countWindow),
		now:     time.Now,
	}
}

// Check consumes one request from the key's budget. A denied request does
// not consume budget.
func (l *MemoryLimiter) Check(_ context.Context, key string, limit int64, window time.Duration) (Result, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= window {
		if len(l.windows) >= pruneThreshold {
			l.prune(now, window)
		}
		w = &countWindow{start: now}
		l.windows[key] = w
	}

	resetAt := w.start.Add(window)
	if w.count >= limit {
		return Result{
			Allowed:    false,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: resetAt.Sub(now),
		}, nil
	}

	w.count++
	return Result{
		Allowed:   true,
		Remaining: limit - w.count,
		ResetAt:   resetAt,
	}, nil
}

// prune drops expired windows. Caller holds the lock.
func (l *MemoryLimiter) prune(now time.Time, window time.Duration) {
	for key, w := range l.windows {
		if now.Sub(w.start) >= window {
			delete(l.windows, key)
		}
	}
}
