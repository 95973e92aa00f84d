package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	window int64 // Unix second the counter belongs to.
	count  int
}

// MemoryLimiter implements a fixed-window in-memory rate limiter.
type MemoryLimiter struct {
	mu       sync.Mutex
	counters map[string]*memoryEntry
}

// NewMemoryLimiter constructs a MemoryLimiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{counters: make(map[string]*memoryEntry)}
}

// Allow checks whether the request should be allowed in the current second.
func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, now time.Time) (Result, error) {
	if l == nil || limit <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}

	sec := now.Unix()
	reset := time.Unix(sec+1, 0).UTC()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.counters[key]
	if !ok || entry.window != sec {
		entry = &memoryEntry{window: sec}
		l.counters[key] = entry
		l.pruneLocked(sec)
	}
	entry.count++
	if entry.count > limit {
		return Result{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	return Result{Allowed: true, Remaining: limit - entry.count, Reset: reset}, nil
}

// pruneLocked drops counters from past windows. Caller holds the lock.
func (l *MemoryLimiter) pruneLocked(currentSec int64) {
	for key, entry := range l.counters {
		if entry.window < currentSec {
			delete(l.counters, key)
		}
	}
}
