// Package ratelimit guards the public payment and application endpoints
// against bursts from a single address.
package ratelimit

import (
	"sync"
	"time"
)

type Limiter interface {
	Allow(addr string) bool
}

type window struct {
	count int
	start time.Time
}

// FixedWindow counts requests per address in fixed intervals. State is
// per-instance and in-memory.
type FixedWindow struct {
	maxRequests int
	interval    time.Duration
	windows     map[string]*window
	mu          sync.Mutex
}

func New(maxRequests int, interval time.Duration) *FixedWindow {
	return &FixedWindow{
		maxRequests: maxRequests,
		interval:    interval,
		windows:     make(map[string]*window),
	}
}

func (f *FixedWindow) Allow(addr string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	w := f.windows[addr]

	if w == nil || now.Sub(w.start) > f.interval {
		if f.maxRequests == 0 {
			return false
		}
		f.windows[addr] = &window{count: 1, start: now}
		f.prune(now)
		return true
	}

	if w.count >= f.maxRequests {
		return false
	}
	w.count++
	return true
}

// prune drops expired windows so the map does not grow without bound.
func (f *FixedWindow) prune(now time.Time) {
	if len(f.windows) < 1024 {
		return
	}
	for addr, w := range f.windows {
		if now.Sub(w.start) > f.interval {
			delete(f.windows, addr)
		}
	}
}
