package ratelimit

import (
	"sync"
	"time"
)

// PerKeyConfig configures a PerKeyLimiter instance.
type PerKeyConfig struct {
	MaxTokens     float64       // Burst capacity per key
	RefillRate    float64       // Tokens refilled per second
	CleanupPeriod time.Duration // How often inactive buckets are removed
}

// PerKeyLimiter maintains an independent token bucket for each key
// (a LINE user ID in practice) and removes buckets that have been
// idle long enough to refill completely.
type PerKeyLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*Limiter
	config   PerKeyConfig
	onDrop   func()
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewPerKeyLimiter creates a per-key rate limiter and starts its
// cleanup goroutine. Call Stop when the limiter is no longer needed.
func NewPerKeyLimiter(cfg PerKeyConfig) *PerKeyLimiter {
	pkl := &PerKeyLimiter{
		limiters: make(map[string]*Limiter),
		config:   cfg,
		stopCh:   make(chan struct{}),
	}

	go pkl.cleanupLoop()

	return pkl
}

// OnDrop sets a callback invoked whenever a request is rejected.
func (pkl *PerKeyLimiter) OnDrop(fn func()) {
	pkl.onDrop = fn
}

// Allow reports whether a request for the given key is permitted,
// consuming a token when it is. An empty key is always allowed.
func (pkl *PerKeyLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	pkl.mu.RLock()
	limiter, exists := pkl.limiters[key]
	pkl.mu.RUnlock()

	if !exists {
		pkl.mu.Lock()
		// Double-check after acquiring write lock.
		limiter, exists = pkl.limiters[key]
		if !exists {
			limiter = New(pkl.config.MaxTokens, pkl.config.RefillRate)
			pkl.limiters[key] = limiter
		}
		pkl.mu.Unlock()
	}

	allowed := limiter.Allow()
	if !allowed && pkl.onDrop != nil {
		pkl.onDrop()
	}
	return allowed
}

// ActiveCount returns the number of keys currently tracked.
func (pkl *PerKeyLimiter) ActiveCount() int {
	pkl.mu.RLock()
	defer pkl.mu.RUnlock()
	return len(pkl.limiters)
}

func (pkl *PerKeyLimiter) cleanupLoop() {
	ticker := time.NewTicker(pkl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-pkl.stopCh:
			return
		case <-ticker.C:
			pkl.mu.Lock()
			for key, limiter := range pkl.limiters {
				if limiter.IsFull() {
					delete(pkl.limiters, key)
				}
			}
			pkl.mu.Unlock()
		}
	}
}

// Stop terminates the cleanup goroutine. Safe to call multiple times.
func (pkl *PerKeyLimiter) Stop() {
	pkl.stopOnce.Do(func() {
		close(pkl.stopCh)
	})
}
