package ratelimit

import (
	"github.com/chiaheng/health-linebot-go/internal/config"
	"github.com/chiaheng/health-linebot-go/internal/metrics"
)

// UserLimiter throttles inbound webhook events per LINE user so a
// single chatty user cannot starve everyone else. Dropped events are
// counted in metrics but otherwise ignored silently.
type UserLimiter struct {
	perKey *PerKeyLimiter
}

// NewUserLimiter creates a per-user limiter with the given burst size
// and refill rate. m may be nil when metrics are not wired.
func NewUserLimiter(burst, refillPerSec float64, m *metrics.Metrics) *UserLimiter {
	perKey := NewPerKeyLimiter(PerKeyConfig{
		MaxTokens:     burst,
		RefillRate:    refillPerSec,
		CleanupPeriod: config.RateLimiterCleanupInterval,
	})

	if m != nil {
		perKey.OnDrop(func() {
			m.RecordRateLimiterDrop("user")
		})
	}

	return &UserLimiter{perKey: perKey}
}

// Allow reports whether an event from the given user should be processed.
func (ul *UserLimiter) Allow(userID string) bool {
	return ul.perKey.Allow(userID)
}

// ActiveCount returns the number of users with live buckets.
func (ul *UserLimiter) ActiveCount() int {
	return ul.perKey.ActiveCount()
}

// Stop terminates the background cleanup goroutine.
func (ul *UserLimiter) Stop() {
	ul.perKey.Stop()
}
