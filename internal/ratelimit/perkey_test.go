package ratelimit

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPerKey(maxTokens, refillRate float64) *PerKeyLimiter {
	return NewPerKeyLimiter(PerKeyConfig{
		MaxTokens:     maxTokens,
		RefillRate:    refillRate,
		CleanupPeriod: time.Hour,
	})
}

func TestPerKeyIndependentBuckets(t *testing.T) {
	t.Parallel()

	pkl := newTestPerKey(1, 0.001)
	defer pkl.Stop()

	require.True(t, pkl.Allow("alice"))
	assert.False(t, pkl.Allow("alice"), "alice exhausted her bucket")
	assert.True(t, pkl.Allow("bob"), "bob has his own bucket")
}

func TestPerKeyEmptyKeyAlwaysAllowed(t *testing.T) {
	t.Parallel()

	pkl := newTestPerKey(1, 0.001)
	defer pkl.Stop()

	for range 5 {
		assert.True(t, pkl.Allow(""))
	}
	assert.Zero(t, pkl.ActiveCount(), "empty keys must not create buckets")
}

func TestPerKeyOnDrop(t *testing.T) {
	t.Parallel()

	pkl := newTestPerKey(1, 0.001)
	defer pkl.Stop()

	var drops atomic.Int64
	pkl.OnDrop(func() { drops.Add(1) })

	pkl.Allow("u1")
	pkl.Allow("u1")
	pkl.Allow("u1")

	assert.Equal(t, int64(2), drops.Load())
}

func TestPerKeyActiveCount(t *testing.T) {
	t.Parallel()

	pkl := newTestPerKey(3, 0.001)
	defer pkl.Stop()

	pkl.Allow("u1")
	pkl.Allow("u2")
	pkl.Allow("u2")

	assert.Equal(t, 2, pkl.ActiveCount())
}

func TestPerKeyStopIdempotent(t *testing.T) {
	t.Parallel()

	pkl := newTestPerKey(1, 1)
	pkl.Stop()
	pkl.Stop()
}
