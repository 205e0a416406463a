package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahammedjunedattar/cloth-invent/internal/cache"
)

func newTestLimiter(cfg Config) (*Limiter, *time.Time) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(cfg, cache.New(time.Hour, 0))
	l.now = func() time.Time { return now }
	return l, &now
}

func TestAllowConsumesPoints(t *testing.T) {
	l, _ := newTestLimiter(Config{Points: 3, Window: 3 * time.Minute, Block: time.Minute})

	for want := 2; want >= 0; want-- {
		res := l.Allow("1.2.3.4")
		require.True(t, res.Allowed)
		assert.Equal(t, 3, res.Limit)
		assert.Equal(t, want, res.Remaining)
	}

	res := l.Allow("1.2.3.4")
	assert.False(t, res.Allowed)
	assert.Equal(t, time.Minute, res.ResetAfter)
}

func TestAllowBlocksAfterExceeding(t *testing.T) {
	l, now := newTestLimiter(Config{Points: 1, Window: time.Minute, Block: 5 * time.Minute})

	require.True(t, l.Allow("k").Allowed)
	require.False(t, l.Allow("k").Allowed)

	// The bucket has refilled, but the block is still in force.
	*now = now.Add(2 * time.Minute)
	res := l.Allow("k")
	assert.False(t, res.Allowed)
	assert.Equal(t, 3*time.Minute, res.ResetAfter)

	*now = now.Add(3*time.Minute + time.Second)
	assert.True(t, l.Allow("k").Allowed)
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(Config{Points: 1, Window: time.Minute, Block: time.Minute})

	assert.True(t, l.Allow("a").Allowed)
	assert.True(t, l.Allow("b").Allowed)
	assert.False(t, l.Allow("a").Allowed)
}

func TestNewFillsDefaults(t *testing.T) {
	l := New(Config{}, cache.New(time.Hour, 0))
	assert.Equal(t, DefaultConfig().Points, l.Limit())
	assert.Equal(t, 9*time.Second, l.interval)
}
