// Package ratelimit throttles clients with a token bucket per key. A key that
// runs out of tokens is blocked for a fixed period before it may retry.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mahammedjunedattar/cloth-invent/internal/cache"
)

const keyPrefix = "rl:"

// Config sets the budget: Points requests per Window, then a Block penalty.
type Config struct {
	Points int
	Window time.Duration
	Block  time.Duration
}

// DefaultConfig allows 100 requests per 15 minutes and blocks for 5 minutes.
func DefaultConfig() Config {
	return Config{
		Points: 100,
		Window: 15 * time.Minute,
		Block:  5 * time.Minute,
	}
}

// Result describes the outcome of one Allow call.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAfter time.Duration
}

type bucket struct {
	mu           sync.Mutex
	tokens       *rate.Limiter
	blockedUntil time.Time
}

type Limiter struct {
	cfg      Config
	interval time.Duration
	buckets  *cache.Cache
	now      func() time.Time
}

// New creates a limiter whose buckets live in store. Idle buckets expire
// from store once they would have refilled anyway.
func New(cfg Config, store *cache.Cache) *Limiter {
	if cfg.Points <= 0 {
		cfg.Points = DefaultConfig().Points
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	return &Limiter{
		cfg:      cfg,
		interval: cfg.Window / time.Duration(cfg.Points),
		buckets:  store,
		now:      time.Now,
	}
}

// Limit returns the configured number of points.
func (l *Limiter) Limit() int {
	return l.cfg.Points
}

// Allow consumes one point for key.
func (l *Limiter) Allow(key string) Result {
	b := l.buckets.GetOrCreate(keyPrefix+key, func() any {
		return &bucket{tokens: rate.NewLimiter(rate.Every(l.interval), l.cfg.Points)}
	}, l.cfg.Window+l.cfg.Block).(*bucket)

	b.mu.Lock()
	defer b.mu.Unlock()

	now := l.now()
	res := Result{Limit: l.cfg.Points}

	if now.Before(b.blockedUntil) {
		res.ResetAfter = b.blockedUntil.Sub(now)
		return res
	}

	if !b.tokens.AllowN(now, 1) {
		if l.cfg.Block > 0 {
			b.blockedUntil = now.Add(l.cfg.Block)
			res.ResetAfter = l.cfg.Block
		} else {
			res.ResetAfter = l.interval
		}
		return res
	}

	tokens := b.tokens.TokensAt(now)
	res.Allowed = true
	res.Remaining = int(tokens)
	res.ResetAfter = time.Duration((float64(l.cfg.Points) - tokens) * float64(l.interval))
	return res
}
