package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ZanzyTHEbar/quality-culture-o-meter/internal/monitoring"
)

// Config holds rate limiter configuration
type Config struct {
	RequestsPerMinute int           // sustained analyses per client per minute
	Burst             int           // requests allowed back to back
	IdleTTL           time.Duration // limiters unused this long are dropped
}

// DefaultConfig returns default rate limiting configuration
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 30,
		Burst:             10,
		IdleTTL:           time.Hour,
	}
}

// Result represents the result of a rate limit check
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-key token bucket held in memory.
type RateLimiter struct {
	config  Config
	metrics *monitoring.Metrics
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

// NewRateLimiter creates a limiter. metrics may be nil.
func NewRateLimiter(config Config, metrics *monitoring.Metrics) *RateLimiter {
	if config.Burst < 1 {
		config.Burst = 1
	}
	return &RateLimiter{
		config:  config,
		metrics: metrics,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

func (rl *RateLimiter) limit() rate.Limit {
	return rate.Limit(float64(rl.config.RequestsPerMinute) / 60)
}

// Allow consumes one token for key.
func (rl *RateLimiter) Allow(key string) Result {
	now := rl.now()

	rl.mu.Lock()
	e, ok := rl.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(rl.limit(), rl.config.Burst)}
		rl.entries[key] = e
	}
	e.lastSeen = now
	rl.mu.Unlock()

	res := Result{Limit: rl.config.RequestsPerMinute}
	if e.limiter.AllowN(now, 1) {
		res.Allowed = true
	} else {
		r := e.limiter.ReserveN(now, 1)
		if r.OK() {
			res.RetryAfter = r.DelayFrom(now)
			r.CancelAt(now)
		}
	}

	tokens := e.limiter.TokensAt(now)
	res.Remaining = int(math.Max(0, math.Floor(tokens)))
	missing := float64(rl.config.Burst) - tokens
	if rl.limit() > 0 {
		res.ResetAt = now.Add(time.Duration(missing / float64(rl.limit()) * float64(time.Second)))
	}
	return res
}

// AllowIP is Allow keyed by client address.
func (rl *RateLimiter) AllowIP(ip string) Result {
	return rl.Allow("ip:" + ip)
}

// StartCleanup drops idle limiters every interval until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (rl *RateLimiter) cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.config.IdleTTL)
	removed := 0
	for key, e := range rl.entries {
		if e.lastSeen.Before(cutoff) {
			delete(rl.entries, key)
			removed++
		}
	}
	return removed
}

// GetStats returns rate limiter statistics
func (rl *RateLimiter) GetStats() map[string]interface{} {
	rl.mu.Lock()
	active := len(rl.entries)
	rl.mu.Unlock()

	return map[string]interface{}{
		"active_limiters": active,
		"config": map[string]interface{}{
			"requests_per_minute": rl.config.RequestsPerMinute,
			"burst":               rl.config.Burst,
			"idle_ttl_seconds":    rl.config.IdleTTL.Seconds(),
		},
	}
}
