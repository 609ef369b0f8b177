package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	defaultRateLimitGroup = "DEFAULT"

	// DefaultMaxBuckets caps how many client buckets are tracked at once.
	DefaultMaxBuckets = 10000
	// DefaultSweepInterval is how often refilled buckets are dropped.
	DefaultSweepInterval = time.Minute
)

// RateLimitRule is a token bucket refilled at Rate tokens per second up to Burst.
// A rule with a non-positive Rate or Burst admits everything.
type RateLimitRule struct {
	Rate  float64
	Burst int
}

func (r RateLimitRule) enabled() bool {
	return r.Rate > 0 && r.Burst > 0
}

// RateLimitConfig selects a rule per request. Buckets are keyed by client IP and group.
type RateLimitConfig struct {
	Rules        map[string]RateLimitRule
	DefaultGroup string
	GroupFor     func(*gin.Context) string
	Limiter      *RateLimiter
}

// RateLimiter holds one token bucket per key. A bucket that has refilled to
// its burst carries no state, so it is dropped on the next sweep and rebuilt
// full on demand. When MaxBuckets is reached the least recently used bucket
// is evicted.
type RateLimiter struct {
	MaxBuckets    int
	SweepInterval time.Duration

	mu        sync.Mutex
	buckets   map[string]*rateBucket
	now       func() time.Time
	lastSweep time.Time
}

type rateBucket struct {
	rule   RateLimitRule
	tokens float64
	last   time.Time
}

// NewRateLimiter returns a limiter using now as its clock, or time.Now when nil.
func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		MaxBuckets:    DefaultMaxBuckets,
		SweepInterval: DefaultSweepInterval,
		buckets:       make(map[string]*rateBucket),
		now:           now,
	}
}

// RateLimit rejects requests whose bucket is empty with 429 and a Retry-After header.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(nil)
	}
	if cfg.DefaultGroup == "" {
		cfg.DefaultGroup = defaultRateLimitGroup
	}
	return func(c *gin.Context) {
		group := cfg.groupOf(c)
		rule, ok := cfg.Rules[group]
		if !ok {
			c.Next()
			return
		}
		allowed, wait := cfg.Limiter.Allow(strings.TrimSpace(c.ClientIP())+"|"+group, rule)
		if allowed {
			c.Next()
			return
		}
		rejectRateLimited(c, wait)
	}
}

func (cfg RateLimitConfig) groupOf(c *gin.Context) string {
	if cfg.GroupFor != nil {
		if g := strings.TrimSpace(cfg.GroupFor(c)); g != "" {
			return g
		}
	}
	return cfg.DefaultGroup
}

func rejectRateLimited(c *gin.Context, wait time.Duration) {
	waitMs := wait.Milliseconds()
	if waitMs <= 0 {
		waitMs = 1000
	}
	seconds := (waitMs + 999) / 1000
	c.Header("Retry-After", strconv.FormatInt(seconds, 10))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error":        "Too many requests",
		"retryAfterMs": waitMs,
	})
}

// Allow takes a token from key's bucket, or reports how long until one is available.
func (l *RateLimiter) Allow(key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || !rule.enabled() {
		return true, 0
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweepLocked(now)
	b, ok := l.buckets[key]
	if !ok {
		if l.MaxBuckets > 0 && len(l.buckets) >= l.MaxBuckets {
			l.evictOldestLocked()
		}
		b = &rateBucket{rule: rule, tokens: float64(rule.Burst), last: now}
		l.buckets[key] = b
	}
	b.rule = rule
	b.refill(now)
	b.last = now
	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	wait := math.Ceil((1 - b.tokens) / rule.Rate * 1000)
	return false, time.Duration(wait) * time.Millisecond
}

// Len reports how many buckets are currently tracked.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (b *rateBucket) refill(now time.Time) {
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = math.Min(float64(b.rule.Burst), b.tokens+elapsed*b.rule.Rate)
	}
}

func (b *rateBucket) fullAt(now time.Time) bool {
	elapsed := now.Sub(b.last).Seconds()
	return b.tokens+elapsed*b.rule.Rate >= float64(b.rule.Burst)
}

func (l *RateLimiter) sweepLocked(now time.Time) {
	if l.SweepInterval > 0 && now.Sub(l.lastSweep) < l.SweepInterval {
		return
	}
	l.lastSweep = now
	for key, b := range l.buckets {
		if b.fullAt(now) {
			delete(l.buckets, key)
		}
	}
}

func (l *RateLimiter) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for key, b := range l.buckets {
		if oldestKey == "" || b.last.Before(oldest) {
			oldestKey, oldest = key, b.last
		}
	}
	delete(l.buckets, oldestKey)
}
