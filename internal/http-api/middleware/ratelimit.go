package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Decision is the outcome of one limiter check.
type Decision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Limit() int
}

// tokenBucketScript refills `refill` tokens per elapsed interval up to
// capacity and takes one if available. Returns {allowed, tokens, retry_ms}.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill_tokens = tonumber(ARGV[3])
	local interval_ms = tonumber(ARGV[4])
	local ttl_seconds = tonumber(ARGV[5])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 and refill_tokens > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + (intervals * refill_tokens))
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		local until_next = interval_ms - (now_ms - last_refill)
		if until_next < 0 then until_next = 0 end
		retry_after_ms = until_next
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// RedisLimiter shares one token bucket per key across every API instance.
type RedisLimiter struct {
	rdb      redis.Scripter
	prefix   string
	capacity int
	interval time.Duration
	ttl      time.Duration
	now      func() time.Time
}

// NewRedisLimiter refills one token every 1/rps seconds up to burst.
func NewRedisLimiter(rdb redis.Scripter, rps float64, burst int) *RedisLimiter {
	interval := time.Duration(float64(time.Second) / rps)
	ttl := interval * time.Duration(burst+1)
	if ttl < time.Minute {
		ttl = time.Minute
	}
	return &RedisLimiter{
		rdb:      rdb,
		prefix:   "yamdb:ratelimit",
		capacity: burst,
		interval: interval,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (l *RedisLimiter) Limit() int {
	return l.capacity
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	args := []any{
		l.now().UnixMilli(),
		l.capacity,
		1,
		l.interval.Milliseconds(),
		int64(l.ttl / time.Second),
	}

	vals, err := tokenBucketScript.Run(ctx, l.rdb, []string{l.prefix + ":" + key}, args...).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(vals) != 3 {
		return Decision{}, fmt.Errorf("rate limit script: unexpected result %v", vals)
	}

	return Decision{
		Allowed:    vals[0] == 1,
		Remaining:  vals[1],
		RetryAfter: time.Duration(vals[2]) * time.Millisecond,
	}, nil
}

// LocalLimiter keeps x/time/rate buckets in memory, for single-instance
// deployments without Redis. A bucket idle long enough to have refilled is
// indistinguishable from a new one, so such entries are swept.
type LocalLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*localBucket
	rps       rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type localBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewLocalLimiter(rps float64, burst int) *LocalLimiter {
	idle := time.Duration(float64(burst) / rps * float64(time.Second))
	if idle < time.Minute {
		idle = time.Minute
	}
	return &LocalLimiter{
		limiters:  make(map[string]*localBucket),
		rps:       rate.Limit(rps),
		burst:     burst,
		idle:      idle,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *LocalLimiter) Limit() int {
	return l.burst
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) >= l.idle {
		l.sweep(now)
	}
	b, ok := l.limiters[key]
	if !ok {
		b = &localBucket{lim: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[key] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	r := b.lim.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	if delay > 0 {
		r.CancelAt(now)
		return Decision{Allowed: false, RetryAfter: delay}, nil
	}
	return Decision{Allowed: true, Remaining: int64(b.lim.TokensAt(now))}, nil
}

// sweep drops idle buckets. Callers hold mu.
func (l *LocalLimiter) sweep(now time.Time) {
	for k, b := range l.limiters {
		if now.Sub(b.lastSeen) >= l.idle {
			delete(l.limiters, k)
		}
	}
	l.lastSweep = now
}

// RateLimit throttles by client IP and route. Limiter failures let the
// request through and are logged.
func RateLimit(l Limiter, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP() + ":" + c.Request.Method + " " + c.FullPath()

		d, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Warn("rate limiter unavailable", "key", key, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))

		if !d.Allowed {
			secs := int(math.Ceil(d.RetryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": secs,
			})
			return
		}
		c.Next()
	}
}
