package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	defaultPerMinute = 60
	rateLimitPrefix  = "rl:tx:"
	rateWindow       = time.Minute

	limiterIdleTTL      = 15 * time.Minute
	limiterCleanupEvery = 2 * time.Minute
)

// RateLimit caps mutating requests per client IP. With Redis the budget is a
// fixed one-minute window shared across instances. Without it each process
// keeps a token bucket per client.
func RateLimit(cache *redis.Client, perMinute int, logger *slog.Logger) fiber.Handler {
	if perMinute <= 0 {
		perMinute = defaultPerMinute
	}
	local := newLimiterStore(perMinute)

	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}

		client := c.IP()
		if cache == nil {
			if !local.get(client).Allow() {
				return fiber.NewError(http.StatusTooManyRequests, "too many requests, try again later")
			}
			return c.Next()
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		key := rateLimitPrefix + client
		count, err := cache.Incr(ctx, key).Result()
		if err != nil {
			// Fail open on cache errors.
			logger.Warn("rate limit lookup failed", slog.String("client", client), slog.Any("error", err))
			return c.Next()
		}
		if count == 1 {
			if err := cache.Expire(ctx, key, rateWindow).Err(); err != nil {
				// A counter without expiry would block the client for good.
				logger.Warn("rate limit expiry failed", slog.String("client", client), slog.Any("error", err))
				cache.Del(ctx, key)
			}
		}
		if count > int64(perMinute) {
			if ttl, err := cache.TTL(ctx, key).Result(); err == nil && ttl == -1 {
				cache.Expire(ctx, key, rateWindow)
			}
			return fiber.NewError(http.StatusTooManyRequests, "too many requests, try again later")
		}
		return c.Next()
	}
}

// limiterStore keeps one token bucket per client, refilled at perMinute
// tokens per minute with a burst of perMinute. Buckets idle for longer than
// idleTTL are dropped.
type limiterStore struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int

	idleTTL    time.Duration
	sweepEvery time.Duration
	lastSweep  time.Time
	now        func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterStore(perMinute int) *limiterStore {
	return &limiterStore{
		limiters:   make(map[string]*limiterEntry),
		limit:      rate.Every(time.Minute / time.Duration(perMinute)),
		burst:      perMinute,
		idleTTL:    limiterIdleTTL,
		sweepEvery: limiterCleanupEvery,
		now:        time.Now,
	}
}

func (s *limiterStore) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= s.sweepEvery {
		s.evictLocked(now)
		s.lastSweep = now
	}

	if e, ok := s.limiters[key]; ok {
		e.lastSeen = now
		return e.limiter
	}
	e := &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst), lastSeen: now}
	s.limiters[key] = e
	return e.limiter
}

func (s *limiterStore) evictLocked(now time.Time) {
	for key, e := range s.limiters {
		if now.Sub(e.lastSeen) > s.idleTTL {
			delete(s.limiters, key)
		}
	}
}
