package middleware

import (
	"net/http"
	"sync"
	"time"

	"venuebook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// A limiter untouched for this long has refilled its whole burst, so
// dropping it changes nothing for the caller.
const limiterIdleAfter = 3 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiterStore holds a map of bucket keys to their rate limiters.
type rateLimiterStore struct {
	limiters  map[string]*limiterEntry
	mu        sync.Mutex
	perMinute int
	lastPrune time.Time
	now       func() time.Time
}

func newRateLimiterStore(perMinute int) *rateLimiterStore {
	if perMinute <= 0 {
		perMinute = 100
	}
	return &rateLimiterStore{
		limiters:  make(map[string]*limiterEntry),
		perMinute: perMinute,
		now:       time.Now,
	}
}

// getLimiter returns the rate limiter for a key, creating one if it doesn't exist.
func (s *rateLimiterStore) getLimiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastPrune) >= limiterIdleAfter {
		s.pruneLocked(now)
	}

	entry, exists := s.limiters[key]
	if !exists {
		// perMinute requests per minute, all of which may arrive as a burst.
		entry = &limiterEntry{
			limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMinute)), s.perMinute),
		}
		s.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

func (s *rateLimiterStore) pruneLocked(now time.Time) {
	for key, entry := range s.limiters {
		if now.Sub(entry.lastSeen) >= limiterIdleAfter {
			delete(s.limiters, key)
		}
	}
	s.lastPrune = now
}

func (s *rateLimiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// RateLimitMiddleware limits requests per client IP to perMinute.
// Each call gets its own limiter set, so routes can be limited independently.
func RateLimitMiddleware(perMinute int) gin.HandlerFunc {
	return RateLimitByKey(perMinute, ClientIPKey)
}

// RateLimitByKey limits requests sharing key(c) to perMinute.
func RateLimitByKey(perMinute int, key KeyFunc) gin.HandlerFunc {
	return newRateLimitHandler(newRateLimiterStore(perMinute), key)
}

func newRateLimitHandler(store *rateLimiterStore, key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		k := key(c)
		limiter := store.getLimiter(k)
		if !limiter.Allow() {
			zap.L().Warn("Rate limit exceeded",
				zap.String("key", k),
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, utils.ErrorResponse{
				Message: "Rate limit exceeded. Try again later.",
			})
			return
		}
		c.Next()
	}
}
