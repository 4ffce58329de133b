package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/onlyskins/onlyskins/internal/cache"
	apierrors "github.com/onlyskins/onlyskins/internal/errors"
	"github.com/onlyskins/onlyskins/internal/monitoring"
)

// RateLimiter implements sliding window rate limiting using Redis
type RateLimiter struct {
	redis *cache.Redis
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(redis *cache.Redis) *RateLimiter {
	return &RateLimiter{redis: redis}
}

// KeyFunc derives the rate limit key for a request
type KeyFunc func(c *gin.Context) string

// ByClientIP keys the limit on the caller's IP address
func ByClientIP(c *gin.Context) string {
	return c.ClientIP()
}

// ByUserID keys the limit on the authenticated user. Must run after JWTAuth.
func ByUserID(c *gin.Context) string {
	if id := GetUserIDFromContext(c); id != uuid.Nil {
		return id.String()
	}
	return c.ClientIP()
}

// Limit creates a middleware enforcing at most limit requests per window for
// the key derived by keyFn. Redis failures fail open: the request proceeds.
func (r *RateLimiter) Limit(scope string, limit int, window time.Duration, keyFn KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if r.redis == nil {
			c.Next()
			return
		}

		allowed, remaining := r.checkSlidingWindow(c, scope, keyFn(c), limit, window)
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if !allowed {
			monitoring.RecordRateLimitHit(scope)
			respondWithError(c, apierrors.ErrRateLimitedError)
			c.Abort()
			return
		}

		c.Next()
	}
}

// checkSlidingWindow implements sliding window rate limiting over a Redis
// sorted set: score = timestamp, member = unique request ID.
func (r *RateLimiter) checkSlidingWindow(c *gin.Context, scope, key string, limit int, window time.Duration) (bool, int64) {
	ctx := c.Request.Context()
	now := time.Now()
	windowStart := now.Add(-window)

	redisKey := fmt.Sprintf("ratelimit:%s:%s", scope, key)

	pipe := r.redis.Client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, redisKey)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Error().Err(err).Str("scope", scope).Str("key", key).Msg("Failed to check rate limit")
		// On Redis error, allow the request (fail open)
		return true, int64(limit)
	}

	currentCount := countCmd.Val()
	if currentCount >= int64(limit) {
		return false, 0
	}

	// Record this request inside the window
	addPipe := r.redis.Client.Pipeline()
	addPipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: uuid.New().String()})
	addPipe.Expire(ctx, redisKey, window)
	if _, err := addPipe.Exec(ctx); err != nil {
		log.Error().Err(err).Str("scope", scope).Msg("Failed to record rate limit entry")
	}

	return true, int64(limit) - currentCount - 1
}
