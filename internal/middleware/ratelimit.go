package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"

	"github.com/hacktopia/platform/internal/response"
)

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit answers 429 once a client exceeds its window. Limiter errors let
// the request through so a Redis outage does not take the API down.
func RateLimit(lim Limiter, logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := lim.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Warnw("rate limiter unavailable", "error", err, "client_ip", c.ClientIP())
			c.Next()
			return
		}
		if !allowed {
			response.AbortFail(c, http.StatusTooManyRequests, response.CodeTooManyRequests,
				"Too many requests, please try again later")
			return
		}
		c.Next()
	}
}

// StoreLimiter counts requests per client in a limiter store.
type StoreLimiter struct {
	limiter *limiter.Limiter
}

// NewMemoryLimiter creates a single-instance limiter allowing limit requests per window.
func NewMemoryLimiter(limit int, window time.Duration) *StoreLimiter {
	store := memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          rateLimitPrefix,
		CleanUpInterval: window,
	})
	return newStoreLimiter(store, limit, window)
}

// NewRedisLimiter creates a limiter shared by every instance through Redis.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) (*StoreLimiter, error) {
	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   rateLimitPrefix,
		MaxRetry: 3,
	})
	if err != nil {
		return nil, err
	}
	return newStoreLimiter(store, limit, window), nil
}

const rateLimitPrefix = "ratelimit"

func newStoreLimiter(store limiter.Store, limit int, window time.Duration) *StoreLimiter {
	rate := limiter.Rate{Period: window, Limit: int64(limit)}
	return &StoreLimiter{limiter: limiter.New(store, rate)}
}

// Allow counts the request against the client's current window.
func (l *StoreLimiter) Allow(ctx context.Context, key string) (bool, error) {
	lctx, err := l.limiter.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return !lctx.Reached, nil
}
