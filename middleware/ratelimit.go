package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ariebrainware/nutritrack/util"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	defaultRateLimit  = 5
	defaultRateWindow = 15 * time.Minute
)

// RateLimitConfig holds configuration for rate limiting. Without a Redis
// client the counters live in process memory.
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
	Redis  *redis.Client
}

type counter interface {
	incr(ctx context.Context, key string, window time.Duration) (int64, error)
	reset(ctx context.Context, key string) error
}

type redisCounter struct {
	rdb *redis.Client
}

func (r redisCounter) incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := r.rdb.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to check rate limit: %w", err)
	}
	return incrCmd.Val(), nil
}

func (r redisCounter) reset(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, key).Err()
}

type localCounter struct {
	mu    sync.Mutex
	store *cache.Cache
}

func (l *localCounter) incr(_ context.Context, key string, window time.Duration) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.store.Get(key); !ok {
		l.store.Set(key, int64(1), window)
		return 1, nil
	}
	return l.store.IncrementInt64(key, 1)
}

func (l *localCounter) reset(_ context.Context, key string) error {
	l.store.Delete(key)
	return nil
}

func rateKey(endpoint, clientIP string) string {
	return fmt.Sprintf("ratelimit:%s:%s", endpoint, clientIP)
}

// RateLimit counts requests per client IP and path.
type RateLimit struct {
	config RateLimitConfig
	ctr    counter
}

// NewRateLimit applies the defaults to config and picks the counter store.
func NewRateLimit(config RateLimitConfig) *RateLimit {
	if config.Limit <= 0 {
		config.Limit = defaultRateLimit
	}
	if config.Window <= 0 {
		config.Window = defaultRateWindow
	}
	rl := &RateLimit{config: config}
	if config.Redis != nil {
		rl.ctr = redisCounter{rdb: config.Redis}
	} else {
		rl.ctr = &localCounter{store: cache.New(config.Window, 2*config.Window)}
	}
	return rl
}

// RateLimiter limits requests per client IP and path.
func RateLimiter(config RateLimitConfig) gin.HandlerFunc {
	return NewRateLimit(config).Handler()
}

// Handler rejects a client with 429 once it exceeds the limit on a path.
func (rl *RateLimit) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		endpoint := c.Request.URL.Path

		count, err := rl.ctr.incr(c.Request.Context(), rateKey(endpoint, clientIP), rl.config.Window)
		if err != nil {
			// fail open
			log.Warn().Err(err).Str("ip", clientIP).Str("path", endpoint).Msg("rate limit check failed")
			c.Next()
			return
		}

		if count > int64(rl.config.Limit) {
			util.LogRateLimitExceeded(clientIP, endpoint)
			util.CallTooManyRequests(c, util.APIErrorParams{
				Msg: "Too many requests. Please try again later.",
				Err: fmt.Errorf("rate limit exceeded"),
			})
			return
		}

		c.Next()
	}
}

// Reset clears the counter of one client and path.
func (rl *RateLimit) Reset(ctx context.Context, clientIP, endpoint string) error {
	return rl.ctr.reset(ctx, rateKey(endpoint, clientIP))
}
