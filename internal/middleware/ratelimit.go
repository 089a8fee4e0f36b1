package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const rateLimitKeyPrefix = "lexanalytica:rate_limit"

// Counter is the subset of Redis the limiter needs.
type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// RedisCounter implements Counter on a go-redis client.
type RedisCounter struct {
	client *redis.Client
}

// NewRedisCounter connects to the Redis instance described by url
// (redis://[:password@]host:port/db).
func NewRedisCounter(url string) (*RedisCounter, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	return &RedisCounter{client: redis.NewClient(opts)}, nil
}

// Ping checks the connection.
func (r *RedisCounter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCounter) Incr(ctx context.Context, key string) (int64, error) {
	return r.client.Incr(ctx, key).Result()
}

func (r *RedisCounter) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return r.client.PExpire(ctx, key, ttl).Err()
}

func (r *RedisCounter) Close() error {
	return r.client.Close()
}

// RateLimitConfig configures RateLimit.
type RateLimitConfig struct {
	Counter Counter
	Max     int64
	Window  time.Duration
	Skipper echomw.Skipper
	Logger  *zap.Logger

	// now is replaced in tests.
	now func() time.Time
}

// RateLimit returns a middleware enforcing a fixed-window limit of Max requests
// per client IP, as resolved by the echo instance's IPExtractor. Rejected
// requests get a 429 *echo.HTTPError for the error handler to render. Counter
// failures let the request through.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Skipper == nil {
		cfg.Skipper = echomw.DefaultSkipper
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}
	windowSecs := int64(cfg.Window / time.Second)
	if windowSecs < 1 {
		windowSecs = 1
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper(c) || cfg.Counter == nil || cfg.Max <= 0 {
				return next(c)
			}

			ip := c.RealIP()
			if ip == "" {
				return next(c)
			}

			now := cfg.now().Unix()
			window := now / windowSecs
			key := fmt.Sprintf("%s:%s:%d", rateLimitKeyPrefix, ip, window)
			ctx := c.Request().Context()

			count, err := cfg.Counter.Incr(ctx, key)
			if err != nil {
				cfg.Logger.Warn("rate limit counter unavailable", zap.Error(err))
				return next(c)
			}
			if count == 1 {
				if err := cfg.Counter.Expire(ctx, key, cfg.Window+time.Second); err != nil {
					cfg.Logger.Warn("rate limit expiry failed", zap.String("key", key), zap.Error(err))
				}
			}

			if count > cfg.Max {
				retryAfter := (window+1)*windowSecs - now
				c.Response().Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, please retry later")
			}
			return next(c)
		}
	}
}
