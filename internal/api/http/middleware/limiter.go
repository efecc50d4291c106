package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	fiberredis "github.com/gofiber/storage/redis/v3"
	"github.com/redis/go-redis/v9"

	"github.com/Alijeyrad/jyotish_backend/config"
)

const (
	defaultLimiterMax    = 60
	defaultLimiterWindow = 30 * time.Second
)

// NewLimiterWithRedis is the global sliding-window limiter shared by every
// instance through redis.
func NewLimiterWithRedis(rdb *redis.Client, cfg config.RateLimit) fiber.Handler {
	maxReq := cfg.Max
	if maxReq <= 0 {
		maxReq = defaultLimiterMax
	}
	window := time.Duration(cfg.WindowSeconds) * time.Second
	if window <= 0 {
		window = defaultLimiterWindow
	}

	return limiter.New(limiter.Config{
		Storage:           fiberredis.NewFromConnection(rdb),
		Max:               maxReq,
		Expiration:        window,
		LimiterMiddleware: limiter.SlidingWindow{},
		LimitReached: func(c fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many requests")
		},
	})
}
