package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/time/rate"
)

const throttleIdleTTL = 10 * time.Minute

type throttleClient struct {
	lim  *rate.Limiter
	seen time.Time
}

// AuthThrottle is an in-process per-IP token bucket for the public login
// and registration endpoints.
type AuthThrottle struct {
	mu      sync.Mutex
	clients map[string]*throttleClient
	r       rate.Limit
	burst   int
	now     func() time.Time
}

// NewAuthThrottle allows perMinute requests per client IP with the given
// burst. Non-positive values fall back to 10/min and a burst of 5.
func NewAuthThrottle(perMinute, burst int) *AuthThrottle {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = 5
	}
	return &AuthThrottle{
		clients: make(map[string]*throttleClient),
		r:       rate.Limit(float64(perMinute) / 60),
		burst:   burst,
		now:     time.Now,
	}
}

func (t *AuthThrottle) get(ip string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if c, ok := t.clients[ip]; ok {
		c.seen = now
		return c.lim
	}

	// evict idle clients lazily instead of running a janitor goroutine
	for k, c := range t.clients {
		if now.Sub(c.seen) > throttleIdleTTL {
			delete(t.clients, k)
		}
	}

	l := rate.NewLimiter(t.r, t.burst)
	t.clients[ip] = &throttleClient{lim: l, seen: now}
	return l
}

// Allow reports whether ip may make another request now.
func (t *AuthThrottle) Allow(ip string) bool {
	return t.get(ip).AllowN(t.now(), 1)
}

func (t *AuthThrottle) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		if !t.Allow(c.IP()) {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many attempts, try again later")
		}
		return c.Next()
	}
}
