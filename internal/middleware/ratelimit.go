package middleware

import (
    "net/http"
    "strings"
    "time"

    "github.com/gofiber/fiber/v2"
    "github.com/gofiber/fiber/v2/middleware/limiter"
    "github.com/redis/go-redis/v9"
)

const tooManyRequests = "Too many requests from this IP, please try again later"

// LoginRateLimit limits login attempts per email or IP using Redis if available.
func LoginRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
    if maxPerMin <= 0 {
        maxPerMin = 5
    }
    return func(c *fiber.Ctx) error {
        if cache == nil {
            return c.Next() // no-op without Redis
        }
        var req struct {
            Email string `json:"email"`
        }
        _ = c.BodyParser(&req)
        subject := strings.ToLower(strings.TrimSpace(req.Email))
        if subject == "" {
            subject = c.IP()
        }
        key := "rl:login:" + subject
        cnt, err := cache.Incr(c.UserContext(), key).Result()
        if err == nil && cnt == 1 {
            cache.Expire(c.UserContext(), key, time.Minute)
        }
        if err != nil {
            return c.Next() // fail-open on cache errors
        }
        if cnt > int64(maxPerMin) {
            return fiber.NewError(http.StatusTooManyRequests, "too many login attempts, try again later")
        }
        return c.Next()
    }
}

// APIRateLimit caps requests per client IP within window. A nil storage keeps
// counters in process memory.
func APIRateLimit(storage fiber.Storage, max int, window time.Duration) fiber.Handler {
    return limiter.New(limiter.Config{
        Max:        max,
        Expiration: window,
        KeyGenerator: func(c *fiber.Ctx) string {
            return "rl:api:" + c.IP()
        },
        LimitReached: func(c *fiber.Ctx) error {
            return fiber.NewError(http.StatusTooManyRequests, tooManyRequests)
        },
        Storage: storage,
    })
}
