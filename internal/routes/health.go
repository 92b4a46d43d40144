package routes

import (
    "context"
    "net/http"
    "time"

    "github.com/gofiber/fiber/v2"
)

const apiVersion = "2.0.0"

// RegisterHealthRoutes adds the liveness, readiness and index endpoints.
func RegisterHealthRoutes(app *fiber.App, d Deps) {
    app.Get("/health", func(c *fiber.Ctx) error {
        return c.JSON(fiber.Map{
            "status":    "healthy",
            "timestamp": time.Now().UTC().Format(time.RFC3339Nano),
        })
    })

    app.Get("/healthz", func(c *fiber.Ctx) error {
        dbStatus := "ok"
        redisStatus := "ok"

        ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
        defer cancel()
        if d.DB != nil {
            if err := d.DB.Ping(ctx); err != nil {
                dbStatus = err.Error()
            }
        } else {
            dbStatus = "disabled"
        }
        if d.Cache != nil {
            if err := d.Cache.Ping(ctx).Err(); err != nil {
                redisStatus = err.Error()
            }
        } else {
            redisStatus = "disabled"
        }
        status := http.StatusOK
        if !healthy(dbStatus) || !healthy(redisStatus) {
            status = http.StatusServiceUnavailable
        }
        return c.Status(status).JSON(fiber.Map{
            "status":    fiber.Map{"postgres": dbStatus, "redis": redisStatus},
            "timestamp": time.Now().UTC().Format(time.RFC3339Nano),
        })
    })

    app.Get("/", func(c *fiber.Ctx) error {
        return c.JSON(fiber.Map{
            "message":  "DocuHero API",
            "version":  apiVersion,
            "security": "Firebase + JWT authentication",
            "endpoints": fiber.Map{
                "health": "/health",
                "auth":   "/auth/sync-user, /auth/signup, /auth/login, /auth/verify",
                "api":    "/api/* (authenticated)",
            },
        })
    })
}

func healthy(status string) bool {
    return status == "ok" || status == "disabled"
}
