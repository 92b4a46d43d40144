package routes

import (
    "github.com/gofiber/fiber/v2"

    "github.com/docuhero/docuhero-api/internal/auth"
)

// RegisterAuthRoutes wires the public authentication endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
    group := r.Group("/auth")
    group.Post("/sync-user", h.SyncUser)
    group.Post("/signup", h.Signup)
    if rateLimiter != nil {
        group.Post("/login", rateLimiter, h.Login)
    } else {
        group.Post("/login", h.Login)
    }
    group.Post("/verify", h.Verify)
}
