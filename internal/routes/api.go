package routes

import (
    "errors"
    "log/slog"
    "net/http"

    "github.com/gofiber/fiber/v2"

    "github.com/docuhero/docuhero-api/internal/identity"
    "github.com/docuhero/docuhero-api/internal/metrics"
    "github.com/docuhero/docuhero-api/internal/middleware"
)

// RegisterAPIRoutes wires the bearer-protected endpoints under r.
func RegisterAPIRoutes(r fiber.Router, ids *identity.Service, authn fiber.Handler, m *metrics.Metrics, logger *slog.Logger) {
    r.Get("", authn, func(c *fiber.Ctx) error {
        claims, _ := middleware.ClaimsFrom(c)
        return c.JSON(fiber.Map{
            "message": "Protected API endpoint",
            "user":    claims,
            "info":    "This endpoint requires valid JWT token",
        })
    })

    r.Get("/profile", authn, func(c *fiber.Ctx) error {
        claims, ok := middleware.ClaimsFrom(c)
        if !ok {
            return fiber.NewError(http.StatusUnauthorized, "Authentication required")
        }
        user, err := ids.Profile(c.UserContext(), claims.UserID)
        if errors.Is(err, identity.ErrUserNotFound) {
            return fiber.NewError(http.StatusNotFound, "User not found")
        }
        if err != nil {
            logger.Error("profile fetch failed", slog.String("user_id", claims.UserID), slog.Any("error", err))
            return fiber.NewError(http.StatusInternalServerError, "Failed to fetch profile")
        }
        return c.JSON(fiber.Map{"user": user})
    })

    r.Get("/admin", authn, middleware.RequireRole(m, identity.RoleAgencyAdmin), func(c *fiber.Ctx) error {
        claims, _ := middleware.ClaimsFrom(c)
        return c.JSON(fiber.Map{"message": "Agency admin endpoint", "user": claims})
    })
}
