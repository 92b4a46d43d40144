package server

import (
    "errors"
    "log/slog"
    "net/http"

    "github.com/gofiber/fiber/v2"

    "github.com/docuhero/docuhero-api/internal/httpstatus"
    "github.com/docuhero/docuhero-api/internal/validate"
)

// ErrorHandler renders every error returned by a handler as JSON. Unknown
// errors are logged and reported generically.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
    return func(c *fiber.Ctx, err error) error {
        status := httpstatus.FromError(c, err)

        var verr *validate.Error
        if errors.As(err, &verr) {
            return c.Status(status).JSON(fiber.Map{"errors": verr.Fields})
        }

        var fe *fiber.Error
        if errors.As(err, &fe) {
            return c.Status(status).JSON(fiber.Map{"error": fe.Message})
        }

        logger.Error("unhandled error", slog.String("method", c.Method()), slog.String("path", c.Path()), slog.Any("error", err))
        return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
    }
}
