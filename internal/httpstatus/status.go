// Package httpstatus maps handler errors to the status the app ErrorHandler renders.
package httpstatus

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/docuhero/docuhero-api/internal/validate"
)

// FromError returns the response status for err. A nil err keeps the status
// already written to the response.
func FromError(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var verr *validate.Error
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return http.StatusInternalServerError
}
