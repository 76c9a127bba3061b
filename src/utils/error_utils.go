package utils

import (
	"github.com/Dizey-pro/Students-results/src/models"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gofiber/fiber/v2"
)

func HandleError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(models.ErrorResponse{
		Status:  status,
		Message: message,
	})
}

// ErrorHandler renders errors that escape a handler. Internal details are
// logged, not returned.
func ErrorHandler(logger log.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if fe, ok := err.(*fiber.Error); ok {
			return HandleError(c, fe.Code, fe.Message)
		}
		level.Error(logger).Log("msg", "unhandled error", "method", c.Method(), "path", c.Path(), "err", err)
		return HandleError(c, fiber.StatusInternalServerError, "Internal server error")
	}
}
