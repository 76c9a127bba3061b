package controllers

import (
	"context"
	"time"

	"github.com/Dizey-pro/Students-results/src/database"
	"github.com/Dizey-pro/Students-results/src/middleware"
	"github.com/Dizey-pro/Students-results/src/models"
	"github.com/Dizey-pro/Students-results/src/services/advice"
	"github.com/Dizey-pro/Students-results/src/services/auth"
	"github.com/Dizey-pro/Students-results/src/services/profiles"
	"github.com/Dizey-pro/Students-results/src/services/settings"
	"github.com/Dizey-pro/Students-results/src/services/students"
	"github.com/Dizey-pro/Students-results/src/state"
	"github.com/Dizey-pro/Students-results/src/utils"
	"github.com/go-kit/log"
	"github.com/gofiber/fiber/v2"
)

// PDFPrinter renders HTML to PDF. transcript.Printer satisfies it.
type PDFPrinter interface {
	PDF(ctx context.Context, html string) ([]byte, error)
}

// AdviceInvalidator schedules cache invalidation after results change.
// jobs.Enqueuer satisfies it.
type AdviceInvalidator interface {
	InvalidateAdvice(ctx context.Context, studentIDs []string) error
}

// Handler serves every API route.
type Handler struct {
	State     *state.State
	Store     database.Store
	Validator *utils.Validator
	Auth      *auth.Service
	Profiles  *profiles.Service
	Students  *students.Service
	Settings  *settings.Service
	Advice    *advice.Service
	Jobs      AdviceInvalidator
	Printer   PDFPrinter
	Logger    log.Logger
	Now       func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// bind parses the JSON body into dst and validates it. It writes the error
// response itself and returns false when the request is unusable.
func (h *Handler) bind(c *fiber.Ctx, dst interface{}) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, utils.HandleError(c, fiber.StatusBadRequest, "Invalid request format")
	}
	if errs := h.Validator.Struct(dst); errs != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  fiber.StatusBadRequest,
			"message": "Validation failed",
			"fields":  errs,
		})
	}
	return true, nil
}

// canRead reports whether the caller may see studentID's records. Students
// only see their own.
func canRead(c *fiber.Ctx, studentID string) bool {
	p, ok := middleware.Principal(c)
	if !ok {
		return false
	}
	if p.Role == models.RoleStudent {
		return p.StudentID == studentID
	}
	return true
}

// requireReady rejects requests that need state before the first snapshots
// have arrived.
func (h *Handler) requireReady(c *fiber.Ctx) (bool, error) {
	if h.State.Ready() {
		return true, nil
	}
	return false, utils.HandleError(c, fiber.StatusServiceUnavailable, "Data is still loading, please retry")
}
