package controllers

import (
	"github.com/Dizey-pro/Students-results/src/models"
	"github.com/Dizey-pro/Students-results/src/services/advice"
	"github.com/Dizey-pro/Students-results/src/services/reconcile"
	"github.com/Dizey-pro/Students-results/src/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

// GetStudentAdvice godoc
// @Summary Study advice based on recent results
// @Tags advice
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /students/{studentId}/advice [post]
func (h *Handler) GetStudentAdvice(c *fiber.Ctx) error {
	studentID := c.Params("studentId")
	if !canRead(c, studentID) {
		return utils.HandleError(c, fiber.StatusForbidden, "You can only view your own results")
	}
	if ok, err := h.requireReady(c); !ok {
		return err
	}

	text, err := h.Advice.Student(c.UserContext(), h.State.Results(), studentID)
	if errors.Is(err, advice.ErrNoResults) {
		return utils.HandleError(c, fiber.StatusNotFound, "No results to analyze yet.")
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"studentId": studentID, "advice": text})
}

// InsightsRequest carries the unsaved grid a teacher wants analysed.
type InsightsRequest struct {
	Context models.ResultContext `json:"context"`
	Marks   models.Marks         `json:"marks"`
}

// GetClassInsights godoc
// @Summary Analysis of the marks entered for a class
// @Tags advice
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body InsightsRequest true "Context and marks by student ID"
// @Success 200 {object} map[string]interface{}
// @Router /results/insights [post]
func (h *Handler) GetClassInsights(c *fiber.Ctx) error {
	var req InsightsRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}
	if ok, err := h.requireReady(c); !ok {
		return err
	}

	roster := reconcile.Roster(h.State.Students(), req.Context.Level, req.Context.ClassName)
	text, stats := h.Advice.Class(c.UserContext(), req.Context, roster, req.Marks)
	return c.JSON(fiber.Map{"insight": text, "stats": stats})
}
