package controllers

import (
	"github.com/Dizey-pro/Students-results/src/services/settings"
	"github.com/Dizey-pro/Students-results/src/utils"
	"github.com/gofiber/fiber/v2"
)

// GetTeacherAuth godoc
// @Summary Teacher login username
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} models.ErrorResponse
// @Router /settings/teacher-auth [get]
func (h *Handler) GetTeacherAuth(c *fiber.Ctx) error {
	username, ok := h.Settings.TeacherUsername()
	if !ok {
		return utils.HandleError(c, fiber.StatusServiceUnavailable, "Teacher credentials are still loading")
	}
	return c.JSON(fiber.Map{"username": username})
}

// UpdateTeacherAuth godoc
// @Summary Replace the teacher login
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body settings.TeacherCredentialsInput true "New credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Router /settings/teacher-auth [put]
func (h *Handler) UpdateTeacherAuth(c *fiber.Ctx) error {
	var in settings.TeacherCredentialsInput
	if ok, err := h.bind(c, &in); !ok {
		return err
	}
	if err := h.Settings.SetTeacherCredentials(c.UserContext(), in); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Teacher credentials updated"})
}
