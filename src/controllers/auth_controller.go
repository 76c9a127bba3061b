package controllers

import (
	"github.com/Dizey-pro/Students-results/src/middleware"
	"github.com/Dizey-pro/Students-results/src/models"
	"github.com/Dizey-pro/Students-results/src/services/auth"
	"github.com/Dizey-pro/Students-results/src/utils"
	"github.com/go-kit/log/level"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

var invalidLoginMessages = map[models.Role]string{
	models.RoleStudent: "Invalid Student ID.",
	models.RoleTeacher: "Invalid Teacher username or password.",
	models.RoleAdmin:   "Invalid Admin credentials.",
}

// Login godoc
// @Summary Sign in
// @Description Students sign in with their student ID, staff with username and password
// @Tags auth
// @Accept json
// @Produce json
// @Param body body auth.LoginRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /auth/login [post]
func (h *Handler) Login(c *fiber.Ctx) error {
	var req auth.LoginRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	sess, err := h.Auth.Login(req)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		level.Info(h.Logger).Log("msg", "login rejected", "role", req.Role, "ip", c.IP())
		msg, ok := invalidLoginMessages[req.Role]
		if !ok {
			msg = "Invalid credentials."
		}
		return utils.HandleError(c, fiber.StatusUnauthorized, msg)
	case errors.Is(err, auth.ErrTeacherLoginUnavailable):
		return utils.HandleError(c, fiber.StatusServiceUnavailable, "Teacher login is not available yet, please retry")
	case err != nil:
		return err
	}

	profile, err := h.Profiles.Ensure(c.UserContext(), sess.Principal)
	if err != nil {
		return err
	}

	c.Set("X-Frame-Options", "DENY")
	c.Set("X-Content-Type-Options", "nosniff")
	return c.JSON(fiber.Map{
		"token":     sess.Token,
		"expiresAt": sess.ExpiresAt,
		"role":      sess.Principal.Role,
		"username":  sess.Principal.Username,
		"studentId": sess.Principal.StudentID,
		"profile":   profile,
	})
}

// Logout godoc
// @Summary Sign out
// @Description Revokes the current access token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /auth/logout [post]
func (h *Handler) Logout(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.HandleError(c, fiber.StatusUnauthorized, "Not signed in")
	}
	if err := h.Auth.Logout(c.UserContext(), claims); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}
