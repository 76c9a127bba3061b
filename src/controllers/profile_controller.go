package controllers

import (
	"github.com/Dizey-pro/Students-results/src/middleware"
	"github.com/Dizey-pro/Students-results/src/models"
	"github.com/Dizey-pro/Students-results/src/services/profiles"
	"github.com/Dizey-pro/Students-results/src/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

// GetProfile godoc
// @Summary Current profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserProfile
// @Router /profile [get]
func (h *Handler) GetProfile(c *fiber.Ctx) error {
	p, _ := middleware.Principal(c)
	profile, err := h.Profiles.Ensure(c.UserContext(), p)
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// UpdateProfile godoc
// @Summary Update current profile
// @Description Email and phone are editable by everyone, name by administrators only
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.ProfilePatch true "Fields to change"
// @Success 200 {object} models.UserProfile
// @Failure 403 {object} models.ErrorResponse
// @Router /profile [put]
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var patch models.ProfilePatch
	if ok, err := h.bind(c, &patch); !ok {
		return err
	}

	p, _ := middleware.Principal(c)
	profile, err := h.Profiles.Update(c.UserContext(), p, patch)
	if errors.Is(err, profiles.ErrNameChangeForbidden) {
		return utils.HandleError(c, fiber.StatusForbidden, err.Error())
	}
	if err != nil {
		return err
	}
	return c.JSON(profile)
}
