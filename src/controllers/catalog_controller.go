package controllers

import (
	"github.com/Dizey-pro/Students-results/src/models"
	"github.com/Dizey-pro/Students-results/src/services/aggregate"
	"github.com/Dizey-pro/Students-results/src/services/students"
	"github.com/gofiber/fiber/v2"
)

// GetCatalog godoc
// @Summary Levels, classes, subjects, terms and years
// @Tags catalog
// @Produce json
// @Param className query string false "Restrict subjects to this class"
// @Success 200 {object} map[string]interface{}
// @Router /catalog [get]
func (h *Handler) GetCatalog(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"levels":         models.Levels,
		"classesByLevel": models.ClassesByLevel,
		"subjects":       models.SubjectsForClass(c.Query("className")),
		"terms":          models.Terms,
		"years":          models.YearOptions(h.now()),
		"tabs":           students.ClassTabs(),
	})
}

// GetOverview godoc
// @Summary Admin dashboard counters
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} aggregate.Overview
// @Router /dashboard/overview [get]
func (h *Handler) GetOverview(c *fiber.Ctx) error {
	if ok, err := h.requireReady(c); !ok {
		return err
	}
	return c.JSON(aggregate.Summarize(h.State.Results(), h.State.Students()))
}

// Health reports whether the first snapshots have been loaded.
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "ready": h.State.Ready()})
}
