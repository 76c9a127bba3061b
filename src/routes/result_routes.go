package routes

import (
	"github.com/Dizey-pro/Students-results/src/controllers"
	"github.com/Dizey-pro/Students-results/src/middleware"
	"github.com/Dizey-pro/Students-results/src/models"
	"github.com/gofiber/fiber/v2"
)

func resultRoutes(app *fiber.App, h *controllers.Handler, auth fiber.Handler) {
	teacher := middleware.RequireRole(models.RoleTeacher)
	staff := middleware.RequireRole(models.RoleTeacher, models.RoleAdmin)

	g := app.Group("/results", auth)
	g.Get("/context", staff, h.GetResultContext)
	g.Post("/bulk", teacher, h.SaveResults)
	g.Post("/insights", teacher, h.GetClassInsights)
}
