package routes

import (
	"github.com/Dizey-pro/Students-results/src/controllers"
	"github.com/Dizey-pro/Students-results/src/middleware"
	"github.com/Dizey-pro/Students-results/src/models"
	"github.com/gofiber/fiber/v2"
)

func settingsRoutes(app *fiber.App, h *controllers.Handler, auth fiber.Handler) {
	admin := middleware.RequireRole(models.RoleAdmin)

	g := app.Group("/settings", auth, admin)
	g.Get("/teacher-auth", h.GetTeacherAuth)
	g.Put("/teacher-auth", h.UpdateTeacherAuth)

	app.Get("/dashboard/overview", auth, admin, h.GetOverview)
}
