package routes

import (
	"github.com/Dizey-pro/Students-results/src/controllers"
	"github.com/gofiber/fiber/v2"
)

// InitRoutes mounts every route. auth guards the routes that need a
// signed in principal.
func InitRoutes(app *fiber.App, h *controllers.Handler, auth fiber.Handler) {
	authRoutes(app, h, auth)
	profileRoutes(app, h, auth)
	settingsRoutes(app, h, auth)
	studentRoutes(app, h, auth)
	resultRoutes(app, h, auth)

	app.Get("/catalog", h.GetCatalog)
	app.Get("/health", h.Health)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("API is running...")
	})
}
