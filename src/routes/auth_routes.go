package routes

import (
	"github.com/Dizey-pro/Students-results/src/controllers"
	"github.com/gofiber/fiber/v2"
)

func authRoutes(app *fiber.App, h *controllers.Handler, auth fiber.Handler) {
	g := app.Group("/auth")
	g.Post("/login", h.Login)
	g.Post("/logout", auth, h.Logout)
}

func profileRoutes(app *fiber.App, h *controllers.Handler, auth fiber.Handler) {
	g := app.Group("/profile", auth)
	g.Get("/", h.GetProfile)
	g.Put("/", h.UpdateProfile)
}
