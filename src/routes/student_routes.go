package routes

import (
	"github.com/Dizey-pro/Students-results/src/controllers"
	"github.com/Dizey-pro/Students-results/src/middleware"
	"github.com/Dizey-pro/Students-results/src/models"
	"github.com/gofiber/fiber/v2"
)

func studentRoutes(app *fiber.App, h *controllers.Handler, auth fiber.Handler) {
	admin := middleware.RequireRole(models.RoleAdmin)
	staff := middleware.RequireRole(models.RoleTeacher, models.RoleAdmin)

	g := app.Group("/students", auth)
	g.Get("/", staff, h.GetStudents)
	g.Post("/", admin, h.CreateStudent)
	g.Get("/roster", staff, h.GetRoster)
	g.Put("/:id", admin, h.UpdateStudent)

	// Students only reach their own records; the handlers check ownership.
	g.Get("/:studentId/dashboard", h.GetStudentDashboard)
	g.Get("/:studentId/transcript", h.GetTranscript)
	g.Get("/:studentId/transcript.pdf", h.GetTranscriptPDF)
	g.Post("/:studentId/advice", h.GetStudentAdvice)
}
