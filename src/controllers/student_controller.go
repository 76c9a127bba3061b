package controllers

import (
	"github.com/Dizey-pro/Students-results/src/database"
	"github.com/Dizey-pro/Students-results/src/models"
	"github.com/Dizey-pro/Students-results/src/services/reconcile"
	"github.com/Dizey-pro/Students-results/src/services/students"
	"github.com/Dizey-pro/Students-results/src/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

// CreateStudent godoc
// @Summary Add a student to the roster
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param student body models.Student true "Student"
// @Success 201 {object} models.Student
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /students [post]
func (h *Handler) CreateStudent(c *fiber.Ctx) error {
	var st models.Student
	if ok, err := h.bind(c, &st); !ok {
		return err
	}

	created, err := h.Students.Create(c.UserContext(), st)
	if errors.Is(err, students.ErrDuplicateStudentID) {
		return utils.HandleError(c, fiber.StatusConflict, err.Error())
	}
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateStudent godoc
// @Summary Edit a student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student document id"
// @Param student body models.Student true "Student"
// @Success 200 {object} models.Student
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /students/{id} [put]
func (h *Handler) UpdateStudent(c *fiber.Ctx) error {
	var st models.Student
	if ok, err := h.bind(c, &st); !ok {
		return err
	}

	updated, err := h.Students.Update(c.UserContext(), c.Params("id"), st)
	switch {
	case errors.Is(err, students.ErrDuplicateStudentID):
		return utils.HandleError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, database.ErrNotFound):
		return utils.HandleError(c, fiber.StatusNotFound, "Student not found")
	case err != nil:
		return err
	}
	return c.JSON(updated)
}

// GetStudents godoc
// @Summary Student directory
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name or student ID"
// @Param tab query string false "All or 'Level - Class'"
// @Success 200 {object} map[string]interface{}
// @Router /students [get]
func (h *Handler) GetStudents(c *fiber.Ctx) error {
	if ok, err := h.requireReady(c); !ok {
		return err
	}
	list := students.Directory(h.State.Students(), c.Query("search"), c.Query("tab", students.AllTab))
	return c.JSON(fiber.Map{
		"data":  list,
		"total": len(list),
		"tabs":  students.ClassTabs(),
	})
}

// GetRoster godoc
// @Summary Students of one class
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param level query string true "Academic level"
// @Param className query string true "Class"
// @Success 200 {array} models.Student
// @Failure 400 {object} models.ErrorResponse
// @Router /students/roster [get]
func (h *Handler) GetRoster(c *fiber.Ctx) error {
	level, className := c.Query("level"), c.Query("className")
	if !models.ClassBelongsToLevel(level, className) {
		return utils.HandleError(c, fiber.StatusBadRequest, "Unknown level or class")
	}
	if ok, err := h.requireReady(c); !ok {
		return err
	}
	return c.JSON(reconcile.Roster(h.State.Students(), level, className))
}
