package controllers

import (
	"fmt"

	"github.com/Dizey-pro/Students-results/src/models"
	"github.com/Dizey-pro/Students-results/src/services/aggregate"
	"github.com/Dizey-pro/Students-results/src/services/reconcile"
	"github.com/Dizey-pro/Students-results/src/services/transcript"
	"github.com/Dizey-pro/Students-results/src/utils"
	"github.com/go-kit/log/level"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

// BulkResultsRequest is one save of the mark entry grid.
type BulkResultsRequest struct {
	Context models.ResultContext `json:"context"`
	Marks   models.Marks         `json:"marks"`
}

type skippedMark struct {
	StudentID string               `json:"studentId"`
	Mark      string               `json:"mark"`
	Reason    reconcile.SkipReason `json:"reason"`
}

func skippedMarks(plan reconcile.Plan) []skippedMark {
	out := make([]skippedMark, 0, len(plan.Skipped))
	for _, s := range plan.Skipped {
		out = append(out, skippedMark{StudentID: s.StudentID, Mark: s.Mark, Reason: s.Reason})
	}
	return out
}

// GetResultContext godoc
// @Summary Roster and stored marks of one entry context
// @Tags results
// @Produce json
// @Security BearerAuth
// @Param level query string true "Academic level"
// @Param className query string true "Class"
// @Param subject query string true "Subject"
// @Param term query string true "Term"
// @Param year query string true "Year"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Router /results/context [get]
func (h *Handler) GetResultContext(c *fiber.Ctx) error {
	var rc models.ResultContext
	if err := c.QueryParser(&rc); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid query")
	}
	if errs := h.Validator.Struct(rc); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": fiber.StatusBadRequest, "message": "Validation failed", "fields": errs,
		})
	}
	if ok, err := h.requireReady(c); !ok {
		return err
	}

	roster := reconcile.Roster(h.State.Students(), rc.Level, rc.ClassName)
	marks := reconcile.ContextMarks(h.State.Results(), rc)
	return c.JSON(fiber.Map{
		"context":  rc,
		"students": roster,
		"marks":    marks,
		"subjects": models.SubjectsForClass(rc.ClassName),
		"stats":    aggregate.ClassStats(roster, marks),
	})
}

// SaveResults godoc
// @Summary Save the mark entry grid
// @Description Creates missing results and updates changed ones. Blank marks are ignored.
// @Tags results
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body BulkResultsRequest true "Context and marks by student ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} map[string]interface{}
// @Router /results/bulk [post]
func (h *Handler) SaveResults(c *fiber.Ctx) error {
	var req BulkResultsRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}
	if ok, err := h.requireReady(c); !ok {
		return err
	}

	rc := req.Context
	roster := reconcile.Roster(h.State.Students(), rc.Level, rc.ClassName)
	plan := reconcile.Reconcile(rc, roster, req.Marks, h.State.Results())

	out, err := reconcile.Apply(c.UserContext(), h.Store, plan)
	h.invalidateAdvice(c, plan, err)

	var batchErr *reconcile.BatchError
	if errors.As(err, &batchErr) {
		level.Error(h.Logger).Log("msg", "bulk save partially failed", "class", rc.ClassName,
			"subject", rc.Subject, "applied", batchErr.Applied, "failed", len(batchErr.Failed), "err", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"status":  fiber.StatusBadGateway,
			"message": fmt.Sprintf("%d of %d results could not be saved", len(batchErr.Failed), len(plan.Ops)),
			"applied": batchErr.Applied,
			"failed":  batchErr.StudentIDs(),
			"created": out.Created,
			"updated": out.Updated,
		})
	}
	if err != nil {
		return err
	}

	level.Info(h.Logger).Log("msg", "results saved", "class", rc.ClassName, "subject", rc.Subject,
		"term", rc.Term, "year", rc.Year, "created", out.Created, "updated", out.Updated)
	return c.JSON(fiber.Map{
		"created":   out.Created,
		"updated":   out.Updated,
		"unchanged": plan.Unchanged,
		"skipped":   skippedMarks(plan),
	})
}

// invalidateAdvice schedules cache invalidation for the students whose
// write went through.
func (h *Handler) invalidateAdvice(c *fiber.Ctx, plan reconcile.Plan, applyErr error) {
	if h.Jobs == nil {
		return
	}
	failed := map[string]bool{}
	var batchErr *reconcile.BatchError
	if errors.As(applyErr, &batchErr) {
		for _, id := range batchErr.StudentIDs() {
			failed[id] = true
		}
	}
	ids := make([]string, 0, len(plan.Ops))
	for _, op := range plan.Ops {
		if !failed[op.Payload.StudentID] {
			ids = append(ids, op.Payload.StudentID)
		}
	}
	if len(ids) == 0 {
		return
	}
	if err := h.Jobs.InvalidateAdvice(c.UserContext(), ids); err != nil {
		level.Warn(h.Logger).Log("msg", "advice invalidation not scheduled", "err", err)
	}
}

// GetStudentDashboard godoc
// @Summary GPA, recent results and weakest subjects of a student
// @Tags results
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} models.ErrorResponse
// @Router /students/{studentId}/dashboard [get]
func (h *Handler) GetStudentDashboard(c *fiber.Ctx) error {
	studentID := c.Params("studentId")
	if !canRead(c, studentID) {
		return utils.HandleError(c, fiber.StatusForbidden, "You can only view your own results")
	}
	if ok, err := h.requireReady(c); !ok {
		return err
	}

	results := h.State.Results()
	mine := aggregate.ForStudent(results, studentID)
	avg, ok := aggregate.Average(mine)
	return c.JSON(fiber.Map{
		"studentId":    studentID,
		"gpa":          aggregate.FormatGPA(aggregate.GPA(results, studentID)),
		"average":      aggregate.FormatAverage(avg, ok),
		"totalResults": len(mine),
		"recent":       aggregate.Recent(results, studentID, 5),
		"weakest":      aggregate.Weakest(results, studentID, 3),
	})
}

// GetTranscript godoc
// @Summary Academic record grouped by year and term
// @Tags results
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {object} transcript.Transcript
// @Failure 403 {object} models.ErrorResponse
// @Router /students/{studentId}/transcript [get]
func (h *Handler) GetTranscript(c *fiber.Ctx) error {
	studentID := c.Params("studentId")
	if !canRead(c, studentID) {
		return utils.HandleError(c, fiber.StatusForbidden, "You can only view your own results")
	}
	if ok, err := h.requireReady(c); !ok {
		return err
	}

	t := transcript.Build(h.State.Results(), studentID)
	if t.Empty() {
		return c.JSON(fiber.Map{"studentId": studentID, "empty": true, "message": transcript.EmptyMessage})
	}
	return c.JSON(t)
}

// GetTranscriptPDF godoc
// @Summary Printable official record
// @Tags results
// @Produce application/pdf
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {file} file
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /students/{studentId}/transcript.pdf [get]
func (h *Handler) GetTranscriptPDF(c *fiber.Ctx) error {
	studentID := c.Params("studentId")
	if !canRead(c, studentID) {
		return utils.HandleError(c, fiber.StatusForbidden, "You can only view your own results")
	}
	if ok, err := h.requireReady(c); !ok {
		return err
	}

	t := transcript.Build(h.State.Results(), studentID)
	if t.Empty() {
		return utils.HandleError(c, fiber.StatusNotFound, transcript.EmptyMessage)
	}
	html, err := transcript.RenderHTML(t)
	if err != nil {
		return err
	}
	pdf, err := h.Printer.PDF(c.UserContext(), html)
	if err != nil {
		level.Error(h.Logger).Log("msg", "transcript pdf failed", "studentId", studentID, "err", err)
		return utils.HandleError(c, fiber.StatusServiceUnavailable, "Could not print the record right now")
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="transcript-%s.pdf"`, studentID))
	return c.Send(pdf)
}
