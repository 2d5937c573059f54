package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/events"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/metrics"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/models"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/services/jobs"
)

type JobHandler struct {
	Jobs *jobs.Service
	B    *Broadcaster
}

type CreateJobReq struct {
	ClientID       string          `json:"clientId"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	RequiredSkills stringList      `json:"requiredSkills"`
	HourlyRate     decimal.Decimal `json:"hourlyRate"`
	EstimatedHours *float64        `json:"estimatedHours"`
}

// UpdateJobReq lists every field a job update honours; anything else in the
// body is ignored.
type UpdateJobReq struct {
	Title          *string          `json:"title"`
	Description    *string          `json:"description"`
	RequiredSkills stringList       `json:"requiredSkills"`
	HourlyRate     *decimal.Decimal `json:"hourlyRate"`
	EstimatedHours *float64         `json:"estimatedHours"`
	Status         *string          `json:"status"`
}

// jobListItem replaces the full client with the listing projection.
type jobListItem struct {
	models.Job
	Client           *models.ClientSummary `json:"client"`
	ApplicationCount int64                 `json:"applicationCount"`
}

type jobEvent struct {
	JobID    uuid.UUID        `json:"jobId"`
	ClientID uuid.UUID        `json:"clientId"`
	Title    string           `json:"title"`
	Status   models.JobStatus `json:"status"`
}

func (h *JobHandler) List(c *fiber.Ctx) error {
	status := models.JobStatus(strings.ToUpper(strings.TrimSpace(c.Query("status"))))
	rows, err := h.Jobs.List(c.UserContext(), status)
	if err != nil {
		return fail(c, err)
	}

	items := make([]jobListItem, len(rows))
	for i, r := range rows {
		items[i] = jobListItem{Job: r.Job, Client: r.Job.Client.Summary(), ApplicationCount: r.ApplicationCount}
	}
	return ok(c, fiber.StatusOK, "jobs", items)
}

func (h *JobHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "Job")
	if err != nil {
		return fail(c, err)
	}
	job, err := h.Jobs.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "job", job)
}

func (h *JobHandler) Create(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	var req CreateJobReq
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	clientID, err := optionalUUID("clientId", req.ClientID)
	if err != nil {
		return fail(c, err)
	}

	ctx := c.UserContext()
	job, err := h.Jobs.Create(ctx, a, jobs.CreateInput{
		ClientID:       clientID,
		Title:          req.Title,
		Description:    req.Description,
		RequiredSkills: req.RequiredSkills,
		HourlyRate:     req.HourlyRate,
		EstimatedHours: req.EstimatedHours,
	})
	if err != nil {
		return fail(c, err)
	}

	metrics.JobsPosted.Inc()
	h.B.Touch(ctx, uuid.Nil, job.ClientID)
	h.B.Publish(ctx, events.JobPosted, jobEvent{JobID: job.ID, ClientID: job.ClientID, Title: job.Title, Status: job.Status})

	return ok(c, fiber.StatusCreated, "job", job)
}

func (h *JobHandler) Update(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramID(c, "id", "Job")
	if err != nil {
		return fail(c, err)
	}
	var req UpdateJobReq
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	upd := jobs.Update{
		Title:          req.Title,
		Description:    req.Description,
		RequiredSkills: req.RequiredSkills,
		HourlyRate:     req.HourlyRate,
		EstimatedHours: req.EstimatedHours,
	}
	if req.Status != nil {
		st := models.JobStatus(strings.ToUpper(strings.TrimSpace(*req.Status)))
		upd.Status = &st
	}

	ctx := c.UserContext()
	job, err := h.Jobs.Update(ctx, a, id, upd)
	if err != nil {
		return fail(c, err)
	}

	talentID := uuid.Nil
	if job.Contract != nil {
		talentID = job.Contract.TalentID
	}
	h.B.Touch(ctx, talentID, job.ClientID)

	return ok(c, fiber.StatusOK, "job", job)
}

func (h *JobHandler) Delete(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramID(c, "id", "Job")
	if err != nil {
		return fail(c, err)
	}

	ctx := c.UserContext()
	talentID := uuid.Nil
	if job, err := h.Jobs.Get(ctx, id); err == nil && job.Contract != nil {
		talentID = job.Contract.TalentID
	}

	if err := h.Jobs.Delete(ctx, a, id); err != nil {
		return fail(c, err)
	}
	h.B.Touch(ctx, talentID, a.ProfileID)

	return ok(c, fiber.StatusOK, "message", "Job deleted")
}
