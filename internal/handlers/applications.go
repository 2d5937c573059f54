package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/events"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/metrics"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/models"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/services/jobs"
)

type ApplicationHandler struct {
	Jobs *jobs.Service
	B    *Broadcaster
}

type ApplyReq struct {
	TalentID     string          `json:"talentId"`
	ProposedRate decimal.Decimal `json:"proposedRate"`
	CoverLetter  string          `json:"coverLetter"`
}

type ApplicationStatusReq struct {
	ApplicationID string `json:"applicationId"`
	Status        string `json:"status"`
}

// applicationItem shows the talent summary instead of the full profile.
type applicationItem struct {
	models.Application
	Talent *models.TalentSummary `json:"talent"`
}

type applicationEvent struct {
	ApplicationID uuid.UUID                `json:"applicationId"`
	JobID         uuid.UUID                `json:"jobId"`
	TalentID      uuid.UUID                `json:"talentId"`
	Status        models.ApplicationStatus `json:"status"`
}

func newApplicationEvent(app *models.Application) applicationEvent {
	return applicationEvent{ApplicationID: app.ID, JobID: app.JobID, TalentID: app.TalentID, Status: app.Status}
}

func (h *ApplicationHandler) List(c *fiber.Ctx) error {
	jobID, err := paramID(c, "id", "Job")
	if err != nil {
		return fail(c, err)
	}
	apps, err := h.Jobs.Applications(c.UserContext(), jobID)
	if err != nil {
		return fail(c, err)
	}

	items := make([]applicationItem, len(apps))
	for i := range apps {
		items[i] = applicationItem{Application: apps[i], Talent: apps[i].Talent.Summary()}
	}
	return ok(c, fiber.StatusOK, "applications", items)
}

func (h *ApplicationHandler) Apply(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	jobID, err := paramID(c, "id", "Job")
	if err != nil {
		return fail(c, err)
	}
	var req ApplyReq
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	talentID, err := optionalUUID("talentId", req.TalentID)
	if err != nil {
		return fail(c, err)
	}

	ctx := c.UserContext()
	app, err := h.Jobs.Apply(ctx, a, jobs.ApplyInput{
		JobID:        jobID,
		TalentID:     talentID,
		ProposedRate: req.ProposedRate,
		CoverLetter:  req.CoverLetter,
	})
	if err != nil {
		return fail(c, err)
	}

	metrics.ApplicationsSubmitted.Inc()
	clientID := app.Job.ClientID
	h.B.Touch(ctx, uuid.Nil, clientID)
	h.B.NotifyClient(ctx, clientID, NotifyApplicationReceived, fiber.Map{
		"jobId": app.JobID, "jobTitle": app.Job.Title, "applicationId": app.ID,
	})
	h.B.Publish(ctx, events.ApplicationSubmitted, newApplicationEvent(app))

	app.Job = nil
	return ok(c, fiber.StatusCreated, "application", app)
}

func (h *ApplicationHandler) UpdateStatus(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	jobID, err := paramID(c, "id", "Job")
	if err != nil {
		return fail(c, err)
	}
	var req ApplicationStatusReq
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	fe := apperr.FieldErrors{}
	if strings.TrimSpace(req.ApplicationID) == "" {
		fe.Add("applicationId", "applicationId is required")
	}
	if strings.TrimSpace(req.Status) == "" {
		fe.Add("status", "status is required")
	}
	if !fe.Empty() {
		return fail(c, &apperr.Error{Kind: apperr.ErrValidation, Message: "Missing required fields", Fields: fe})
	}
	appID, err := uuid.Parse(strings.TrimSpace(req.ApplicationID))
	if err != nil {
		return fail(c, apperr.NotFound("Application"))
	}

	ctx := c.UserContext()
	next := models.ApplicationStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	app, err := h.Jobs.SetApplicationStatus(ctx, a, jobID, appID, next)
	if err != nil {
		return fail(c, err)
	}

	clientID := uuid.Nil
	if app.Job != nil {
		clientID = app.Job.ClientID
	}
	h.B.Touch(ctx, app.TalentID, clientID)
	data := fiber.Map{"jobId": app.JobID, "applicationId": app.ID, "status": app.Status}
	if a.IsClient() {
		h.B.NotifyTalent(ctx, app.TalentID, NotifyApplicationStatus, data)
	} else if clientID != uuid.Nil {
		h.B.NotifyClient(ctx, clientID, NotifyApplicationStatus, data)
	}
	h.B.Publish(ctx, events.ApplicationStatusChanged, newApplicationEvent(app))

	return ok(c, fiber.StatusOK, "application", applicationItem{Application: *app, Talent: app.Talent.Summary()})
}

func (h *ApplicationHandler) Delete(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	jobID, err := paramID(c, "id", "Job")
	if err != nil {
		return fail(c, err)
	}
	raw := strings.TrimSpace(c.Query("applicationId"))
	if raw == "" {
		return fail(c, apperr.Invalid("Application ID required"))
	}
	appID, err := uuid.Parse(raw)
	if err != nil {
		return fail(c, apperr.NotFound("Application"))
	}

	ctx := c.UserContext()
	if err := h.Jobs.DeleteApplication(ctx, a, jobID, appID); err != nil {
		return fail(c, err)
	}
	if job, err := h.Jobs.Get(ctx, jobID); err == nil {
		h.B.Touch(ctx, uuid.Nil, job.ClientID)
	}
	return ok(c, fiber.StatusOK, "message", "Application deleted")
}
