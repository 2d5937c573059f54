package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/logger"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/services/profiles"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/storage"
)

type TalentHandler struct {
	Profiles *profiles.Service
	Disk     storage.Disk
}

type UpdateTalentReq struct {
	FullName     *string          `json:"fullName"`
	PhoneNumber  *string          `json:"phoneNumber"`
	State        *string          `json:"state"`
	Skills       stringList       `json:"skills"`
	HourlyRate   *decimal.Decimal `json:"hourlyRate"`
	Bio          *string          `json:"bio"`
	PortfolioURL *string          `json:"portfolioUrl"`
	ResumeURL    *string          `json:"resumeUrl"`
}

func queryRate(c *fiber.Ctx, name string, fe apperr.FieldErrors) *decimal.Decimal {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		fe.Add(name, name+" must be a number")
		return nil
	}
	return &d
}

func (h *TalentHandler) Search(c *fiber.Ctx) error {
	fe := apperr.FieldErrors{}
	f := profiles.TalentFilter{
		Skill:   c.Query("skill"),
		State:   c.Query("state"),
		MinRate: queryRate(c, "minRate", fe),
		MaxRate: queryRate(c, "maxRate", fe),
	}
	if !fe.Empty() {
		return fail(c, apperr.Validation(fe))
	}

	talents, err := h.Profiles.SearchTalents(c.UserContext(), f)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "talents", talents)
}

func (h *TalentHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "Talent")
	if err != nil {
		return fail(c, err)
	}
	t, err := h.Profiles.Talent(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "talent", t)
}

func (h *TalentHandler) Update(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramID(c, "id", "Talent")
	if err != nil {
		return fail(c, err)
	}
	var req UpdateTalentReq
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	t, err := h.Profiles.UpdateTalent(c.UserContext(), a, id, profiles.TalentUpdate{
		FullName:     req.FullName,
		PhoneNumber:  req.PhoneNumber,
		State:        req.State,
		Skills:       req.Skills,
		HourlyRate:   req.HourlyRate,
		Bio:          req.Bio,
		PortfolioURL: req.PortfolioURL,
		ResumeURL:    req.ResumeURL,
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "talent", t)
}

// UploadResume stores the multipart "resume" file and points the talent's
// resumeUrl at it.
func (h *TalentHandler) UploadResume(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramID(c, "id", "Talent")
	if err != nil {
		return fail(c, err)
	}
	if !a.IsTalent() || a.ProfileID != id {
		return fail(c, apperr.Forbidden("You can only update your own profile"))
	}

	fh, err := c.FormFile("resume")
	if err != nil {
		fe := apperr.FieldErrors{}
		fe.Add("resume", "resume file is required")
		return fail(c, apperr.Validation(fe))
	}
	key, contentType, err := storage.DocumentPath("resumes/"+id.String(), fh.Filename)
	if err != nil {
		fe := apperr.FieldErrors{}
		fe.Add("resume", "resume must be a PDF or Word document")
		return fail(c, apperr.Validation(fe))
	}

	f, err := fh.Open()
	if err != nil {
		return fail(c, err)
	}
	defer f.Close()

	ctx := c.UserContext()
	if err := h.Disk.Put(ctx, key, f, contentType); err != nil {
		return fail(c, err)
	}

	t, err := h.Profiles.SetResumeURL(ctx, a, id, h.Disk.URL(key))
	if err != nil {
		if derr := h.Disk.Delete(ctx, key); derr != nil {
			logger.FromCtx(ctx).Warn("remove orphaned resume", "key", key, "err", derr)
		}
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "talent", t)
}

func (h *TalentHandler) Dashboard(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramID(c, "id", "Talent")
	if err != nil {
		return fail(c, err)
	}
	d, err := h.Profiles.TalentDashboard(c.UserContext(), a, id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "dashboard", d)
}
