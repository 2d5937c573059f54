package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/events"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/metrics"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/models"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/services/contracts"
)

type ContractHandler struct {
	Contracts *contracts.Service
	B         *Broadcaster
}

type CreateContractReq struct {
	JobID      string          `json:"jobId"`
	TalentID   string          `json:"talentId"`
	ClientID   string          `json:"clientId"`
	AgreedRate decimal.Decimal `json:"agreedRate"`
}

type LogHoursReq struct {
	Hours float64 `json:"hours"`
}

type ReviewReq struct {
	Rating  flexInt `json:"rating"`
	Comment string  `json:"comment"`
}

type contractEvent struct {
	ContractID uuid.UUID             `json:"contractId"`
	JobID      uuid.UUID             `json:"jobId"`
	TalentID   uuid.UUID             `json:"talentId"`
	ClientID   uuid.UUID             `json:"clientId"`
	AgreedRate decimal.Decimal       `json:"agreedRate"`
	Status     models.ContractStatus `json:"status"`
}

func newContractEvent(c *models.Contract) contractEvent {
	return contractEvent{
		ContractID: c.ID, JobID: c.JobID, TalentID: c.TalentID, ClientID: c.ClientID,
		AgreedRate: c.AgreedRate, Status: c.Status,
	}
}

func (h *ContractHandler) Create(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	var req CreateContractReq
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	var in contracts.CreateInput
	in.AgreedRate = req.AgreedRate
	if in.JobID, err = optionalUUID("jobId", req.JobID); err != nil {
		return fail(c, err)
	}
	if in.TalentID, err = optionalUUID("talentId", req.TalentID); err != nil {
		return fail(c, err)
	}
	if in.ClientID, err = optionalUUID("clientId", req.ClientID); err != nil {
		return fail(c, err)
	}

	ctx := c.UserContext()
	contract, err := h.Contracts.Create(ctx, a, in)
	if err != nil {
		return fail(c, err)
	}

	metrics.ContractsCreated.Inc()
	h.B.Touch(ctx, contract.TalentID, contract.ClientID)
	h.B.NotifyTalent(ctx, contract.TalentID, NotifyContractCreated, fiber.Map{
		"contractId": contract.ID, "jobId": contract.JobID, "agreedRate": contract.AgreedRate,
	})
	h.B.Publish(ctx, events.ContractCreated, newContractEvent(contract))

	return ok(c, fiber.StatusCreated, "contract", contract)
}

func (h *ContractHandler) Get(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramID(c, "id", "Contract")
	if err != nil {
		return fail(c, err)
	}
	contract, err := h.Contracts.Get(c.UserContext(), a, id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "contract", contract)
}

func (h *ContractHandler) LogHours(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramID(c, "id", "Contract")
	if err != nil {
		return fail(c, err)
	}
	var req LogHoursReq
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	ctx := c.UserContext()
	contract, err := h.Contracts.LogHours(ctx, a, id, req.Hours)
	if err != nil {
		return fail(c, err)
	}
	h.B.Touch(ctx, contract.TalentID, contract.ClientID)
	return ok(c, fiber.StatusOK, "contract", contract)
}

func (h *ContractHandler) Complete(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramID(c, "id", "Contract")
	if err != nil {
		return fail(c, err)
	}

	ctx := c.UserContext()
	contract, err := h.Contracts.Complete(ctx, a, id)
	if err != nil {
		return fail(c, err)
	}

	h.B.Touch(ctx, contract.TalentID, contract.ClientID)
	h.B.NotifyTalent(ctx, contract.TalentID, NotifyContractCompleted, fiber.Map{
		"contractId": contract.ID, "jobId": contract.JobID,
	})
	h.B.Publish(ctx, events.ContractCompleted, newContractEvent(contract))

	return ok(c, fiber.StatusOK, "contract", contract)
}

func (h *ContractHandler) Review(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramID(c, "id", "Contract")
	if err != nil {
		return fail(c, err)
	}
	var req ReviewReq
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if req.Rating == 0 {
		fe := apperr.FieldErrors{}
		fe.Add("rating", "rating is required")
		return fail(c, apperr.Validation(fe))
	}

	ctx := c.UserContext()
	review, err := h.Contracts.Review(ctx, a, id, int(req.Rating), req.Comment)
	if err != nil {
		return fail(c, err)
	}
	h.B.Touch(ctx, review.TalentID, uuid.Nil)
	return ok(c, fiber.StatusCreated, "review", review)
}
