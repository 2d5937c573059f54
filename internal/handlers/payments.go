package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/events"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/metrics"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/services/gateway"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/services/ledger"
)

type PaymentHandler struct {
	Ledger  *ledger.Service
	Gateway gateway.Gateway
	B       *Broadcaster
}

type PaymentReq struct {
	ContractID    string          `json:"contractId"`
	Amount        decimal.Decimal `json:"amount"`
	Tip           decimal.Decimal `json:"tip"`
	PaymentMethod string          `json:"paymentMethod"`
}

type TipReq struct {
	PaymentID string          `json:"paymentId"`
	Tip       decimal.Decimal `json:"tip"`
}

type paymentEvent struct {
	PaymentID      uuid.UUID        `json:"paymentId"`
	ContractID     uuid.UUID        `json:"contractId"`
	TransactionRef string           `json:"transactionRef"`
	PaymentMethod  string           `json:"paymentMethod"`
	Breakdown      ledger.Breakdown `json:"breakdown"`
}

type tipEvent struct {
	PaymentID uuid.UUID       `json:"paymentId"`
	Tip       decimal.Decimal `json:"tip"`
	TotalPaid decimal.Decimal `json:"totalPaid"`
}

// Channels lists the payment methods the gateway accepts.
func (h *PaymentHandler) Channels(c *fiber.Ctx) error {
	return ok(c, fiber.StatusOK, "channels", h.Gateway.Channels())
}

func (h *PaymentHandler) Process(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	var req PaymentReq
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	contractID, err := optionalUUID("contractId", req.ContractID)
	if err != nil {
		return fail(c, err)
	}

	ctx := c.UserContext()
	res, err := h.Ledger.ProcessPayment(ctx, a, ledger.PaymentInput{
		ContractID:    contractID,
		Amount:        req.Amount,
		Tip:           req.Tip,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return fail(c, err)
	}

	p := res.Payment
	metrics.PaymentsProcessed.WithLabelValues(p.PaymentMethod).Inc()
	metrics.MoneyMoved.WithLabelValues("paid").Add(res.Breakdown.ClientPays.InexactFloat64())
	metrics.MoneyMoved.WithLabelValues("commission").Add(res.Breakdown.Commission.InexactFloat64())
	if res.Breakdown.Tip.IsPositive() {
		metrics.MoneyMoved.WithLabelValues("tip").Add(res.Breakdown.Tip.InexactFloat64())
	}

	h.B.Touch(ctx, res.Contract.TalentID, res.Contract.ClientID)
	h.B.NotifyTalent(ctx, res.Contract.TalentID, NotifyPaymentReceived, fiber.Map{
		"paymentId": p.ID, "contractId": p.ContractID, "amount": res.Breakdown.TalentReceives,
	})
	h.B.Publish(ctx, events.PaymentProcessed, paymentEvent{
		PaymentID:      p.ID,
		ContractID:     p.ContractID,
		TransactionRef: p.TransactionRef,
		PaymentMethod:  p.PaymentMethod,
		Breakdown:      res.Breakdown,
	})

	return ok(c, fiber.StatusCreated, "payment", p, fiber.Map{"breakdown": res.Breakdown})
}

func (h *PaymentHandler) Tip(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	var req TipReq
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	paymentID, err := optionalUUID("paymentId", req.PaymentID)
	if err != nil {
		return fail(c, err)
	}

	ctx := c.UserContext()
	p, err := h.Ledger.AddTip(ctx, a, paymentID, req.Tip)
	if err != nil {
		return fail(c, err)
	}

	metrics.MoneyMoved.WithLabelValues("tip").Add(req.Tip.InexactFloat64())
	talentID := uuid.Nil
	if p.Earning != nil {
		talentID = p.Earning.TalentID
		h.B.NotifyTalent(ctx, talentID, NotifyTipReceived, fiber.Map{
			"paymentId": p.ID, "tip": req.Tip,
		})
	}
	h.B.Touch(ctx, talentID, p.ClientID)
	h.B.Publish(ctx, events.PaymentTipped, tipEvent{PaymentID: p.ID, Tip: req.Tip, TotalPaid: p.TotalPaid})

	return ok(c, fiber.StatusOK, "payment", p, fiber.Map{"message": "Tip added successfully"})
}
