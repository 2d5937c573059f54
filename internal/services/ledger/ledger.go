// Package ledger records client payments and the talent earnings they produce.
//
// Every payment is split with utils.CalculateCommission: the platform keeps
// 15% of the amount, the talent receives the rest plus any tip. Talent and
// client running totals are updated in the same transaction as the rows.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/models"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/services/gateway"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/utils"
)

type Service struct {
	DB      *gorm.DB
	Gateway gateway.Gateway
}

func NewService(db *gorm.DB, gw gateway.Gateway) *Service {
	return &Service{DB: db, Gateway: gw}
}

type PaymentInput struct {
	ContractID    uuid.UUID
	Amount        decimal.Decimal
	Tip           decimal.Decimal
	PaymentMethod string
}

type Breakdown struct {
	Amount         decimal.Decimal `json:"amount"`
	Commission     decimal.Decimal `json:"commission"`
	Tip            decimal.Decimal `json:"tip"`
	TalentReceives decimal.Decimal `json:"talentReceives"`
	ClientPays     decimal.Decimal `json:"clientPays"`
}

type Result struct {
	Payment   *models.Payment
	Contract  *models.Contract
	Breakdown Breakdown
}

// Split computes the breakdown of a payment of amount plus tip.
func Split(amount, tip decimal.Decimal) Breakdown {
	return Breakdown{
		Amount:         amount,
		Commission:     utils.CalculateCommission(amount),
		Tip:            tip,
		TalentReceives: utils.CalculateTalentEarnings(amount, tip),
		ClientPays:     amount.Add(tip),
	}
}

// wholeCents reports whether d fits a numeric(12,2) column without rounding.
func wholeCents(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(2))
}

// ProcessPayment charges the client through the gateway and records the
// payment, the talent's earning and both running totals.
func (s *Service) ProcessPayment(ctx context.Context, actor models.Actor, in PaymentInput) (*Result, error) {
	fe := apperr.FieldErrors{}
	if in.ContractID == uuid.Nil {
		fe.Add("contractId", "contractId is required")
	}
	if !in.Amount.IsPositive() {
		fe.Add("amount", "amount must be greater than 0")
	} else if !wholeCents(in.Amount) {
		fe.Add("amount", "amount cannot have more than 2 decimal places")
	}
	if in.Tip.IsNegative() {
		fe.Add("tip", "tip cannot be negative")
	} else if !wholeCents(in.Tip) {
		fe.Add("tip", "tip cannot have more than 2 decimal places")
	}
	method, err := gateway.NormalizeMethod(in.PaymentMethod)
	if err != nil {
		fe.Add("paymentMethod", "Unsupported payment method")
	}
	if !fe.Empty() {
		return nil, apperr.Validation(fe)
	}

	var contract models.Contract
	if err := s.DB.WithContext(ctx).Preload("Talent").Preload("Client").
		First(&contract, "id = ?", in.ContractID).Error; err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("Contract")
		}
		return nil, fmt.Errorf("load contract: %w", err)
	}
	if !actor.IsClient() || contract.ClientID != actor.ProfileID {
		return nil, apperr.Forbidden("Only the hiring client can pay this contract")
	}
	if contract.Status == models.ContractCancelled {
		return nil, apperr.Invalid("Cannot pay a cancelled contract")
	}

	split := Split(in.Amount, in.Tip)

	receipt, err := s.Gateway.Charge(ctx, gateway.Charge{
		ContractID: contract.ID,
		Amount:     split.ClientPays,
		Method:     method,
	})
	if err != nil {
		if errors.Is(err, gateway.ErrUnknownMethod) {
			return nil, apperr.Invalid("Unsupported payment method")
		}
		return nil, fmt.Errorf("gateway charge: %w", err)
	}
	raw, err := json.Marshal(receipt)
	if err != nil {
		return nil, fmt.Errorf("encode receipt: %w", err)
	}

	payment := &models.Payment{
		ContractID:     contract.ID,
		ClientID:       contract.ClientID,
		Amount:         split.Amount,
		Commission:     split.Commission,
		Tip:            split.Tip,
		TotalPaid:      split.ClientPays,
		PaymentMethod:  method,
		TransactionRef: receipt.Reference,
		GatewayReceipt: datatypes.JSON(raw),
		Earning: &models.Earning{
			TalentID: contract.TalentID,
			Amount:   split.Amount.Sub(split.Commission),
			Tip:      split.Tip,
		},
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payment).Error; err != nil {
			if apperr.IsUniqueViolation(err) {
				return apperr.Conflict("Duplicate transaction reference")
			}
			return fmt.Errorf("create payment: %w", err)
		}
		if err := creditTalent(tx, contract.TalentID, split.TalentReceives); err != nil {
			return err
		}
		return recordSpend(tx, contract.ClientID, split.ClientPays)
	})
	if err != nil {
		return nil, err
	}

	return &Result{Payment: payment, Contract: &contract, Breakdown: split}, nil
}

// AddTip adds a tip to an existing payment. Tips go to the talent in full.
func (s *Service) AddTip(ctx context.Context, actor models.Actor, paymentID uuid.UUID, tip decimal.Decimal) (*models.Payment, error) {
	if paymentID == uuid.Nil || tip.IsZero() {
		fe := apperr.FieldErrors{}
		if paymentID == uuid.Nil {
			fe.Add("paymentId", "paymentId is required")
		}
		if tip.IsZero() {
			fe.Add("tip", "tip is required")
		}
		return nil, &apperr.Error{Kind: apperr.ErrValidation, Message: "Missing required fields", Fields: fe}
	}
	if tip.IsNegative() || !wholeCents(tip) {
		fe := apperr.FieldErrors{}
		if tip.IsNegative() {
			fe.Add("tip", "tip must be greater than 0")
		} else {
			fe.Add("tip", "tip cannot have more than 2 decimal places")
		}
		return nil, apperr.Validation(fe)
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&payment, "id = ?", paymentID).Error; err != nil {
			if apperr.IsNotFound(err) {
				return apperr.NotFound("Payment")
			}
			return fmt.Errorf("load payment: %w", err)
		}
		if !actor.IsClient() || payment.ClientID != actor.ProfileID {
			return apperr.Forbidden("Only the paying client can tip on this payment")
		}

		if err := tx.Model(&models.Payment{}).Where("id = ?", payment.ID).Updates(map[string]any{
			"tip":        gorm.Expr("tip + ?", tip),
			"total_paid": gorm.Expr("total_paid + ?", tip),
		}).Error; err != nil {
			return fmt.Errorf("tip payment: %w", err)
		}

		var earning models.Earning
		err := tx.Where("payment_id = ?", payment.ID).First(&earning).Error
		switch {
		case err == nil:
			if err := tx.Model(&models.Earning{}).Where("id = ?", earning.ID).
				Update("tip", gorm.Expr("tip + ?", tip)).Error; err != nil {
				return fmt.Errorf("tip earning: %w", err)
			}
			if err := creditTalent(tx, earning.TalentID, tip); err != nil {
				return err
			}
		case !apperr.IsNotFound(err):
			return fmt.Errorf("load earning: %w", err)
		}

		return recordSpend(tx, payment.ClientID, tip)
	})
	if err != nil {
		return nil, err
	}

	var out models.Payment
	if err := s.DB.WithContext(ctx).Preload("Earning").First(&out, "id = ?", paymentID).Error; err != nil {
		return nil, fmt.Errorf("reload payment: %w", err)
	}
	return &out, nil
}

// creditTalent adds amount to the talent's total earnings. Call inside a transaction.
func creditTalent(tx *gorm.DB, talentID uuid.UUID, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return errors.New("amount to credit cannot be negative")
	}
	res := tx.Model(&models.Talent{}).
		Where("id = ?", talentID).
		Update("total_earnings", gorm.Expr("total_earnings + ?", amount))
	if res.Error != nil {
		return fmt.Errorf("credit talent: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Talent")
	}
	return nil
}

// recordSpend adds amount to the client's total spent. Call inside a transaction.
func recordSpend(tx *gorm.DB, clientID uuid.UUID, amount decimal.Decimal) error {
	res := tx.Model(&models.Client{}).
		Where("id = ?", clientID).
		Update("total_spent", gorm.Expr("total_spent + ?", amount))
	if res.Error != nil {
		return fmt.Errorf("record client spend: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Client")
	}
	return nil
}
