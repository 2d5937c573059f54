// Package contracts hires talents for jobs and tracks the work done under a
// contract until it is completed and reviewed.
package contracts

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/models"
)

var errJobTaken = apperr.Conflict("Job already has a contract")

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

type CreateInput struct {
	JobID      uuid.UUID
	TalentID   uuid.UUID
	ClientID   uuid.UUID
	AgreedRate decimal.Decimal
}

// Create hires a talent for an OPEN job. A job carries at most one contract.
func (s *Service) Create(ctx context.Context, actor models.Actor, in CreateInput) (*models.Contract, error) {
	fe := apperr.FieldErrors{}
	if in.JobID == uuid.Nil {
		fe.Add("jobId", "jobId is required")
	}
	if in.TalentID == uuid.Nil {
		fe.Add("talentId", "talentId is required")
	}
	if in.ClientID == uuid.Nil {
		fe.Add("clientId", "clientId is required")
	}
	if !in.AgreedRate.IsPositive() {
		fe.Add("agreedRate", "agreedRate must be greater than 0")
	}
	if !fe.Empty() {
		return nil, &apperr.Error{Kind: apperr.ErrValidation, Message: "Missing required fields", Fields: fe}
	}
	if !actor.IsClient() || actor.ProfileID != in.ClientID {
		return nil, apperr.Forbidden("You can only hire for your own client profile")
	}

	contract := &models.Contract{
		JobID:      in.JobID,
		TalentID:   in.TalentID,
		ClientID:   in.ClientID,
		AgreedRate: in.AgreedRate,
		Status:     models.ContractInProgress,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.Job
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&job, "id = ?", in.JobID).Error; err != nil {
			if apperr.IsNotFound(err) {
				return apperr.NotFound("Job")
			}
			return fmt.Errorf("load job: %w", err)
		}

		var taken int64
		if err := tx.Model(&models.Contract{}).Where("job_id = ?", job.ID).Count(&taken).Error; err != nil {
			return fmt.Errorf("check contract: %w", err)
		}
		if taken > 0 {
			return errJobTaken
		}
		if job.ClientID != in.ClientID {
			return apperr.Forbidden("Job belongs to another client")
		}
		if job.Status != models.JobOpen {
			return apperr.Invalid("Job is not open for hiring")
		}

		res := tx.Model(&models.Talent{}).
			Where("id = ?", in.TalentID).
			Update("total_clients", gorm.Expr("total_clients + ?", 1))
		if res.Error != nil {
			return fmt.Errorf("increment total clients: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("Talent")
		}

		if err := tx.Create(contract).Error; err != nil {
			if apperr.IsUniqueViolation(err) {
				return errJobTaken
			}
			return fmt.Errorf("create contract: %w", err)
		}
		if err := tx.Model(&models.Job{}).Where("id = ?", job.ID).
			Update("status", models.JobInProgress).Error; err != nil {
			return fmt.Errorf("start job: %w", err)
		}
		if err := tx.Model(&models.Application{}).
			Where("job_id = ? AND talent_id = ? AND status = ?", job.ID, in.TalentID, models.ApplicationPending).
			Update("status", models.ApplicationAccepted).Error; err != nil {
			return fmt.Errorf("accept application: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return contract, nil
}

// Get returns a contract with its job, talent and client. Only the two
// parties may read it.
func (s *Service) Get(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Contract, error) {
	var c models.Contract
	err := s.DB.WithContext(ctx).
		Preload("Job").Preload("Talent").Preload("Client").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		First(&c, "id = ?", id).Error
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("Contract")
		}
		return nil, fmt.Errorf("get contract: %w", err)
	}
	if !isParty(actor, &c) {
		return nil, apperr.Forbidden("You are not a party to this contract")
	}
	return &c, nil
}

// LogHours records hours worked by the contract's talent.
func (s *Service) LogHours(ctx context.Context, actor models.Actor, id uuid.UUID, hours float64) (*models.Contract, error) {
	if hours <= 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		fe := apperr.FieldErrors{}
		fe.Add("hours", "hours must be greater than 0")
		return nil, apperr.Validation(fe)
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := lockContract(tx, id)
		if err != nil {
			return err
		}
		if !actor.IsTalent() || c.TalentID != actor.ProfileID {
			return apperr.Forbidden("Only the hired talent can log hours")
		}
		if c.Status != models.ContractInProgress {
			return apperr.Invalid("Hours can only be logged on a contract in progress")
		}

		if err := tx.Model(&models.Contract{}).Where("id = ?", c.ID).
			Update("hours_worked", gorm.Expr("hours_worked + ?", hours)).Error; err != nil {
			return fmt.Errorf("log contract hours: %w", err)
		}
		if err := tx.Model(&models.Talent{}).Where("id = ?", c.TalentID).
			Update("total_hours", gorm.Expr("total_hours + ?", hours)).Error; err != nil {
			return fmt.Errorf("log talent hours: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, id)
}

// Complete closes a running contract and its job.
func (s *Service) Complete(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Contract, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := lockContract(tx, id)
		if err != nil {
			return err
		}
		if !actor.IsClient() || c.ClientID != actor.ProfileID {
			return apperr.Forbidden("Only the hiring client can complete this contract")
		}
		if c.Status != models.ContractInProgress {
			return apperr.InvalidTransition(string(c.Status), string(models.ContractCompleted))
		}

		now := time.Now()
		if err := tx.Model(&models.Contract{}).Where("id = ?", c.ID).Updates(map[string]any{
			"status":       models.ContractCompleted,
			"completed_at": now,
		}).Error; err != nil {
			return fmt.Errorf("complete contract: %w", err)
		}
		if err := tx.Model(&models.Job{}).Where("id = ?", c.JobID).
			Update("status", models.JobCompleted).Error; err != nil {
			return fmt.Errorf("complete job: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, id)
}

// Review rates the talent of a completed contract, once, and refreshes the
// talent's average rating.
func (s *Service) Review(ctx context.Context, actor models.Actor, id uuid.UUID, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		fe := apperr.FieldErrors{}
		fe.Add("rating", "rating must be between 1 and 5")
		return nil, apperr.Validation(fe)
	}

	var review *models.Review
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := lockContract(tx, id)
		if err != nil {
			return err
		}
		if !actor.IsClient() || c.ClientID != actor.ProfileID {
			return apperr.Forbidden("Only the hiring client can review this contract")
		}
		if c.Status != models.ContractCompleted {
			return apperr.Invalid("Only completed contracts can be reviewed")
		}

		var n int64
		if err := tx.Model(&models.Review{}).Where("contract_id = ?", c.ID).Count(&n).Error; err != nil {
			return fmt.Errorf("check review: %w", err)
		}
		if n > 0 {
			return apperr.Conflict("Contract already reviewed")
		}

		review = &models.Review{
			ContractID: c.ID,
			ClientID:   c.ClientID,
			TalentID:   c.TalentID,
			Rating:     rating,
			Comment:    strings.TrimSpace(comment),
		}
		if err := tx.Create(review).Error; err != nil {
			if apperr.IsUniqueViolation(err) {
				return apperr.Conflict("Contract already reviewed")
			}
			return fmt.Errorf("create review: %w", err)
		}

		var avg float64
		if err := tx.Model(&models.Review{}).
			Select("COALESCE(AVG(rating), 0)").
			Where("talent_id = ?", c.TalentID).
			Scan(&avg).Error; err != nil {
			return fmt.Errorf("average rating: %w", err)
		}
		if err := tx.Model(&models.Talent{}).Where("id = ?", c.TalentID).
			Update("average_rating", math.Round(avg*100)/100).Error; err != nil {
			return fmt.Errorf("update rating: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

func lockContract(tx *gorm.DB, id uuid.UUID) (*models.Contract, error) {
	var c models.Contract
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, "id = ?", id).Error
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("Contract")
		}
		return nil, fmt.Errorf("load contract: %w", err)
	}
	return &c, nil
}

func isParty(actor models.Actor, c *models.Contract) bool {
	switch {
	case actor.IsClient():
		return c.ClientID == actor.ProfileID
	case actor.IsTalent():
		return c.TalentID == actor.ProfileID
	}
	return false
}
