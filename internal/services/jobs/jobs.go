// Package jobs manages job listings and the applications made against them.
package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/models"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/utils"
)

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

type CreateInput struct {
	ClientID       uuid.UUID
	Title          string
	Description    string
	RequiredSkills []string
	HourlyRate     decimal.Decimal
	EstimatedHours *float64
}

// Listing is a job row with the number of applications it received.
type Listing struct {
	Job              models.Job
	ApplicationCount int64
}

// Update carries the only job fields a client may change. Nil means unchanged.
type Update struct {
	Title          *string
	Description    *string
	RequiredSkills []string
	HourlyRate     *decimal.Decimal
	EstimatedHours *float64
	Status         *models.JobStatus
}

func (s *Service) Create(ctx context.Context, actor models.Actor, in CreateInput) (*models.Job, error) {
	title := strings.TrimSpace(in.Title)
	desc := strings.TrimSpace(in.Description)

	fe := apperr.FieldErrors{}
	if in.ClientID == uuid.Nil {
		fe.Add("clientId", "clientId is required")
	}
	if title == "" {
		fe.Add("title", "title is required")
	}
	if desc == "" {
		fe.Add("description", "description is required")
	}
	if !in.HourlyRate.IsPositive() {
		fe.Add("hourlyRate", "hourlyRate must be greater than 0")
	}
	if !fe.Empty() {
		return nil, &apperr.Error{Kind: apperr.ErrValidation, Message: "Missing required fields", Fields: fe}
	}
	if in.EstimatedHours != nil && *in.EstimatedHours <= 0 {
		fe.Add("estimatedHours", "estimatedHours must be greater than 0")
		return nil, apperr.Validation(fe)
	}
	if !actor.IsClient() || actor.ProfileID != in.ClientID {
		return nil, apperr.Forbidden("You can only post jobs for your own client profile")
	}

	job := &models.Job{
		ClientID:       in.ClientID,
		Title:          title,
		Description:    desc,
		RequiredSkills: utils.CleanList(in.RequiredSkills),
		HourlyRate:     in.HourlyRate,
		EstimatedHours: in.EstimatedHours,
		Status:         models.JobOpen,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Client{}).
			Where("id = ?", in.ClientID).
			Update("total_projects", gorm.Expr("total_projects + ?", 1))
		if res.Error != nil {
			return fmt.Errorf("increment total projects: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("Client")
		}
		if err := tx.Create(job).Error; err != nil {
			return fmt.Errorf("create job: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// List returns jobs newest first, optionally filtered by status.
func (s *Service) List(ctx context.Context, status models.JobStatus) ([]Listing, error) {
	if status != "" && !status.Valid() {
		return nil, apperr.Invalid("Unknown job status")
	}

	q := s.DB.WithContext(ctx).Preload("Client").Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var jobs []models.Job
	if err := q.Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	if len(jobs) == 0 {
		return []Listing{}, nil
	}

	ids := make([]uuid.UUID, len(jobs))
	for i := range jobs {
		ids[i] = jobs[i].ID
	}
	var rows []struct {
		JobID uuid.UUID
		N     int64
	}
	if err := s.DB.WithContext(ctx).Model(&models.Application{}).
		Select("job_id, COUNT(*) AS n").
		Where("job_id IN ?", ids).
		Group("job_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		counts[r.JobID] = r.N
	}

	out := make([]Listing, len(jobs))
	for i, j := range jobs {
		out[i] = Listing{Job: j, ApplicationCount: counts[j.ID]}
	}
	return out, nil
}

// Get returns a job with its client, contract and applications with talents.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	err := s.DB.WithContext(ctx).
		Preload("Client").
		Preload("Contract").
		Preload("Applications", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Applications.Talent").
		First(&job, "id = ?", id).Error
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("Job")
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &job, nil
}

func (s *Service) Update(ctx context.Context, actor models.Actor, id uuid.UUID, upd Update) (*models.Job, error) {
	fields := map[string]any{}
	fe := apperr.FieldErrors{}

	if upd.Title != nil {
		if t := strings.TrimSpace(*upd.Title); t == "" {
			fe.Add("title", "title cannot be empty")
		} else {
			fields["title"] = t
		}
	}
	if upd.Description != nil {
		if d := strings.TrimSpace(*upd.Description); d == "" {
			fe.Add("description", "description cannot be empty")
		} else {
			fields["description"] = d
		}
	}
	if upd.RequiredSkills != nil {
		fields["required_skills"] = models.StringArray(utils.CleanList(upd.RequiredSkills))
	}
	if upd.HourlyRate != nil {
		if !upd.HourlyRate.IsPositive() {
			fe.Add("hourlyRate", "hourlyRate must be greater than 0")
		} else {
			fields["hourly_rate"] = *upd.HourlyRate
		}
	}
	if upd.EstimatedHours != nil {
		if *upd.EstimatedHours <= 0 {
			fe.Add("estimatedHours", "estimatedHours must be greater than 0")
		} else {
			fields["estimated_hours"] = *upd.EstimatedHours
		}
	}
	if upd.Status != nil && !upd.Status.Valid() {
		fe.Add("status", "Unknown job status")
	}
	if !fe.Empty() {
		return nil, apperr.Validation(fe)
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		job, err := lockJob(tx, id)
		if err != nil {
			return err
		}
		if !actor.IsClient() || job.ClientID != actor.ProfileID {
			return apperr.Forbidden("Only the job owner can update this job")
		}

		if upd.Status != nil && *upd.Status != job.Status {
			next := *upd.Status
			if !job.Status.CanTransitionTo(next) {
				return apperr.InvalidTransition(string(job.Status), string(next))
			}
			fields["status"] = next
			if err := settleContract(tx, job.ID, next); err != nil {
				return err
			}
		}

		if len(fields) == 0 {
			return nil
		}
		if err := tx.Model(&models.Job{}).Where("id = ?", job.ID).Updates(fields).Error; err != nil {
			return fmt.Errorf("update job: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// settleContract mirrors a terminal job status onto the job's running contract.
func settleContract(tx *gorm.DB, jobID uuid.UUID, next models.JobStatus) error {
	fields := map[string]any{}
	switch next {
	case models.JobCompleted:
		fields["status"] = models.ContractCompleted
		fields["completed_at"] = time.Now()
	case models.JobCancelled:
		fields["status"] = models.ContractCancelled
	default:
		return nil
	}
	err := tx.Model(&models.Contract{}).
		Where("job_id = ? AND status = ?", jobID, models.ContractInProgress).
		Updates(fields).Error
	if err != nil {
		return fmt.Errorf("settle contract: %w", err)
	}
	return nil
}

// Delete removes a job with its applications and its contract. Jobs whose
// contract already has payments are kept.
func (s *Service) Delete(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		job, err := lockJob(tx, id)
		if err != nil {
			return err
		}
		if !actor.IsClient() || job.ClientID != actor.ProfileID {
			return apperr.Forbidden("Only the job owner can delete this job")
		}

		var contract models.Contract
		err = tx.Where("job_id = ?", id).First(&contract).Error
		switch {
		case err == nil:
			var paid int64
			if err := tx.Model(&models.Payment{}).Where("contract_id = ?", contract.ID).Count(&paid).Error; err != nil {
				return fmt.Errorf("count payments: %w", err)
			}
			if paid > 0 {
				return apperr.Conflict("Job has payments and cannot be deleted")
			}
			if err := tx.Where("contract_id = ?", contract.ID).Delete(&models.Review{}).Error; err != nil {
				return fmt.Errorf("delete reviews: %w", err)
			}
			if err := tx.Delete(&contract).Error; err != nil {
				return fmt.Errorf("delete contract: %w", err)
			}
		case !apperr.IsNotFound(err):
			return fmt.Errorf("find contract: %w", err)
		}

		if err := tx.Where("job_id = ?", id).Delete(&models.Application{}).Error; err != nil {
			return fmt.Errorf("delete applications: %w", err)
		}
		if err := tx.Delete(&models.Job{}, "id = ?", job.ID).Error; err != nil {
			return fmt.Errorf("delete job: %w", err)
		}
		return nil
	})
}

func lockJob(tx *gorm.DB, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&job, "id = ?", id).Error
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("Job")
		}
		return nil, fmt.Errorf("load job: %w", err)
	}
	return &job, nil
}
