package jobs

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/models"
)

var errAlreadyApplied = apperr.Conflict("Already applied to this job")

type ApplyInput struct {
	JobID        uuid.UUID
	TalentID     uuid.UUID
	ProposedRate decimal.Decimal
	CoverLetter  string
}

// Apply submits a PENDING application for an OPEN job. A talent applies to a
// job at most once.
func (s *Service) Apply(ctx context.Context, actor models.Actor, in ApplyInput) (*models.Application, error) {
	fe := apperr.FieldErrors{}
	if in.TalentID == uuid.Nil {
		fe.Add("talentId", "talentId is required")
	}
	if !in.ProposedRate.IsPositive() {
		fe.Add("proposedRate", "proposedRate must be greater than 0")
	}
	if !fe.Empty() {
		return nil, &apperr.Error{Kind: apperr.ErrValidation, Message: "Missing required fields", Fields: fe}
	}
	if !actor.IsTalent() || actor.ProfileID != in.TalentID {
		return nil, apperr.Forbidden("You can only apply with your own talent profile")
	}

	app := &models.Application{
		JobID:        in.JobID,
		TalentID:     in.TalentID,
		CoverLetter:  strings.TrimSpace(in.CoverLetter),
		ProposedRate: in.ProposedRate,
		Status:       models.ApplicationPending,
	}

	var job models.Job
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&job, "id = ?", in.JobID).Error; err != nil {
			if apperr.IsNotFound(err) {
				return apperr.NotFound("Job")
			}
			return fmt.Errorf("load job: %w", err)
		}
		if job.Status != models.JobOpen {
			return apperr.Invalid("Job is not open for applications")
		}

		var talents int64
		if err := tx.Model(&models.Talent{}).Where("id = ?", in.TalentID).Count(&talents).Error; err != nil {
			return fmt.Errorf("load talent: %w", err)
		}
		if talents == 0 {
			return apperr.NotFound("Talent")
		}

		var existing int64
		if err := tx.Model(&models.Application{}).
			Where("job_id = ? AND talent_id = ?", in.JobID, in.TalentID).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("check application: %w", err)
		}
		if existing > 0 {
			return errAlreadyApplied
		}

		if err := tx.Create(app).Error; err != nil {
			if apperr.IsUniqueViolation(err) {
				return errAlreadyApplied
			}
			return fmt.Errorf("create application: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	app.Job = &job
	return app, nil
}

// Applications lists every application of a job with the applying talent.
func (s *Service) Applications(ctx context.Context, jobID uuid.UUID) ([]models.Application, error) {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.Job{}).Where("id = ?", jobID).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	if n == 0 {
		return nil, apperr.NotFound("Job")
	}

	apps := []models.Application{}
	err := s.DB.WithContext(ctx).
		Preload("Talent").
		Where("job_id = ?", jobID).
		Order("created_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// SetApplicationStatus moves an application through its state machine. Clients
// accept or reject; talents withdraw.
func (s *Service) SetApplicationStatus(ctx context.Context, actor models.Actor, jobID, appID uuid.UUID, next models.ApplicationStatus) (*models.Application, error) {
	if !next.Valid() {
		fe := apperr.FieldErrors{}
		fe.Add("status", "Unknown application status")
		return nil, apperr.Validation(fe)
	}

	var app *models.Application
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		app, err = s.ownedApplication(tx, actor, jobID, appID)
		if err != nil {
			return err
		}
		if !app.Status.CanTransitionTo(next, actor.Type) {
			return apperr.InvalidTransition(string(app.Status), string(next))
		}
		if err := tx.Model(&models.Application{}).Where("id = ?", app.ID).Update("status", next).Error; err != nil {
			return fmt.Errorf("update application: %w", err)
		}
		app.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// DeleteApplication removes an application on behalf of the job owner or the
// applying talent.
func (s *Service) DeleteApplication(ctx context.Context, actor models.Actor, jobID, appID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		app, err := s.ownedApplication(tx, actor, jobID, appID)
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.Application{}, "id = ?", app.ID).Error; err != nil {
			return fmt.Errorf("delete application: %w", err)
		}
		return nil
	})
}

// ownedApplication loads an application of jobID that actor is a party to.
func (s *Service) ownedApplication(tx *gorm.DB, actor models.Actor, jobID, appID uuid.UUID) (*models.Application, error) {
	var app models.Application
	err := tx.Preload("Job").Preload("Talent").
		Where("id = ? AND job_id = ?", appID, jobID).
		First(&app).Error
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("Application")
		}
		return nil, fmt.Errorf("load application: %w", err)
	}

	switch {
	case actor.IsClient() && app.Job != nil && app.Job.ClientID == actor.ProfileID:
	case actor.IsTalent() && app.TalentID == actor.ProfileID:
	default:
		return nil, apperr.Forbidden("You are not a party to this application")
	}
	return &app, nil
}
