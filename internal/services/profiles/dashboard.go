package profiles

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/cache"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/logger"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/models"
)

type TalentStats struct {
	TotalEarnings decimal.Decimal `json:"totalEarnings"`
	TotalClients  int             `json:"totalClients"`
	TotalHours    float64         `json:"totalHours"`
	AverageRating float64         `json:"averageRating"`
}

type TalentDashboard struct {
	Talent struct {
		FullName string `json:"fullName"`
	} `json:"talent"`
	Stats          TalentStats       `json:"stats"`
	ActiveJobs     []models.Contract `json:"activeJobs"`
	RecentEarnings []models.Earning  `json:"recentEarnings"`
}

type ClientStats struct {
	TotalProjects int             `json:"totalProjects"`
	TotalSpent    decimal.Decimal `json:"totalSpent"`
}

type ClientDashboard struct {
	Client struct {
		Name        string `json:"name"`
		CompanyName string `json:"companyName"`
	} `json:"client"`
	Stats      ClientStats       `json:"stats"`
	ActiveJobs []models.Contract `json:"activeJobs"`
	PostedJobs []models.Job      `json:"postedJobs"`
}

// TalentDashboard returns the talent's stats, running contracts and latest
// earnings. Only the talent may see it.
func (s *Service) TalentDashboard(ctx context.Context, actor models.Actor, id uuid.UUID) (*TalentDashboard, error) {
	if !actor.IsTalent() || actor.ProfileID != id {
		return nil, apperr.Forbidden("You can only view your own dashboard")
	}

	key := cache.TalentDashboardKey(id)
	var out TalentDashboard
	if s.Cache.Get(ctx, key, &out) {
		return &out, nil
	}

	var t models.Talent
	err := s.DB.WithContext(ctx).
		Preload("Contracts", "status = ?", models.ContractInProgress).
		Preload("Contracts.Job").
		Preload("Contracts.Client").
		Preload("Earnings", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC").Limit(recentEarnings)
		}).
		First(&t, "id = ?", id).Error
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("Talent")
		}
		return nil, fmt.Errorf("talent dashboard: %w", err)
	}

	out.Talent.FullName = t.FullName
	out.Stats = TalentStats{
		TotalEarnings: t.TotalEarnings,
		TotalClients:  t.TotalClients,
		TotalHours:    t.TotalHours,
		AverageRating: t.AverageRating,
	}
	out.ActiveJobs = nonNil(t.Contracts)
	out.RecentEarnings = nonNil(t.Earnings)

	s.remember(ctx, key, &out)
	return &out, nil
}

// ClientDashboard returns the client's stats, running contracts and posted
// jobs with their applications. Only the client may see it.
func (s *Service) ClientDashboard(ctx context.Context, actor models.Actor, id uuid.UUID) (*ClientDashboard, error) {
	if !actor.IsClient() || actor.ProfileID != id {
		return nil, apperr.Forbidden("You can only view your own dashboard")
	}

	key := cache.ClientDashboardKey(id)
	var out ClientDashboard
	if s.Cache.Get(ctx, key, &out) {
		return &out, nil
	}

	var c models.Client
	err := s.DB.WithContext(ctx).
		Preload("Jobs", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Jobs.Applications").
		Preload("Contracts", "status = ?", models.ContractInProgress).
		Preload("Contracts.Talent").
		Preload("Contracts.Job").
		First(&c, "id = ?", id).Error
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("Client")
		}
		return nil, fmt.Errorf("client dashboard: %w", err)
	}

	out.Client.Name = c.Name
	out.Client.CompanyName = c.CompanyName
	out.Stats = ClientStats{TotalProjects: c.TotalProjects, TotalSpent: c.TotalSpent}
	out.ActiveJobs = nonNil(c.Contracts)
	out.PostedJobs = nonNil(c.Jobs)

	s.remember(ctx, key, &out)
	return &out, nil
}

func (s *Service) remember(ctx context.Context, key string, v any) {
	if err := s.Cache.Set(ctx, key, v); err != nil {
		logger.FromCtx(ctx).Warn("cache write failed", "key", key, "err", err)
	}
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
