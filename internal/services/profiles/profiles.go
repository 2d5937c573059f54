// Package profiles serves talent and client profiles, talent search and the
// two dashboards.
package profiles

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/cache"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/logger"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/models"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/utils"
)

const recentEarnings = 10

type Service struct {
	DB    *gorm.DB
	Cache *cache.Cache
}

func NewService(db *gorm.DB, c *cache.Cache) *Service {
	return &Service{DB: db, Cache: c}
}

type TalentFilter struct {
	Skill   string
	State   string
	MinRate *decimal.Decimal
	MaxRate *decimal.Decimal
}

// talentCard lists the columns a public search may expose.
var talentCard = []string{
	"id", "full_name", "state", "skills", "hourly_rate", "years_experience",
	"average_rating", "bio", "portfolio_url", "created_at",
}

// SearchTalents returns public talent summaries; contact details and totals
// stay private.
func (s *Service) SearchTalents(ctx context.Context, f TalentFilter) ([]models.TalentSummary, error) {
	q := s.DB.WithContext(ctx).Model(&models.Talent{}).Select(talentCard)

	if skill := strings.TrimSpace(f.Skill); skill != "" {
		if s.DB.Dialector.Name() == "postgres" {
			q = q.Where("? = ANY(skills)", skill)
		} else {
			q = q.Where("skills LIKE ?", `%"`+skill+`"%`)
		}
	}
	if state := strings.TrimSpace(f.State); state != "" {
		if canonical, ok := utils.NormalizeState(state); ok {
			state = canonical
		}
		q = q.Where("state = ?", state)
	}
	if f.MinRate != nil {
		q = q.Where("hourly_rate >= ?", *f.MinRate)
	}
	if f.MaxRate != nil {
		q = q.Where("hourly_rate <= ?", *f.MaxRate)
	}

	var talents []models.Talent
	if err := q.Order("average_rating DESC").Order("created_at ASC").Find(&talents).Error; err != nil {
		return nil, fmt.Errorf("search talents: %w", err)
	}

	out := make([]models.TalentSummary, 0, len(talents))
	for i := range talents {
		out = append(out, *talents[i].Summary())
	}
	return out, nil
}

func (s *Service) Talent(ctx context.Context, id uuid.UUID) (*models.Talent, error) {
	var t models.Talent
	if err := s.DB.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("Talent")
		}
		return nil, fmt.Errorf("get talent: %w", err)
	}
	return &t, nil
}

func (s *Service) Client(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var c models.Client
	if err := s.DB.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("Client")
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return &c, nil
}

// TalentUpdate lists the talent fields a talent may edit. Nil means unchanged.
type TalentUpdate struct {
	FullName     *string
	PhoneNumber  *string
	State        *string
	Skills       []string
	HourlyRate   *decimal.Decimal
	Bio          *string
	PortfolioURL *string
	ResumeURL    *string
}

func (s *Service) UpdateTalent(ctx context.Context, actor models.Actor, id uuid.UUID, upd TalentUpdate) (*models.Talent, error) {
	if !actor.IsTalent() || actor.ProfileID != id {
		return nil, apperr.Forbidden("You can only update your own profile")
	}

	fields := map[string]any{}
	fe := apperr.FieldErrors{}

	if upd.FullName != nil {
		if v := strings.TrimSpace(*upd.FullName); v == "" {
			fe.Add("fullName", "fullName cannot be empty")
		} else {
			fields["full_name"] = v
		}
	}
	if upd.PhoneNumber != nil {
		if v := strings.TrimSpace(*upd.PhoneNumber); !utils.ValidateNigerianPhone(v) {
			fe.Add("phoneNumber", "Phone number must be a valid Nigerian number")
		} else {
			fields["phone_number"] = v
		}
	}
	if upd.State != nil {
		if v, ok := utils.NormalizeState(*upd.State); !ok {
			fe.Add("state", "State must be a Nigerian state")
		} else {
			fields["state"] = v
		}
	}
	if upd.Skills != nil {
		fields["skills"] = models.StringArray(utils.CleanList(upd.Skills))
	}
	if upd.HourlyRate != nil {
		if !upd.HourlyRate.IsPositive() {
			fe.Add("hourlyRate", "hourlyRate must be greater than 0")
		} else {
			fields["hourly_rate"] = *upd.HourlyRate
		}
	}
	if upd.Bio != nil {
		fields["bio"] = strings.TrimSpace(*upd.Bio)
	}
	if upd.PortfolioURL != nil {
		fields["portfolio_url"] = strings.TrimSpace(*upd.PortfolioURL)
	}
	if upd.ResumeURL != nil {
		fields["resume_url"] = strings.TrimSpace(*upd.ResumeURL)
	}
	if !fe.Empty() {
		return nil, apperr.Validation(fe)
	}

	if len(fields) > 0 {
		res := s.DB.WithContext(ctx).Model(&models.Talent{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, fmt.Errorf("update talent: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, apperr.NotFound("Talent")
		}
		s.forget(ctx, cache.TalentDashboardKey(id))
	}
	return s.Talent(ctx, id)
}

// SetResumeURL points the talent's resume at an uploaded document.
func (s *Service) SetResumeURL(ctx context.Context, actor models.Actor, id uuid.UUID, url string) (*models.Talent, error) {
	return s.UpdateTalent(ctx, actor, id, TalentUpdate{ResumeURL: &url})
}

type ClientUpdate struct {
	Name        *string
	CompanyName *string
	Country     *string
	Industry    *string
}

func (s *Service) UpdateClient(ctx context.Context, actor models.Actor, id uuid.UUID, upd ClientUpdate) (*models.Client, error) {
	if !actor.IsClient() || actor.ProfileID != id {
		return nil, apperr.Forbidden("You can only update your own profile")
	}

	fields := map[string]any{}
	fe := apperr.FieldErrors{}
	if upd.Name != nil {
		if v := strings.TrimSpace(*upd.Name); v == "" {
			fe.Add("name", "name cannot be empty")
		} else {
			fields["name"] = v
		}
	}
	if upd.Country != nil {
		if v := strings.TrimSpace(*upd.Country); v == "" {
			fe.Add("country", "country cannot be empty")
		} else {
			fields["country"] = v
		}
	}
	if upd.CompanyName != nil {
		fields["company_name"] = strings.TrimSpace(*upd.CompanyName)
	}
	if upd.Industry != nil {
		fields["industry"] = strings.TrimSpace(*upd.Industry)
	}
	if !fe.Empty() {
		return nil, apperr.Validation(fe)
	}

	if len(fields) > 0 {
		res := s.DB.WithContext(ctx).Model(&models.Client{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, fmt.Errorf("update client: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, apperr.NotFound("Client")
		}
		s.forget(ctx, cache.ClientDashboardKey(id))
	}
	return s.Client(ctx, id)
}

func (s *Service) forget(ctx context.Context, keys ...string) {
	if err := s.Cache.Del(ctx, keys...); err != nil {
		logger.FromCtx(ctx).Warn("cache invalidation failed", "keys", keys, "err", err)
	}
}
