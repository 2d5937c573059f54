// Package account registers talents and clients and verifies credentials.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/models"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/utils"
)

const minPasswordLen = 8

var errUserExists = apperr.Conflict("User already exists")

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

type TalentRegistration struct {
	Email           string
	Password        string
	FullName        string
	PhoneNumber     string
	State           string
	SkillCategory   string
	Skills          []string
	YearsExperience int
	HourlyRate      decimal.Decimal
	PortfolioURL    string
	ResumeURL       string
}

type ClientRegistration struct {
	Email          string
	Password       string
	Name           string
	CompanyName    string
	Country        string
	Industry       string
	BudgetRangeMin decimal.NullDecimal
	BudgetRangeMax decimal.NullDecimal
}

func (s *Service) RegisterTalent(ctx context.Context, in TalentRegistration) (*models.User, error) {
	email := utils.NormalizeEmail(in.Email)
	fullName := strings.TrimSpace(in.FullName)
	phone := strings.TrimSpace(in.PhoneNumber)

	fe := apperr.FieldErrors{}
	required(fe, "email", email)
	required(fe, "password", in.Password)
	required(fe, "fullName", fullName)
	required(fe, "phoneNumber", phone)
	required(fe, "state", in.State)
	if !fe.Empty() {
		return nil, missingFields(fe)
	}

	checkCredentials(fe, email, in.Password)
	if !utils.ValidateNigerianPhone(phone) {
		fe.Add("phoneNumber", "Phone number must be a valid Nigerian number")
	}
	state, ok := utils.NormalizeState(in.State)
	if !ok {
		fe.Add("state", "State must be a Nigerian state")
	}
	category := models.SkillCategory(strings.ToUpper(strings.TrimSpace(in.SkillCategory)))
	if category == "" {
		category = models.SkillTechnical
	} else if !category.Valid() {
		fe.Add("skillCategory", "Skill category must be TECHNICAL or NON_TECHNICAL")
	}
	if in.YearsExperience < 0 {
		fe.Add("yearsExperience", "Years of experience cannot be negative")
	}
	if in.HourlyRate.IsNegative() {
		fe.Add("hourlyRate", "Hourly rate cannot be negative")
	}
	if !fe.Empty() {
		return nil, apperr.Validation(fe)
	}

	rate := in.HourlyRate
	if rate.IsZero() {
		rate = models.DefaultHourlyRate
	}

	u := &models.User{
		Email:    email,
		UserType: models.UserTypeTalent,
		IsActive: true,
		Talent: &models.Talent{
			FullName:        fullName,
			PhoneNumber:     phone,
			State:           state,
			SkillCategory:   category,
			Skills:          utils.CleanList(in.Skills),
			YearsExperience: in.YearsExperience,
			HourlyRate:      rate,
			PortfolioURL:    strings.TrimSpace(in.PortfolioURL),
			ResumeURL:       strings.TrimSpace(in.ResumeURL),
			TotalEarnings:   decimal.Zero,
		},
	}
	if err := s.create(ctx, u, in.Password); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) RegisterClient(ctx context.Context, in ClientRegistration) (*models.User, error) {
	email := utils.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	country := strings.TrimSpace(in.Country)

	fe := apperr.FieldErrors{}
	required(fe, "email", email)
	required(fe, "password", in.Password)
	required(fe, "name", name)
	required(fe, "country", country)
	if !fe.Empty() {
		return nil, missingFields(fe)
	}

	checkCredentials(fe, email, in.Password)
	if in.BudgetRangeMin.Valid && in.BudgetRangeMin.Decimal.IsNegative() {
		fe.Add("budgetRangeMin", "Budget cannot be negative")
	}
	if in.BudgetRangeMin.Valid && in.BudgetRangeMax.Valid &&
		in.BudgetRangeMax.Decimal.LessThan(in.BudgetRangeMin.Decimal) {
		fe.Add("budgetRangeMax", "Maximum budget must not be below the minimum")
	}
	if !fe.Empty() {
		return nil, apperr.Validation(fe)
	}

	u := &models.User{
		Email:    email,
		UserType: models.UserTypeClient,
		IsActive: true,
		Client: &models.Client{
			Name:           name,
			CompanyName:    strings.TrimSpace(in.CompanyName),
			Country:        country,
			Industry:       strings.TrimSpace(in.Industry),
			BudgetRangeMin: in.BudgetRangeMin,
			BudgetRangeMax: in.BudgetRangeMax,
			TotalSpent:     decimal.Zero,
		},
	}
	if err := s.create(ctx, u, in.Password); err != nil {
		return nil, err
	}
	return u, nil
}

// create hashes the password and inserts the user with its nested profile.
func (s *Service) create(ctx context.Context, u *models.User, password string) error {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.Password = hash

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("email = ?", u.Email).Count(&n).Error; err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if n > 0 {
			return errUserExists
		}
		if err := tx.Create(u).Error; err != nil {
			if apperr.IsUniqueViolation(err) {
				return errUserExists
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
}

// Authenticate verifies email and password and returns the user with its profile.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	invalid := apperr.Unauthorized("Invalid credentials")

	u, err := s.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if !utils.CheckPassword(u.Password, password) {
		return nil, invalid
	}
	if !u.IsActive {
		return nil, apperr.Forbidden("Account is disabled")
	}
	return u, nil
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.DB.WithContext(ctx).
		Preload("Talent").
		Preload("Client").
		Where("email = ?", utils.NormalizeEmail(email)).
		First(&u).Error
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := s.DB.WithContext(ctx).
		Preload("Talent").
		Preload("Client").
		First(&u, "id = ?", id).Error
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func required(fe apperr.FieldErrors, field, v string) {
	if strings.TrimSpace(v) == "" {
		fe.Add(field, field+" is required")
	}
}

func missingFields(fe apperr.FieldErrors) error {
	return &apperr.Error{Kind: apperr.ErrValidation, Message: "Missing required fields", Fields: fe}
}

func checkCredentials(fe apperr.FieldErrors, email, password string) {
	if !utils.ValidEmail(email) {
		fe.Add("email", "Email format is invalid")
	}
	if len(password) < minPasswordLen {
		fe.Add("password", fmt.Sprintf("Password must be at least %d characters", minPasswordLen))
	}
}
