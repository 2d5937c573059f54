package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SkillCategory string

const (
	SkillTechnical    SkillCategory = "TECHNICAL"
	SkillNonTechnical SkillCategory = "NON_TECHNICAL"
)

func (c SkillCategory) Valid() bool {
	return c == SkillTechnical || c == SkillNonTechnical
}

// DefaultHourlyRate applies when a talent registers without a rate.
var DefaultHourlyRate = decimal.NewFromInt(10)

type Talent struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`

	FullName        string          `gorm:"type:varchar(150);not null" json:"fullName"`
	PhoneNumber     string          `gorm:"type:varchar(20);not null" json:"phoneNumber"`
	State           string          `gorm:"type:varchar(40);not null;index" json:"state"`
	SkillCategory   SkillCategory   `gorm:"type:varchar(20);not null" json:"skillCategory"`
	Skills          StringArray     `json:"skills"`
	YearsExperience int             `gorm:"not null" json:"yearsExperience"`
	HourlyRate      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"hourlyRate"`
	Bio             string          `gorm:"type:text" json:"bio"`
	PortfolioURL    string          `gorm:"type:text" json:"portfolioUrl"`
	ResumeURL       string          `gorm:"type:text" json:"resumeUrl"`

	TotalEarnings    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"totalEarnings"`
	TotalClients     int             `gorm:"not null" json:"totalClients"`
	TotalHours       float64         `gorm:"not null" json:"totalHours"`
	AverageRating    float64         `gorm:"not null;index" json:"averageRating"`
	SkillCheckPassed bool            `gorm:"not null" json:"skillCheckPassed"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Contracts []Contract `gorm:"foreignKey:TalentID" json:"contracts,omitempty"`
	Earnings  []Earning  `gorm:"foreignKey:TalentID" json:"earnings,omitempty"`
}

func (t *Talent) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TalentSummary is the talent projection embedded in application listings.
type TalentSummary struct {
	ID              uuid.UUID       `json:"id"`
	FullName        string          `json:"fullName"`
	State           string          `json:"state"`
	Skills          []string        `json:"skills"`
	HourlyRate      decimal.Decimal `json:"hourlyRate"`
	AverageRating   float64         `json:"averageRating"`
	YearsExperience int             `json:"yearsExperience"`
	Bio             string          `json:"bio"`
	PortfolioURL    string          `json:"portfolioUrl"`
}

func (t *Talent) Summary() *TalentSummary {
	if t == nil {
		return nil
	}
	return &TalentSummary{
		ID:              t.ID,
		FullName:        t.FullName,
		State:           t.State,
		Skills:          t.Skills.Slice(),
		HourlyRate:      t.HourlyRate,
		AverageRating:   t.AverageRating,
		YearsExperience: t.YearsExperience,
		Bio:             t.Bio,
		PortfolioURL:    t.PortfolioURL,
	}
}
