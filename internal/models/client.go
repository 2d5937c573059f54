package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Client struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`

	Name           string              `gorm:"type:varchar(150);not null" json:"name"`
	CompanyName    string              `gorm:"type:varchar(150)" json:"companyName"`
	Country        string              `gorm:"type:varchar(80);not null" json:"country"`
	Industry       string              `gorm:"type:varchar(80)" json:"industry"`
	BudgetRangeMin decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"budgetRangeMin"`
	BudgetRangeMax decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"budgetRangeMax"`

	TotalProjects int             `gorm:"not null" json:"totalProjects"`
	TotalSpent    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"totalSpent"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Jobs      []Job      `gorm:"foreignKey:ClientID" json:"jobs,omitempty"`
	Contracts []Contract `gorm:"foreignKey:ClientID" json:"contracts,omitempty"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ClientSummary is the client projection shown on job listings.
type ClientSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Country     string    `json:"country"`
	CompanyName string    `json:"companyName"`
}

func (c *Client) Summary() *ClientSummary {
	if c == nil {
		return nil
	}
	return &ClientSummary{ID: c.ID, Name: c.Name, Country: c.Country, CompanyName: c.CompanyName}
}
