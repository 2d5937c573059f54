package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ContractStatus string

const (
	ContractInProgress ContractStatus = "IN_PROGRESS"
	ContractCompleted  ContractStatus = "COMPLETED"
	ContractCancelled  ContractStatus = "CANCELLED"
)

type Contract struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"jobId"`
	TalentID uuid.UUID `gorm:"type:uuid;not null;index" json:"talentId"`
	ClientID uuid.UUID `gorm:"type:uuid;not null;index" json:"clientId"`

	AgreedRate  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"agreedRate"`
	HoursWorked float64         `gorm:"not null" json:"hoursWorked"`
	Status      ContractStatus  `gorm:"type:varchar(20);not null;index" json:"status"`
	CompletedAt *time.Time      `json:"completedAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Job      *Job      `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Talent   *Talent   `gorm:"foreignKey:TalentID" json:"talent,omitempty"`
	Client   *Client   `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Payments []Payment `gorm:"foreignKey:ContractID" json:"payments,omitempty"`
}

func (c *Contract) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
