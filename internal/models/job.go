package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type JobStatus string

const (
	JobOpen       JobStatus = "OPEN"
	JobInProgress JobStatus = "IN_PROGRESS"
	JobCompleted  JobStatus = "COMPLETED"
	JobCancelled  JobStatus = "CANCELLED"
)

// transitions a client may request through a job update.
var jobTransitions = map[JobStatus][]JobStatus{
	JobOpen:       {JobCancelled},
	JobInProgress: {JobCompleted, JobCancelled},
}

func (s JobStatus) Valid() bool {
	switch s {
	case JobOpen, JobInProgress, JobCompleted, JobCancelled:
		return true
	}
	return false
}

func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	for _, allowed := range jobTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Job struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID uuid.UUID `gorm:"type:uuid;not null;index" json:"clientId"`

	Title          string          `gorm:"type:varchar(200);not null" json:"title"`
	Description    string          `gorm:"type:text;not null" json:"description"`
	RequiredSkills StringArray     `json:"requiredSkills"`
	HourlyRate     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"hourlyRate"`
	EstimatedHours *float64        `json:"estimatedHours"`
	Status         JobStatus       `gorm:"type:varchar(20);not null;index" json:"status"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Client       *Client       `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Applications []Application `gorm:"foreignKey:JobID" json:"applications,omitempty"`
	Contract     *Contract     `gorm:"foreignKey:JobID" json:"contract,omitempty"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}
