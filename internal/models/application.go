package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "PENDING"
	ApplicationAccepted  ApplicationStatus = "ACCEPTED"
	ApplicationRejected  ApplicationStatus = "REJECTED"
	ApplicationWithdrawn ApplicationStatus = "WITHDRAWN"
)

// applicationTransitions[from][to] is the party allowed to make the move.
var applicationTransitions = map[ApplicationStatus]map[ApplicationStatus]UserType{
	ApplicationPending: {
		ApplicationAccepted:  UserTypeClient,
		ApplicationRejected:  UserTypeClient,
		ApplicationWithdrawn: UserTypeTalent,
	},
}

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationAccepted, ApplicationRejected, ApplicationWithdrawn:
		return true
	}
	return false
}

// CanTransitionTo reports whether actor may move an application from s to next.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus, actor UserType) bool {
	who, ok := applicationTransitions[s][next]
	return ok && who == actor
}

type Application struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_applications_job_talent" json:"jobId"`
	TalentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_applications_job_talent;index" json:"talentId"`

	CoverLetter  string            `gorm:"type:text" json:"coverLetter"`
	ProposedRate decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"proposedRate"`
	Status       ApplicationStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Job    *Job    `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Talent *Talent `gorm:"foreignKey:TalentID" json:"talent,omitempty"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
