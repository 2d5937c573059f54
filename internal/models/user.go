package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserType string

const (
	UserTypeTalent UserType = "TALENT"
	UserTypeClient UserType = "CLIENT"
)

// Role is the lower-cased form carried in session claims.
func (t UserType) Role() string { return strings.ToLower(string(t)) }

func UserTypeFromRole(role string) (UserType, bool) {
	t := UserType(strings.ToUpper(strings.TrimSpace(role)))
	return t, t == UserTypeTalent || t == UserTypeClient
}

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email    string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	UserType UserType  `gorm:"type:varchar(20);not null;index" json:"userType"`
	IsActive bool      `gorm:"not null;default:true" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// HAS ONE profile matching UserType
	Talent *Talent `gorm:"foreignKey:UserID;references:ID" json:"talent,omitempty"`
	Client *Client `gorm:"foreignKey:UserID;references:ID" json:"client,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// ProfileID returns the id of the loaded profile, or uuid.Nil.
func (u *User) ProfileID() uuid.UUID {
	switch {
	case u.Talent != nil:
		return u.Talent.ID
	case u.Client != nil:
		return u.Client.ID
	}
	return uuid.Nil
}
