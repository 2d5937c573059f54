package models

import (
	"database/sql/driver"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

func init() {
	// money is rendered as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// All lists every table in migration order.
func All() []any {
	return []any{
		&User{},
		&Talent{},
		&Client{},
		&Job{},
		&Application{},
		&Contract{},
		&Payment{},
		&Earning{},
		&Review{},
	}
}

// StringArray is a text[] column on Postgres. Other dialects store the same
// array literal in a text column.
type StringArray []string

func (a StringArray) Value() (driver.Value, error) {
	return pq.StringArray(a).Value()
}

func (a *StringArray) Scan(src any) error {
	return (*pq.StringArray)(a).Scan(src)
}

func (StringArray) GormDataType() string { return "text" }

func (StringArray) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// Slice never returns nil so lists serialize as [].
func (a StringArray) Slice() []string {
	if a == nil {
		return []string{}
	}
	return []string(a)
}

// Actor is the authenticated caller as seen by the services.
type Actor struct {
	UserID    uuid.UUID
	ProfileID uuid.UUID
	Type      UserType
}

func (a Actor) IsTalent() bool { return a.Type == UserTypeTalent }
func (a Actor) IsClient() bool { return a.Type == UserTypeClient }
