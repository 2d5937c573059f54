package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Payment is a client payment against a contract. TotalPaid is Amount + Tip and
// Commission is taken from Amount only.
type Payment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID uuid.UUID `gorm:"type:uuid;not null;index" json:"contractId"`
	ClientID   uuid.UUID `gorm:"type:uuid;not null;index" json:"clientId"`

	Amount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Commission decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"commission"`
	Tip        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tip"`
	TotalPaid  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"totalPaid"`

	PaymentMethod  string         `gorm:"type:varchar(30);not null" json:"paymentMethod"`
	TransactionRef string         `gorm:"type:varchar(40);uniqueIndex;not null" json:"transactionRef"`
	GatewayReceipt datatypes.JSON `json:"gatewayReceipt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Contract *Contract `gorm:"foreignKey:ContractID" json:"contract,omitempty"`
	Earning  *Earning  `gorm:"foreignKey:PaymentID" json:"earning,omitempty"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Earning is the talent's share of one payment.
type Earning struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TalentID  uuid.UUID `gorm:"type:uuid;not null;index" json:"talentId"`
	PaymentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"paymentId"`

	Amount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Tip    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tip"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Payment *Payment `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
}

func (e *Earning) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
