package db_models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// PaymentHistory is append-only. GatewayReference is the gateway payment id
// and the idempotency key for webhook redelivery.
type PaymentHistory struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	SubscriptionID uuid.UUID `gorm:"type:uuid;not null;index"`

	Amount       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	BaseAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	ExcessAmount decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`

	Status           PaymentStatus `gorm:"size:16;not null"`
	PaymentDate      *int64
	DueDate          datatypes.Date `gorm:"not null"`
	GatewayReference string         `gorm:"size:64;uniqueIndex:idx_payment_history_gateway_reference,where:gateway_reference <> ''"`

	CreatedAt int64 `gorm:"autoCreateTime"`
}

func (PaymentHistory) TableName() string {
	return "payment_history"
}

func (p *PaymentHistory) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
