package db_models

import (
	"github.com/shopspring/decimal"
)

type SubscriptionStatus string

const (
	SubStatusActive    SubscriptionStatus = "active"
	SubStatusOverdue   SubscriptionStatus = "overdue"
	SubStatusCancelled SubscriptionStatus = "cancelled"
)

func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubStatusActive, SubStatusOverdue, SubStatusCancelled:
		return true
	}
	return false
}

// Subscription binds one company to one plan. company_id is unique: the
// webhook reconciler relies on the constraint to resolve concurrent creates.
type Subscription struct {
	BaseModel
	CompanyID string `gorm:"size:64;not null;uniqueIndex"`
	PlanID    string `gorm:"size:64;not null;index"`

	Status SubscriptionStatus `gorm:"size:16;not null;index"`
	// Unix seconds; set on first activation only.
	StartedAt *int64

	CurrentProfileCount int             `gorm:"not null;default:0"`
	ExcessProfiles      int             `gorm:"not null;default:0"`
	ExcessAmount        decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
}
