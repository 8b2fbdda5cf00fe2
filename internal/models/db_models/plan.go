package db_models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Plan struct {
	BaseModel
	Name          string `gorm:"not null"`
	Description   *string
	UserLimit     int             `gorm:"not null"`
	ExcessUserFee decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	MonthlyPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	IsActive      bool            `gorm:"default:true"`
	// Optional: feature flags shown on the plan card.
	Features datatypes.JSON `gorm:"type:jsonb;default:'[]'"`
}
