package response_models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Plan struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   *string         `json:"description"`
	UserLimit     int             `json:"user_limit"`
	ExcessUserFee decimal.Decimal `json:"excess_user_fee"`
	MonthlyPrice  decimal.Decimal `json:"monthly_price"`
	IsActive      bool            `json:"is_active"`
	Features      []string        `json:"features,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
