package request_models

import "github.com/shopspring/decimal"

type CreatePlanRequest struct {
	Name          string          `json:"name" binding:"required,min=2,max=80"`
	Description   *string         `json:"description"`
	UserLimit     int             `json:"user_limit" binding:"min=0"`
	ExcessUserFee decimal.Decimal `json:"excess_user_fee"`
	MonthlyPrice  decimal.Decimal `json:"monthly_price"`
	Features      []string        `json:"features"`
}

type UpdatePlanRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=2,max=80"`
	Description   *string          `json:"description"`
	UserLimit     *int             `json:"user_limit" binding:"omitempty,min=0"`
	ExcessUserFee *decimal.Decimal `json:"excess_user_fee"`
	MonthlyPrice  *decimal.Decimal `json:"monthly_price"`
	IsActive      *bool            `json:"is_active"`
	Features      []string         `json:"features"`
}

type TogglePlanRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}
