package response_models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Subscription struct {
	ID                  string          `json:"id"`
	CompanyID           string          `json:"company_id"`
	CompanyName         *string         `json:"company_name,omitempty"`
	PlanID              string          `json:"plan_id"`
	PlanName            *string         `json:"plan_name,omitempty"`
	PlanUserLimit       *int            `json:"plan_user_limit,omitempty"`
	Status              string          `json:"status"`
	StartedAt           *time.Time      `json:"started_at"`
	CurrentProfileCount int             `json:"current_profile_count"`
	ExcessProfiles      int             `json:"excess_profiles"`
	ExcessAmount        decimal.Decimal `json:"excess_amount"`
	// Value to set as externalReference on gateway charges for this
	// subscription.
	ExternalReference string    `json:"external_reference"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type PaymentHistoryEntry struct {
	ID               string          `json:"id"`
	SubscriptionID   string          `json:"subscription_id"`
	Amount           decimal.Decimal `json:"amount"`
	BaseAmount       decimal.Decimal `json:"base_amount"`
	ExcessAmount     decimal.Decimal `json:"excess_amount"`
	Status           string          `json:"status"`
	PaymentDate      *time.Time      `json:"payment_date"`
	DueDate          string          `json:"due_date"`
	GatewayReference string          `json:"gateway_reference,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

type TopExcessEstablishment struct {
	Name           string          `json:"name"`
	ExcessProfiles int             `json:"excess_profiles"`
	ExcessAmount   decimal.Decimal `json:"excess_amount"`
}

type ExcessSummary struct {
	TotalEstablishmentsWithExcess int                     `json:"total_establishments_with_excess"`
	TotalExcessAmount             decimal.Decimal         `json:"total_excess_amount"`
	TopExcessEstablishment        *TopExcessEstablishment `json:"top_excess_establishment"`
}

type CompanyOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
