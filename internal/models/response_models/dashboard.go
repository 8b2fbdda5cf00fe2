package response_models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	// "day" | "week" | "month"
	Interval string `json:"interval"`
	// Optional: timezone used for bucketing (defaults to UTC if empty)
	Timezone string `json:"timezone,omitempty"`
}

type KPIBlock struct {
	TotalCompanies         int64 `json:"total_companies"`
	ActiveSubscriptions    int64 `json:"active_subscriptions"`
	OverdueSubscriptions   int64 `json:"overdue_subscriptions"`
	CancelledSubscriptions int64 `json:"cancelled_subscriptions"`

	// Monthly recurring revenue from active subscriptions at plan list price.
	MRR decimal.Decimal `json:"mrr"`
	// Average revenue per active subscription.
	ARPU decimal.Decimal `json:"arpu"`
	// Overdue / (active + overdue) * 100
	DelinquencyPct float64 `json:"delinquency_pct"`
}

type SeriesPoint struct {
	Bucket time.Time       `json:"bucket"`
	Value  decimal.Decimal `json:"value"`
}

type RevenueSeries struct {
	Points []SeriesPoint   `json:"points"`
	Total  decimal.Decimal `json:"total"`
}

type PlanMixItem struct {
	PlanID       string          `json:"plan_id"`
	PlanName     string          `json:"plan_name"`
	MonthlyPrice decimal.Decimal `json:"monthly_price"`
	Count        int64           `json:"count"`
	Percent      float64         `json:"percent"`
}

type PlanMix struct {
	Items []PlanMixItem `json:"items"`
}

type RecentPayment struct {
	ID               string          `json:"id"`
	SubscriptionID   string          `json:"subscription_id"`
	CompanyName      string          `json:"company_name"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentDate      *time.Time      `json:"payment_date"`
	GatewayReference string          `json:"gateway_reference"`
}

type DashboardReport struct {
	Range          TimeRange       `json:"range"`
	KPIs           KPIBlock        `json:"kpis"`
	Revenue        RevenueSeries   `json:"revenue"`
	PlanMix        PlanMix         `json:"plan_mix"`
	Excess         ExcessSummary   `json:"excess"`
	RecentPayments []RecentPayment `json:"recent_payments"`
}
