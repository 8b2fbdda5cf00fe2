package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbm "mibe/internal/models/db_models"
)

type DashboardRepository interface {
	// KPIs / counts
	CountCompanies(ctx context.Context) (int64, error)
	CountSubscriptionsByStatus(ctx context.Context, status dbm.SubscriptionStatus) (int64, error)

	// Time series
	RevenueSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error)

	// MRR compute helpers
	ActiveSubscriptionsWithPlan(ctx context.Context) ([]SubWithPlan, error)

	// Plan mix (active subs)
	PlanMix(ctx context.Context) ([]PlanMixRow, error)

	// Recent payments
	RecentPayments(ctx context.Context, limit int) ([]RecentPaymentRow, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

// ---------- Row helpers ----------
type BucketSum struct {
	Bucket time.Time       `gorm:"column:bucket"`
	Sum    decimal.Decimal `gorm:"column:sum"`
}

type SubWithPlan struct {
	SubID        string          `gorm:"column:sub_id"`
	PlanID       string          `gorm:"column:plan_id"`
	MonthlyPrice decimal.Decimal `gorm:"column:monthly_price"`
	ExcessAmount decimal.Decimal `gorm:"column:excess_amount"`
}

type PlanMixRow struct {
	PlanID       string          `gorm:"column:plan_id"`
	PlanName     string          `gorm:"column:plan_name"`
	MonthlyPrice decimal.Decimal `gorm:"column:monthly_price"`
	Count        int64           `gorm:"column:count"`
}

type RecentPaymentRow struct {
	ID               string          `gorm:"column:id"`
	SubscriptionID   string          `gorm:"column:subscription_id"`
	CompanyName      string          `gorm:"column:company_name"`
	Amount           decimal.Decimal `gorm:"column:amount"`
	PaymentDate      *int64          `gorm:"column:payment_date"`
	GatewayReference string          `gorm:"column:gateway_reference"`
}

// ---------- Helpers ----------
func dateTrunc(tz string, unixColumn string) string {
	// unixColumn holds UNIX seconds, e.g. payment_date.
	// Example: date_trunc('day', timezone('America/Sao_Paulo', to_timestamp(payment_date)))
	if tz == "" {
		return "date_trunc(?, to_timestamp(" + unixColumn + "))"
	}
	return "date_trunc(?, timezone(?, to_timestamp(" + unixColumn + ")))"
}

// ---------- Counts ----------
func (r *dashboardRepository) CountCompanies(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dbm.Company{}).Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountSubscriptionsByStatus(ctx context.Context, status dbm.SubscriptionStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Subscription{}).
		Where("status = ?", status).
		Count(&n).Error
	return n, err
}

// ---------- Series ----------
func (r *dashboardRepository) RevenueSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error) {
	var rows []BucketSum
	args := []interface{}{interval}
	if tz != "" {
		args = append(args, tz)
	}
	tx := r.db.WithContext(ctx).
		Table("payment_history").
		Select(dateTrunc(tz, "payment_date")+" AS bucket, SUM(amount) AS sum", args...).
		Where("status = ?", dbm.PaymentStatusPaid).
		Where("payment_date IS NOT NULL").
		Where("payment_date BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Group("bucket").
		Order("bucket ASC")
	err := tx.Find(&rows).Error
	return rows, err
}

// ---------- MRR helpers ----------
func (r *dashboardRepository) ActiveSubscriptionsWithPlan(ctx context.Context) ([]SubWithPlan, error) {
	var rows []SubWithPlan
	err := r.db.WithContext(ctx).
		Table("subscriptions s").
		Select("s.id AS sub_id, s.plan_id, p.monthly_price, s.excess_amount").
		Joins("JOIN plans p ON p.id::text = s.plan_id").
		Where("s.status = ?", dbm.SubStatusActive).
		Where("s.deleted_at IS NULL").
		Find(&rows).Error
	return rows, err
}

// ---------- Plan mix ----------
func (r *dashboardRepository) PlanMix(ctx context.Context) ([]PlanMixRow, error) {
	var rows []PlanMixRow
	err := r.db.WithContext(ctx).
		Table("subscriptions s").
		Select(`
			s.plan_id,
			p.name AS plan_name,
			p.monthly_price AS monthly_price,
			COUNT(*) AS count`).
		Joins("JOIN plans p ON p.id::text = s.plan_id").
		Where("s.status = ?", dbm.SubStatusActive).
		Where("s.deleted_at IS NULL").
		Group("s.plan_id, p.name, p.monthly_price").
		Order("count DESC").
		Find(&rows).Error
	return rows, err
}

// ---------- Recent payments ----------
func (r *dashboardRepository) RecentPayments(ctx context.Context, limit int) ([]RecentPaymentRow, error) {
	var rows []RecentPaymentRow
	err := r.db.WithContext(ctx).
		Table("payment_history ph").
		Select(`
			ph.id,
			ph.subscription_id,
			COALESCE(c.business_name, s.company_id) AS company_name,
			ph.amount,
			ph.payment_date,
			ph.gateway_reference`).
		Joins("JOIN subscriptions s ON s.id = ph.subscription_id").
		Joins("LEFT JOIN companies c ON c.id::text = s.company_id").
		Where("ph.status = ?", dbm.PaymentStatusPaid).
		Order("ph.payment_date DESC NULLS LAST").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
