package repositories

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	dbm "mibe/internal/models/db_models"
)

// SubscriptionRow is a subscription joined with its company and plan.
// company_id and plan_id are stored as text, so the joins cast the uuid side.
type SubscriptionRow struct {
	dbm.Subscription
	CompanyName   *string `gorm:"column:company_name"`
	PlanName      *string `gorm:"column:plan_name"`
	PlanUserLimit *int    `gorm:"column:plan_user_limit"`
}

type ExcessRow struct {
	CompanyName    *string         `gorm:"column:company_name"`
	ExcessProfiles int             `gorm:"column:excess_profiles"`
	ExcessAmount   decimal.Decimal `gorm:"column:excess_amount"`
}

type CompanyOptionRow struct {
	ID           string `gorm:"column:id"`
	BusinessName string `gorm:"column:business_name"`
}

type SubscriptionFilter struct {
	Status string
	PlanID string
}

type ISubscriptionRepository interface {
	List(ctx context.Context, filter SubscriptionFilter) ([]SubscriptionRow, error)
	GetByID(ctx context.Context, id string) (*SubscriptionRow, error)
	GetByCompanyID(ctx context.Context, companyID string) (*SubscriptionRow, error)
	Create(ctx context.Context, sub *dbm.Subscription) error
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	ListWithExcess(ctx context.Context) ([]SubscriptionRow, error)
	ExcessRows(ctx context.Context) ([]ExcessRow, error)
	CompaniesWithoutSubscription(ctx context.Context) ([]CompanyOptionRow, error)
	PaymentHistory(ctx context.Context, subscriptionID string) ([]dbm.PaymentHistory, error)
	CountByPlan(ctx context.Context, planID string) (int64, error)
}

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) ISubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("subscriptions s").
		Select("s.*, c.business_name AS company_name, p.name AS plan_name, p.user_limit AS plan_user_limit").
		Joins("LEFT JOIN companies c ON c.id::text = s.company_id").
		Joins("LEFT JOIN plans p ON p.id::text = s.plan_id").
		Where("s.deleted_at IS NULL")
}

func (r *SubscriptionRepository) List(ctx context.Context, filter SubscriptionFilter) ([]SubscriptionRow, error) {
	var rows []SubscriptionRow
	q := r.joined(ctx)
	if filter.Status != "" {
		q = q.Where("s.status = ?", filter.Status)
	}
	if filter.PlanID != "" {
		q = q.Where("s.plan_id = ?", filter.PlanID)
	}
	err := q.Order("s.created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *SubscriptionRepository) GetByID(ctx context.Context, id string) (*SubscriptionRow, error) {
	return r.first(r.joined(ctx).Where("s.id::text = ?", id))
}

func (r *SubscriptionRepository) GetByCompanyID(ctx context.Context, companyID string) (*SubscriptionRow, error) {
	return r.first(r.joined(ctx).Where("s.company_id = ?", companyID))
}

func (r *SubscriptionRepository) first(q *gorm.DB) (*SubscriptionRow, error) {
	return takeOne[SubscriptionRow](q)
}

func (r *SubscriptionRepository) Create(ctx context.Context, sub *dbm.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *SubscriptionRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&dbm.Subscription{}).
		Where("id::text = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *SubscriptionRepository) ListWithExcess(ctx context.Context) ([]SubscriptionRow, error) {
	var rows []SubscriptionRow
	err := r.joined(ctx).
		Where("s.excess_profiles > 0").
		Order("s.excess_profiles DESC").
		Find(&rows).Error
	return rows, err
}

func (r *SubscriptionRepository) ExcessRows(ctx context.Context) ([]ExcessRow, error) {
	var rows []ExcessRow
	err := r.db.WithContext(ctx).
		Table("subscriptions s").
		Select("c.business_name AS company_name, s.excess_profiles, s.excess_amount").
		Joins("LEFT JOIN companies c ON c.id::text = s.company_id").
		Where("s.deleted_at IS NULL").
		Where("s.excess_profiles > 0").
		Order("s.excess_profiles DESC").
		Find(&rows).Error
	return rows, err
}

func (r *SubscriptionRepository) CompaniesWithoutSubscription(ctx context.Context) ([]CompanyOptionRow, error) {
	var rows []CompanyOptionRow
	err := r.db.WithContext(ctx).
		Table("companies c").
		Select("c.id::text AS id, c.business_name").
		Where("c.deleted_at IS NULL").
		Where("NOT EXISTS (SELECT 1 FROM subscriptions s WHERE s.company_id = c.id::text AND s.deleted_at IS NULL)").
		Order("c.business_name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *SubscriptionRepository) PaymentHistory(ctx context.Context, subscriptionID string) ([]dbm.PaymentHistory, error) {
	var rows []dbm.PaymentHistory
	err := r.db.WithContext(ctx).
		Where("subscription_id::text = ?", subscriptionID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *SubscriptionRepository) CountByPlan(ctx context.Context, planID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Subscription{}).
		Where("plan_id = ?", planID).
		Count(&n).Error
	return n, err
}
