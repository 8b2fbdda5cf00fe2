package repositories

import (
	"context"

	"gorm.io/gorm"
	"mibe/internal/models/db_models"
)

type IPlanRepository interface {
	GetPlanInfoById(ctx context.Context, planID string) (*db_models.Plan, error)
	GetAllPlans(ctx context.Context) ([]db_models.Plan, error)
	GetActivePlans(ctx context.Context) ([]db_models.Plan, error)
	Create(ctx context.Context, plan *db_models.Plan) error
	Update(ctx context.Context, planID string, fields map[string]interface{}) error
}

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) IPlanRepository {
	return &PlanRepository{db: db}
}

func (p PlanRepository) GetPlanInfoById(ctx context.Context, planID string) (*db_models.Plan, error) {
	return takeOne[db_models.Plan](p.db.WithContext(ctx).Where("id::text = ?", planID))
}

func (p PlanRepository) GetAllPlans(ctx context.Context) ([]db_models.Plan, error) {

	var plans []db_models.Plan
	err := p.db.WithContext(ctx).Order("created_at DESC").Find(&plans).Error

	if err != nil {
		return nil, err
	}

	return plans, nil
}

func (p PlanRepository) GetActivePlans(ctx context.Context) ([]db_models.Plan, error) {

	var plans []db_models.Plan
	err := p.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("monthly_price ASC").
		Find(&plans).Error

	if err != nil {
		return nil, err
	}

	return plans, nil
}

func (p PlanRepository) Create(ctx context.Context, plan *db_models.Plan) error {
	return p.db.WithContext(ctx).Create(plan).Error
}

func (p PlanRepository) Update(ctx context.Context, planID string, fields map[string]interface{}) error {
	res := p.db.WithContext(ctx).
		Model(&db_models.Plan{}).
		Where("id::text = ?", planID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
