package repositories

import (
	"context"

	"gorm.io/gorm"
	"mibe/internal/models/db_models"
)

type CompanyRepository interface {
	FindById(ctx context.Context, id string) (*db_models.Company, error)
	SetAsaasCustomerID(ctx context.Context, id, customerID string) error
}

type companyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) FindById(ctx context.Context, id string) (*db_models.Company, error) {
	return takeOne[db_models.Company](r.db.WithContext(ctx).Where("id::text = ?", id))
}

func (r *companyRepository) SetAsaasCustomerID(ctx context.Context, id, customerID string) error {
	res := r.db.WithContext(ctx).
		Model(&db_models.Company{}).
		Where("id::text = ?", id).
		Update("asaas_customer_id", customerID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
