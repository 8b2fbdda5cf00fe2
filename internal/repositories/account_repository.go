package repositories

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"mibe/internal/models/db_models"
)

// AccountRepository stores back-office logins. Emails are kept lowercase and
// matched case-insensitively.
type AccountRepository interface {
	Insert(ctx context.Context, account *db_models.Account) error
	FindById(ctx context.Context, id string) (*db_models.Account, error)
	FindByEmail(ctx context.Context, email string) (*db_models.Account, error)
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (a *accountRepository) accounts(ctx context.Context) *gorm.DB {
	return a.db.WithContext(ctx).Model(&db_models.Account{})
}

func (a *accountRepository) FindByEmail(ctx context.Context, email string) (*db_models.Account, error) {
	return takeOne[db_models.Account](a.accounts(ctx).Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))))
}

func (a *accountRepository) FindById(ctx context.Context, id string) (*db_models.Account, error) {
	return takeOne[db_models.Account](a.accounts(ctx).Where("id::text = ?", id))
}

func (a *accountRepository) Insert(ctx context.Context, account *db_models.Account) error {
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))
	return a.db.WithContext(ctx).Create(account).Error
}
