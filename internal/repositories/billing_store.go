package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	dbm "mibe/internal/models/db_models"
	"mibe/pkg/utils"
)

// BillingStore is the storage the webhook reconciler writes through. Errors
// are classified with the utils sentinels: ErrDuplicateRecord for a unique
// violation, ErrDataIntegrity for more than one subscription per company and
// ErrDatabaseError for everything else.
type BillingStore interface {
	// FindSubscriptionByCompany returns nil, nil when the company has no subscription.
	FindSubscriptionByCompany(ctx context.Context, companyID string) (*dbm.Subscription, error)
	CreateSubscription(ctx context.Context, sub *dbm.Subscription) error
	UpdateSubscription(ctx context.Context, sub *dbm.Subscription) error
	PaymentRecorded(ctx context.Context, gatewayReference string) (bool, error)
	AppendPaymentHistory(ctx context.Context, entry *dbm.PaymentHistory) error
	// WithinTransaction runs fn against a store bound to one transaction.
	// The transaction commits when fn returns nil.
	WithinTransaction(ctx context.Context, fn func(store BillingStore) error) error
}

type billingStore struct {
	db *gorm.DB
}

func NewBillingStore(db *gorm.DB) BillingStore {
	return &billingStore{db: db}
}

func (s *billingStore) FindSubscriptionByCompany(ctx context.Context, companyID string) (*dbm.Subscription, error) {
	var subs []dbm.Subscription
	// Two rows are enough to tell "one" from "more than one".
	err := s.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Limit(2).
		Find(&subs).Error
	if err != nil {
		return nil, storageError("find subscription", err)
	}

	switch len(subs) {
	case 0:
		return nil, nil
	case 1:
		return &subs[0], nil
	default:
		return nil, fmt.Errorf("%w: company %s has more than one subscription", utils.ErrDataIntegrity, companyID)
	}
}

func (s *billingStore) CreateSubscription(ctx context.Context, sub *dbm.Subscription) error {
	if err := s.db.WithContext(ctx).Create(sub).Error; err != nil {
		return storageError("create subscription", err)
	}
	return nil
}

func (s *billingStore) UpdateSubscription(ctx context.Context, sub *dbm.Subscription) error {
	res := s.db.WithContext(ctx).
		Model(&dbm.Subscription{}).
		Where("id = ?", sub.ID).
		Updates(map[string]interface{}{
			"status":     sub.Status,
			"plan_id":    sub.PlanID,
			"started_at": sub.StartedAt,
			"updated_at": utils.NowUnixSeconds(),
		})
	if res.Error != nil {
		return storageError("update subscription", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update subscription %s: %w", sub.ID, utils.RecordNotFound)
	}
	return nil
}

func (s *billingStore) PaymentRecorded(ctx context.Context, gatewayReference string) (bool, error) {
	if gatewayReference == "" {
		return false, nil
	}
	var n int64
	err := s.db.WithContext(ctx).
		Model(&dbm.PaymentHistory{}).
		Where("gateway_reference = ?", gatewayReference).
		Count(&n).Error
	if err != nil {
		return false, storageError("check payment history", err)
	}
	return n > 0, nil
}

func (s *billingStore) AppendPaymentHistory(ctx context.Context, entry *dbm.PaymentHistory) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return storageError("append payment history", err)
	}
	return nil
}

func (s *billingStore) WithinTransaction(ctx context.Context, fn func(store BillingStore) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&billingStore{db: tx})
	})
	if err != nil && !classified(err) {
		// Begin/commit failures come back raw from gorm.
		return storageError("transaction", err)
	}
	return err
}

func storageError(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", op, utils.ErrDuplicateRecord)
	}
	return fmt.Errorf("%s: %w: %w", op, utils.ErrDatabaseError, err)
}

func classified(err error) bool {
	return errors.Is(err, utils.ErrDatabaseError) ||
		errors.Is(err, utils.ErrDuplicateRecord) ||
		errors.Is(err, utils.ErrDataIntegrity) ||
		errors.Is(err, utils.RecordNotFound)
}
