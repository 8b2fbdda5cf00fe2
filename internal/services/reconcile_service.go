package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"mibe/internal/infra"
	dbm "mibe/internal/models/db_models"
	"mibe/internal/repositories"
	"mibe/pkg/utils"
)

const (
	outcomeApplied   = "applied"
	outcomeDuplicate = "duplicate"
	outcomeIgnored   = "ignored"
	outcomeRejected  = "rejected"
	outcomeFailed    = "failed"
)

// ReconcileService applies gateway payment events to subscriptions and
// payment history. Redelivering an event with the same payment id is a no-op.
type ReconcileService interface {
	Handle(ctx context.Context, event PaymentEvent) error
	// HandlePayload parses a raw webhook body and handles it.
	HandlePayload(ctx context.Context, raw []byte) error
}

type reconcileService struct {
	store   repositories.BillingStore
	logger  *zap.Logger
	metrics *infra.WebhookMetrics
	now     func() time.Time
}

func NewReconcileService(store repositories.BillingStore, logger *zap.Logger, metrics *infra.WebhookMetrics) ReconcileService {
	return &reconcileService{
		store:   store,
		logger:  logger.Named("reconcile"),
		metrics: metrics,
		now:     time.Now,
	}
}

func (s *reconcileService) HandlePayload(ctx context.Context, raw []byte) error {
	event, err := ParsePaymentEvent(raw)
	if err != nil {
		s.logger.Warn("rejected webhook payload", zap.Error(err))
		s.metrics.Observe("invalid", outcomeRejected)
		return err
	}
	return s.Handle(ctx, event)
}

func (s *reconcileService) Handle(ctx context.Context, event PaymentEvent) error {
	var (
		outcome string
		err     error
		label   = event.Name()
	)

	switch e := event.(type) {
	case PaymentReceivedEvent:
		outcome, err = s.handleReceived(ctx, e)
	case PaymentOverdueEvent:
		outcome, err = s.handleOverdue(ctx, e)
	default:
		s.logger.Info("ignoring webhook event", zap.String("event", event.Name()))
		outcome, label = outcomeIgnored, "other"
	}

	if err != nil {
		outcome = outcomeFailed
		if utils.WebhookStatus(err) < 500 {
			outcome = outcomeRejected
		}
	}
	s.metrics.Observe(label, outcome)
	return err
}

func (s *reconcileService) handleReceived(ctx context.Context, e PaymentReceivedEvent) (string, error) {
	log := s.logger.With(zap.String("event", e.Name()), zap.String("payment_id", e.Payment.ID))

	raw, ok := ResolveExternalReference(e.Payment)
	if !ok {
		log.Warn("payment has no externalReference")
		return outcomeRejected, fmt.Errorf("%w: payment %s", utils.ErrMissingReference, e.Payment.ID)
	}
	ref, err := ParseExternalReference(raw)
	if err != nil {
		log.Warn("malformed externalReference", zap.String("external_reference", raw))
		return outcomeRejected, err
	}

	log = log.With(zap.String("company_id", ref.CompanyID), zap.String("plan_id", ref.PlanID))
	log.Info("reconciling payment")

	return s.inTransaction(ctx, log, func(tx repositories.BillingStore) (string, error) {
		return s.applyPayment(ctx, tx, log, ref, e.Payment)
	})
}

func (s *reconcileService) applyPayment(ctx context.Context, tx repositories.BillingStore, log *zap.Logger, ref ExternalReference, p GatewayPayment) (string, error) {
	recorded, err := tx.PaymentRecorded(ctx, p.ID)
	if err != nil {
		return "", err
	}
	if recorded {
		log.Info("payment already recorded, skipping")
		return outcomeDuplicate, nil
	}

	sub, err := s.findSubscription(ctx, tx, log, ref.CompanyID)
	if err != nil {
		return "", err
	}

	now := s.now()
	nowUnix := now.Unix()

	if sub == nil {
		sub = &dbm.Subscription{
			CompanyID: ref.CompanyID,
			PlanID:    ref.PlanID,
			Status:    dbm.SubStatusActive,
			StartedAt: &nowUnix,
		}
		if err := tx.CreateSubscription(ctx, sub); err != nil {
			return "", err
		}
		log.Info("subscription created", zap.String("subscription_id", sub.ID.String()))
	} else {
		if sub.PlanID != ref.PlanID {
			log.Info("switching plan on payment", zap.String("previous_plan_id", sub.PlanID))
			sub.PlanID = ref.PlanID
		}
		sub.Status = dbm.SubStatusActive
		if sub.StartedAt == nil {
			sub.StartedAt = &nowUnix
		}
		if err := tx.UpdateSubscription(ctx, sub); err != nil {
			return "", err
		}
		log.Info("subscription activated", zap.String("subscription_id", sub.ID.String()))
	}

	due := now
	if p.DueDate != nil {
		due = *p.DueDate
	}
	entry := &dbm.PaymentHistory{
		SubscriptionID:   sub.ID,
		Amount:           p.Value,
		BaseAmount:       p.Value,
		ExcessAmount:     decimal.Zero,
		Status:           dbm.PaymentStatusPaid,
		PaymentDate:      &nowUnix,
		DueDate:          datatypes.Date(utils.DateOf(due)),
		GatewayReference: p.ID,
	}
	if err := tx.AppendPaymentHistory(ctx, entry); err != nil {
		return "", err
	}

	return outcomeApplied, nil
}

func (s *reconcileService) handleOverdue(ctx context.Context, e PaymentOverdueEvent) (string, error) {
	log := s.logger.With(zap.String("event", e.Name()), zap.String("payment_id", e.Payment.ID))

	raw, ok := ResolveExternalReference(e.Payment)
	if !ok {
		log.Info("overdue payment has no externalReference, nothing to mark")
		return outcomeIgnored, nil
	}
	companyID, err := ParseCompanyReference(raw)
	if err != nil {
		log.Info("overdue payment reference does not name a company, nothing to mark",
			zap.String("external_reference", raw))
		return outcomeIgnored, nil
	}
	log = log.With(zap.String("company_id", companyID))

	return s.inTransaction(ctx, log, func(tx repositories.BillingStore) (string, error) {
		// The gateway can deliver OVERDUE after the same charge's RECEIVED.
		paid, err := tx.PaymentRecorded(ctx, e.Payment.ID)
		if err != nil {
			return "", err
		}
		if paid {
			log.Info("overdue notice for a payment already recorded as paid, skipping")
			return outcomeDuplicate, nil
		}

		sub, err := s.findSubscription(ctx, tx, log, companyID)
		if err != nil {
			return "", err
		}
		if sub == nil {
			log.Info("no subscription to mark overdue")
			return outcomeIgnored, nil
		}

		sub.Status = dbm.SubStatusOverdue
		if err := tx.UpdateSubscription(ctx, sub); err != nil {
			return "", err
		}
		log.Info("subscription marked overdue", zap.String("subscription_id", sub.ID.String()))
		return outcomeApplied, nil
	})
}

func (s *reconcileService) findSubscription(ctx context.Context, tx repositories.BillingStore, log *zap.Logger, companyID string) (*dbm.Subscription, error) {
	sub, err := tx.FindSubscriptionByCompany(ctx, companyID)
	if errors.Is(err, utils.ErrDataIntegrity) {
		log.Error("refusing to reconcile: company has more than one subscription", zap.Error(err))
	}
	return sub, err
}

// inTransaction runs fn in one transaction. A unique violation means a
// concurrent delivery wrote first; the unit is retried once, and the retry
// sees the other delivery's rows.
func (s *reconcileService) inTransaction(ctx context.Context, log *zap.Logger, fn func(tx repositories.BillingStore) (string, error)) (string, error) {
	var outcome string
	run := func() error {
		return s.store.WithinTransaction(ctx, func(tx repositories.BillingStore) error {
			var err error
			outcome, err = fn(tx)
			return err
		})
	}

	err := run()
	if errors.Is(err, utils.ErrDuplicateRecord) {
		log.Info("concurrent write detected, retrying", zap.Error(err))
		s.metrics.ConflictRetry()
		err = run()
		if errors.Is(err, utils.ErrDuplicateRecord) {
			err = fmt.Errorf("%w: retry after conflict: %w", utils.ErrDatabaseError, err)
		}
	}
	if err != nil {
		log.Error("reconciliation failed", zap.Error(err))
		return outcomeFailed, err
	}
	return outcome, nil
}
