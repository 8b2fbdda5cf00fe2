package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	dbm "mibe/internal/models/db_models"
	"mibe/internal/models/request_models"
	"mibe/internal/models/response_models"
	"mibe/internal/repositories"
	"mibe/pkg/utils"
)

// SubscriptionServiceInterface is the dashboard's path to subscriptions.
// Status changes made here are operator intent; payment-driven changes go
// through ReconcileService.
type SubscriptionServiceInterface interface {
	List(ctx context.Context, filter request_models.SubscriptionFilter) ([]response_models.Subscription, error)
	GetByID(ctx context.Context, id string) (*response_models.Subscription, error)
	GetByCompanyID(ctx context.Context, companyID string) (*response_models.Subscription, error)
	Create(ctx context.Context, req request_models.CreateSubscriptionRequest) (*response_models.Subscription, error)
	Update(ctx context.Context, id string, req request_models.UpdateSubscriptionRequest) (*response_models.Subscription, error)
	ListWithExcess(ctx context.Context) ([]response_models.Subscription, error)
	ExportExcess(ctx context.Context) ([]byte, error)
	ExcessSummary(ctx context.Context) (*response_models.ExcessSummary, error)
	CompaniesWithoutSubscription(ctx context.Context) ([]response_models.CompanyOption, error)
	PaymentHistory(ctx context.Context, subscriptionID string) ([]response_models.PaymentHistoryEntry, error)
}

type SubscriptionService struct {
	subRepo  repositories.ISubscriptionRepository
	planRepo repositories.IPlanRepository
	logger   *zap.Logger
}

func NewSubscriptionService(subRepo repositories.ISubscriptionRepository, planRepo repositories.IPlanRepository, logger *zap.Logger) SubscriptionServiceInterface {
	return &SubscriptionService{
		subRepo:  subRepo,
		planRepo: planRepo,
		logger:   logger,
	}
}

func (s *SubscriptionService) List(ctx context.Context, filter request_models.SubscriptionFilter) ([]response_models.Subscription, error) {
	if filter.Status != "" && !dbm.SubscriptionStatus(filter.Status).Valid() {
		return nil, utils.ErrInvalidStatus
	}

	rows, err := s.subRepo.List(ctx, repositories.SubscriptionFilter{
		Status: filter.Status,
		PlanID: strings.TrimSpace(filter.PlanID),
	})
	if err != nil {
		s.logger.Error("list subscriptions", zap.Error(err))
		return nil, utils.ErrDatabaseError
	}

	return toSubscriptionResponses(rows), nil
}

func (s *SubscriptionService) GetByID(ctx context.Context, id string) (*response_models.Subscription, error) {
	row, err := s.subRepo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if row == nil {
		return nil, utils.RecordNotFound
	}
	out := toSubscriptionResponse(*row)
	return &out, nil
}

func (s *SubscriptionService) GetByCompanyID(ctx context.Context, companyID string) (*response_models.Subscription, error) {
	row, err := s.subRepo.GetByCompanyID(ctx, companyID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if row == nil {
		return nil, utils.RecordNotFound
	}
	out := toSubscriptionResponse(*row)
	return &out, nil
}

// Create binds a company to a plan ahead of its first payment. The row starts
// active with no start date; the first reconciled payment sets it.
func (s *SubscriptionService) Create(ctx context.Context, req request_models.CreateSubscriptionRequest) (*response_models.Subscription, error) {
	if err := s.requirePlan(ctx, req.PlanID); err != nil {
		return nil, err
	}

	sub := &dbm.Subscription{
		CompanyID: strings.TrimSpace(req.CompanyID),
		PlanID:    strings.TrimSpace(req.PlanID),
		Status:    dbm.SubStatusActive,
	}
	if err := s.subRepo.Create(ctx, sub); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.ErrDuplicateRecord
		}
		s.logger.Error("create subscription", zap.Error(err))
		return nil, utils.ErrDatabaseError
	}

	return s.GetByID(ctx, sub.Key())
}

func (s *SubscriptionService) Update(ctx context.Context, id string, req request_models.UpdateSubscriptionRequest) (*response_models.Subscription, error) {
	fields := map[string]interface{}{}

	if req.PlanID != nil {
		if err := s.requirePlan(ctx, *req.PlanID); err != nil {
			return nil, err
		}
		fields["plan_id"] = strings.TrimSpace(*req.PlanID)
	}
	if req.Status != nil {
		status := dbm.SubscriptionStatus(*req.Status)
		if !status.Valid() {
			return nil, utils.ErrInvalidStatus
		}
		fields["status"] = status
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", utils.ErrInvalidRequest)
	}
	fields["updated_at"] = utils.NowUnixSeconds()

	if err := s.subRepo.Update(ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.RecordNotFound
		}
		s.logger.Error("update subscription", zap.String("subscription_id", id), zap.Error(err))
		return nil, utils.ErrDatabaseError
	}

	return s.GetByID(ctx, id)
}

func (s *SubscriptionService) ListWithExcess(ctx context.Context) ([]response_models.Subscription, error) {
	rows, err := s.subRepo.ListWithExcess(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	return toSubscriptionResponses(rows), nil
}

func (s *SubscriptionService) ExportExcess(ctx context.Context) ([]byte, error) {
	subs, err := s.ListWithExcess(ctx)
	if err != nil {
		return nil, err
	}
	out, err := WriteExcessWorkbook(subs)
	if err != nil {
		s.logger.Error("render excess workbook", zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (s *SubscriptionService) ExcessSummary(ctx context.Context) (*response_models.ExcessSummary, error) {
	rows, err := s.subRepo.ExcessRows(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	summary := BuildExcessSummary(rows)
	return &summary, nil
}

// BuildExcessSummary expects rows ordered by excess_profiles descending.
func BuildExcessSummary(rows []repositories.ExcessRow) response_models.ExcessSummary {
	out := response_models.ExcessSummary{
		TotalEstablishmentsWithExcess: len(rows),
		TotalExcessAmount:             decimal.Zero,
	}
	for _, r := range rows {
		out.TotalExcessAmount = out.TotalExcessAmount.Add(r.ExcessAmount)
	}
	if len(rows) > 0 {
		name := "Desconhecido"
		if rows[0].CompanyName != nil && *rows[0].CompanyName != "" {
			name = *rows[0].CompanyName
		}
		out.TopExcessEstablishment = &response_models.TopExcessEstablishment{
			Name:           name,
			ExcessProfiles: rows[0].ExcessProfiles,
			ExcessAmount:   rows[0].ExcessAmount,
		}
	}
	return out
}

func (s *SubscriptionService) CompaniesWithoutSubscription(ctx context.Context) ([]response_models.CompanyOption, error) {
	rows, err := s.subRepo.CompaniesWithoutSubscription(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	out := make([]response_models.CompanyOption, 0, len(rows))
	for _, r := range rows {
		out = append(out, response_models.CompanyOption{ID: r.ID, Name: r.BusinessName})
	}
	return out, nil
}

func (s *SubscriptionService) PaymentHistory(ctx context.Context, subscriptionID string) ([]response_models.PaymentHistoryEntry, error) {
	sub, err := s.subRepo.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if sub == nil {
		return nil, utils.RecordNotFound
	}

	rows, err := s.subRepo.PaymentHistory(ctx, subscriptionID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	out := make([]response_models.PaymentHistoryEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, toPaymentHistoryEntry(r))
	}
	return out, nil
}

func (s *SubscriptionService) requirePlan(ctx context.Context, planID string) error {
	plan, err := s.planRepo.GetPlanInfoById(ctx, strings.TrimSpace(planID))
	if err != nil {
		return utils.ErrDatabaseError
	}
	if plan == nil {
		return fmt.Errorf("%w: plan %s not found", utils.ErrInvalidRequest, planID)
	}
	return nil
}

func toSubscriptionResponses(rows []repositories.SubscriptionRow) []response_models.Subscription {
	out := make([]response_models.Subscription, 0, len(rows))
	for _, r := range rows {
		out = append(out, toSubscriptionResponse(r))
	}
	return out
}

func toSubscriptionResponse(r repositories.SubscriptionRow) response_models.Subscription {
	out := response_models.Subscription{
		ID:                  r.ID.String(),
		CompanyID:           r.CompanyID,
		CompanyName:         r.CompanyName,
		PlanID:              r.PlanID,
		PlanName:            r.PlanName,
		PlanUserLimit:       r.PlanUserLimit,
		Status:              string(r.Status),
		CurrentProfileCount: r.CurrentProfileCount,
		ExcessProfiles:      r.ExcessProfiles,
		ExcessAmount:        r.ExcessAmount,
		ExternalReference:   BuildExternalReference(r.CompanyID, r.PlanID),
		CreatedAt:           utils.FromUnixSecondsBR(r.CreatedAt),
		UpdatedAt:           utils.FromUnixSecondsBR(r.UpdatedAt),
	}
	if r.StartedAt != nil {
		t := utils.FromUnixSecondsBR(*r.StartedAt)
		out.StartedAt = &t
	}
	return out
}

func toPaymentHistoryEntry(r dbm.PaymentHistory) response_models.PaymentHistoryEntry {
	out := response_models.PaymentHistoryEntry{
		ID:               r.ID.String(),
		SubscriptionID:   r.SubscriptionID.String(),
		Amount:           r.Amount,
		BaseAmount:       r.BaseAmount,
		ExcessAmount:     r.ExcessAmount,
		Status:           string(r.Status),
		DueDate:          time.Time(r.DueDate).Format(utils.DateLayout),
		GatewayReference: r.GatewayReference,
		CreatedAt:        utils.FromUnixSecondsBR(r.CreatedAt),
	}
	if r.PaymentDate != nil {
		t := utils.FromUnixSecondsBR(*r.PaymentDate)
		out.PaymentDate = &t
	}
	return out
}
