package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"mibe/internal/models/db_models"
	"mibe/internal/models/request_models"
	"mibe/internal/models/response_models"
	"mibe/internal/repositories"
	"mibe/pkg/utils"
)

type PlanServiceInterface interface {
	GetPlans(ctx context.Context) ([]response_models.Plan, error)
	GetActivePlans(ctx context.Context) ([]response_models.Plan, error)
	GetPlanInfoById(ctx context.Context, planId string) (response_models.Plan, error)
	CreatePlan(ctx context.Context, req request_models.CreatePlanRequest) (response_models.Plan, error)
	UpdatePlan(ctx context.Context, planId string, req request_models.UpdatePlanRequest) (response_models.Plan, error)
	TogglePlan(ctx context.Context, planId string, isActive bool) (response_models.Plan, error)
	HasLinkedSubscriptions(ctx context.Context, planId string) (bool, error)
}

func NewPlanService(planRepo repositories.IPlanRepository, subRepo repositories.ISubscriptionRepository, logger *zap.Logger) PlanServiceInterface {
	return &PlanService{
		planRepo: planRepo,
		subRepo:  subRepo,
		logger:   logger,
	}
}

type PlanService struct {
	planRepo repositories.IPlanRepository
	subRepo  repositories.ISubscriptionRepository
	logger   *zap.Logger
}

func (p *PlanService) GetPlans(ctx context.Context) ([]response_models.Plan, error) {
	plans, err := p.planRepo.GetAllPlans(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	return toPlanResponses(plans), nil
}

func (p *PlanService) GetActivePlans(ctx context.Context) ([]response_models.Plan, error) {
	plans, err := p.planRepo.GetActivePlans(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	return toPlanResponses(plans), nil
}

func (p *PlanService) GetPlanInfoById(ctx context.Context, planId string) (response_models.Plan, error) {

	plan, err := p.planRepo.GetPlanInfoById(ctx, planId)
	if err != nil {
		return response_models.Plan{}, utils.ErrDatabaseError
	}

	if plan == nil {
		return response_models.Plan{}, utils.RecordNotFound
	}

	return toPlanResponse(*plan), nil
}

func (p *PlanService) CreatePlan(ctx context.Context, req request_models.CreatePlanRequest) (response_models.Plan, error) {
	if req.MonthlyPrice.IsNegative() || req.ExcessUserFee.IsNegative() {
		return response_models.Plan{}, fmt.Errorf("%w: prices must not be negative", utils.ErrInvalidRequest)
	}

	features, err := encodeFeatures(req.Features)
	if err != nil {
		return response_models.Plan{}, err
	}

	plan := &db_models.Plan{
		Name:          req.Name,
		Description:   req.Description,
		UserLimit:     req.UserLimit,
		ExcessUserFee: req.ExcessUserFee,
		MonthlyPrice:  req.MonthlyPrice,
		IsActive:      true,
		Features:      features,
	}

	if err := p.planRepo.Create(ctx, plan); err != nil {
		p.logger.Error("create plan", zap.Error(err))
		return response_models.Plan{}, utils.ErrDatabaseError
	}

	return toPlanResponse(*plan), nil
}

func (p *PlanService) UpdatePlan(ctx context.Context, planId string, req request_models.UpdatePlanRequest) (response_models.Plan, error) {
	fields := map[string]interface{}{}

	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.UserLimit != nil {
		fields["user_limit"] = *req.UserLimit
	}
	if req.ExcessUserFee != nil {
		if req.ExcessUserFee.IsNegative() {
			return response_models.Plan{}, fmt.Errorf("%w: excess_user_fee must not be negative", utils.ErrInvalidRequest)
		}
		fields["excess_user_fee"] = *req.ExcessUserFee
	}
	if req.MonthlyPrice != nil {
		if req.MonthlyPrice.IsNegative() {
			return response_models.Plan{}, fmt.Errorf("%w: monthly_price must not be negative", utils.ErrInvalidRequest)
		}
		fields["monthly_price"] = *req.MonthlyPrice
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if req.Features != nil {
		features, err := encodeFeatures(req.Features)
		if err != nil {
			return response_models.Plan{}, err
		}
		fields["features"] = features
	}

	if len(fields) == 0 {
		return response_models.Plan{}, fmt.Errorf("%w: nothing to update", utils.ErrInvalidRequest)
	}
	fields["updated_at"] = utils.NowUnixSeconds()

	if err := p.planRepo.Update(ctx, planId, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response_models.Plan{}, utils.RecordNotFound
		}
		p.logger.Error("update plan", zap.String("plan_id", planId), zap.Error(err))
		return response_models.Plan{}, utils.ErrDatabaseError
	}

	return p.GetPlanInfoById(ctx, planId)
}

func (p *PlanService) TogglePlan(ctx context.Context, planId string, isActive bool) (response_models.Plan, error) {
	return p.UpdatePlan(ctx, planId, request_models.UpdatePlanRequest{IsActive: &isActive})
}

// HasLinkedSubscriptions is shown before deactivating a plan; it does not
// block the change.
func (p *PlanService) HasLinkedSubscriptions(ctx context.Context, planId string) (bool, error) {
	n, err := p.subRepo.CountByPlan(ctx, planId)
	if err != nil {
		return false, utils.ErrDatabaseError
	}
	return n > 0, nil
}

func encodeFeatures(features []string) (datatypes.JSON, error) {
	if features == nil {
		features = []string{}
	}
	raw, err := json.Marshal(features)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func toPlanResponses(plans []db_models.Plan) []response_models.Plan {
	out := make([]response_models.Plan, 0, len(plans))
	for _, plan := range plans {
		out = append(out, toPlanResponse(plan))
	}
	return out
}

func toPlanResponse(plan db_models.Plan) response_models.Plan {
	var features []string
	if len(plan.Features) > 0 {
		_ = json.Unmarshal(plan.Features, &features)
	}
	return response_models.Plan{
		ID:            plan.Key(),
		Name:          plan.Name,
		Description:   plan.Description,
		UserLimit:     plan.UserLimit,
		ExcessUserFee: plan.ExcessUserFee,
		MonthlyPrice:  plan.MonthlyPrice,
		IsActive:      plan.IsActive,
		Features:      features,
		CreatedAt:     utils.FromUnixSecondsBR(plan.CreatedAt),
		UpdatedAt:     utils.FromUnixSecondsBR(plan.UpdatedAt),
	}
}
