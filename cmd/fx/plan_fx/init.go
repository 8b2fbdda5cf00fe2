package plan_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"mibe/internal/repositories"
	"mibe/internal/services"
)

var Module = fx.Provide(
	providePlanRepo, providePlanService)

func providePlanRepo(db *gorm.DB) repositories.IPlanRepository {
	return repositories.NewPlanRepository(db)
}

func providePlanService(planRepo repositories.IPlanRepository, subRepo repositories.ISubscriptionRepository, logger *zap.Logger) services.PlanServiceInterface {
	return services.NewPlanService(planRepo, subRepo, logger)
}
