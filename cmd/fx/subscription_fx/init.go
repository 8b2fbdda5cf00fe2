package subscription_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"mibe/internal/repositories"
	"mibe/internal/services"
)

var Module = fx.Provide(
	provideSubscriptionRepo, provideSubscriptionService)

func provideSubscriptionRepo(db *gorm.DB) repositories.ISubscriptionRepository {
	return repositories.NewSubscriptionRepository(db)
}

func provideSubscriptionService(subRepo repositories.ISubscriptionRepository, planRepo repositories.IPlanRepository, logger *zap.Logger) services.SubscriptionServiceInterface {
	return services.NewSubscriptionService(subRepo, planRepo, logger)
}
