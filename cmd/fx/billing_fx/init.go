package billing_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"mibe/internal/api/controllers"
	"mibe/internal/infra"
	"mibe/internal/repositories"
	"mibe/internal/services"
)

var Module = fx.Provide(
	provideBillingStore, provideReconcileService, provideWebhookController,
)

func provideBillingStore(db *gorm.DB) repositories.BillingStore {
	return repositories.NewBillingStore(db)
}

func provideReconcileService(store repositories.BillingStore, logger *zap.Logger, metrics *infra.WebhookMetrics) services.ReconcileService {
	return services.NewReconcileService(store, logger, metrics)
}

func provideWebhookController(reconcileService services.ReconcileService) *controllers.WebhookController {
	return controllers.NewWebhookController(reconcileService)
}
