package dashboard_fx

import (
	"go.uber.org/fx"
	"mibe/internal/repositories"
	"mibe/internal/services"
)

var Module = fx.Provide(
	repositories.NewDashboardRepository,
	services.NewDashboardService,
)
