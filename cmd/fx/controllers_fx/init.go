package controllers_fx

import (
	"go.uber.org/fx"
	"mibe/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewAccountController),
	fx.Provide(controllers.NewSubscriptionController),
	fx.Provide(controllers.NewPlanController),
	fx.Provide(controllers.NewCustomerController),
	fx.Provide(controllers.NewDashboardController),
	fx.Provide(controllers.NewHealthController))
