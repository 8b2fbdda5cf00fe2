package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"mibe/cmd/fx/account_fx"
	"mibe/cmd/fx/billing_fx"
	"mibe/cmd/fx/controllers_fx"
	"mibe/cmd/fx/customer_fx"
	"mibe/cmd/fx/dashboard_fx"
	"mibe/cmd/fx/db_fx"
	"mibe/cmd/fx/infra_fx"
	"mibe/cmd/fx/plan_fx"
	"mibe/cmd/fx/subscription_fx"
	"mibe/internal/api/controllers"
	"mibe/internal/infra"
	"mibe/internal/models/db_models"
	"mibe/pkg/middleware"
)

func main() {
	app := fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
		infra_fx.Module,
		db_fx.Module,
		billing_fx.Module,
		account_fx.Module,
		subscription_fx.Module,
		plan_fx.Module,
		customer_fx.Module,
		dashboard_fx.Module,
		controllers_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine, cfg infra.Config, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info("Starting HTTP server", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("HTTP server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}

type RouterParams struct {
	fx.In

	Config   infra.Config
	Logger   *zap.Logger
	Registry *prometheus.Registry

	Webhook       *controllers.WebhookController
	Accounts      *controllers.AccountController
	Subscriptions *controllers.SubscriptionController
	Plans         *controllers.PlanController
	Customers     *controllers.CustomerController
	Dashboard     *controllers.DashboardController
	Health        *controllers.HealthController
}

func ProvideRouter(p RouterParams) *gin.Engine {
	if !p.Config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger(p.Logger.Named("http")))
	r.Use(middleware.CORSMiddleware())

	RegisterRoutes(r, p)

	return r
}

func RegisterRoutes(r *gin.Engine, p RouterParams) {
	secret := []byte(p.Config.JWTSecret)
	auth := middleware.JWTAuthMiddleware(secret)

	r.GET("/healthz", p.Health.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{})))

	accounts := r.Group("/accounts")
	accounts.POST("/login", p.Accounts.Login)

	asaas := r.Group("/asaas")
	asaas.POST("/webhook", middleware.WebhookTokenMiddleware(p.Config.Asaas.WebhookToken), p.Webhook.HandleAsaasWebhook)
	asaas.POST("/customers", auth, p.Customers.CreateCustomer)

	admin := r.Group("/admin", auth, middleware.RoleMiddleware(db_models.RoleAdmin))
	admin.POST("/accounts", p.Accounts.CreateAccount)
	admin.GET("/dashboard/stats", p.Dashboard.GetDashboard)

	subs := admin.Group("/subscriptions")
	subs.GET("", p.Subscriptions.ListSubscriptions)
	subs.POST("", p.Subscriptions.CreateSubscription)
	subs.GET("/excess", p.Subscriptions.ListExcess)
	subs.GET("/excess/summary", p.Subscriptions.ExcessSummary)
	subs.GET("/excess/export", p.Subscriptions.ExportExcess)
	subs.GET("/:id", p.Subscriptions.GetSubscription)
	subs.PATCH("/:id", p.Subscriptions.UpdateSubscription)
	subs.GET("/:id/payments", p.Subscriptions.PaymentHistory)

	companies := admin.Group("/companies")
	companies.GET("/unsubscribed", p.Subscriptions.CompaniesWithoutSubscription)
	companies.GET("/:companyId/subscription", p.Subscriptions.GetCompanySubscription)
	companies.POST("/:companyId/asaas-customer", p.Customers.RegisterCompany)

	plans := admin.Group("/plans")
	plans.GET("", p.Plans.ListPlans)
	plans.POST("", p.Plans.CreatePlan)
	plans.GET("/:id", p.Plans.GetPlan)
	plans.PATCH("/:id", p.Plans.UpdatePlan)
	plans.PUT("/:id/status", p.Plans.TogglePlan)
	plans.GET("/:id/linked", p.Plans.LinkedSubscriptions)
}
