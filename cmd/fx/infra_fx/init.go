package infra_fx

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"mibe/internal/infra"
)

var Module = fx.Provide(
	infra.LoadConfig,
	infra.NewLogger,
	provideRegistry,
	provideWebhookMetrics,
)

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideWebhookMetrics(reg *prometheus.Registry, logger *zap.Logger) *infra.WebhookMetrics {
	logger.Debug("registering webhook metrics")
	return infra.NewWebhookMetrics(reg)
}
